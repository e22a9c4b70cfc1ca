package unitofwork

import (
	"context"

	"docchat-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error

	// BeginRead opens a read-only REPEATABLE READ transaction so that a
	// count and a window query observe the same snapshot.
	BeginRead(ctx context.Context) error

	Commit() error
	Rollback() error

	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
}
