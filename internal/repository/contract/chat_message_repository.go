package contract

import (
	"context"

	"docchat-be/internal/entity"

	"github.com/google/uuid"
)

type ChatMessageRepository interface {
	// FindAllBySession returns every message of the session in strict
	// created_at ascending order. Ownership of the session must already
	// have been authorized by the caller.
	FindAllBySession(ctx context.Context, sessionId uuid.UUID) ([]*entity.ChatMessage, error)

	// CountBySession is the baseline used to tell which trailing messages
	// of a completed turn are new versus already persisted.
	CountBySession(ctx context.Context, sessionId uuid.UUID) (int64, error)

	// CreateBatch persists a whole completed turn at once. Empty input is
	// a no-op, not an error.
	CreateBatch(ctx context.Context, messages []*entity.ChatMessage) error

	DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error
}
