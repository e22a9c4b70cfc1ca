package contract

import (
	"context"

	"docchat-be/internal/entity"
	"docchat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatSessionRepository interface {
	// Create inserts the session and echoes the stored row back into it.
	// An insert the store does not echo is a faulted write, not a success.
	Create(ctx context.Context, session *entity.ChatSession) error

	// UpdateTitle sets title and bumps updated_at under the given
	// specifications, returning how many rows were affected.
	UpdateTitle(ctx context.Context, title string, specs ...specification.Specification) (int64, error)

	// Touch bumps updated_at for one session, keeping list ordering in
	// step with conversation recency.
	Touch(ctx context.Context, sessionId uuid.UUID) error

	// Delete removes sessions matching the specifications, returning the
	// affected row count.
	Delete(ctx context.Context, specs ...specification.Specification) (int64, error)

	// FindOne returns nil, nil when no row matches.
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
