package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatSession is one conversation thread owned by exactly one user within
// exactly one organization. Deletion is hard and cascades to messages.
type ChatSession struct {
	Id             uuid.UUID
	OrganizationId uuid.UUID
	UserId         uuid.UUID
	Title          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
