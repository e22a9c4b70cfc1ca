package entity

import (
	"time"

	"docchat-be/pkg/chatcontent"

	"github.com/google/uuid"
)

// ChatMessage is one turn's content inside a session. Parts hold the
// decoded content fragments, Metadata the optional citation sources.
// Messages are append-only and totally ordered by CreatedAt.
type ChatMessage struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	Role          string
	Parts         []chatcontent.Part
	Metadata      *chatcontent.Metadata
	CreatedAt     time.Time
}
