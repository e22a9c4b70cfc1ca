package dto

import (
	"time"

	"docchat-be/internal/constant"
	"docchat-be/pkg/chatcontent"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	OrganizationId uuid.UUID `json:"organization_id"`
	Title          string    `json:"title" validate:"omitempty,max=255"`

	// Prompt optionally carries the opening message. When set, it seeds
	// the derived title and is staged as a draft for the view to auto-send.
	Prompt string `json:"prompt" validate:"omitempty"`
}

type SessionResponse struct {
	Id             uuid.UUID `json:"id"`
	OrganizationId uuid.UUID `json:"organization_id"`
	Title          string    `json:"title"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ListSessionsRequest struct {
	OrganizationId uuid.UUID `json:"organization_id"`
	Page           int       `json:"page" validate:"min=1"`
	PageSize       int       `json:"page_size" validate:"min=1,max=100"`
}

func (r *ListSessionsRequest) ApplyDefaults() {
	if r.Page == 0 {
		r.Page = constant.DefaultPage
	}
	if r.PageSize == 0 {
		r.PageSize = constant.DefaultPageSize
	}
}

type ListSessionsResponse struct {
	Sessions   []*SessionResponse `json:"sessions"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
}

type UpdateSessionTitleRequest struct {
	ChatSessionId  uuid.UUID
	OrganizationId uuid.UUID `json:"organization_id"`
	Title          string    `json:"title" validate:"required,min=1,max=255"`
}

type MessageResponse struct {
	Id        uuid.UUID             `json:"id"`
	Role      string                `json:"role"`
	Parts     []chatcontent.Part    `json:"parts"`
	Metadata  *chatcontent.Metadata `json:"metadata,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
}

type GetMessagesResponse struct {
	Messages []*MessageResponse `json:"messages"`
}

type SendChatRequest struct {
	ChatSessionId  uuid.UUID
	OrganizationId uuid.UUID `json:"organization_id"`
	Prompt         string    `json:"prompt" validate:"required,min=1"`
}

type SendChatResponse struct {
	ChatSessionId uuid.UUID        `json:"chat_session_id"`
	Sent          *MessageResponse `json:"sent"`
	Reply         *MessageResponse `json:"reply"`
}

type StageDraftRequest struct {
	ChatSessionId  uuid.UUID
	OrganizationId uuid.UUID `json:"organization_id"`
	Text           string    `json:"text" validate:"required,min=1"`
}

type TakeDraftResponse struct {
	Text  string `json:"text"`
	Found bool   `json:"found"`
}

// TurnCompletedMessage is the in-process bus payload emitted after a turn
// is persisted. The title consumer uses it to upgrade default titles.
type TurnCompletedMessage struct {
	ChatSessionId uuid.UUID `json:"chat_session_id"`
	UserId        uuid.UUID `json:"user_id"`
	FirstTurn     bool      `json:"first_turn"`
	Prompt        string    `json:"prompt"`
}
