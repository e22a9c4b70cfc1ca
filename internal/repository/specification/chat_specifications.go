package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OwnedBy scopes a query to one (organization, user) pair. Every session
// read and write goes through this filter; a miss on either id is
// indistinguishable from the row not existing.
type OwnedBy struct {
	OrganizationID uuid.UUID
	UserID         uuid.UUID
}

func (s OwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("organization_id = ? AND user_id = ?", s.OrganizationID, s.UserID)
}

// ByChatSessionID scopes messages to one session.
type ByChatSessionID struct {
	ChatSessionID uuid.UUID
}

func (s ByChatSessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_session_id = ?", s.ChatSessionID)
}

// TitleEquals filters sessions by their current title. The title consumer
// uses it to make an upgrade conditional on the default title still being
// in place, so a concurrent rename is never clobbered.
type TitleEquals struct {
	Title string
}

func (s TitleEquals) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("title = ?", s.Title)
}
