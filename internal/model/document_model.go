package model

import (
	"time"

	"github.com/google/uuid"
)

// Document rows are owned by the document service; this service only reads
// them to resolve citation titles and download URLs.
type Document struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrganizationId uuid.UUID `gorm:"type:uuid;not null;index"`
	Title          string    `gorm:"type:text;not null"`
	CreatedAt      time.Time
}

func (Document) TableName() string {
	return "documents"
}
