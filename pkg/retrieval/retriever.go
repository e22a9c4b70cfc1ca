package retrieval

import (
	"context"

	"github.com/google/uuid"
)

// Document is one retrieved source candidate. URL may be empty when the
// document has no resolvable download location.
type Document struct {
	Id    uuid.UUID
	Title string
	URL   string
	Chunk string
}

// Retriever selects source documents for a prompt. The selection strategy
// lives behind this boundary; the chat core only wraps its output into
// citation metadata.
type Retriever interface {
	Retrieve(ctx context.Context, organizationId uuid.UUID, query string, limit int) ([]Document, error)
}
