package retrieval

import (
	"context"
	"fmt"

	"docchat-be/internal/model"
	"docchat-be/pkg/embedding"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// PgVectorRetriever ranks document chunks by cosine distance against the
// embedded query, scoped to one organization.
type PgVectorRetriever struct {
	db       *gorm.DB
	embedder embedding.EmbeddingProvider
}

func NewPgVectorRetriever(db *gorm.DB, embedder embedding.EmbeddingProvider) Retriever {
	return &PgVectorRetriever{
		db:       db,
		embedder: embedder,
	}
}

func (r *PgVectorRetriever) Retrieve(ctx context.Context, organizationId uuid.UUID, query string, limit int) ([]Document, error) {
	if limit <= 0 {
		limit = 5
	}

	embedded, err := r.embedder.Generate(query, "retrieval_query")
	if err != nil {
		return nil, errors.Wrap(err, "embed query")
	}

	var rows []*model.DocumentEmbedding
	err = r.db.WithContext(ctx).
		Preload("Document").
		Joins("JOIN documents ON documents.id = document_embeddings.document_id").
		Where("documents.organization_id = ?", organizationId).
		Order(gorm.Expr("embedding_value <=> ?", pgvector.NewVector(embedded.Values))).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "vector search")
	}

	seen := make(map[uuid.UUID]bool, len(rows))
	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		// One citation per document even when several chunks match.
		if seen[row.DocumentId] {
			continue
		}
		seen[row.DocumentId] = true

		doc := Document{
			Id:    row.DocumentId,
			Chunk: row.Chunk,
			URL:   fmt.Sprintf("/api/document/v1/%s/download", row.DocumentId),
		}
		if row.Document != nil {
			doc.Title = row.Document.Title
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
