package implementation

import (
	"context"

	"docchat-be/internal/entity"
	"docchat-be/internal/mapper"
	"docchat-be/internal/model"
	"docchat-be/internal/pkg/apperror"
	"docchat-be/internal/repository/contract"
	"docchat-be/internal/repository/scope"
	"docchat-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type ChatMessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatMessageRepository(db *gorm.DB) contract.ChatMessageRepository {
	return &ChatMessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatMessageRepositoryImpl) bySession(ctx context.Context, sessionId uuid.UUID) *gorm.DB {
	spec := specification.ByChatSessionID{ChatSessionID: sessionId}
	return spec.Apply(r.db.WithContext(ctx))
}

func (r *ChatMessageRepositoryImpl) FindAllBySession(ctx context.Context, sessionId uuid.UUID) ([]*entity.ChatMessage, error) {
	var models []*model.ChatMessage
	err := r.bySession(ctx, sessionId).
		Scopes(scope.OrderByCreatedAsc).
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "list chat messages")
	}

	entities := make([]*entity.ChatMessage, len(models))
	for i, m := range models {
		e, err := r.mapper.ChatMessageToEntity(m)
		if err != nil {
			// One undecodable row fails the whole read; a silently
			// missing message would be worse than an error.
			return nil, err
		}
		entities[i] = e
	}
	return entities, nil
}

func (r *ChatMessageRepositoryImpl) CountBySession(ctx context.Context, sessionId uuid.UUID) (int64, error) {
	var count int64
	err := r.bySession(ctx, sessionId).
		Model(&model.ChatMessage{}).
		Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "count chat messages")
	}
	return count, nil
}

func (r *ChatMessageRepositoryImpl) CreateBatch(ctx context.Context, messages []*entity.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}

	models := make([]*model.ChatMessage, len(messages))
	for i, msg := range messages {
		m, err := r.mapper.ChatMessageToModel(msg)
		if err != nil {
			return err
		}
		models[i] = m
	}

	result := r.db.WithContext(ctx).Create(&models)
	if result.Error != nil {
		return errors.Wrap(result.Error, "create chat messages")
	}
	if result.RowsAffected != int64(len(models)) {
		return apperror.WriteFaulted("create chat messages")
	}

	for i, m := range models {
		e, err := r.mapper.ChatMessageToEntity(m)
		if err != nil {
			return err
		}
		*messages[i] = *e
	}
	return nil
}

func (r *ChatMessageRepositoryImpl) DeleteByChatSessionId(ctx context.Context, sessionId uuid.UUID) error {
	err := r.bySession(ctx, sessionId).
		Delete(&model.ChatMessage{}).Error
	return errors.Wrap(err, "delete chat messages")
}
