package mapper

import (
	"docchat-be/internal/entity"
	"docchat-be/internal/model"
	"docchat-be/internal/pkg/apperror"
	"docchat-be/pkg/chatcontent"

	"gorm.io/datatypes"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Session Mappers

func (m *ChatMapper) ChatSessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}
	return &entity.ChatSession{
		Id:             s.Id,
		OrganizationId: s.OrganizationId,
		UserId:         s.UserId,
		Title:          s.Title,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func (m *ChatMapper) ChatSessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}
	return &model.ChatSession{
		Id:             s.Id,
		OrganizationId: s.OrganizationId,
		UserId:         s.UserId,
		Title:          s.Title,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

// Message Mappers
//
// ChatMessageToEntity runs the content codec. A row whose parts or metadata
// no longer parse surfaces DECODE_FAILED carrying the message id; it is
// never coerced into an empty message.

func (m *ChatMapper) ChatMessageToEntity(msg *model.ChatMessage) (*entity.ChatMessage, error) {
	if msg == nil {
		return nil, nil
	}

	parts, err := chatcontent.DecodeParts(msg.Parts)
	if err != nil {
		return nil, apperror.DecodeFailed(msg.Id, err)
	}

	metadata, err := chatcontent.DecodeMetadata(msg.Metadata)
	if err != nil {
		return nil, apperror.DecodeFailed(msg.Id, err)
	}

	return &entity.ChatMessage{
		Id:            msg.Id,
		ChatSessionId: msg.ChatSessionId,
		Role:          msg.Role,
		Parts:         parts,
		Metadata:      metadata,
		CreatedAt:     msg.CreatedAt,
	}, nil
}

func (m *ChatMapper) ChatMessageToModel(msg *entity.ChatMessage) (*model.ChatMessage, error) {
	if msg == nil {
		return nil, nil
	}

	parts, err := chatcontent.EncodeParts(msg.Parts)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	metadata, err := chatcontent.EncodeMetadata(msg.Metadata)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	out := &model.ChatMessage{
		Id:            msg.Id,
		ChatSessionId: msg.ChatSessionId,
		Role:          msg.Role,
		Parts:         datatypes.JSON(parts),
		CreatedAt:     msg.CreatedAt,
	}
	if metadata != nil {
		out.Metadata = datatypes.JSON(metadata)
	}
	return out, nil
}
