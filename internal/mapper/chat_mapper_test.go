package mapper

import (
	"testing"

	"docchat-be/internal/model"
	"docchat-be/internal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestChatMessageToEntityFailsClosedOnUndecodableRow(t *testing.T) {
	m := NewChatMapper()

	tests := []struct {
		name     string
		parts    string
		metadata string
	}{
		{
			name:  "parts payload is not a JSON array",
			parts: `{"oops": true}`,
		},
		{
			name:  "text part without text field",
			parts: `[{"type": "text"}]`,
		},
		{
			name:  "part without type tag",
			parts: `[{"text": "orphaned"}]`,
		},
		{
			name:     "metadata source without documentId",
			parts:    `[{"type": "text", "text": "fine"}]`,
			metadata: `{"sources": [{"title": "Q3 Report"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgId := uuid.New()
			row := &model.ChatMessage{
				Id:            msgId,
				ChatSessionId: uuid.New(),
				Role:          "assistant",
				Parts:         datatypes.JSON(tt.parts),
			}
			if tt.metadata != "" {
				row.Metadata = datatypes.JSON(tt.metadata)
			}

			e, err := m.ChatMessageToEntity(row)
			require.Error(t, err)
			assert.Nil(t, e)
			assert.Equal(t, apperror.CodeDecodeFailed, apperror.CodeOf(err))

			// The failure names the broken row so it can be found and fixed.
			assert.Contains(t, err.Error(), msgId.String())
		})
	}
}

func TestChatMessageToEntityDecodesWellFormedRow(t *testing.T) {
	m := NewChatMapper()

	e, err := m.ChatMessageToEntity(&model.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: uuid.New(),
		Role:          "assistant",
		Parts:         datatypes.JSON(`[{"type": "text", "text": "The report covers Q3 revenue."}]`),
		Metadata:      datatypes.JSON(`{"sources": [{"documentId": "doc-1", "title": "Q3 Report"}]}`),
	})
	require.NoError(t, err)
	require.NotNil(t, e)
	require.Len(t, e.Parts, 1)
	assert.Equal(t, "The report covers Q3 revenue.", e.Parts[0].Text)
	require.NotNil(t, e.Metadata)
	assert.Equal(t, "Q3 Report", e.Metadata.Sources[0].Title)
}
