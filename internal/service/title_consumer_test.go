package service

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"docchat-be/internal/constant"
	"docchat-be/pkg/llm"

	"github.com/stretchr/testify/assert"
)

type stubLLMProvider struct {
	generateOut string
	generateErr error
}

func (s *stubLLMProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return s.generateOut, s.generateErr
}

func (s *stubLLMProvider) ChatStream(ctx context.Context, history []llm.Message, fn llm.StreamFunc, options ...llm.Option) (string, error) {
	return s.generateOut, s.generateErr
}

func (s *stubLLMProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.generateOut, s.generateErr
}

func TestGenerateTitle(t *testing.T) {
	ctx := context.Background()

	t.Run("multibyte title caps in runes", func(t *testing.T) {
		cs := &titleConsumerService{llmProvider: &stubLLMProvider{
			generateOut: strings.Repeat("é", constant.SessionTitleMaxLen+20),
		}}

		title := cs.generateTitle(ctx, "prompt")
		assert.True(t, utf8.ValidString(title))
		assert.Equal(t, constant.SessionTitleMaxLen, len([]rune(title)))
	})

	t.Run("quotes and whitespace are stripped", func(t *testing.T) {
		cs := &titleConsumerService{llmProvider: &stubLLMProvider{
			generateOut: "  \"Q3 Revenue Recap\"  ",
		}}

		assert.Equal(t, "Q3 Revenue Recap", cs.generateTitle(ctx, "prompt"))
	})

	t.Run("generation failure falls back to the prompt", func(t *testing.T) {
		cs := &titleConsumerService{llmProvider: &stubLLMProvider{
			generateErr: assert.AnError,
		}}

		assert.Equal(t, "What was Q1 revenue?", cs.generateTitle(ctx, "What was Q1 revenue?"))
	})

	t.Run("blank output falls back to the prompt", func(t *testing.T) {
		cs := &titleConsumerService{llmProvider: &stubLLMProvider{
			generateOut: "  \"\"  ",
		}}

		assert.Equal(t, "What was Q1 revenue?", cs.generateTitle(ctx, "What was Q1 revenue?"))
	})
}
