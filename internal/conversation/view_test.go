package conversation

import (
	"testing"
	"time"

	"docchat-be/internal/constant"
	"docchat-be/internal/entity"
	"docchat-be/internal/repository/memory"
	"docchat-be/pkg/chatcontent"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestView_TurnLifecycle(t *testing.T) {
	v := NewView(uuid.New(), nil)
	assert.Equal(t, PhaseIdle, v.Phase())
	assert.False(t, v.Loading())

	require.True(t, v.BeginTurn("what does the contract say about renewal?"))
	assert.Equal(t, PhaseAwaitingFirstToken, v.Phase())
	assert.True(t, v.Loading())

	// Submission is blocked while a turn is in flight.
	assert.False(t, v.BeginTurn("second prompt"))

	msgs := v.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, constant.ChatMessageRoleUser, msgs[0].Role)
	assert.Equal(t, constant.ChatMessageRoleAssistant, msgs[1].Role)

	// Empty keep-alive deltas do not end the thinking state.
	v.AppendDelta("")
	assert.Equal(t, PhaseAwaitingFirstToken, v.Phase())
	assert.True(t, v.ShowThinking(1))

	v.AppendDelta("The renewal")
	assert.Equal(t, PhaseStreaming, v.Phase())
	assert.False(t, v.ShowThinking(1))

	v.AppendDelta(" clause is in section 4.")
	assert.Equal(t, "The renewal clause is in section 4.", v.DisplayText(1))

	v.Settle()
	assert.Equal(t, PhaseSettled, v.Phase())
	assert.False(t, v.Loading())
	require.Len(t, v.Messages(), 2)

	// A new turn can begin once settled.
	assert.True(t, v.BeginTurn("and termination?"))
}

func TestView_FailedStreamSettlesWithEmptyAssistant(t *testing.T) {
	v := NewView(uuid.New(), nil)
	require.True(t, v.BeginTurn("hello"))

	// Stream fails before any token arrives.
	v.Settle()

	msgs := v.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, constant.ChatMessageRoleAssistant, msgs[1].Role)
	assert.Equal(t, "", v.DisplayText(1))
	assert.False(t, v.Loading())
	assert.False(t, v.ShowActions(1))
}

func TestView_IsStreaming(t *testing.T) {
	v := NewView(uuid.New(), nil)
	require.True(t, v.BeginTurn("prompt"))
	v.AppendDelta("partial")

	assert.False(t, v.IsStreaming(0), "user message never streams")
	assert.True(t, v.IsStreaming(1))

	v.Settle()
	assert.False(t, v.IsStreaming(1))
}

func TestView_ShowActions(t *testing.T) {
	v := NewView(uuid.New(), nil)
	require.True(t, v.BeginTurn("prompt"))
	v.AppendDelta("answer text")

	assert.True(t, v.ShowActions(0), "settled user message with text")
	assert.False(t, v.ShowActions(1), "still streaming")

	v.Settle()
	assert.True(t, v.ShowActions(1))

	// Whitespace-only text keeps actions hidden.
	require.True(t, v.BeginTurn("again"))
	v.AppendDelta("   ")
	v.Settle()
	assert.False(t, v.ShowActions(3))
}

func TestView_ShowSources(t *testing.T) {
	v := NewView(uuid.New(), nil)
	require.True(t, v.BeginTurn("prompt"))
	v.AppendDelta("cited answer")
	v.AttachSources([]chatcontent.Source{
		{DocumentId: uuid.NewString(), Title: "Q3 Report"},
	})

	assert.False(t, v.ShowSources(1), "hidden while streaming")

	v.Settle()
	assert.True(t, v.ShowSources(1))
	assert.False(t, v.ShowSources(0), "no metadata on user message")
}

func TestView_MaybeAutoSend_SubmitsExactlyOnce(t *testing.T) {
	sessionId := uuid.New()
	drafts := memory.NewDraftRepository()
	drafts.Stage(sessionId, "summarize the onboarding doc")

	v := NewView(sessionId, nil)

	var sent []string
	submit := func(text string) error {
		sent = append(sent, text)
		return nil
	}

	// The trigger condition is re-evaluated repeatedly before the first
	// token arrives; only the first evaluation submits.
	for i := 0; i < 5; i++ {
		v.MaybeAutoSend(true, drafts, submit)
	}

	require.Len(t, sent, 1)
	assert.Equal(t, "summarize the onboarding doc", sent[0])

	assert.False(t, drafts.Peek(sessionId), "draft consumed on submit")
}

func TestView_MaybeAutoSend_Preconditions(t *testing.T) {
	sessionId := uuid.New()
	drafts := memory.NewDraftRepository()
	drafts.Stage(sessionId, "draft")

	submitted := 0
	submit := func(string) error { submitted++; return nil }

	t.Run("session not loaded", func(t *testing.T) {
		v := NewView(sessionId, nil)
		assert.False(t, v.MaybeAutoSend(false, drafts, submit))
	})

	t.Run("history not empty", func(t *testing.T) {
		stored := &entity.ChatMessage{
			Id:        uuid.New(),
			Role:      constant.ChatMessageRoleUser,
			Parts:     []chatcontent.Part{chatcontent.TextPart("hi")},
			CreatedAt: time.Now(),
		}
		v := NewView(sessionId, []Message{FromEntity(stored)})
		assert.False(t, v.MaybeAutoSend(true, drafts, submit))
	})

	t.Run("turn in flight", func(t *testing.T) {
		v := NewView(sessionId, nil)
		require.True(t, v.BeginTurn("prompt"))
		assert.False(t, v.MaybeAutoSend(true, drafts, submit))
	})

	assert.Zero(t, submitted)
	assert.True(t, drafts.Peek(sessionId), "draft still staged when preconditions fail")
}

func TestView_MaybeAutoSend_NoDraftStaged(t *testing.T) {
	v := NewView(uuid.New(), nil)
	drafts := memory.NewDraftRepository()

	assert.False(t, v.MaybeAutoSend(true, drafts, func(string) error { return nil }))

	// The latch is only set when a draft is actually consumed, so a draft
	// staged later can still fire.
	drafts.Stage(v.SessionId(), "late draft")
	assert.True(t, v.MaybeAutoSend(true, drafts, func(string) error { return nil }))
}
