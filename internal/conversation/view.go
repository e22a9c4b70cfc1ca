package conversation

import (
	"strings"
	"sync"

	"docchat-be/internal/constant"
	"docchat-be/internal/entity"
	"docchat-be/pkg/chatcontent"

	"github.com/google/uuid"
)

// Phase is the lifecycle of one open conversation view. Settled is the only
// terminal phase; a failed stream settles too and simply leaves the last
// assistant message without text.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAwaitingFirstToken
	PhaseStreaming
	PhaseSettled
)

// Message is the display-side projection of a chat message.
type Message struct {
	Id       uuid.UUID
	Role     string
	Parts    []chatcontent.Part
	Metadata *chatcontent.Metadata
}

// FromEntity projects a persisted message for display.
func FromEntity(msg *entity.ChatMessage) Message {
	return Message{
		Id:       msg.Id,
		Role:     msg.Role,
		Parts:    msg.Parts,
		Metadata: msg.Metadata,
	}
}

// DraftSource is the staging slot a freshly created session's opening
// prompt waits in. Take consumes the draft.
type DraftSource interface {
	Take(sessionId uuid.UUID) (string, bool)
}

// View interleaves persisted history with the turn currently being
// streamed and derives every display decision from that merged sequence.
// One View exists per open conversation; the auto-send latch lives and
// dies with it.
type View struct {
	mu        sync.Mutex
	sessionId uuid.UUID
	phase     Phase
	history   []Message
	live      *Message
	draftSent bool
}

func NewView(sessionId uuid.UUID, history []Message) *View {
	return &View{
		sessionId: sessionId,
		phase:     PhaseIdle,
		history:   history,
	}
}

func (v *View) SessionId() uuid.UUID {
	return v.sessionId
}

func (v *View) Phase() Phase {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.phase
}

// SetHistory replaces the persisted portion of the conversation, e.g.
// after a reload. The live turn and the latch are untouched.
func (v *View) SetHistory(history []Message) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.history = history
}

// BeginTurn appends the user's message plus an empty assistant placeholder
// and moves to awaiting-first-token. Submission is serialized by the
// caller; a turn can only begin when no other is in flight.
func (v *View) BeginTurn(prompt string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.phase == PhaseAwaitingFirstToken || v.phase == PhaseStreaming {
		return false
	}

	v.history = append(v.history, Message{
		Id:    uuid.New(),
		Role:  constant.ChatMessageRoleUser,
		Parts: []chatcontent.Part{chatcontent.TextPart(prompt)},
	})
	v.live = &Message{
		Id:   uuid.New(),
		Role: constant.ChatMessageRoleAssistant,
	}
	v.phase = PhaseAwaitingFirstToken
	return true
}

// AppendDelta folds incremental assistant text into the live turn. The
// first non-empty delta flips the view from awaiting-first-token to
// streaming, which is what retires the thinking indicator.
func (v *View) AppendDelta(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.live == nil {
		return
	}

	if len(v.live.Parts) == 0 {
		v.live.Parts = []chatcontent.Part{chatcontent.TextPart(text)}
	} else {
		v.live.Parts[0].Text += text
	}

	if v.phase == PhaseAwaitingFirstToken && text != "" {
		v.phase = PhaseStreaming
	}
}

// AttachSources sets citation metadata on the live assistant turn.
func (v *View) AttachSources(sources []chatcontent.Source) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.live == nil || len(sources) == 0 {
		return
	}
	v.live.Metadata = &chatcontent.Metadata{Sources: sources}
}

// Settle ends the turn, success or failure. The live message joins the
// history either way: after a failed stream the user sees an assistant
// message with no text and input re-enables.
func (v *View) Settle() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.live != nil {
		v.history = append(v.history, *v.live)
		v.live = nil
	}
	v.phase = PhaseSettled
}

// Loading reports whether a turn is in flight.
func (v *View) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loadingLocked()
}

func (v *View) loadingLocked() bool {
	return v.phase == PhaseAwaitingFirstToken || v.phase == PhaseStreaming
}

// Messages returns the merged display sequence: persisted history followed
// by the live turn, if any.
func (v *View) Messages() []Message {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.messagesLocked()
}

func (v *View) messagesLocked() []Message {
	out := make([]Message, 0, len(v.history)+1)
	out = append(out, v.history...)
	if v.live != nil {
		out = append(out, *v.live)
	}
	return out
}

// DisplayText is the space-joined concatenation of a message's text
// fragments; other fragment kinds are invisible here.
func (v *View) DisplayText(index int) string {
	v.mu.Lock()
	defer v.mu.Unlock()

	msgs := v.messagesLocked()
	if index < 0 || index >= len(msgs) {
		return ""
	}
	return chatcontent.JoinText(msgs[index].Parts)
}

// IsStreaming reports whether the message at index is the one currently
// being produced: last position, assistant role, turn in flight.
func (v *View) IsStreaming(index int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.isStreamingLocked(index)
}

func (v *View) isStreamingLocked(index int) bool {
	msgs := v.messagesLocked()
	if index != len(msgs)-1 || index < 0 {
		return false
	}
	return v.loadingLocked() && msgs[index].Role == constant.ChatMessageRoleAssistant
}

// ShowThinking is the transient indicator shown in place of empty content
// until the first non-empty text fragment arrives.
func (v *View) ShowThinking(index int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.isStreamingLocked(index) {
		return false
	}
	msgs := v.messagesLocked()
	return chatcontent.JoinText(msgs[index].Parts) == ""
}

// ShowActions gates copy-style affordances: never while streaming, never
// on messages without visible text.
func (v *View) ShowActions(index int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.isStreamingLocked(index) {
		return false
	}
	msgs := v.messagesLocked()
	if index < 0 || index >= len(msgs) {
		return false
	}
	return strings.TrimSpace(chatcontent.JoinText(msgs[index].Parts)) != ""
}

// ShowSources gates the citation list: only settled messages carrying at
// least one validated source.
func (v *View) ShowSources(index int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.isStreamingLocked(index) {
		return false
	}
	msgs := v.messagesLocked()
	if index < 0 || index >= len(msgs) {
		return false
	}
	md := msgs[index].Metadata
	return md != nil && len(md.Sources) > 0
}

// MaybeAutoSend submits a staged opening draft exactly once per view
// lifetime. The trigger condition may be re-evaluated any number of times
// before the first token arrives; the latch plus the consuming Take keep
// the submission single-shot, and a brand new View (a genuinely fresh
// page) starts with a fresh latch.
func (v *View) MaybeAutoSend(sessionLoaded bool, drafts DraftSource, submit func(text string) error) bool {
	v.mu.Lock()
	if v.draftSent || !sessionLoaded || v.loadingLocked() || len(v.messagesLocked()) != 0 {
		v.mu.Unlock()
		return false
	}

	text, found := drafts.Take(v.sessionId)
	if !found {
		v.mu.Unlock()
		return false
	}
	v.draftSent = true
	v.mu.Unlock()

	if submit != nil {
		_ = submit(text)
	}
	return true
}
