package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"

	// DefaultSessionTitle is used when a session is created without an
	// explicit title.
	DefaultSessionTitle = "New Chat"

	// SessionTitleMaxLen mirrors the title column constraint.
	SessionTitleMaxLen = 255

	// DeriveTitleMaxLen bounds titles derived from the opening prompt.
	DeriveTitleMaxLen = 50

	// Pagination bounds for session listing.
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// Event topics.
	TopicTurnCompleted = "CHAT_TURN_COMPLETED"

	// NATS subject for cross-service turn fan-out.
	SubjectTurnCompleted = "events.chat.turn.completed"
)

// ValidRoles lists every role a stored message may carry.
var ValidRoles = map[string]bool{
	ChatMessageRoleUser:      true,
	ChatMessageRoleAssistant: true,
	ChatMessageRoleSystem:    true,
}
