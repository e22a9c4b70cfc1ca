package websocket

import "github.com/google/uuid"

const (
	FrameTurnDelta   = "turn.delta"
	FrameTurnSettled = "turn.settled"
	FrameTurnFailed  = "turn.failed"
)

// StreamFrame is the wire shape of one streaming event pushed to the
// conversation view. Delta frames carry incremental assistant text;
// settled frames carry the persisted message id; failed frames end the
// turn without one.
type StreamFrame struct {
	Type          string `json:"type"`
	ChatSessionId string `json:"chatSessionId"`
	MessageId     string `json:"messageId,omitempty"`
	Delta         string `json:"delta,omitempty"`
}

func NewDeltaFrame(sessionId uuid.UUID, delta string) StreamFrame {
	return StreamFrame{
		Type:          FrameTurnDelta,
		ChatSessionId: sessionId.String(),
		Delta:         delta,
	}
}

func NewSettledFrame(sessionId, messageId uuid.UUID) StreamFrame {
	return StreamFrame{
		Type:          FrameTurnSettled,
		ChatSessionId: sessionId.String(),
		MessageId:     messageId.String(),
	}
}

func NewFailedFrame(sessionId uuid.UUID) StreamFrame {
	return StreamFrame{
		Type:          FrameTurnFailed,
		ChatSessionId: sessionId.String(),
	}
}
