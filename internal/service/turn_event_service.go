package service

import (
	"context"

	"docchat-be/internal/constant"
	"docchat-be/internal/pkg/logger"
	"docchat-be/pkg/events"
	pktNats "docchat-be/pkg/nats"
)

type ITurnEventService interface {
	Start()
}

// turnEventService is the durable NATS consumer for completed turns. It
// keeps the audit trail other services in the platform read; the title
// consumer runs on the in-process bus and does not depend on it.
type turnEventService struct {
	subscriber *pktNats.Subscriber
	logger     logger.ILogger
}

func NewTurnEventService(subscriber *pktNats.Subscriber, log logger.ILogger) ITurnEventService {
	return &turnEventService{
		subscriber: subscriber,
		logger:     log,
	}
}

func (s *turnEventService) Start() {
	err := s.subscriber.Subscribe(constant.SubjectTurnCompleted, "docchat-turn-audit", func(ctx context.Context, event events.Event) error {
		s.logger.Info("TurnEvents", "Chat turn completed", event.Payload())
		return nil
	})
	if err != nil {
		s.logger.Error("TurnEvents", "Failed to subscribe to turn events", map[string]interface{}{"error": err.Error()})
	}
}
