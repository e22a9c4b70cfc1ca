package service

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"docchat-be/internal/constant"
	"docchat-be/internal/dto"
	"docchat-be/internal/repository/specification"
	"docchat-be/internal/repository/unitofwork"
	"docchat-be/pkg/llm"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type ITitleConsumerService interface {
	Consume(ctx context.Context) error
}

// titleConsumerService upgrades sessions still carrying the default title
// once their first turn completes, using the model to summarize the
// opening prompt.
type titleConsumerService struct {
	pubSub      *gochannel.GoChannel
	topicName   string
	uowFactory  unitofwork.RepositoryFactory
	llmProvider llm.LLMProvider
}

func NewTitleConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.LLMProvider,
) ITitleConsumerService {
	return &titleConsumerService{
		pubSub:      pubSub,
		topicName:   topicName,
		uowFactory:  uowFactory,
		llmProvider: llmProvider,
	}
}

func (cs *titleConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *titleConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.TurnCompletedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal turn-completed message: %v", err)
		msg.Ack() // malformed payloads never become processable
		return
	}

	if !payload.FirstTurn {
		msg.Ack()
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: payload.ChatSessionId})
	if err != nil {
		log.Printf("[ERROR] Failed to load session %s: %v", payload.ChatSessionId, err)
		msg.Nack()
		return
	}
	if session == nil {
		// Deleted before the consumer got here.
		msg.Ack()
		return
	}

	// The user may have renamed the session already; never clobber that.
	if session.Title != constant.DefaultSessionTitle {
		msg.Ack()
		return
	}

	title := cs.generateTitle(ctx, payload.Prompt)

	// Re-assert the default title in the predicate so a rename landing
	// between the read above and this write wins the race.
	affected, err := uow.ChatSessionRepository().UpdateTitle(ctx, title,
		specification.ByID{ID: session.Id},
		specification.TitleEquals{Title: constant.DefaultSessionTitle},
	)
	if err != nil {
		log.Printf("[ERROR] Failed to update title for session %s: %v", session.Id, err)
		msg.Nack()
		return
	}
	if affected == 0 {
		msg.Ack()
		return
	}

	log.Printf("[INFO] Upgraded title for session %s", session.Id)
	msg.Ack()
}

func (cs *titleConsumerService) generateTitle(ctx context.Context, prompt string) string {
	out, err := cs.llmProvider.Generate(ctx,
		"Write a title of at most six words for a conversation that starts with this message. Reply with the title only, no quotes.\n\n"+prompt,
		llm.WithTemperature(0.2),
	)
	if err != nil {
		log.Printf("[WARN] Title generation failed, deriving from prompt: %v", err)
		return DeriveTitle(prompt)
	}

	out = strings.TrimSpace(strings.Trim(strings.TrimSpace(out), `"`))
	if out == "" {
		return DeriveTitle(prompt)
	}
	// Cap in runes, not bytes, so a multibyte title is never cut mid-rune.
	if runes := []rune(out); len(runes) > constant.SessionTitleMaxLen {
		out = string(runes[:constant.SessionTitleMaxLen])
	}
	return out
}
