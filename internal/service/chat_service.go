package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"docchat-be/internal/constant"
	"docchat-be/internal/dto"
	"docchat-be/internal/entity"
	"docchat-be/internal/pkg/apperror"
	"docchat-be/internal/pkg/logger"
	"docchat-be/internal/repository/memory"
	"docchat-be/internal/repository/specification"
	"docchat-be/internal/repository/unitofwork"
	internalWS "docchat-be/internal/websocket"
	"docchat-be/pkg/chatcontent"
	"docchat-be/pkg/events"
	"docchat-be/pkg/llm"
	pktNats "docchat-be/pkg/nats"
	"docchat-be/pkg/retrieval"

	"github.com/google/uuid"
)

// retrieveLimit caps how many source documents a turn cites.
const retrieveLimit = 5

type IChatService interface {
	CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.SessionResponse, error)
	ListSessions(ctx context.Context, userId uuid.UUID, req *dto.ListSessionsRequest) (*dto.ListSessionsResponse, error)
	GetSession(ctx context.Context, userId uuid.UUID, orgId uuid.UUID, sessionId uuid.UUID) (*dto.SessionResponse, error)
	UpdateSessionTitle(ctx context.Context, userId uuid.UUID, req *dto.UpdateSessionTitleRequest) error
	DeleteSession(ctx context.Context, userId uuid.UUID, orgId uuid.UUID, sessionId uuid.UUID) error
	GetMessages(ctx context.Context, userId uuid.UUID, orgId uuid.UUID, sessionId uuid.UUID) (*dto.GetMessagesResponse, error)
	SendChat(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
	StageDraft(ctx context.Context, userId uuid.UUID, req *dto.StageDraftRequest) error
	TakeDraft(ctx context.Context, userId uuid.UUID, orgId uuid.UUID, sessionId uuid.UUID) (*dto.TakeDraftResponse, error)
}

type chatService struct {
	uowFactory       unitofwork.RepositoryFactory
	llmProvider      llm.LLMProvider
	retriever        retrieval.Retriever
	draftRepo        *memory.DraftRepository
	hub              *internalWS.Hub
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	logger           logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.LLMProvider,
	retriever retrieval.Retriever,
	draftRepo *memory.DraftRepository,
	hub *internalWS.Hub,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:       uowFactory,
		llmProvider:      llmProvider,
		retriever:        retriever,
		draftRepo:        draftRepo,
		hub:              hub,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           log,
	}
}

// DeriveTitle shortens an opening prompt into a session title.
func DeriveTitle(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return constant.DefaultSessionTitle
	}
	runes := []rune(prompt)
	if len(runes) <= constant.DeriveTitleMaxLen {
		return prompt
	}
	return string(runes[:constant.DeriveTitleMaxLen]) + "..."
}

// TotalPages is the page count for a listing: ceil(total / pageSize).
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

func (s *chatService) CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	title := req.Title
	if title == "" {
		if req.Prompt != "" {
			title = DeriveTitle(req.Prompt)
		} else {
			title = constant.DefaultSessionTitle
		}
	}

	session := entity.ChatSession{
		Id:             uuid.New(),
		OrganizationId: req.OrganizationId,
		UserId:         userId,
		Title:          title,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatSessionRepository().Create(ctx, &session); err != nil {
		return nil, err
	}

	// The opening prompt rides along to the view that opens next; the
	// slot is consumed on first read.
	if req.Prompt != "" {
		s.draftRepo.Stage(session.Id, req.Prompt)
	}

	return sessionToResponse(&session), nil
}

func (s *chatService) ListSessions(ctx context.Context, userId uuid.UUID, req *dto.ListSessionsRequest) (*dto.ListSessionsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// Count and window must observe the same snapshot, otherwise a write
	// between the two queries skews total against its page.
	if err := uow.BeginRead(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	owned := specification.OwnedBy{OrganizationID: req.OrganizationId, UserID: userId}

	total, err := uow.ChatSessionRepository().Count(ctx, owned)
	if err != nil {
		return nil, err
	}

	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		owned,
		specification.OrderBy{Field: "updated_at", Desc: true},
		specification.Pagination{Limit: req.PageSize, Offset: (req.Page - 1) * req.PageSize},
	)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	items := make([]*dto.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		items = append(items, sessionToResponse(session))
	}

	return &dto.ListSessionsResponse{
		Sessions:   items,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: TotalPages(total, req.PageSize),
	}, nil
}

func (s *chatService) GetSession(ctx context.Context, userId uuid.UUID, orgId uuid.UUID, sessionId uuid.UUID) (*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := s.findOwnedSession(ctx, uow, userId, orgId, sessionId)
	if err != nil {
		return nil, err
	}
	return sessionToResponse(session), nil
}

func (s *chatService) UpdateSessionTitle(ctx context.Context, userId uuid.UUID, req *dto.UpdateSessionTitleRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	affected, err := uow.ChatSessionRepository().UpdateTitle(ctx, req.Title,
		specification.ByID{ID: req.ChatSessionId},
		specification.OwnedBy{OrganizationID: req.OrganizationId, UserID: userId},
	)
	if err != nil {
		return err
	}
	// Zero rows means the session does not exist for this owner; which of
	// the two is deliberately not distinguishable.
	if affected != 1 {
		return apperror.NotFound("chat session not found")
	}
	return nil
}

func (s *chatService) DeleteSession(ctx context.Context, userId uuid.UUID, orgId uuid.UUID, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.findOwnedSession(ctx, uow, userId, orgId, sessionId); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	// Messages first, then the session. The FK cascade would cover the
	// messages anyway; deleting explicitly keeps the ordering visible.
	if err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, sessionId); err != nil {
		return err
	}
	affected, err := uow.ChatSessionRepository().Delete(ctx,
		specification.ByID{ID: sessionId},
		specification.OwnedBy{OrganizationID: orgId, UserID: userId},
	)
	if err != nil {
		return err
	}
	if affected != 1 {
		return apperror.NotFound("chat session not found")
	}

	return uow.Commit()
}

func (s *chatService) GetMessages(ctx context.Context, userId uuid.UUID, orgId uuid.UUID, sessionId uuid.UUID) (*dto.GetMessagesResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.findOwnedSession(ctx, uow, userId, orgId, sessionId); err != nil {
		return nil, err
	}

	messages, err := uow.ChatMessageRepository().FindAllBySession(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.MessageResponse, 0, len(messages))
	for _, msg := range messages {
		items = append(items, messageToResponse(msg))
	}
	return &dto.GetMessagesResponse{Messages: items}, nil
}

func (s *chatService) SendChat(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if _, err := s.findOwnedSession(ctx, uow, userId, req.OrganizationId, req.ChatSessionId); err != nil {
		return nil, err
	}

	baseline, err := uow.ChatMessageRepository().CountBySession(ctx, req.ChatSessionId)
	if err != nil {
		return nil, err
	}

	history, err := uow.ChatMessageRepository().FindAllBySession(ctx, req.ChatSessionId)
	if err != nil {
		return nil, err
	}

	// Retrieval is best effort: a turn without citations beats no turn.
	var sources []chatcontent.Source
	var docs []retrieval.Document
	if s.retriever != nil {
		docs, err = s.retriever.Retrieve(ctx, req.OrganizationId, req.Prompt, retrieveLimit)
		if err != nil {
			s.logger.Warn("ChatService", "Document retrieval failed", map[string]interface{}{
				"chat_session_id": req.ChatSessionId,
				"error":           err.Error(),
			})
			docs = nil
		}
		for _, doc := range docs {
			sources = append(sources, chatcontent.Source{
				DocumentId: doc.Id.String(),
				Title:      doc.Title,
				URL:        doc.URL,
			})
		}
	}

	llmHistory := buildLLMHistory(history, docs, req.Prompt)

	reply, err := s.llmProvider.ChatStream(ctx, llmHistory, func(delta string) error {
		s.hub.Send(userId, internalWS.NewDeltaFrame(req.ChatSessionId, delta))
		return nil
	})
	if err != nil {
		// Nothing is persisted for an aborted stream; the view settles
		// with an empty assistant message.
		s.hub.Send(userId, internalWS.NewFailedFrame(req.ChatSessionId))
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("chat generation failed: %w", err)
	}

	userMsg := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: req.ChatSessionId,
		Role:          constant.ChatMessageRoleUser,
		Parts:         []chatcontent.Part{chatcontent.TextPart(req.Prompt)},
		CreatedAt:     time.Now(),
	}
	assistantMsg := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: req.ChatSessionId,
		Role:          constant.ChatMessageRoleAssistant,
		Parts:         []chatcontent.Part{chatcontent.TextPart(reply)},
		CreatedAt:     time.Now(),
	}
	if len(sources) > 0 {
		assistantMsg.Metadata = &chatcontent.Metadata{Sources: sources}
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().CreateBatch(ctx, []*entity.ChatMessage{userMsg, assistantMsg}); err != nil {
		return nil, err
	}
	if err := uow.ChatSessionRepository().Touch(ctx, req.ChatSessionId); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.hub.Send(userId, internalWS.NewSettledFrame(req.ChatSessionId, assistantMsg.Id))
	s.publishTurnCompleted(ctx, req.ChatSessionId, userId, baseline == 0, req.Prompt)

	return &dto.SendChatResponse{
		ChatSessionId: req.ChatSessionId,
		Sent:          messageToResponse(userMsg),
		Reply:         messageToResponse(assistantMsg),
	}, nil
}

func (s *chatService) StageDraft(ctx context.Context, userId uuid.UUID, req *dto.StageDraftRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.findOwnedSession(ctx, uow, userId, req.OrganizationId, req.ChatSessionId); err != nil {
		return err
	}
	s.draftRepo.Stage(req.ChatSessionId, req.Text)
	return nil
}

func (s *chatService) TakeDraft(ctx context.Context, userId uuid.UUID, orgId uuid.UUID, sessionId uuid.UUID) (*dto.TakeDraftResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.findOwnedSession(ctx, uow, userId, orgId, sessionId); err != nil {
		return nil, err
	}
	text, found := s.draftRepo.Take(sessionId)
	return &dto.TakeDraftResponse{Text: text, Found: found}, nil
}

// findOwnedSession resolves a session under the three-way ownership filter.
// A row that exists but belongs to someone else reads as not found.
func (s *chatService) findOwnedSession(ctx context.Context, uow unitofwork.UnitOfWork, userId, orgId, sessionId uuid.UUID) (*entity.ChatSession, error) {
	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.OwnedBy{OrganizationID: orgId, UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.NotFound("chat session not found")
	}
	return session, nil
}

func (s *chatService) publishTurnCompleted(ctx context.Context, sessionId, userId uuid.UUID, firstTurn bool, prompt string) {
	// Both publications are auxiliary; the turn is already durable.
	if s.publisherService != nil {
		payload, err := json.Marshal(dto.TurnCompletedMessage{
			ChatSessionId: sessionId,
			UserId:        userId,
			FirstTurn:     firstTurn,
			Prompt:        prompt,
		})
		if err == nil {
			if err := s.publisherService.Publish(ctx, payload); err != nil {
				s.logger.Warn("ChatService", "Turn-completed bus publish failed", map[string]interface{}{"error": err.Error()})
			}
		}
	}

	if s.eventPublisher != nil {
		evt := events.NewTurnCompleted(sessionId, userId, firstTurn, prompt)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("ChatService", "Turn-completed event publish failed", map[string]interface{}{"error": err.Error()})
		}
	}
}

// buildLLMHistory flattens stored messages into the provider's shape and
// appends the new prompt, prefixed with retrieved document context when
// there is any.
func buildLLMHistory(history []*entity.ChatMessage, docs []retrieval.Document, prompt string) []llm.Message {
	out := make([]llm.Message, 0, len(history)+2)

	if len(docs) > 0 {
		var b strings.Builder
		b.WriteString("Answer using the following document excerpts when relevant. Cite by title.\n")
		for _, doc := range docs {
			b.WriteString("\n## ")
			b.WriteString(doc.Title)
			b.WriteString("\n")
			b.WriteString(doc.Chunk)
			b.WriteString("\n")
		}
		out = append(out, llm.Message{Role: constant.ChatMessageRoleSystem, Content: b.String()})
	}

	for _, msg := range history {
		text := chatcontent.JoinText(msg.Parts)
		if text == "" {
			continue
		}
		out = append(out, llm.Message{Role: msg.Role, Content: text})
	}

	out = append(out, llm.Message{Role: constant.ChatMessageRoleUser, Content: prompt})
	return out
}

func sessionToResponse(session *entity.ChatSession) *dto.SessionResponse {
	return &dto.SessionResponse{
		Id:             session.Id,
		OrganizationId: session.OrganizationId,
		Title:          session.Title,
		CreatedAt:      session.CreatedAt,
		UpdatedAt:      session.UpdatedAt,
	}
}

func messageToResponse(msg *entity.ChatMessage) *dto.MessageResponse {
	return &dto.MessageResponse{
		Id:        msg.Id,
		Role:      msg.Role,
		Parts:     msg.Parts,
		Metadata:  msg.Metadata,
		CreatedAt: msg.CreatedAt,
	}
}
