package controller

import (
	"docchat-be/internal/dto"
	"docchat-be/internal/pkg/apperror"
	"docchat-be/internal/pkg/serverutils"
	"docchat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	ListSessions(ctx *fiber.Ctx) error
	GetSession(ctx *fiber.Ctx) error
	UpdateSessionTitle(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	GetMessages(ctx *fiber.Ctx) error
	SendChat(ctx *fiber.Ctx) error
	StageDraft(ctx *fiber.Ctx) error
	TakeDraft(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Use(serverutils.OrgMiddleware)
	h.Post("sessions", c.CreateSession)
	h.Get("sessions", c.ListSessions)
	h.Get("sessions/:id", c.GetSession)
	h.Put("sessions/:id", c.UpdateSessionTitle)
	h.Delete("sessions/:id", c.DeleteSession)
	h.Get("sessions/:id/messages", c.GetMessages)
	h.Post("sessions/:id/messages", c.SendChat)
	h.Post("sessions/:id/draft", c.StageDraft)
	h.Delete("sessions/:id/draft", c.TakeDraft)
}

func (c *chatController) CreateSession(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	orgId, err := serverutils.OrganizationID(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation(map[string]string{"body": "malformed request body"})
	}
	req.OrganizationId = orgId

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.CreateSession(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create chat session", res))
}

func (c *chatController) ListSessions(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}
	orgId, err := serverutils.OrganizationID(ctx)
	if err != nil {
		return err
	}

	req := dto.ListSessionsRequest{
		OrganizationId: orgId,
		Page:           ctx.QueryInt("page", 0),
		PageSize:       ctx.QueryInt("page_size", 0),
	}
	req.ApplyDefaults()

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.ListSessions(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list chat sessions", res))
}

func (c *chatController) GetSession(ctx *fiber.Ctx) error {
	userId, orgId, sessionId, err := c.scope(ctx)
	if err != nil {
		return err
	}

	res, err := c.chatService.GetSession(ctx.Context(), userId, orgId, sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chat session", res))
}

func (c *chatController) UpdateSessionTitle(ctx *fiber.Ctx) error {
	userId, orgId, sessionId, err := c.scope(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateSessionTitleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation(map[string]string{"body": "malformed request body"})
	}
	req.ChatSessionId = sessionId
	req.OrganizationId = orgId

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.chatService.UpdateSessionTitle(ctx.Context(), userId, &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update chat session", nil))
}

func (c *chatController) DeleteSession(ctx *fiber.Ctx) error {
	userId, orgId, sessionId, err := c.scope(ctx)
	if err != nil {
		return err
	}

	if err := c.chatService.DeleteSession(ctx.Context(), userId, orgId, sessionId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete chat session", nil))
}

func (c *chatController) GetMessages(ctx *fiber.Ctx) error {
	userId, orgId, sessionId, err := c.scope(ctx)
	if err != nil {
		return err
	}

	res, err := c.chatService.GetMessages(ctx.Context(), userId, orgId, sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chat messages", res))
}

func (c *chatController) SendChat(ctx *fiber.Ctx) error {
	userId, orgId, sessionId, err := c.scope(ctx)
	if err != nil {
		return err
	}

	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation(map[string]string{"body": "malformed request body"})
	}
	req.ChatSessionId = sessionId
	req.OrganizationId = orgId

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.SendChat(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send chat", res))
}

func (c *chatController) StageDraft(ctx *fiber.Ctx) error {
	userId, orgId, sessionId, err := c.scope(ctx)
	if err != nil {
		return err
	}

	var req dto.StageDraftRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.Validation(map[string]string{"body": "malformed request body"})
	}
	req.ChatSessionId = sessionId
	req.OrganizationId = orgId

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.chatService.StageDraft(ctx.Context(), userId, &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success stage draft", nil))
}

// TakeDraft consumes the staged opening draft; the slot is empty afterwards.
func (c *chatController) TakeDraft(ctx *fiber.Ctx) error {
	userId, orgId, sessionId, err := c.scope(ctx)
	if err != nil {
		return err
	}

	res, err := c.chatService.TakeDraft(ctx.Context(), userId, orgId, sessionId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success take draft", res))
}

// scope pulls the authenticated user, organization, and path session id.
func (c *chatController) scope(ctx *fiber.Ctx) (userId, orgId, sessionId uuid.UUID, err error) {
	userId, err = serverutils.UserID(ctx)
	if err != nil {
		return
	}
	orgId, err = serverutils.OrganizationID(ctx)
	if err != nil {
		return
	}
	sessionId, err = uuid.Parse(ctx.Params("id"))
	if err != nil {
		err = apperror.Validation(map[string]string{"id": "must be a valid uuid"})
	}
	return
}
