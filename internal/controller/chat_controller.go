package controller

import (
	"contextllm-be/internal/dto"
	"contextllm-be/internal/pkg/serverutils"
	"contextllm-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Query(ctx *fiber.Ctx) error
	State(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
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
	h.Post("/query", c.Query)
	h.Get("/state", c.State)
	h.Post("/reset", c.Reset)
}

func (c *chatController) Query(ctx *fiber.Ctx) error {
	callerId, _ := ctx.Locals("caller_id").(string)

	var req dto.QueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.Query(ctx.Context(), callerId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success process query", res))
}

func (c *chatController) State(ctx *fiber.Ctx) error {
	callerId, _ := ctx.Locals("caller_id").(string)

	res := c.chatService.State(callerId)
	return ctx.JSON(serverutils.SuccessResponse("Conversation state", res))
}

func (c *chatController) Reset(ctx *fiber.Ctx) error {
	callerId, _ := ctx.Locals("caller_id").(string)

	c.chatService.Reset(callerId)
	return ctx.JSON(serverutils.SuccessResponse("Conversation state reset", nil))
}
