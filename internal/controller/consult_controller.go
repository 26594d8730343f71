package controller

import (
	"ai-consultancy-be/internal/dto"
	"ai-consultancy-be/internal/pkg/serverutils"
	"ai-consultancy-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IConsultController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	ShowSession(ctx *fiber.Ctx) error
	GetAllSessions(ctx *fiber.Ctx) error
	SendChat(ctx *fiber.Ctx) error
}

type consultController struct {
	service service.IConsultService
}

func NewConsultController(service service.IConsultService) IConsultController {
	return &consultController{service: service}
}

func (c *consultController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/consult/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("/sessions", c.GetAllSessions)
	h.Post("/session", c.CreateSession)
	h.Get("/session/:id", c.ShowSession)
	h.Post("/chat", c.SendChat)
}

func (c *consultController) CreateSession(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.service.CreateSession(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *consultController) ShowSession(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	id, _ := uuid.Parse(ctx.Params("id"))

	res, err := c.service.GetSession(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show session", res))
}

func (c *consultController) GetAllSessions(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.service.GetAllSessions(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all sessions", res))
}

func (c *consultController) SendChat(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SendChat(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success process chat", res))
}
