package controller

import (
	"ai-consultancy-be/internal/dto"
	"ai-consultancy-be/internal/pkg/serverutils"
	"ai-consultancy-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	Anonymous(ctx *fiber.Ctx) error
}

type authController struct {
	service service.IAuthService
}

func NewAuthController(service service.IAuthService) IAuthController {
	return &authController{service: service}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth/v1")
	h.Post("/anonymous", c.Anonymous)
}

func (c *authController) Anonymous(ctx *fiber.Ctx) error {
	var req dto.AnonymousAuthRequest
	// Body is optional for fresh clients.
	_ = ctx.BodyParser(&req)

	res, err := c.service.Anonymous(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create anonymous identity", res))
}
