package handler

import (
	"os"

	"ai-consultancy-be/internal/pkg/logger"
	"ai-consultancy-be/internal/service"
	internalWS "ai-consultancy-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// FeedHandler upgrades browser connections onto the session change
// feed. A connection watches exactly one session, named by the
// session_id query param.
type FeedHandler struct {
	service service.IConsultService
	hub     *internalWS.Hub
	logger  logger.ILogger
}

func NewFeedHandler(svc service.IConsultService, hub *internalWS.Hub, log logger.ILogger) *FeedHandler {
	return &FeedHandler{
		service: svc,
		hub:     hub,
		logger:  log,
	}
}

func (h *FeedHandler) ServeWs(c *fiber.Ctx) error {
	// Browsers cannot set headers on websocket handshakes, so the token
	// arrives as a query param. Tooling may still use the header.
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token (query 'token' or Authorization header)"})
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		h.logger.Warn("FeedHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
	}
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token missing user_id"})
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID format in token"})
	}

	sessionID, err := uuid.Parse(c.Query("session_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Query param 'session_id' must be a valid uuid"})
	}

	// Ownership check before the upgrade. The service returns a
	// not-found error for sessions belonging to someone else.
	if _, err := h.service.GetSession(c.Context(), userID, sessionID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("FeedHandler", "Starting feed session", map[string]interface{}{
				"user_id":    userID,
				"session_id": sessionID,
			})
			internalWS.ServeWs(h.hub, conn, userID, sessionID)
			h.logger.Info("FeedHandler", "Feed session ended", map[string]interface{}{
				"user_id":    userID,
				"session_id": sessionID,
			})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *FeedHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/consult/v1/ws", h.ServeWs)
}
