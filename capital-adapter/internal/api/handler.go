package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Checker-Finance/adapters/capital-adapter/internal/capital"
)

// CapitalService defines the session and read operations used by the handler.
type CapitalService interface {
	Authenticate(ctx context.Context) error
	Invalidate()
	IsAuthenticated() bool
	GetPositions(ctx context.Context) any
	GetOrders(ctx context.Context) any
	GetTopLevelMarketCategories(ctx context.Context) any
	PingSession(ctx context.Context) any
	GetServerTime(ctx context.Context) any
}

// CapitalHandler handles HTTP API requests for Capital.com operations.
type CapitalHandler struct {
	logger  *zap.Logger
	service CapitalService
}

// NewCapitalHandler creates a new CapitalHandler.
func NewCapitalHandler(logger *zap.Logger, service CapitalService) *CapitalHandler {
	return &CapitalHandler{
		logger:  logger,
		service: service,
	}
}

// Login authenticates the session with the configured credentials.
func (h *CapitalHandler) Login(c *fiber.Ctx) error {
	err := h.service.Authenticate(c.Context())
	switch {
	case err == nil:
		return c.SendStatus(fiber.StatusNoContent)
	case errors.Is(err, capital.ErrMissingCredentials):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		h.logger.Warn("capital.api.login_failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
}

// Logout drops the session tokens. It never calls the venue.
func (h *CapitalHandler) Logout(c *fiber.Ctx) error {
	h.service.Invalidate()
	return c.SendStatus(fiber.StatusNoContent)
}

// Positions returns the open positions of the session.
func (h *CapitalHandler) Positions(c *fiber.Ctx) error {
	return h.authenticated(c, h.service.GetPositions)
}

// Orders returns the working orders of the session.
func (h *CapitalHandler) Orders(c *fiber.Ctx) error {
	return h.authenticated(c, h.service.GetOrders)
}

// Markets returns the top-level market navigation nodes.
func (h *CapitalHandler) Markets(c *fiber.Ctx) error {
	return h.authenticated(c, h.service.GetTopLevelMarketCategories)
}

// Ping keeps the session alive.
func (h *CapitalHandler) Ping(c *fiber.Ctx) error {
	return h.authenticated(c, h.service.PingSession)
}

// ServerTime returns the venue clock. No session is needed.
func (h *CapitalHandler) ServerTime(c *fiber.Ctx) error {
	return c.JSON(h.service.GetServerTime(c.Context()))
}

func (h *CapitalHandler) authenticated(c *fiber.Ctx, get func(context.Context) any) error {
	if !h.service.IsAuthenticated() {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "session not authenticated"})
	}
	return c.JSON(get(c.Context()))
}
