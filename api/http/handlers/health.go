package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/blog/pkg/health"
)

const readyTimeout = 2 * time.Second

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct{ svc health.ReadinessUseCase }

func NewHealthHandler(svc health.ReadinessUseCase) *HealthHandler { return &HealthHandler{svc: svc} }

type probeResponse struct {
	Status  string `json:"status"`
	Details string `json:"details,omitempty"`
}

// Health reports that the process is up.
// @Summary Liveness probe
// @Tags    health
// @Produce json
// @Success 200 {object} probeResponse
// @Router  /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(probeResponse{Status: "ok"})
}

// Ready pings every storage dependency; details name the first one that failed.
// @Summary Readiness probe
// @Tags    health
// @Produce json
// @Success 200 {object} probeResponse
// @Failure 503 {object} probeResponse
// @Router  /ready [get]
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readyTimeout)
	defer cancel()
	if err := h.svc.Ready(ctx); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(probeResponse{Status: "not_ready", Details: err.Error()})
	}
	return c.Status(fiber.StatusOK).JSON(probeResponse{Status: "ready"})
}
