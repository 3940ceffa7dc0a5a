// Package v1 provides the read-only HTTP API over the durable store.
package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mvoloshin/exchange-bot/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	recorder *service.Recorder
}

// NewHandler creates a new handler.
func NewHandler(recorder *service.Recorder) *Handler {
	return &Handler{
		recorder: recorder,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.GET("/v1/users/:user_id/history", h.GetUserHistory)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// GetUserHistory returns a user's transactions, most recent first.
// GET /v1/users/:user_id/history
func (h *Handler) GetUserHistory(c echo.Context) error {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid user id"})
	}

	txs, err := h.recorder.History(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"count":        len(txs),
	})
}
