package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clsllc/landscaping-site/backend/internal/gateway"
)

// HealthHandler exposes the backend connectivity probe.
type HealthHandler struct {
	gw *gateway.Gateway // nil in local mode
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(gw *gateway.Gateway) *HealthHandler {
	return &HealthHandler{gw: gw}
}

// Check runs the health probe. Without a configured gateway both sub-checks
// report error, which the admin page renders as demo mode.
func (h *HealthHandler) Check(c echo.Context) error {
	if h.gw == nil {
		return c.JSON(http.StatusOK, map[string]any{
			"mode": "local",
			"checks": gateway.HealthResult{
				Store: gateway.CheckStatus{Status: "error", Message: "Not initialized."},
				Blob:  gateway.CheckStatus{Status: "error", Message: "Storage unavailable."},
			},
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"mode":   "live",
		"checks": h.gw.HealthCheck(c.Request().Context()),
	})
}
