package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clsllc/landscaping-site/backend/internal/diagnostics"
)

// DiagnosticsHandler exposes the in-memory event log to the debug panel.
type DiagnosticsHandler struct {
	diag *diagnostics.Service
}

// NewDiagnosticsHandler creates a new DiagnosticsHandler.
func NewDiagnosticsHandler(diag *diagnostics.Service) *DiagnosticsHandler {
	return &DiagnosticsHandler{diag: diag}
}

// RegisterDiagnosticsRoutes registers diagnostics routes.
func (h *DiagnosticsHandler) RegisterDiagnosticsRoutes(g *echo.Group) {
	g.GET("/diagnostics", h.ListEntries)
	g.DELETE("/diagnostics", h.Clear)
}

// ListEntries returns the full event log.
func (h *DiagnosticsHandler) ListEntries(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"entries": h.diag.Entries()})
}

// Clear drops all entries.
func (h *DiagnosticsHandler) Clear(c echo.Context) error {
	h.diag.Clear()
	return c.NoContent(http.StatusNoContent)
}
