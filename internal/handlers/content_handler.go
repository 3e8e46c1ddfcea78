package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clsllc/landscaping-site/backend/internal/models"
	"github.com/clsllc/landscaping-site/backend/internal/store"
)

// ContentHandler handles HTTP requests for the named content image slots.
type ContentHandler struct {
	content *store.ContentStore
}

// NewContentHandler creates a new ContentHandler.
func NewContentHandler(content *store.ContentStore) *ContentHandler {
	return &ContentHandler{content: content}
}

// RegisterContentRoutes registers content routes.
func (h *ContentHandler) RegisterContentRoutes(g *echo.Group) {
	g.GET("/content", h.ListImages)
	g.PUT("/content/:key", h.UpdateImage)
	g.POST("/content/import", h.ImportContent)
	g.POST("/content/reset", h.ResetContent)
}

// ListImages returns the merged slot map.
func (h *ContentHandler) ListImages(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"images":    h.content.Images(),
		"isLive":    h.content.IsLive(),
		"isLoading": h.content.IsLoading(),
	})
}

// UpdateImage replaces the image in a slot.
func (h *ContentHandler) UpdateImage(c echo.Context) error {
	var req models.UpdateContentImageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.content.UpdateImage(c.Request().Context(), c.Param("key"), req.URL); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.NoContent(http.StatusOK)
}

// ImportContent merges a backup into the slot map.
func (h *ContentHandler) ImportContent(c echo.Context) error {
	var req models.ImportContentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.content.ImportContent(c.Request().Context(), req.Images); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.NoContent(http.StatusOK)
}

// ResetContent clears every slot; rejected while live.
func (h *ContentHandler) ResetContent(c echo.Context) error {
	if err := h.content.ResetContent(); err != nil {
		if errors.Is(err, store.ErrLiveMode) {
			return echo.NewHTTPError(http.StatusConflict, "Cannot reset global content in live mode.")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusOK)
}
