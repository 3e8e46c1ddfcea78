package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clsllc/landscaping-site/backend/internal/models"
	"github.com/clsllc/landscaping-site/backend/internal/store"
)

// GalleryHandler handles HTTP requests for the project gallery.
type GalleryHandler struct {
	gallery *store.GalleryStore
}

// NewGalleryHandler creates a new GalleryHandler.
func NewGalleryHandler(gallery *store.GalleryStore) *GalleryHandler {
	return &GalleryHandler{gallery: gallery}
}

// RegisterGalleryRoutes registers gallery routes.
func (h *GalleryHandler) RegisterGalleryRoutes(g *echo.Group) {
	g.GET("/gallery", h.ListProjects)
	g.POST("/gallery", h.CreateProject)
	g.POST("/gallery/batch", h.CreateProjects)
	g.PUT("/gallery/:id", h.UpdateProject)
	g.DELETE("/gallery/:id", h.DeleteProject)
	g.POST("/gallery/retry", h.RetryFailed)
	g.POST("/gallery/import", h.ImportGallery)
	g.POST("/gallery/reset", h.ResetGallery)
	g.POST("/gallery/seed", h.SeedCloudData)
}

// ListProjects returns the visible gallery, pending uploads included.
func (h *GalleryHandler) ListProjects(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"projects":  h.gallery.Projects(),
		"isLive":    h.gallery.IsLive(),
		"isLoading": h.gallery.IsLoading(),
	})
}

// CreateProject adds a single project.
func (h *GalleryHandler) CreateProject(c echo.Context) error {
	var req models.CreateGalleryItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.gallery.AddProject(c.Request().Context(), req.Item(), nil); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.NoContent(http.StatusCreated)
}

// CreateProjects adds a batch of projects. Individual failures stay visible
// as errored pending entries; the response reports them without discarding
// the successes.
func (h *GalleryHandler) CreateProjects(c echo.Context) error {
	var req models.CreateGalleryBatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	items := make([]models.GalleryItem, 0, len(req.Items))
	for _, r := range req.Items {
		items = append(items, r.Item())
	}

	if err := h.gallery.AddProjects(c.Request().Context(), items, nil); err != nil {
		return c.JSON(http.StatusMultiStatus, map[string]any{
			"error":    err.Error(),
			"projects": h.gallery.Projects(),
		})
	}
	return c.NoContent(http.StatusCreated)
}

// UpdateProject replaces an existing project.
func (h *GalleryHandler) UpdateProject(c echo.Context) error {
	var req models.CreateGalleryItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	req.ID = c.Param("id")
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.gallery.UpdateProject(c.Request().Context(), req.Item()); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.NoContent(http.StatusOK)
}

// DeleteProject removes a project or dismisses a failed pending upload.
func (h *GalleryHandler) DeleteProject(c echo.Context) error {
	if err := h.gallery.DeleteProject(c.Request().Context(), c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// RetryFailed re-attempts every errored pending upload.
func (h *GalleryHandler) RetryFailed(c echo.Context) error {
	if err := h.gallery.RetryFailed(c.Request().Context(), nil); err != nil {
		return c.JSON(http.StatusMultiStatus, map[string]any{
			"error":    err.Error(),
			"projects": h.gallery.Projects(),
		})
	}
	return c.NoContent(http.StatusOK)
}

// ImportGallery merges a backup into the gallery.
func (h *GalleryHandler) ImportGallery(c echo.Context) error {
	var req models.CreateGalleryBatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	items := make([]models.GalleryItem, 0, len(req.Items))
	for _, r := range req.Items {
		items = append(items, r.Item())
	}

	if err := h.gallery.ImportGallery(c.Request().Context(), items); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.NoContent(http.StatusOK)
}

// ResetGallery restores the defaults; rejected while live.
func (h *GalleryHandler) ResetGallery(c echo.Context) error {
	if err := h.gallery.ResetGallery(); err != nil {
		if errors.Is(err, store.ErrLiveMode) {
			return echo.NewHTTPError(http.StatusConflict, "Manual delete required in live mode.")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusOK)
}

// SeedCloudData pushes the default projects to the backend.
func (h *GalleryHandler) SeedCloudData(c echo.Context) error {
	if err := h.gallery.SeedCloudData(c.Request().Context()); err != nil {
		if errors.Is(err, store.ErrLocalMode) {
			return echo.NewHTTPError(http.StatusConflict, "Seeding requires live mode.")
		}
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.NoContent(http.StatusCreated)
}
