package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clsllc/landscaping-site/backend/internal/models"
	"github.com/clsllc/landscaping-site/backend/internal/store"
)

// CommunityHandler handles HTTP requests for the community board.
type CommunityHandler struct {
	community *store.CommunityStore
}

// NewCommunityHandler creates a new CommunityHandler.
func NewCommunityHandler(community *store.CommunityStore) *CommunityHandler {
	return &CommunityHandler{community: community}
}

// RegisterCommunityRoutes registers community board routes.
func (h *CommunityHandler) RegisterCommunityRoutes(g *echo.Group) {
	g.GET("/posts", h.ListPosts)
	g.POST("/posts", h.CreatePost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.POST("/posts/:id/comments", h.AddComment)
	g.POST("/posts/:id/reactions", h.ToggleReaction)
	g.GET("/posts/reactions", h.UserReactions)
	g.POST("/posts/retry", h.RetryFailed)
	g.POST("/posts/import", h.ImportPosts)
	g.POST("/posts/reset", h.ResetPosts)
	g.POST("/posts/seed", h.SeedCloudData)
}

// ListPosts returns the visible board, pending posts included.
func (h *CommunityHandler) ListPosts(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"posts":     h.community.Posts(),
		"isLive":    h.community.IsLive(),
		"isLoading": h.community.IsLoading(),
	})
}

// CreatePost publishes a post, uploading any embedded media first.
func (h *CommunityHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.community.AddPost(c.Request().Context(), req.Post(), nil); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.NoContent(http.StatusCreated)
}

// DeletePost removes a post or dismisses a failed pending one.
func (h *CommunityHandler) DeletePost(c echo.Context) error {
	if err := h.community.DeletePost(c.Request().Context(), c.Param("id")); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// AddComment appends a comment to a post.
func (h *CommunityHandler) AddComment(c echo.Context) error {
	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	comment := models.Comment{ID: req.ID, Author: req.Author, Date: req.Date, Content: req.Content}
	if err := h.community.AddComment(c.Request().Context(), c.Param("id"), comment); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.NoContent(http.StatusCreated)
}

// ToggleReaction flips the caller's reaction on a post.
func (h *CommunityHandler) ToggleReaction(c echo.Context) error {
	var req models.ToggleReactionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.community.ToggleReaction(c.Request().Context(), c.Param("id"), req.Emoji); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"reactions": h.community.UserReactions()})
}

// UserReactions returns the caller's active reaction per post.
func (h *CommunityHandler) UserReactions(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"reactions": h.community.UserReactions()})
}

// RetryFailed re-attempts every errored pending post.
func (h *CommunityHandler) RetryFailed(c echo.Context) error {
	if err := h.community.RetryFailed(c.Request().Context(), nil); err != nil {
		return c.JSON(http.StatusMultiStatus, map[string]any{
			"error": err.Error(),
			"posts": h.community.Posts(),
		})
	}
	return c.NoContent(http.StatusOK)
}

// ImportPosts merges a backup into the board.
func (h *CommunityHandler) ImportPosts(c echo.Context) error {
	var req struct {
		Posts []models.CreatePostRequest `json:"posts" validate:"required,min=1,dive"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	posts := make([]models.Post, 0, len(req.Posts))
	for _, r := range req.Posts {
		posts = append(posts, r.Post())
	}

	if err := h.community.ImportPosts(c.Request().Context(), posts); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.NoContent(http.StatusOK)
}

// ResetPosts restores the default board; rejected while live.
func (h *CommunityHandler) ResetPosts(c echo.Context) error {
	if err := h.community.ResetPosts(); err != nil {
		if errors.Is(err, store.ErrLiveMode) {
			return echo.NewHTTPError(http.StatusConflict, "Manual delete required in live mode.")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusOK)
}

// SeedCloudData pushes the default posts to the backend.
func (h *CommunityHandler) SeedCloudData(c echo.Context) error {
	if err := h.community.SeedCloudData(c.Request().Context()); err != nil {
		if errors.Is(err, store.ErrLocalMode) {
			return echo.NewHTTPError(http.StatusConflict, "Seeding requires live mode.")
		}
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.NoContent(http.StatusCreated)
}
