package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clsllc/landscaping-site/backend/internal/diagnostics"
	"github.com/clsllc/landscaping-site/backend/internal/localstore"
	"github.com/clsllc/landscaping-site/backend/internal/store"
	"github.com/clsllc/landscaping-site/backend/validators"
)

// newLocalAPI spins up the full route tree against local-mode stores.
func newLocalAPI(t *testing.T) *echo.Echo {
	t.Helper()

	diag := diagnostics.NewService(slog.New(slog.NewTextHandler(io.Discard, nil)))
	local := localstore.NewMemoryStore()

	gallery := store.NewGalleryStore(nil, local, diag)
	community := store.NewCommunityStore(nil, local, diag)
	content := store.NewContentStore(nil, local, diag)
	gallery.Start(context.Background())
	community.Start(context.Background())
	content.Start(context.Background())

	e := echo.New()
	e.Validator = validators.NewValidator()
	api := e.Group("/api/v1")
	NewGalleryHandler(gallery).RegisterGalleryRoutes(api)
	NewCommunityHandler(community).RegisterCommunityRoutes(api)
	NewContentHandler(content).RegisterContentRoutes(api)
	NewDiagnosticsHandler(diag).RegisterDiagnosticsRoutes(api)
	e.GET("/health", NewHealthHandler(nil).Check)
	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestGalleryListReturnsDefaults(t *testing.T) {
	e := newLocalAPI(t)

	rec := doJSON(e, http.MethodGet, "/api/v1/gallery", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Projects  []map[string]any `json:"projects"`
		IsLive    bool             `json:"isLive"`
		IsLoading bool             `json:"isLoading"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.IsLive)
	assert.False(t, body.IsLoading)
	assert.Len(t, body.Projects, 4)
	assert.Equal(t, "Modern Stone Patio", body.Projects[0]["title"])
}

func TestGalleryCreateThenDelete(t *testing.T) {
	e := newLocalAPI(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/gallery",
		`{"id":"1700000001-a","category":"decks","title":"Cedar Deck","imageUrl":"https://example.com/deck.jpg"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(e, http.MethodGet, "/api/v1/gallery", "")
	var body struct {
		Projects []map[string]any `json:"projects"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Projects, 5)
	assert.Equal(t, "Cedar Deck", body.Projects[0]["title"])

	rec = doJSON(e, http.MethodDelete, "/api/v1/gallery/1700000001-a", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGalleryCreateRejectsUnknownCategory(t *testing.T) {
	e := newLocalAPI(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/gallery",
		`{"id":"a","category":"lava","title":"Volcano"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGallerySeedConflictsInLocalMode(t *testing.T) {
	e := newLocalAPI(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/gallery/seed", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCommunityPostCommentReaction(t *testing.T) {
	e := newLocalAPI(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/posts",
		`{"id":"1700000001-p","author":"Dana","date":"01/05/2026","content":"New pergola finished!"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/v1/posts/1700000001-p/comments",
		`{"id":"c1","author":"Lee","date":"01/06/2026","content":"Stunning work."}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/v1/posts/1700000001-p/reactions", `{"emoji":"❤️"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Reactions map[string]string `json:"reactions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "❤️", body.Reactions["1700000001-p"])
}

func TestCommunityCommentOnMissingPost(t *testing.T) {
	e := newLocalAPI(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/posts/missing/comments",
		`{"id":"c1","author":"Lee","date":"01/06/2026","content":"Hello?"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContentUpdateAndList(t *testing.T) {
	e := newLocalAPI(t)

	rec := doJSON(e, http.MethodPut, "/api/v1/content/hero",
		`{"url":"https://example.com/hero.jpg"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodGet, "/api/v1/content", "")
	var body struct {
		Images map[string]string `json:"images"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "https://example.com/hero.jpg", body.Images["hero"])
}

func TestDiagnosticsListAndClear(t *testing.T) {
	e := newLocalAPI(t)

	rec := doJSON(e, http.MethodGet, "/api/v1/diagnostics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Entries []map[string]any `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Entries)

	rec = doJSON(e, http.MethodDelete, "/api/v1/diagnostics", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHealthReportsLocalMode(t *testing.T) {
	e := newLocalAPI(t)

	rec := doJSON(e, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Mode   string `json:"mode"`
		Checks struct {
			Store struct {
				Status string `json:"status"`
			} `json:"store"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "local", body.Mode)
	assert.Equal(t, "error", body.Checks.Store.Status)
}
