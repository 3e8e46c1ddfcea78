package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/clsllc/landscaping-site/backend/internal/diagnostics"
	"github.com/clsllc/landscaping-site/backend/internal/gateway"
	"github.com/clsllc/landscaping-site/backend/internal/localstore"
	"github.com/clsllc/landscaping-site/backend/internal/models"
)

const testDataURI = "data:image/png;base64,iVBORw0KGgo="

func testDiag() *diagnostics.Service {
	return diagnostics.NewService(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newLiveGallery(t *testing.T) (*GalleryStore, *fakeRemote) {
	t.Helper()
	remote := newFakeRemote()
	s := NewGalleryStore(remote, localstore.NewMemoryStore(), testDiag())
	s.Start(context.Background())
	t.Cleanup(s.Close)
	remote.push(galleryCollection, nil)
	return s, remote
}

func TestGalleryLiveAddKeepsPendingUntilConfirmed(t *testing.T) {
	s, remote := newLiveGallery(t)

	added := models.GalleryItem{
		ID:       "1700000001-a",
		Category: models.CategoryHardscape,
		Title:    "Patio",
		ImageURL: testDataURI,
	}
	require.NoError(t, s.AddProject(context.Background(), added, nil))

	doc, ok := remote.document(galleryCollection, added.ID)
	require.True(t, ok)
	assert.Contains(t, doc["imageUrl"], "firebasestorage.googleapis.com")

	// The write landed but the subscription has not echoed it yet, so the
	// item is still the optimistic overlay entry.
	projects := s.Projects()
	require.Len(t, projects, 1)
	assert.True(t, projects[0].Pending)

	remote.push(galleryCollection, []gateway.Document{{ID: added.ID, Data: doc}})

	projects = s.Projects()
	require.Len(t, projects, 1)
	assert.False(t, projects[0].Pending)
	assert.Equal(t, "Patio", projects[0].Item.Title)
}

func TestGalleryAddFailureStaysVisibleAndRetries(t *testing.T) {
	s, remote := newLiveGallery(t)
	remote.upsertErr = errors.New("quota exceeded")

	added := models.GalleryItem{ID: "1700000001-a", Category: models.CategoryDecks, Title: "Deck"}
	err := s.AddProject(context.Background(), added, nil)
	require.Error(t, err)

	projects := s.Projects()
	require.Len(t, projects, 1)
	assert.Contains(t, projects[0].Err, "quota exceeded")
	assert.False(t, projects[0].Pending)

	remote.upsertErr = nil
	require.NoError(t, s.RetryFailed(context.Background(), nil))

	_, ok := remote.document(galleryCollection, added.ID)
	assert.True(t, ok)
	projects = s.Projects()
	require.Len(t, projects, 1)
	assert.Empty(t, projects[0].Err)
}

func TestGallerySubscriptionDeniedFallsBackToLocal(t *testing.T) {
	s, remote := newLiveGallery(t)

	remote.fail(galleryCollection, status.Error(codes.PermissionDenied, "denied"))

	assert.False(t, s.IsLive())
	assert.False(t, s.IsLoading())

	// No local snapshot exists, so the defaults take over.
	projects := s.Projects()
	require.Len(t, projects, len(defaultProjects))
	assert.Equal(t, defaultProjects[0].ID, projects[0].Item.ID)
}

func TestGalleryWriteDeniedDemotes(t *testing.T) {
	s, remote := newLiveGallery(t)
	remote.upsertErr = status.Error(codes.PermissionDenied, "denied")

	err := s.AddProject(context.Background(), models.GalleryItem{ID: "a", Title: "x", Category: models.CategoryPools}, nil)
	require.Error(t, err)
	assert.False(t, s.IsLive())
}

func TestGalleryLocalAddSurvivesRestart(t *testing.T) {
	local := localstore.NewMemoryStore()
	s := NewGalleryStore(nil, local, testDiag())
	s.Start(context.Background())

	added := models.GalleryItem{
		ID:       "1700000001-a",
		Category: models.CategoryHardscape,
		Title:    "Walkway",
		ImageURL: testDataURI,
	}
	require.NoError(t, s.AddProject(context.Background(), added, nil))

	projects := s.Projects()
	require.Len(t, projects, len(defaultProjects)+1)
	assert.Equal(t, "Walkway", projects[0].Item.Title)
	assert.False(t, projects[0].Pending)

	reopened := NewGalleryStore(nil, local, testDiag())
	reopened.Start(context.Background())
	projects = reopened.Projects()
	require.Len(t, projects, len(defaultProjects)+1)
	assert.Equal(t, "Walkway", projects[0].Item.Title)
}

func TestGalleryBatchReportsMeanProgress(t *testing.T) {
	s, _ := newLiveGallery(t)

	items := []models.GalleryItem{
		{ID: "1700000001-a", Category: models.CategoryDecks, Title: "one", ImageURL: testDataURI},
		{ID: "1700000002-b", Category: models.CategoryDecks, Title: "two", ImageURL: testDataURI},
	}

	var progress []float64
	require.NoError(t, s.AddProjects(context.Background(), items, func(p float64) {
		progress = append(progress, p)
	}))

	require.NotEmpty(t, progress)
	assert.Equal(t, float64(100), progress[len(progress)-1])
	assert.Contains(t, progress, float64(50))
	for i := 1; i < len(progress); i++ {
		assert.GreaterOrEqual(t, progress[i], progress[i-1])
	}
}

func TestGalleryBatchPartialFailureKeepsGoing(t *testing.T) {
	s, remote := newLiveGallery(t)
	remote.uploadErr = errors.New("network down")

	items := []models.GalleryItem{
		{ID: "1700000001-a", Category: models.CategoryDecks, Title: "raw", ImageURL: testDataURI},
		{ID: "1700000002-b", Category: models.CategoryDecks, Title: "linked", ImageURL: "https://example.com/done.jpg"},
	}
	err := s.AddProjects(context.Background(), items, nil)
	require.Error(t, err)

	// The second item needed no upload and landed despite the first failing.
	_, ok := remote.document(galleryCollection, "1700000002-b")
	assert.True(t, ok)

	projects := s.Projects()
	var failed *Extended[models.GalleryItem]
	for i := range projects {
		if projects[i].Item.ID == "1700000001-a" {
			failed = &projects[i]
		}
	}
	require.NotNil(t, failed)
	assert.Contains(t, failed.Err, "network down")
}

func TestGalleryVideoUploadsRouteToVideoFolder(t *testing.T) {
	s, remote := newLiveGallery(t)

	added := models.GalleryItem{
		ID:             "1700000001-a",
		Category:       models.CategoryPools,
		Title:          "Pool build",
		ImageURL:       testDataURI,
		VideoURL:       "https://example.com/build.mp4",
		VideoThumbnail: testDataURI,
	}
	require.NoError(t, s.AddProject(context.Background(), added, nil))

	assert.Equal(t, []string{"videos", "uploads"}, remote.uploads)
}

func TestGalleryDeleteDismissesErroredPending(t *testing.T) {
	s, remote := newLiveGallery(t)
	remote.upsertErr = errors.New("boom")

	require.Error(t, s.AddProject(context.Background(), models.GalleryItem{ID: "a", Title: "x", Category: models.CategoryDecks}, nil))
	require.NoError(t, s.DeleteProject(context.Background(), "a"))

	assert.Empty(t, s.Projects())
	assert.Empty(t, remote.removals)
}

func TestGalleryResetRejectedWhileLive(t *testing.T) {
	s, _ := newLiveGallery(t)
	assert.ErrorIs(t, s.ResetGallery(), ErrLiveMode)
}

func TestGallerySeedRejectedWhileLocal(t *testing.T) {
	s := NewGalleryStore(nil, localstore.NewMemoryStore(), testDiag())
	s.Start(context.Background())
	assert.ErrorIs(t, s.SeedCloudData(context.Background()), ErrLocalMode)
}

func TestGalleryImportThenResetRestoresDefaults(t *testing.T) {
	local := localstore.NewMemoryStore()
	s := NewGalleryStore(nil, local, testDiag())
	s.Start(context.Background())

	imported := []models.GalleryItem{
		{ID: "imp-1", Category: models.CategoryDemolition, Title: "Teardown", ImageURL: "https://example.com/a.jpg"},
	}
	require.NoError(t, s.ImportGallery(context.Background(), imported))
	require.Len(t, s.Projects(), len(defaultProjects)+1)

	require.NoError(t, s.ResetGallery())
	projects := s.Projects()
	require.Len(t, projects, len(defaultProjects))
	assert.Equal(t, defaultProjects[0].ID, projects[0].Item.ID)

	_, ok, err := local.Get(galleryStorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGallerySeedPushesDefaults(t *testing.T) {
	s, remote := newLiveGallery(t)
	require.NoError(t, s.SeedCloudData(context.Background()))
	for _, item := range defaultProjects {
		_, ok := remote.document(galleryCollection, item.ID)
		assert.True(t, ok, item.ID)
	}
}
