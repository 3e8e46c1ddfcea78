package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clsllc/landscaping-site/backend/internal/models"
)

func item(id, title string) models.GalleryItem {
	return models.GalleryItem{ID: id, Category: models.CategoryHardscape, Title: title}
}

func TestOverlayPendingShownBeforeCanonical(t *testing.T) {
	ov := newOverlay[models.GalleryItem]()
	ov.ReplaceCanonical([]models.GalleryItem{item("1700000000-a", "old")})
	ov.AddPending(item("1700000099-b", "new"))

	visible := ov.Visible(true)
	require.Len(t, visible, 2)
	assert.Equal(t, "1700000099-b", visible[0].Item.ID)
	assert.True(t, visible[0].Pending)
	assert.False(t, visible[1].Pending)
}

func TestOverlayConfirmationDropsPending(t *testing.T) {
	ov := newOverlay[models.GalleryItem]()
	ov.AddPending(item("1700000001-a", "patio"))

	ov.ReplaceCanonical([]models.GalleryItem{item("1700000001-a", "patio")})

	visible := ov.Visible(true)
	require.Len(t, visible, 1)
	assert.False(t, visible[0].Pending)
}

func TestOverlayFailedEntrySurvivesSnapshots(t *testing.T) {
	ov := newOverlay[models.GalleryItem]()
	ov.AddPending(item("1700000001-a", "patio"))
	ov.FailPending("1700000001-a", "upload failed")

	// Snapshots that do not contain the id keep the errored entry visible.
	ov.ReplaceCanonical(nil)

	visible := ov.Visible(true)
	require.Len(t, visible, 1)
	assert.Equal(t, "upload failed", visible[0].Err)
	assert.True(t, ov.PendingError("1700000001-a"))

	errored := ov.Errored()
	require.Len(t, errored, 1)
	assert.Equal(t, "patio", errored[0].Title)
}

func TestOverlayResetPendingRearmsEntry(t *testing.T) {
	ov := newOverlay[models.GalleryItem]()
	ov.AddPending(item("1700000001-a", "patio"))
	ov.FailPending("1700000001-a", "boom")
	ov.ResetPending("1700000001-a")

	visible := ov.Visible(true)
	require.Len(t, visible, 1)
	assert.True(t, visible[0].Pending)
	assert.Empty(t, visible[0].Err)
	assert.Zero(t, visible[0].Progress)
}

func TestOverlayVisibleOrdering(t *testing.T) {
	ov := newOverlay[models.GalleryItem]()
	ov.AppendCanonical(item("1700000001-a", "first"))
	ov.AppendCanonical(item("1700000003-c", "third"))
	ov.AppendCanonical(item("1700000002-b", "second"))

	// Live mode sorts descending by id.
	live := ov.Visible(true)
	assert.Equal(t, []string{"1700000003-c", "1700000002-b", "1700000001-a"},
		[]string{live[0].Item.ID, live[1].Item.ID, live[2].Item.ID})

	// Local mode keeps insertion order.
	local := ov.Visible(false)
	assert.Equal(t, []string{"1700000001-a", "1700000003-c", "1700000002-b"},
		[]string{local[0].Item.ID, local[1].Item.ID, local[2].Item.ID})
}

func TestOverlayInsertCanonicalPrepends(t *testing.T) {
	ov := newOverlay[models.GalleryItem]()
	ov.AppendCanonical(item("a", "old"))
	ov.InsertCanonical(item("b", "new"))

	snap := ov.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "b", snap[0].ID)
	assert.Equal(t, "a", snap[1].ID)
}

func TestExtendedMarshalFlattensTransientFields(t *testing.T) {
	raw, err := json.Marshal(Extended[models.GalleryItem]{
		Item:     item("1700000001-a", "patio"),
		Pending:  true,
		Progress: 42.5,
	})
	require.NoError(t, err)

	var flat map[string]any
	require.NoError(t, json.Unmarshal(raw, &flat))
	assert.Equal(t, "1700000001-a", flat["id"])
	assert.Equal(t, "patio", flat["title"])
	assert.Equal(t, true, flat["isPending"])
	assert.Equal(t, 42.5, flat["uploadProgress"])
	_, hasErr := flat["error"]
	assert.False(t, hasErr)
}

func TestExtendedMarshalOmitsFlagsWhenSettled(t *testing.T) {
	raw, err := json.Marshal(Extended[models.GalleryItem]{Item: item("a", "patio")})
	require.NoError(t, err)

	var flat map[string]any
	require.NoError(t, json.Unmarshal(raw, &flat))
	_, hasPending := flat["isPending"]
	assert.False(t, hasPending)
}
