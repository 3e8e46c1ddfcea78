package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostDocumentRoundTrip(t *testing.T) {
	post := Post{
		ID:        "p1",
		Author:    "Dana",
		Date:      "01/05/2026",
		Content:   "Pergola done",
		ImageURL:  "https://example.com/a.jpg",
		Reactions: map[string]int{"❤️": 2},
		Comments:  []Comment{{ID: "c1", Author: "Lee", Date: "01/06/2026", Content: "Nice"}},
	}

	rebuilt := PostFromDocument("p1", post.Document())
	assert.Equal(t, post, rebuilt)
}

func TestPostFromDocumentDropsBadCounts(t *testing.T) {
	post := PostFromDocument("p1", map[string]any{
		"author": "Dana",
		"reactions": map[string]any{
			"❤️": int64(3),
			"🎉": int64(0),
			"👍": int64(-2),
			"🔥": float64(1),
		},
	})

	assert.Equal(t, map[string]int{"❤️": 3, "🔥": 1}, post.Reactions)
}

func TestPostFromDocumentTolerantOfShape(t *testing.T) {
	post := PostFromDocument("p1", map[string]any{
		"author":    42,
		"reactions": "not a map",
		"comments":  []any{"not a comment", map[string]any{"id": "c1"}},
	})

	assert.Empty(t, post.Author)
	assert.Empty(t, post.Reactions)
	require.Len(t, post.Comments, 1)
	assert.Equal(t, "c1", post.Comments[0].ID)
}

func TestGalleryItemDocumentOmitsEmptyMedia(t *testing.T) {
	doc := GalleryItem{ID: "g1", Category: CategoryHardscape, Title: "Patio"}.Document()
	assert.NotContains(t, doc, "imageUrl")
	assert.NotContains(t, doc, "videoUrl")

	rebuilt := GalleryItemFromDocument("g1", doc)
	assert.Equal(t, CategoryHardscape, rebuilt.Category)
	assert.Equal(t, "Patio", rebuilt.Title)
}
