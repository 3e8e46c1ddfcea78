package models

// GalleryCategory enumerates the project categories shown on the gallery page.
type GalleryCategory string

const (
	CategoryHardscape  GalleryCategory = "hardscape"
	CategoryDemolition GalleryCategory = "demolition"
	CategoryDecks      GalleryCategory = "decks"
	CategoryPools      GalleryCategory = "pools"
)

// GalleryItem represents one project in the gallery. IDs are client-generated
// and embed a timestamp, so a descending lexical sort approximates recency.
type GalleryItem struct {
	ID             string          `json:"id"`
	Category       GalleryCategory `json:"category"`
	Title          string          `json:"title"`
	ImageURL       string          `json:"imageUrl,omitempty"`
	VideoURL       string          `json:"videoUrl,omitempty"`
	VideoThumbnail string          `json:"videoThumbnail,omitempty"`
}

// Key returns the item id used for overlay and document addressing.
func (g GalleryItem) Key() string { return g.ID }

// Document converts the item to a Firestore document body. The id is the
// document name, never a field.
func (g GalleryItem) Document() map[string]any {
	doc := map[string]any{
		"category": string(g.Category),
		"title":    g.Title,
	}
	if g.ImageURL != "" {
		doc["imageUrl"] = g.ImageURL
	}
	if g.VideoURL != "" {
		doc["videoUrl"] = g.VideoURL
	}
	if g.VideoThumbnail != "" {
		doc["videoThumbnail"] = g.VideoThumbnail
	}
	return doc
}

// GalleryItemFromDocument rebuilds an item from a Firestore document.
func GalleryItemFromDocument(id string, doc map[string]any) GalleryItem {
	return GalleryItem{
		ID:             id,
		Category:       GalleryCategory(docString(doc, "category")),
		Title:          docString(doc, "title"),
		ImageURL:       docString(doc, "imageUrl"),
		VideoURL:       docString(doc, "videoUrl"),
		VideoThumbnail: docString(doc, "videoThumbnail"),
	}
}

// CreateGalleryItemRequest defines the request body for adding a project.
type CreateGalleryItemRequest struct {
	ID             string `json:"id" validate:"required"`
	Category       string `json:"category" validate:"required,oneof=hardscape demolition decks pools"`
	Title          string `json:"title" validate:"required,min=1,max=120"`
	ImageURL       string `json:"imageUrl,omitempty"`
	VideoURL       string `json:"videoUrl,omitempty"`
	VideoThumbnail string `json:"videoThumbnail,omitempty"`
}

// Item converts the request to a domain item.
func (r CreateGalleryItemRequest) Item() GalleryItem {
	return GalleryItem{
		ID:             r.ID,
		Category:       GalleryCategory(r.Category),
		Title:          r.Title,
		ImageURL:       r.ImageURL,
		VideoURL:       r.VideoURL,
		VideoThumbnail: r.VideoThumbnail,
	}
}

// CreateGalleryBatchRequest defines the request body for a batch upload.
type CreateGalleryBatchRequest struct {
	Items []CreateGalleryItemRequest `json:"items" validate:"required,min=1,dive"`
}

func docString(doc map[string]any, key string) string {
	if v, ok := doc[key].(string); ok {
		return v
	}
	return ""
}
