package models

// ContentImages maps a named content slot (e.g. "footer_bg") to its current
// image URL. Every key holds at most one URL; last write wins.
type ContentImages map[string]string

// UpdateContentImageRequest defines the request body for replacing the image
// in a content slot.
type UpdateContentImageRequest struct {
	URL string `json:"url" validate:"required"`
}

// ImportContentRequest defines the request body for a backup-restore merge.
type ImportContentRequest struct {
	Images map[string]string `json:"images" validate:"required"`
}
