// Package store implements the three synchronization stores behind the site:
// content images, gallery projects and community posts. Each store is
// local-first: when a remote gateway is configured it applies mutations
// optimistically and reconciles against the live subscription; otherwise
// canonical state lives in the local key-value store.
package store

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/clsllc/landscaping-site/backend/internal/gateway"
)

// Local storage keys, one JSON blob per store.
const (
	contentStorageKey   = "cls_content_images"
	galleryStorageKey   = "cls_gallery_projects"
	communityStorageKey = "cls_community_posts"
	reactionsStorageKey = "cls_user_reactions"
)

// Firestore collection names. Each store is the sole writer to its
// collection.
const (
	contentCollection   = "content"
	galleryCollection   = "gallery"
	communityCollection = "posts"
)

// ErrLiveMode is returned by reset operations while a store is connected to
// the shared backend. There is deliberately no bulk delete against the
// remote store from here.
var ErrLiveMode = errors.New("not permitted in live mode")

// ErrLocalMode is returned by cloud-only operations while a store is running
// against local storage.
var ErrLocalMode = errors.New("requires live mode")

// Remote is the gateway surface the stores depend on. A nil Remote means
// the backend is not configured and the store runs permanently local.
type Remote interface {
	Subscribe(ctx context.Context, collection string, onData func([]gateway.Document), onError func(error)) func()
	Upsert(ctx context.Context, collection, id string, data map[string]any) error
	Update(ctx context.Context, collection, id string, data map[string]any) error
	Remove(ctx context.Context, collection, id string) error
	Upload(ctx context.Context, input, folder string, onProgress func(float64)) (string, error)
}

// needsUpload reports whether a media reference must be pushed to the blob
// store before the owning document is written: raw data URIs and local file
// handles do, anything already addressable over http(s) does not.
func needsUpload(ref string) bool {
	if ref == "" {
		return false
	}
	if strings.HasPrefix(ref, "data:") {
		return true
	}
	return !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://")
}

// toPersistentRef converts a local file handle into a data URI so local-mode
// state survives in the key-value store. Data URIs and remote URLs pass
// through unchanged.
func toPersistentRef(ref string) (string, error) {
	if ref == "" || strings.HasPrefix(ref, "data:") || !needsUpload(ref) {
		return ref, nil
	}
	body, err := os.ReadFile(ref)
	if err != nil {
		return "", fmt.Errorf("failed to read media file: %w", err)
	}
	contentType := http.DetectContentType(body)
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(body), nil
}
