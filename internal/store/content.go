package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/clsllc/landscaping-site/backend/internal/diagnostics"
	"github.com/clsllc/landscaping-site/backend/internal/gateway"
	"github.com/clsllc/landscaping-site/backend/internal/localstore"
	"github.com/clsllc/landscaping-site/backend/internal/models"
)

// ContentStore synchronizes the named content image slots. State is a flat
// key-to-URL map: canonical values from the backend plus a local override
// map holding optimistic updates still in flight. Overrides win until the
// write lands.
type ContentStore struct {
	mu     sync.Mutex
	remote Remote
	local  localstore.Store
	diag   *diagnostics.Service

	images    map[string]string
	overrides map[string]string
	live      bool
	loading   bool
	unsub     func()
}

// NewContentStore builds the store. A nil remote selects local mode for the
// whole session.
func NewContentStore(remote Remote, local localstore.Store, diag *diagnostics.Service) *ContentStore {
	return &ContentStore{
		remote:    remote,
		local:     local,
		diag:      diag,
		images:    map[string]string{},
		overrides: map[string]string{},
		live:      remote != nil,
		loading:   true,
	}
}

// Start connects the subscription or loads the local snapshot.
func (s *ContentStore) Start(ctx context.Context) {
	s.mu.Lock()
	live := s.live
	s.mu.Unlock()

	if !live {
		s.loadLocal()
		return
	}

	unsub := s.remote.Subscribe(ctx, contentCollection,
		func(docs []gateway.Document) {
			images := make(map[string]string, len(docs))
			for _, doc := range docs {
				if url, ok := doc.Data["url"].(string); ok {
					images[doc.ID] = url
				}
			}
			s.mu.Lock()
			s.images = images
			s.loading = false
			s.mu.Unlock()
		},
		func(err error) {
			if gateway.IsPermissionDenied(err) {
				s.diag.Log(diagnostics.LevelWarn, "Content falling back to local storage", err)
				s.demote()
				return
			}
			s.diag.Log(diagnostics.LevelError, "Content sync error", err)
			s.mu.Lock()
			s.loading = false
			s.mu.Unlock()
		},
	)

	s.mu.Lock()
	s.unsub = unsub
	s.mu.Unlock()
}

// Close tears the subscription down.
func (s *ContentStore) Close() {
	s.mu.Lock()
	unsub := s.unsub
	s.unsub = nil
	s.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// IsLive reports whether the store tracks the shared backend.
func (s *ContentStore) IsLive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live
}

// IsLoading reports whether the first snapshot has arrived.
func (s *ContentStore) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Images returns the merged view: canonical values with optimistic
// overrides on top.
func (s *ContentStore) Images() models.ContentImages {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(models.ContentImages, len(s.images)+len(s.overrides))
	for key, url := range s.images {
		out[key] = url
	}
	for key, url := range s.overrides {
		out[key] = url
	}
	return out
}

// GetImage returns the image for a slot, or the given default when the slot
// has never been written.
func (s *ContentStore) GetImage(key, defaultURL string) string {
	if url, ok := s.Images()[key]; ok && url != "" {
		return url
	}
	return defaultURL
}

// UpdateImage replaces the image in a content slot. Live mode applies an
// optimistic override, uploads raw media, writes the document and folds the
// durable URL back in; on failure the value is kept locally so the edit is
// not lost, and the error propagates.
func (s *ContentStore) UpdateImage(ctx context.Context, key, url string) error {
	s.mu.Lock()
	live := s.live
	s.mu.Unlock()

	if !live {
		persistent, err := toPersistentRef(url)
		if err != nil {
			return err
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		s.images[key] = persistent
		s.persistLocked()
		return nil
	}

	s.mu.Lock()
	s.overrides[key] = url
	s.mu.Unlock()

	finalURL := url
	var err error
	if needsUpload(url) {
		finalURL, err = s.remote.Upload(ctx, url, "uploads", nil)
	}
	if err == nil {
		err = s.remote.Upsert(ctx, contentCollection, key, map[string]any{"url": finalURL})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.diag.Log(diagnostics.LevelError, fmt.Sprintf("Update content %q failed", key), err)
		// Keep the value visible locally rather than dropping the edit.
		s.images[key] = url
		delete(s.overrides, key)
		if gateway.IsPermissionDenied(err) {
			go s.demote()
		}
		return err
	}
	s.images[key] = finalURL
	delete(s.overrides, key)
	return nil
}

// ImportContent merges a backup into the current state, fanning writes out
// to the backend when live.
func (s *ContentStore) ImportContent(ctx context.Context, data map[string]string) error {
	s.mu.Lock()
	for key, url := range data {
		s.images[key] = url
	}
	live := s.live
	if !live {
		s.persistLocked()
	}
	s.mu.Unlock()

	if !live {
		return nil
	}

	var errs []error
	for key, url := range data {
		if err := s.remote.Upsert(ctx, contentCollection, key, map[string]any{"url": url}); err != nil {
			errs = append(errs, fmt.Errorf("slot %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// ResetContent clears every slot. Only permitted in local mode.
func (s *ContentStore) ResetContent() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.live {
		return ErrLiveMode
	}
	s.images = map[string]string{}
	s.overrides = map[string]string{}
	return s.local.Delete(contentStorageKey)
}

func (s *ContentStore) demote() {
	s.mu.Lock()
	if !s.live {
		s.mu.Unlock()
		return
	}
	s.live = false
	unsub := s.unsub
	s.unsub = nil
	s.mu.Unlock()

	if unsub != nil {
		go unsub()
	}
	s.loadLocal()
}

func (s *ContentStore) loadLocal() {
	images := map[string]string{}
	raw, ok, err := s.local.Get(contentStorageKey)
	if err != nil {
		s.diag.Log(diagnostics.LevelError, "Failed to load content images from local store", err)
	} else if ok {
		if err := json.Unmarshal([]byte(raw), &images); err != nil {
			s.diag.Log(diagnostics.LevelError, "Corrupt local content snapshot", err)
			images = map[string]string{}
		}
	}

	s.mu.Lock()
	s.images = images
	s.loading = false
	s.mu.Unlock()
}

func (s *ContentStore) persistLocked() {
	raw, err := json.Marshal(s.images)
	if err != nil {
		return
	}
	if err := s.local.Set(contentStorageKey, string(raw)); err != nil {
		s.diag.Log(diagnostics.LevelError, "Failed to persist content images", err)
	}
}
