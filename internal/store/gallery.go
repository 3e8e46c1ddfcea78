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

// GalleryStore synchronizes the project gallery. In live mode canonical
// state tracks the gallery collection subscription; otherwise it is a JSON
// blob in the local store.
type GalleryStore struct {
	mu     sync.Mutex
	remote Remote
	local  localstore.Store
	diag   *diagnostics.Service

	ov      *overlay[models.GalleryItem]
	live    bool
	loading bool
	unsub   func()
}

// NewGalleryStore builds the store. A nil remote selects local mode for the
// whole session.
func NewGalleryStore(remote Remote, local localstore.Store, diag *diagnostics.Service) *GalleryStore {
	return &GalleryStore{
		remote:  remote,
		local:   local,
		diag:    diag,
		ov:      newOverlay[models.GalleryItem](),
		live:    remote != nil,
		loading: true,
	}
}

// Start connects the subscription or loads the local snapshot.
func (s *GalleryStore) Start(ctx context.Context) {
	s.mu.Lock()
	live := s.live
	s.mu.Unlock()

	if !live {
		s.loadLocal()
		return
	}

	unsub := s.remote.Subscribe(ctx, galleryCollection,
		func(docs []gateway.Document) {
			items := make([]models.GalleryItem, 0, len(docs))
			for _, doc := range docs {
				items = append(items, models.GalleryItemFromDocument(doc.ID, doc.Data))
			}
			s.mu.Lock()
			s.ov.ReplaceCanonical(items)
			s.loading = false
			s.mu.Unlock()
		},
		func(err error) {
			if gateway.IsPermissionDenied(err) {
				s.diag.Log(diagnostics.LevelWarn, "Gallery falling back to local storage", err)
				s.demote()
				return
			}
			s.diag.Log(diagnostics.LevelError, "Gallery sync failed", err)
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
func (s *GalleryStore) Close() {
	s.mu.Lock()
	unsub := s.unsub
	s.unsub = nil
	s.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// IsLive reports whether the store tracks the shared backend.
func (s *GalleryStore) IsLive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live
}

// IsLoading reports whether the first snapshot has arrived.
func (s *GalleryStore) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Projects returns the visible project list: pending entries first, then
// canonical state (newest first in live mode, insertion order locally).
func (s *GalleryStore) Projects() []Extended[models.GalleryItem] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ov.Visible(s.live)
}

// AddProject adds a single project.
func (s *GalleryStore) AddProject(ctx context.Context, item models.GalleryItem, onProgress func(float64)) error {
	return s.AddProjects(ctx, []models.GalleryItem{item}, onProgress)
}

// AddProjects adds a batch. Each item syncs independently; a failed item
// stays in the overlay with its error while the rest land. Progress is the
// mean of per-item completion.
func (s *GalleryStore) AddProjects(ctx context.Context, items []models.GalleryItem, onProgress func(float64)) error {
	s.mu.Lock()
	for _, item := range items {
		s.ov.AddPending(item)
	}
	live := s.live
	s.mu.Unlock()

	if live {
		s.diag.Log(diagnostics.LevelInfo, fmt.Sprintf("Queueing %d projects for cloud sync...", len(items)))
		return s.syncProjects(ctx, items, onProgress)
	}
	return s.addProjectsLocal(items, onProgress)
}

// syncProjects uploads media and writes documents for each item in turn.
// Used by both the add path and RetryFailed.
func (s *GalleryStore) syncProjects(ctx context.Context, items []models.GalleryItem, onProgress func(float64)) error {
	total := len(items)
	var errs []error

	for i, item := range items {
		base := float64(i) / float64(total) * 100
		report := func(p float64) {
			s.mu.Lock()
			s.ov.SetPendingProgress(item.ID, p)
			s.mu.Unlock()
			if onProgress != nil {
				onProgress(base + p/float64(total))
			}
		}

		synced, err := s.uploadProjectMedia(ctx, item, report)
		if err == nil {
			err = s.remote.Upsert(ctx, galleryCollection, synced.ID, synced.Document())
		}
		if err != nil {
			s.diag.Log(diagnostics.LevelError, fmt.Sprintf("Failed to upload project: %s", item.Title), err)
			s.mu.Lock()
			s.ov.FailPending(item.ID, err.Error())
			s.mu.Unlock()
			if gateway.IsPermissionDenied(err) {
				s.demote()
			}
			errs = append(errs, fmt.Errorf("project %s: %w", item.ID, err))
			continue
		}
		s.diag.Log(diagnostics.LevelSuccess, fmt.Sprintf("Project %s synced to cloud.", item.Title))
	}

	if onProgress != nil {
		onProgress(100)
	}
	return errors.Join(errs...)
}

// uploadProjectMedia pushes raw media references to the blob store. The
// image (or video) upload carries the progress; the thumbnail is small and
// reported only at completion.
func (s *GalleryStore) uploadProjectMedia(ctx context.Context, item models.GalleryItem, onProgress func(float64)) (models.GalleryItem, error) {
	if needsUpload(item.ImageURL) {
		folder := "gallery"
		if item.VideoURL != "" {
			folder = "videos"
		}
		uploaded, err := s.remote.Upload(ctx, item.ImageURL, folder, onProgress)
		if err != nil {
			return item, err
		}
		item.ImageURL = uploaded
	}
	if needsUpload(item.VideoThumbnail) {
		uploaded, err := s.remote.Upload(ctx, item.VideoThumbnail, "uploads", nil)
		if err != nil {
			return item, err
		}
		item.VideoThumbnail = uploaded
	}
	return item, nil
}

func (s *GalleryStore) addProjectsLocal(items []models.GalleryItem, onProgress func(float64)) error {
	var errs []error
	for i, item := range items {
		persistent, err := toPersistentRef(item.ImageURL)
		if err != nil {
			s.mu.Lock()
			s.ov.FailPending(item.ID, err.Error())
			s.mu.Unlock()
			errs = append(errs, fmt.Errorf("project %s: %w", item.ID, err))
			continue
		}
		item.ImageURL = persistent

		s.mu.Lock()
		s.ov.InsertCanonical(item)
		s.ov.ClearPending(item.ID)
		s.persistLocked()
		s.mu.Unlock()

		if onProgress != nil {
			onProgress(float64(i+1) / float64(len(items)) * 100)
		}
	}
	return errors.Join(errs...)
}

// UpdateProject replaces a project document. Last writer wins.
func (s *GalleryStore) UpdateProject(ctx context.Context, item models.GalleryItem) error {
	s.mu.Lock()
	live := s.live
	s.mu.Unlock()

	if live {
		if err := s.remote.Update(ctx, galleryCollection, item.ID, item.Document()); err != nil {
			s.diag.Log(diagnostics.LevelError, fmt.Sprintf("Failed to update project %s", item.ID), err)
			return err
		}
		s.diag.Log(diagnostics.LevelSuccess, fmt.Sprintf("Updated project %s", item.ID))
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ov.UpdateCanonical(item) {
		return fmt.Errorf("project %s not found", item.ID)
	}
	s.persistLocked()
	return nil
}

// DeleteProject removes a project. Deleting an errored pending item just
// dismisses it from the overlay.
func (s *GalleryStore) DeleteProject(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.ov.PendingError(id) {
		s.ov.ClearPending(id)
		s.mu.Unlock()
		return nil
	}
	live := s.live
	s.mu.Unlock()

	if live {
		if err := s.remote.Remove(ctx, galleryCollection, id); err != nil {
			s.diag.Log(diagnostics.LevelError, fmt.Sprintf("Failed to delete project %s", id), err)
			return err
		}
		s.diag.Log(diagnostics.LevelSuccess, fmt.Sprintf("Deleted project %s from database", id))
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ov.RemoveCanonical(id)
	s.persistLocked()
	return nil
}

// RetryFailed re-attempts every errored overlay entry in place, preserving
// ids.
func (s *GalleryStore) RetryFailed(ctx context.Context, onProgress func(float64)) error {
	s.mu.Lock()
	failed := s.ov.Errored()
	for _, item := range failed {
		s.ov.ResetPending(item.ID)
	}
	live := s.live
	s.mu.Unlock()

	if len(failed) == 0 {
		return nil
	}
	if live {
		return s.syncProjects(ctx, failed, onProgress)
	}
	return s.addProjectsLocal(failed, onProgress)
}

// ImportGallery merges externally-supplied items into canonical state
// without deleting existing entries.
func (s *GalleryStore) ImportGallery(ctx context.Context, items []models.GalleryItem) error {
	s.mu.Lock()
	live := s.live
	s.mu.Unlock()

	if live {
		var errs []error
		for _, item := range items {
			if err := s.remote.Upsert(ctx, galleryCollection, item.ID, item.Document()); err != nil {
				errs = append(errs, fmt.Errorf("project %s: %w", item.ID, err))
			}
		}
		return errors.Join(errs...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		s.ov.AppendCanonical(item)
	}
	s.persistLocked()
	return nil
}

// ResetGallery restores the default projects. Only permitted in local mode;
// there is no bulk delete against the shared backend from here.
func (s *GalleryStore) ResetGallery() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.live {
		return ErrLiveMode
	}
	s.ov.ReplaceCanonical(defaultProjects)
	if err := s.local.Delete(galleryStorageKey); err != nil {
		return err
	}
	return nil
}

// SeedCloudData pushes the default projects to the backend.
func (s *GalleryStore) SeedCloudData(ctx context.Context) error {
	s.mu.Lock()
	live := s.live
	s.mu.Unlock()
	if !live {
		return ErrLocalMode
	}
	return s.AddProjects(ctx, defaultProjects, nil)
}

// demote latches the store into local mode. One-way until restart.
func (s *GalleryStore) demote() {
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

func (s *GalleryStore) loadLocal() {
	items := append([]models.GalleryItem(nil), defaultProjects...)
	raw, ok, err := s.local.Get(galleryStorageKey)
	if err != nil {
		s.diag.Log(diagnostics.LevelError, "Failed to load gallery from local store", err)
	} else if ok {
		var saved []models.GalleryItem
		if err := json.Unmarshal([]byte(raw), &saved); err != nil {
			s.diag.Log(diagnostics.LevelError, "Corrupt local gallery snapshot", err)
		} else {
			items = saved
		}
	}

	s.mu.Lock()
	s.ov.ReplaceCanonical(items)
	s.loading = false
	s.mu.Unlock()
}

func (s *GalleryStore) persistLocked() {
	raw, err := json.Marshal(s.ov.Snapshot())
	if err != nil {
		s.diag.Log(diagnostics.LevelError, "Failed to serialize gallery", err)
		return
	}
	if err := s.local.Set(galleryStorageKey, string(raw)); err != nil {
		s.diag.Log(diagnostics.LevelError, "Failed to persist gallery", err)
	}
}
