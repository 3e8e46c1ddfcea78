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

// CommunityStore synchronizes the community board. Alongside the post
// overlay it tracks the current user's reaction per post, which lives in the
// local store in both modes.
type CommunityStore struct {
	mu     sync.Mutex
	remote Remote
	local  localstore.Store
	diag   *diagnostics.Service

	ov        *overlay[models.Post]
	reactions map[string]string // post id -> emoji
	live      bool
	loading   bool
	unsub     func()
}

// NewCommunityStore builds the store. A nil remote selects local mode for
// the whole session.
func NewCommunityStore(remote Remote, local localstore.Store, diag *diagnostics.Service) *CommunityStore {
	return &CommunityStore{
		remote:    remote,
		local:     local,
		diag:      diag,
		ov:        newOverlay[models.Post](),
		reactions: map[string]string{},
		live:      remote != nil,
		loading:   true,
	}
}

// Start connects the subscription or loads the local snapshot, and restores
// the user's saved reactions.
func (s *CommunityStore) Start(ctx context.Context) {
	s.loadReactions()

	s.mu.Lock()
	live := s.live
	s.mu.Unlock()

	if !live {
		s.loadLocal()
		return
	}

	s.diag.Log(diagnostics.LevelInfo, "Connecting to Live Community Feed...")
	unsub := s.remote.Subscribe(ctx, communityCollection,
		func(docs []gateway.Document) {
			posts := make([]models.Post, 0, len(docs))
			for _, doc := range docs {
				posts = append(posts, models.PostFromDocument(doc.ID, doc.Data))
			}
			s.mu.Lock()
			s.ov.ReplaceCanonical(posts)
			s.loading = false
			s.mu.Unlock()
		},
		func(err error) {
			if gateway.IsPermissionDenied(err) {
				s.diag.Log(diagnostics.LevelWarn, "Community falling back to local storage", err)
				s.demote()
				return
			}
			s.diag.Log(diagnostics.LevelError, "Community subscription error", err)
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
func (s *CommunityStore) Close() {
	s.mu.Lock()
	unsub := s.unsub
	s.unsub = nil
	s.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// IsLive reports whether the store tracks the shared backend.
func (s *CommunityStore) IsLive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live
}

// IsLoading reports whether the first snapshot has arrived.
func (s *CommunityStore) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Posts returns the visible board, pending entries first.
func (s *CommunityStore) Posts() []Extended[models.Post] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ov.Visible(s.live)
}

// UserReactions returns the current user's reaction choice per post id.
func (s *CommunityStore) UserReactions() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.reactions))
	for id, emoji := range s.reactions {
		out[id] = emoji
	}
	return out
}

// AddPost publishes a post. Embedded media uploads run in sequence with the
// progress callback apportioned by weight: image half, video 40%, thumbnail
// the last 10%.
func (s *CommunityStore) AddPost(ctx context.Context, post models.Post, onProgress func(float64)) error {
	s.mu.Lock()
	s.ov.AddPending(post)
	live := s.live
	s.mu.Unlock()

	if live {
		return s.syncPost(ctx, post, onProgress)
	}
	return s.addPostLocal(post, onProgress)
}

func (s *CommunityStore) syncPost(ctx context.Context, post models.Post, onProgress func(float64)) error {
	report := func(p float64) {
		s.mu.Lock()
		s.ov.SetPendingProgress(post.ID, p)
		s.mu.Unlock()
		if onProgress != nil {
			onProgress(p)
		}
	}

	fail := func(err error) error {
		s.diag.Log(diagnostics.LevelError, "Failed to add cloud post", err)
		s.mu.Lock()
		s.ov.FailPending(post.ID, err.Error())
		s.mu.Unlock()
		if gateway.IsPermissionDenied(err) {
			s.demote()
		}
		return err
	}

	if needsUpload(post.ImageURL) {
		s.diag.Log(diagnostics.LevelInfo, "Uploading community image...")
		uploaded, err := s.remote.Upload(ctx, post.ImageURL, "uploads", func(p float64) { report(p * 0.5) })
		if err != nil {
			return fail(err)
		}
		post.ImageURL = uploaded
	}
	if needsUpload(post.VideoURL) {
		s.diag.Log(diagnostics.LevelInfo, "Uploading community video...")
		uploaded, err := s.remote.Upload(ctx, post.VideoURL, "videos", func(p float64) { report(50 + p*0.4) })
		if err != nil {
			return fail(err)
		}
		post.VideoURL = uploaded
	}
	if needsUpload(post.VideoThumbnail) {
		s.diag.Log(diagnostics.LevelInfo, "Uploading community thumbnail...")
		uploaded, err := s.remote.Upload(ctx, post.VideoThumbnail, "uploads", func(p float64) { report(90 + p*0.1) })
		if err != nil {
			return fail(err)
		}
		post.VideoThumbnail = uploaded
	}

	if err := s.remote.Upsert(ctx, communityCollection, post.ID, post.Document()); err != nil {
		return fail(err)
	}
	s.diag.Log(diagnostics.LevelSuccess, "Post saved to Firestore")
	report(100)
	return nil
}

func (s *CommunityStore) addPostLocal(post models.Post, onProgress func(float64)) error {
	persistent, err := toPersistentRef(post.ImageURL)
	if err != nil {
		s.mu.Lock()
		s.ov.FailPending(post.ID, err.Error())
		s.mu.Unlock()
		return err
	}
	post.ImageURL = persistent

	s.mu.Lock()
	s.ov.InsertCanonical(post)
	s.ov.ClearPending(post.ID)
	s.persistLocked()
	s.mu.Unlock()

	if onProgress != nil {
		onProgress(100)
	}
	return nil
}

// AddComment appends a comment to a post.
func (s *CommunityStore) AddComment(ctx context.Context, postID string, comment models.Comment) error {
	s.mu.Lock()
	post, ok := s.ov.Canonical(postID)
	live := s.live
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("post %s not found", postID)
	}

	post.Comments = append(append([]models.Comment(nil), post.Comments...), comment)

	if live {
		return s.remote.Update(ctx, communityCollection, postID, post.Document())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ov.UpdateCanonical(post)
	s.persistLocked()
	return nil
}

// ToggleReaction flips the current user's reaction on a post. A user holds
// at most one active reaction; choosing the same emoji again clears it,
// choosing another moves it. Counts never go negative and zero-count
// emojis are removed.
func (s *CommunityStore) ToggleReaction(ctx context.Context, postID, emoji string) error {
	s.mu.Lock()
	post, ok := s.ov.Canonical(postID)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("post %s not found", postID)
	}
	current := s.reactions[postID]
	live := s.live

	next := make(map[string]int, len(post.Reactions))
	for e, n := range post.Reactions {
		next[e] = n
	}
	if current != "" {
		if next[current] > 0 {
			next[current]--
		}
		if next[current] <= 0 {
			delete(next, current)
		}
	}
	if current != emoji {
		next[emoji]++
	}
	post.Reactions = next

	if current == emoji {
		delete(s.reactions, postID)
	} else {
		s.reactions[postID] = emoji
	}
	s.persistReactionsLocked()

	if !live {
		s.ov.UpdateCanonical(post)
		s.persistLocked()
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	return s.remote.Update(ctx, communityCollection, postID, post.Document())
}

// DeletePost removes a post entirely; there is no tombstone. Deleting an
// errored pending post just dismisses it.
func (s *CommunityStore) DeletePost(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.ov.PendingError(id) {
		s.ov.ClearPending(id)
		s.mu.Unlock()
		return nil
	}
	live := s.live
	s.mu.Unlock()

	if live {
		return s.remote.Remove(ctx, communityCollection, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ov.RemoveCanonical(id)
	s.persistLocked()
	return nil
}

// RetryFailed re-attempts every errored overlay entry in place.
func (s *CommunityStore) RetryFailed(ctx context.Context, onProgress func(float64)) error {
	s.mu.Lock()
	failed := s.ov.Errored()
	for _, post := range failed {
		s.ov.ResetPending(post.ID)
	}
	live := s.live
	s.mu.Unlock()

	var errs []error
	for _, post := range failed {
		var err error
		if live {
			err = s.syncPost(ctx, post, onProgress)
		} else {
			err = s.addPostLocal(post, onProgress)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("post %s: %w", post.ID, err))
		}
	}
	return errors.Join(errs...)
}

// ImportPosts merges externally-supplied posts without deleting existing
// entries.
func (s *CommunityStore) ImportPosts(ctx context.Context, posts []models.Post) error {
	s.mu.Lock()
	live := s.live
	s.mu.Unlock()

	if live {
		var errs []error
		for _, post := range posts {
			if err := s.remote.Upsert(ctx, communityCollection, post.ID, post.Document()); err != nil {
				errs = append(errs, fmt.Errorf("post %s: %w", post.ID, err))
			}
		}
		return errors.Join(errs...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, post := range posts {
		s.ov.AppendCanonical(post)
	}
	s.persistLocked()
	return nil
}

// ResetPosts restores the default board. Only permitted in local mode.
func (s *CommunityStore) ResetPosts() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.live {
		return ErrLiveMode
	}
	s.ov.ReplaceCanonical(defaultPosts)
	if err := s.local.Delete(communityStorageKey); err != nil {
		return err
	}
	return nil
}

// SeedCloudData pushes the default posts to the backend.
func (s *CommunityStore) SeedCloudData(ctx context.Context) error {
	s.mu.Lock()
	live := s.live
	s.mu.Unlock()
	if !live {
		return ErrLocalMode
	}
	var errs []error
	for _, post := range defaultPosts {
		if err := s.remote.Upsert(ctx, communityCollection, post.ID, post.Document()); err != nil {
			errs = append(errs, fmt.Errorf("post %s: %w", post.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (s *CommunityStore) demote() {
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

func (s *CommunityStore) loadLocal() {
	posts := append([]models.Post(nil), defaultPosts...)
	raw, ok, err := s.local.Get(communityStorageKey)
	if err != nil {
		s.diag.Log(diagnostics.LevelError, "Failed to load posts from local store", err)
	} else if ok {
		var saved []models.Post
		if err := json.Unmarshal([]byte(raw), &saved); err != nil {
			s.diag.Log(diagnostics.LevelError, "Corrupt local community snapshot", err)
		} else {
			posts = saved
		}
	}

	s.mu.Lock()
	s.ov.ReplaceCanonical(posts)
	s.loading = false
	s.mu.Unlock()
}

func (s *CommunityStore) loadReactions() {
	raw, ok, err := s.local.Get(reactionsStorageKey)
	if err != nil || !ok {
		return
	}
	var saved map[string]string
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		return
	}
	s.mu.Lock()
	s.reactions = saved
	s.mu.Unlock()
}

func (s *CommunityStore) persistLocked() {
	raw, err := json.Marshal(s.ov.Snapshot())
	if err != nil {
		s.diag.Log(diagnostics.LevelError, "Failed to serialize posts", err)
		return
	}
	if err := s.local.Set(communityStorageKey, string(raw)); err != nil {
		s.diag.Log(diagnostics.LevelError, "Failed to persist posts", err)
	}
}

func (s *CommunityStore) persistReactionsLocked() {
	raw, err := json.Marshal(s.reactions)
	if err != nil {
		return
	}
	if err := s.local.Set(reactionsStorageKey, string(raw)); err != nil {
		s.diag.Log(diagnostics.LevelError, "Failed to persist reactions", err)
	}
}
