package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/clsllc/landscaping-site/backend/internal/gateway"
)

// fakeRemote is an in-memory Remote. Tests drive subscriptions by hand with
// push and fail, and flip the error fields to simulate backend failures.
type fakeRemote struct {
	mu      sync.Mutex
	onData  map[string]func([]gateway.Document)
	onError map[string]func(error)

	docs     map[string]map[string]map[string]any
	uploads  []string
	removals []string

	upsertErr error
	updateErr error
	removeErr error
	uploadErr error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		onData:  map[string]func([]gateway.Document){},
		onError: map[string]func(error){},
		docs:    map[string]map[string]map[string]any{},
	}
}

func (f *fakeRemote) Subscribe(ctx context.Context, collection string, onData func([]gateway.Document), onError func(error)) func() {
	f.mu.Lock()
	f.onData[collection] = onData
	f.onError[collection] = onError
	f.mu.Unlock()
	return func() {}
}

// push delivers a snapshot to the collection's subscriber.
func (f *fakeRemote) push(collection string, docs []gateway.Document) {
	f.mu.Lock()
	fn := f.onData[collection]
	f.mu.Unlock()
	if fn != nil {
		fn(docs)
	}
}

// fail delivers a terminal subscription error.
func (f *fakeRemote) fail(collection string, err error) {
	f.mu.Lock()
	fn := f.onError[collection]
	f.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

func (f *fakeRemote) Upsert(ctx context.Context, collection, id string, data map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if f.docs[collection] == nil {
		f.docs[collection] = map[string]map[string]any{}
	}
	f.docs[collection][id] = data
	return nil
}

func (f *fakeRemote) Update(ctx context.Context, collection, id string, data map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if f.docs[collection] == nil {
		f.docs[collection] = map[string]map[string]any{}
	}
	f.docs[collection][id] = data
	return nil
}

func (f *fakeRemote) Remove(ctx context.Context, collection, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.docs[collection], id)
	f.removals = append(f.removals, collection+"/"+id)
	return nil
}

func (f *fakeRemote) Upload(ctx context.Context, input, folder string, onProgress func(float64)) (string, error) {
	f.mu.Lock()
	if f.uploadErr != nil {
		f.mu.Unlock()
		return "", f.uploadErr
	}
	f.uploads = append(f.uploads, folder)
	n := len(f.uploads)
	f.mu.Unlock()
	if onProgress != nil {
		onProgress(100)
	}
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/test-bucket/o/%s%%2Ffile-%d?alt=media&token=test", folder, n), nil
}

func (f *fakeRemote) document(collection, id string) (map[string]any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[collection][id]
	return doc, ok
}
