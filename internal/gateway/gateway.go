// Package gateway wraps the cloud document store and blob store behind the
// small surface the synchronization stores depend on: live collection
// subscriptions, per-document writes, progress-reporting blob uploads and a
// connectivity health probe.
package gateway

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/clsllc/landscaping-site/backend/internal/diagnostics"
	fb "github.com/clsllc/landscaping-site/backend/pkg/firebase"
)

// Document is one document from a collection snapshot.
type Document struct {
	ID   string
	Data map[string]any
}

// Gateway translates domain operations into Firestore and Storage calls.
// A single instance is constructed at startup and shared by every store.
type Gateway struct {
	firestore  *firestore.Client
	bucket     bucketHandle
	bucketName string
	diag       *diagnostics.Service
}

// New builds a gateway from the initialized Firebase app.
func New(app *fb.App, diag *diagnostics.Service) *Gateway {
	g := &Gateway{
		firestore:  app.Firestore,
		bucketName: app.BucketName,
		diag:       diag,
	}
	if app.Bucket != nil {
		g.bucket = gcsBucket{app.Bucket}
	}
	return g
}

// Subscribe establishes a live snapshot listener on a collection. Every
// snapshot delivers the full document set to onData. Errors go to onError
// and end the subscription. The returned function cancels the listener; no
// callbacks are delivered after it returns.
func (g *Gateway) Subscribe(ctx context.Context, collection string, onData func([]Document), onError func(error)) func() {
	ctx, cancel := context.WithCancel(ctx)
	snapshots := g.firestore.Collection(collection).Snapshots(ctx)

	go func() {
		for {
			snap, err := snapshots.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled || ctx.Err() != nil {
					return
				}
				g.diag.Log(diagnostics.LevelError, fmt.Sprintf("%s sync error", collection), err)
				onError(err)
				return
			}

			docs := make([]Document, 0, snap.Size)
			iter := snap.Documents
			for {
				doc, err := iter.Next()
				if err == iterator.Done {
					break
				}
				if err != nil {
					g.diag.Log(diagnostics.LevelError, fmt.Sprintf("%s snapshot read error", collection), err)
					onError(err)
					return
				}
				docs = append(docs, Document{ID: doc.Ref.ID, Data: doc.Data()})
			}
			onData(docs)
		}
	}()

	return func() {
		cancel()
		snapshots.Stop()
	}
}

// Upsert writes a full document, creating or replacing it.
func (g *Gateway) Upsert(ctx context.Context, collection, id string, data map[string]any) error {
	_, err := g.firestore.Collection(collection).Doc(id).Set(ctx, Sanitize(data))
	if err != nil {
		return fmt.Errorf("failed to upsert %s/%s: %w", collection, id, err)
	}
	return nil
}

// Update merges fields into an existing document. Last writer wins; there is
// no optimistic locking.
func (g *Gateway) Update(ctx context.Context, collection, id string, data map[string]any) error {
	_, err := g.firestore.Collection(collection).Doc(id).Set(ctx, Sanitize(data), firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	return nil
}

// Remove deletes a document.
func (g *Gateway) Remove(ctx context.Context, collection, id string) error {
	_, err := g.firestore.Collection(collection).Doc(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// CheckStatus is the outcome of one health sub-check.
type CheckStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HealthResult reports store and blob reachability independently.
type HealthResult struct {
	Store CheckStatus `json:"store"`
	Blob  CheckStatus `json:"blob"`
}

// HealthCheck performs a bounded Firestore read and a bucket metadata probe.
func (g *Gateway) HealthCheck(ctx context.Context) HealthResult {
	res := HealthResult{}

	readCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err := g.firestore.Collection("gallery").Limit(1).Documents(readCtx).GetAll()
	if err != nil {
		res.Store = CheckStatus{Status: "error", Message: fmt.Sprintf("Error: %v", err)}
	} else {
		res.Store = CheckStatus{Status: "ok", Message: "Connected."}
	}

	if g.bucket == nil {
		res.Blob = CheckStatus{Status: "error", Message: "No bucket."}
	} else if err := g.bucket.Probe(ctx); err != nil {
		res.Blob = CheckStatus{Status: "error", Message: fmt.Sprintf("Error: %v", err)}
	} else {
		res.Blob = CheckStatus{Status: "ok", Message: "Ready."}
	}

	return res
}
