package gateway

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/clsllc/landscaping-site/backend/internal/diagnostics"
)

// Hosts whose URLs are already durable. Re-saving content that references
// them must not trigger a re-upload.
var permanentHosts = []string{
	"firebasestorage.googleapis.com",
	"storage.googleapis.com",
	"res.cloudinary.com",
}

const uploadChunkSize = 256 * 1024

// IsPermanentURL reports whether the input already points at permanent
// storage and can be used as-is.
func IsPermanentURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	for _, host := range permanentHosts {
		if u.Host == host || strings.HasSuffix(u.Host, "."+host) {
			return true
		}
	}
	return false
}

// Upload stores a media payload in the blob store and returns its durable
// download URL. The input may be a data URI, a local file path, or an
// http(s) URL; an input already on a permanent host is returned unchanged
// with progress reported as complete. Progress runs 0-100 over the bytes
// written.
func (g *Gateway) Upload(ctx context.Context, input, folder string, onProgress func(float64)) (string, error) {
	if IsPermanentURL(input) {
		g.diag.Log(diagnostics.LevelInfo, "Upload skipped: input is already a permanent URL")
		if onProgress != nil {
			onProgress(100)
		}
		return input, nil
	}

	if g.bucket == nil {
		g.diag.Log(diagnostics.LevelError, "Upload aborted: storage is not initialized")
		return "", &UploadError{Stage: "init", Err: ErrNoBucket}
	}

	payload, contentType, err := resolvePayload(ctx, input)
	if err != nil {
		g.diag.Log(diagnostics.LevelError, "Upload failed to read input", err)
		return "", &UploadError{Stage: "read", Err: err}
	}

	object := fmt.Sprintf("%s/%d-%s", folder, time.Now().UnixMilli(), uuid.NewString()[:8])
	token := uuid.NewString()
	g.diag.Log(diagnostics.LevelInfo, fmt.Sprintf("Uploading %d bytes to %q", len(payload), object))

	if err := g.bucket.Upload(ctx, object, contentType, token, payload, onProgress); err != nil {
		g.diag.Log(diagnostics.LevelError, "Upload failed", err)
		return "", &UploadError{Stage: "write", Err: err}
	}

	downloadURL := fmt.Sprintf(
		"https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		g.bucketName, url.PathEscape(object), token,
	)
	g.diag.Log(diagnostics.LevelSuccess, fmt.Sprintf("Upload complete: %s", downloadURL))
	return downloadURL, nil
}

// resolvePayload turns the accepted input forms into raw bytes plus a
// content type.
func resolvePayload(ctx context.Context, input string) ([]byte, string, error) {
	switch {
	case strings.HasPrefix(input, "data:"):
		return decodeDataURI(input)
	case strings.HasPrefix(input, "http://"), strings.HasPrefix(input, "https://"):
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, input, nil)
		if err != nil {
			return nil, "", err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, "", err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, "", fmt.Errorf("fetch returned status %d", resp.StatusCode)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, "", err
		}
		contentType := resp.Header.Get("Content-Type")
		if contentType == "" {
			contentType = http.DetectContentType(body)
		}
		return body, contentType, nil
	default:
		// Treat anything else as a local file handle.
		body, err := os.ReadFile(input)
		if err != nil {
			return nil, "", err
		}
		return body, http.DetectContentType(body), nil
	}
}

func decodeDataURI(input string) ([]byte, string, error) {
	rest := strings.TrimPrefix(input, "data:")
	meta, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("malformed data URI")
	}
	contentType := strings.TrimSuffix(meta, ";base64")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if !strings.HasSuffix(meta, ";base64") {
		decoded, err := url.QueryUnescape(encoded)
		if err != nil {
			return nil, "", fmt.Errorf("failed to decode data URI: %w", err)
		}
		return []byte(decoded), contentType, nil
	}
	payload, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode data URI: %w", err)
	}
	return payload, contentType, nil
}

// bucketHandle abstracts the blob store so upload behavior is testable
// without a live bucket.
type bucketHandle interface {
	Upload(ctx context.Context, object, contentType, token string, payload []byte, onProgress func(float64)) error
	Probe(ctx context.Context) error
}

type gcsBucket struct {
	bucket *storage.BucketHandle
}

func (b gcsBucket) Upload(ctx context.Context, object, contentType, token string, payload []byte, onProgress func(float64)) error {
	w := b.bucket.Object(object).NewWriter(ctx)
	w.ContentType = contentType
	w.ChunkSize = uploadChunkSize
	w.Metadata = map[string]string{"firebaseStorageDownloadTokens": token}

	total := len(payload)
	written := 0
	for written < total {
		end := written + uploadChunkSize
		if end > total {
			end = total
		}
		n, err := w.Write(payload[written:end])
		written += n
		if err != nil {
			_ = w.Close()
			return err
		}
		if onProgress != nil && total > 0 {
			onProgress(float64(written) / float64(total) * 100)
		}
	}
	return w.Close()
}

func (b gcsBucket) Probe(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err := b.bucket.Attrs(probeCtx)
	return err
}
