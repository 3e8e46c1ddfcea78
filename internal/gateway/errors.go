package gateway

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrNoBucket is returned by Upload when no storage bucket is configured.
var ErrNoBucket = errors.New("storage bucket is not initialized")

// UploadError wraps a failed blob upload. Progress reported before the
// failure is not recoverable; the caller must restart the upload.
type UploadError struct {
	Stage string
	Err   error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed during %s: %v", e.Stage, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// IsPermissionDenied reports whether the error is a store-level access
// rejection. The stores use this to demote from live to local mode.
func IsPermissionDenied(err error) bool {
	return status.Code(err) == codes.PermissionDenied
}
