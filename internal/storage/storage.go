package storage

import (
	"context"
	"io"
)

// ObjectStore persists uploaded file payloads. Metadata rows stay in
// Postgres; only the bytes live here.
type ObjectStore interface {
	// Upload streams the payload under objectName and returns the public
	// URL the stored object is reachable at.
	Upload(ctx context.Context, objectName, contentType string, payload io.Reader) (string, error)
	Remove(ctx context.Context, objectName string) error
}
