package storage

import (
	"context"
	"io"
)

// ArtifactStore holds synthesized audio. Names are unique per request,
// so concurrent writers never touch the same object.
type ArtifactStore interface {
	// Save uploads the artifact and returns the URL it is served from.
	Save(ctx context.Context, name string, r io.Reader, contentType string) (string, error)

	// Open returns the artifact content for streaming to a client.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}
