package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrInvalidRoot is returned when a storage root does not exist or is not a directory.
	ErrInvalidRoot = errors.New("invalid storage root")
	// ErrClosed is returned by operations on a closed storage.
	ErrClosed = errors.New("storage is closed")
	// ErrOutsideRoot is returned when a relative path escapes the storage root.
	ErrOutsideRoot = errors.New("path escapes storage root")
	// ErrUnknownKind is returned for an unrecognised storage kind.
	ErrUnknownKind = errors.New("unknown storage kind")
)

// Kind identifies a storage backend.
type Kind string

const (
	KindLocal Kind = "local"
	KindS3    Kind = "s3"
)

// ParseKind converts a configuration string into a Kind. Empty means local.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "local", "file":
		return KindLocal, nil
	case "s3", "minio":
		return KindS3, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Path identifies one blob inside a storage.
type Path struct {
	// URI is the absolute location, e.g. file:///data/a.csv or s3://bucket/a.csv.
	URI string `json:"uri"`
	// Path is the slash separated path component of URI.
	Path string `json:"path"`
	// RelativePath is the location relative to the storage root.
	RelativePath string `json:"relative_path"`
}

func (p Path) String() string { return p.URI }

// Name returns the last element of the path.
func (p Path) Name() string {
	if i := strings.LastIndexByte(p.Path, '/'); i >= 0 {
		return p.Path[i+1:]
	}
	return p.Path
}

// ReadSeekCloser is a random-access stream.
type ReadSeekCloser interface {
	io.Reader
	io.Seeker
	io.Closer
}

// Source lists and reads blobs.
type Source interface {
	// ListBlobs returns every regular blob under the root, sorted by path.
	// It can be called repeatedly.
	ListBlobs(ctx context.Context) ([]Path, error)
	// OpenReader opens a sequential stream over the blob.
	OpenReader(ctx context.Context, p Path) (io.ReadCloser, error)
	// OpenSeekable opens a random-access stream over the blob.
	OpenSeekable(ctx context.Context, p Path) (ReadSeekCloser, error)
	// Close releases the storage. It is safe to call more than once.
	Close() error
}

// Sink is a Source that can also create and remove blobs.
type Sink interface {
	Source
	// Blob resolves a path relative to the root.
	Blob(relative string) (Path, error)
	// OpenWriter creates or truncates the blob, creating parents as needed.
	OpenWriter(ctx context.Context, p Path) (io.WriteCloser, error)
	// Remove deletes the blob.
	Remove(ctx context.Context, p Path) error
}

// cleanRelative normalises a slash separated relative path and rejects
// paths that leave the root.
func cleanRelative(rel string) (string, error) {
	rel = strings.ReplaceAll(rel, "\\", "/")
	parts := strings.Split(rel, "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			if len(out) == 0 {
				return "", fmt.Errorf("%w: %s", ErrOutsideRoot, rel)
			}
			out = out[:len(out)-1]
		default:
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return "", fmt.Errorf("%w: empty path %q", ErrOutsideRoot, rel)
	}
	return strings.Join(out, "/"), nil
}
