package blob

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
)

// Local is a Sink backed by a directory on the local filesystem.
type Local struct {
	root   string
	closed atomic.Bool
}

// NewLocal validates root and returns a storage rooted at it. The root must
// exist and be a directory.
func NewLocal(root string) (*Local, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("%w: root path is empty", ErrInvalidRoot)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRoot, root, err)
	}
	// WalkDir does not descend into a symlinked root.
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRoot, abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, abs)
	}
	return &Local{root: filepath.Clean(abs)}, nil
}

// Root returns the absolute root directory.
func (l *Local) Root() string { return l.root }

func (l *Local) ListBlobs(ctx context.Context) ([]Path, error) {
	if l.closed.Load() {
		return nil, ErrClosed
	}
	var out []Path
	err := filepath.WalkDir(l.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(l.root, p)
		if err != nil {
			return err
		}
		out = append(out, l.pathFor(filepath.ToSlash(rel)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", l.root, err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (l *Local) OpenReader(ctx context.Context, p Path) (io.ReadCloser, error) {
	return l.open(p)
}

func (l *Local) OpenSeekable(ctx context.Context, p Path) (ReadSeekCloser, error) {
	return l.open(p)
}

func (l *Local) open(p Path) (*os.File, error) {
	if l.closed.Load() {
		return nil, ErrClosed
	}
	name, err := l.resolve(p)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", p.URI, err)
	}
	return f, nil
}

func (l *Local) Blob(relative string) (Path, error) {
	rel, err := cleanRelative(relative)
	if err != nil {
		return Path{}, err
	}
	return l.pathFor(rel), nil
}

func (l *Local) OpenWriter(ctx context.Context, p Path) (io.WriteCloser, error) {
	if l.closed.Load() {
		return nil, ErrClosed
	}
	name, err := l.resolve(p)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create parent of %s: %w", p.URI, err)
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", p.URI, err)
	}
	return f, nil
}

func (l *Local) Remove(ctx context.Context, p Path) error {
	if l.closed.Load() {
		return ErrClosed
	}
	name, err := l.resolve(p)
	if err != nil {
		return err
	}
	if err := os.Remove(name); err != nil {
		return fmt.Errorf("failed to remove %s: %w", p.URI, err)
	}
	return nil
}

// Close marks the storage closed. The local backend holds no resources.
func (l *Local) Close() error {
	l.closed.Store(true)
	return nil
}

func (l *Local) pathFor(rel string) Path {
	abs := filepath.ToSlash(filepath.Join(l.root, filepath.FromSlash(rel)))
	if !strings.HasPrefix(abs, "/") {
		// Windows drive letters
		abs = "/" + abs
	}
	u := url.URL{Scheme: "file", Path: abs}
	return Path{URI: u.String(), Path: abs, RelativePath: rel}
}

// resolve maps p back to a filesystem name under the root.
func (l *Local) resolve(p Path) (string, error) {
	rel, err := cleanRelative(p.RelativePath)
	if err != nil {
		return "", err
	}
	return filepath.Join(l.root, filepath.FromSlash(rel)), nil
}
