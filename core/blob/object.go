package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"sync/atomic"

	"source-resolver/core/storage"

	"github.com/minio/minio-go/v7"
)

// Object is a Sink backed by a bucket and key prefix on S3-compatible
// object storage.
type Object struct {
	client storage.Client
	bucket string
	prefix string
	closed atomic.Bool
}

// NewObject returns a storage over bucket/prefix. It fails immediately when
// the bucket does not exist or cannot be reached.
func NewObject(ctx context.Context, client storage.Client, bucket, prefix string) (*Object, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: object storage client is nil", ErrInvalidRoot)
	}
	if strings.TrimSpace(bucket) == "" {
		return nil, fmt.Errorf("%w: bucket is empty", ErrInvalidRoot)
	}
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("%w: bucket %s: %v", ErrInvalidRoot, bucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: bucket %s does not exist", ErrInvalidRoot, bucket)
	}
	prefix = strings.Trim(strings.ReplaceAll(prefix, "\\", "/"), "/")
	if prefix != "" {
		prefix += "/"
	}
	return &Object{client: client, bucket: bucket, prefix: prefix}, nil
}

// Bucket returns the bucket name.
func (o *Object) Bucket() string { return o.bucket }

// Prefix returns the normalised key prefix, with a trailing slash when set.
func (o *Object) Prefix() string { return o.prefix }

func (o *Object) ListBlobs(ctx context.Context) ([]Path, error) {
	if o.closed.Load() {
		return nil, ErrClosed
	}
	objects := o.client.ListObjects(ctx, o.bucket, minio.ListObjectsOptions{
		Prefix:    o.prefix,
		Recursive: true,
	})

	var out []Path
	for obj := range objects {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list s3://%s/%s: %w", o.bucket, o.prefix, obj.Err)
		}
		// Directory markers
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		rel := strings.TrimPrefix(obj.Key, o.prefix)
		if rel == "" {
			continue
		}
		out = append(out, o.pathFor(obj.Key, rel))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (o *Object) OpenReader(ctx context.Context, p Path) (io.ReadCloser, error) {
	return o.get(ctx, p)
}

// OpenSeekable returns the object stream when it supports seeking and
// otherwise buffers the object in memory.
func (o *Object) OpenSeekable(ctx context.Context, p Path) (ReadSeekCloser, error) {
	rc, err := o.get(ctx, p)
	if err != nil {
		return nil, err
	}
	if rs, ok := rc.(ReadSeekCloser); ok {
		return rs, nil
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p.URI, err)
	}
	return nopSeekCloser{bytes.NewReader(data)}, nil
}

func (o *Object) get(ctx context.Context, p Path) (io.ReadCloser, error) {
	if o.closed.Load() {
		return nil, ErrClosed
	}
	key, err := o.key(p)
	if err != nil {
		return nil, err
	}
	rc, err := o.client.GetObject(ctx, o.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", p.URI, err)
	}
	return rc, nil
}

func (o *Object) Blob(relative string) (Path, error) {
	rel, err := cleanRelative(relative)
	if err != nil {
		return Path{}, err
	}
	return o.pathFor(o.prefix+rel, rel), nil
}

// OpenWriter streams written bytes into PutObject. The upload completes when
// the writer is closed and Close reports its result.
func (o *Object) OpenWriter(ctx context.Context, p Path) (io.WriteCloser, error) {
	if o.closed.Load() {
		return nil, ErrClosed
	}
	key, err := o.key(p)
	if err != nil {
		return nil, err
	}
	pr, pw := io.Pipe()
	w := &objectWriter{pw: pw, done: make(chan error, 1)}
	go func() {
		_, err := o.client.PutObject(ctx, o.bucket, key, pr, -1, minio.PutObjectOptions{})
		pr.CloseWithError(err)
		w.done <- err
	}()
	return w, nil
}

// Close marks the storage closed. The shared client is owned by the caller.
func (o *Object) Close() error {
	o.closed.Store(true)
	return nil
}

func (o *Object) Remove(ctx context.Context, p Path) error {
	if o.closed.Load() {
		return ErrClosed
	}
	key, err := o.key(p)
	if err != nil {
		return err
	}
	if err := o.client.RemoveObject(ctx, o.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove %s: %w", p.URI, err)
	}
	return nil
}

func (o *Object) key(p Path) (string, error) {
	rel, err := cleanRelative(p.RelativePath)
	if err != nil {
		return "", err
	}
	return o.prefix + rel, nil
}

func (o *Object) pathFor(key, rel string) Path {
	u := url.URL{Scheme: "s3", Host: o.bucket, Path: "/" + key}
	return Path{URI: u.String(), Path: "/" + key, RelativePath: rel}
}

type nopSeekCloser struct {
	*bytes.Reader
}

func (nopSeekCloser) Close() error { return nil }

type objectWriter struct {
	pw     *io.PipeWriter
	done   chan error
	closed bool
	err    error
}

func (w *objectWriter) Write(p []byte) (int, error) {
	return w.pw.Write(p)
}

func (w *objectWriter) Close() error {
	if w.closed {
		return w.err
	}
	w.closed = true
	if err := w.pw.Close(); err != nil {
		w.err = err
		return err
	}
	if err := <-w.done; err != nil {
		w.err = fmt.Errorf("failed to upload object: %w", err)
	}
	return w.err
}
