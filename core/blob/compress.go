package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression is a blob compression recognised from the file suffix.
type Compression string

const (
	CompressionNone Compression = ""
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

// DetectCompression returns the compression of p from its name.
func DetectCompression(p Path) Compression {
	name := strings.ToLower(p.Name())
	switch {
	case strings.HasSuffix(name, ".gz"), strings.HasSuffix(name, ".gzip"):
		return CompressionGzip
	case strings.HasSuffix(name, ".zst"), strings.HasSuffix(name, ".zstd"):
		return CompressionZstd
	default:
		return CompressionNone
	}
}

// OpenDecompressed opens a sequential stream over p, decompressing gzip and
// zstd blobs. Closing the stream closes the underlying reader.
func OpenDecompressed(ctx context.Context, src Source, p Path) (io.ReadCloser, error) {
	rc, err := src.OpenReader(ctx, p)
	if err != nil {
		return nil, err
	}
	switch DetectCompression(p) {
	case CompressionGzip:
		zr, err := gzip.NewReader(rc)
		if err != nil {
			rc.Close()
			return nil, fmt.Errorf("failed to open gzip blob %s: %w", p.URI, noEOF(err, gzip.ErrHeader))
		}
		return &decompressed{Reader: zr, closers: []func() error{zr.Close, rc.Close}}, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(rc, zstd.WithDecoderConcurrency(1))
		if err != nil {
			rc.Close()
			return nil, fmt.Errorf("failed to open zstd blob %s: %w", p.URI, err)
		}
		release := func() error {
			zr.Close()
			return nil
		}
		return &decompressed{Reader: zr, closers: []func() error{release, rc.Close}}, nil
	default:
		return rc, nil
	}
}

// noEOF reports a truncated header as sub rather than io.EOF.
func noEOF(err, sub error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w (unexpected EOF)", sub)
	}
	return err
}

type decompressed struct {
	io.Reader
	closers []func() error
	closed  bool
}

func (d *decompressed) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	var errs []error
	for _, c := range d.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
