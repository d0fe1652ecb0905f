package text

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"source-resolver/core/blob"
	"source-resolver/core/format"
	"source-resolver/core/record"
)

// Handler implements format.Handler for the text formats.
type Handler struct {
	kind         format.Kind
	common       Common
	emptyValue   *string
	columns      []Column
	newTokenizer func(r io.Reader, lim limits) tokenizer
}

var _ format.Handler = (*Handler)(nil)

// NewCSV returns a CSV handler.
func NewCSV(s CSV) (*Handler, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &Handler{
		kind:       format.KindCSV,
		common:     s.Common,
		emptyValue: s.EmptyValue,
		newTokenizer: func(r io.Reader, lim limits) tokenizer {
			return newCSVTokenizer(r, s, lim)
		},
	}, nil
}

// NewTSV returns a TSV handler.
func NewTSV(s TSV) (*Handler, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &Handler{
		kind:   format.KindTSV,
		common: s.Common,
		newTokenizer: func(r io.Reader, lim limits) tokenizer {
			return newTSVTokenizer(r, s, lim)
		},
	}, nil
}

// NewFWF returns a fixed-width handler.
func NewFWF(s FWF) (*Handler, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &Handler{
		kind:    format.KindFWF,
		common:  s.Common,
		columns: append([]Column(nil), s.Columns...),
		newTokenizer: func(r io.Reader, lim limits) tokenizer {
			return newFWFTokenizer(r, s, lim)
		},
	}, nil
}

// Kind returns the format handled.
func (h *Handler) Kind() format.Kind { return h.kind }

func (h *Handler) limits(p blob.Path) limits {
	return limits{blob: p.URI, maxColumns: h.common.MaxColumns, maxChars: h.common.MaxCharsPerColumn}
}

// InferSchema reads the first row of the blob. Fixed-width schemas come
// from the declared columns and do not read the blob.
func (h *Handler) InferSchema(ctx context.Context, p blob.Path, src blob.Source) (record.Schema, error) {
	if h.columns != nil {
		names := make([]string, len(h.columns))
		for i, c := range h.columns {
			names[i] = c.Name
		}
		return record.StringSchema(names...)
	}

	rc, err := blob.OpenDecompressed(ctx, src, p)
	if err != nil {
		return record.Schema{}, err
	}
	defer rc.Close()

	rows := newRows(h.newTokenizer(rc, h.limits(p)), h.common)
	first, err := rows.next()
	if errors.Is(err, io.EOF) {
		if len(h.common.Headers) > 0 {
			return record.StringSchema(h.common.Headers...)
		}
		return record.StringSchema()
	}
	if err != nil {
		return record.Schema{}, fmt.Errorf("failed to infer schema of %s: %w", p.URI, err)
	}

	if len(h.common.Headers) > 0 {
		return record.StringSchema(h.common.Headers...)
	}
	names := make([]string, len(first.cells))
	for i, c := range first.cells {
		if h.common.HasHeader {
			names[i] = strings.TrimSpace(c.value)
		}
	}
	return record.StringSchema(uniqueNames(names)...)
}

// uniqueNames fills blank names with col_<i> and suffixes repeated names
// with _2, _3 and so on.
func uniqueNames(names []string) []string {
	out := make([]string, len(names))
	used := make(map[string]bool, len(names))
	for i, n := range names {
		if n == "" {
			n = "col_" + strconv.Itoa(i)
		}
		name := n
		for k := 2; used[name]; k++ {
			name = n + "_" + strconv.Itoa(k)
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// CreateRecordSource returns a source that re-reads the blob on every Open.
// gzip and zstd blobs are decompressed by suffix.
func (h *Handler) CreateRecordSource(p blob.Path, src blob.Source, schema record.Schema) record.Source {
	return record.NewSource(schema, func(ctx context.Context) (record.Iterator, error) {
		rc, err := blob.OpenDecompressed(ctx, src, p)
		if err != nil {
			return nil, err
		}
		it := &iterator{
			ctx:    ctx,
			h:      h,
			rc:     rc,
			rows:   newRows(h.newTokenizer(rc, h.limits(p)), h.common),
			schema: schema,
			uri:    p.URI,
		}
		if h.common.HasHeader {
			it.skipHeader = true
		}
		return it, nil
	})
}

func (h *Handler) value(c cell) any {
	v := c.value
	if !c.quoted {
		if h.common.IgnoreLeadingWhitespaces {
			v = strings.TrimLeftFunc(v, unicode.IsSpace)
		}
		if h.common.IgnoreTrailingWhitespaces {
			v = strings.TrimRightFunc(v, unicode.IsSpace)
		}
	}
	if v != "" {
		return v
	}
	sub := h.common.NullValue
	if c.quoted {
		sub = h.emptyValue
	}
	if sub == nil {
		return nil
	}
	return *sub
}

// rows applies row skipping and empty line handling on top of a tokenizer.
type rows struct {
	tok     tokenizer
	common  Common
	skipped bool
}

func newRows(tok tokenizer, common Common) *rows {
	return &rows{tok: tok, common: common}
}

func (r *rows) next() (row, error) {
	if !r.skipped {
		r.skipped = true
		for i := int64(0); i < r.common.NumberOfRowsToSkip; i++ {
			if _, err := r.tok.next(); err != nil {
				return row{}, err
			}
		}
	}
	for {
		rw, err := r.tok.next()
		if err != nil {
			return row{}, err
		}
		if rw.blank && r.common.SkipEmptyLines {
			continue
		}
		return rw, nil
	}
}

type iterator struct {
	ctx        context.Context
	h          *Handler
	rc         io.ReadCloser
	rows       *rows
	schema     record.Schema
	uri        string
	skipHeader bool
	cur        record.Record
	has        bool
	count      int64
	err        error
	done       bool
	closed     bool
	closeErr   error
}

func (it *iterator) Next() bool {
	it.has = false
	if it.done {
		return false
	}
	if limit := it.h.common.NumberOfRecordsToRead; limit > 0 && it.count >= limit {
		it.finish(nil)
		return false
	}
	if err := it.ctx.Err(); err != nil {
		it.finish(err)
		return false
	}
	if it.skipHeader {
		it.skipHeader = false
		if _, err := it.rows.next(); err != nil {
			it.finish(err)
			return false
		}
	}
	rw, err := it.rows.next()
	if err != nil {
		it.finish(err)
		return false
	}
	values := make([]any, it.schema.Len())
	for i := 0; i < len(values) && i < len(rw.cells); i++ {
		values[i] = it.h.value(rw.cells[i])
	}
	it.cur = record.New(it.schema, values...)
	it.has = true
	it.count++
	return true
}

// finish ends iteration and releases the stream. io.EOF is not an error.
func (it *iterator) finish(err error) {
	it.done = true
	if err != nil && !errors.Is(err, io.EOF) {
		var pe *ParseError
		if !errors.As(err, &pe) && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("failed to read %s: %w", it.uri, err)
		}
		it.err = err
	}
	it.release()
}

func (it *iterator) release() {
	if it.closed {
		return
	}
	it.closed = true
	it.closeErr = it.rc.Close()
}

func (it *iterator) Record() record.Record {
	record.MustPosition(it.has)
	return it.cur
}

func (it *iterator) Err() error { return it.err }

func (it *iterator) Close() error {
	it.done = true
	it.has = false
	it.release()
	return it.closeErr
}
