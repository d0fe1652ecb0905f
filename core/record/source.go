package record

import (
	"context"
	"errors"
)

// Iterator walks the records of one read of a Source.
//
// Next advances to the next record and reports whether one is available.
// Record returns the current record and panics when Next has not returned
// true. Err reports the error that stopped iteration, if any. Close releases
// the underlying stream and is safe to call more than once.
type Iterator interface {
	Next() bool
	Record() Record
	Err() error
	Close() error
}

// Source is a schema plus a factory of independent iterators.
type Source interface {
	Schema() Schema
	Open(ctx context.Context) (Iterator, error)
}

// OpenFunc adapts a function to the Open half of Source.
type OpenFunc func(ctx context.Context) (Iterator, error)

type funcSource struct {
	schema Schema
	open   OpenFunc
}

// NewSource builds a Source from a schema and an iterator factory.
func NewSource(schema Schema, open OpenFunc) Source {
	return &funcSource{schema: schema, open: open}
}

func (s *funcSource) Schema() Schema { return s.schema }

func (s *funcSource) Open(ctx context.Context) (Iterator, error) { return s.open(ctx) }

// errNotPositioned is the panic value used when Record is called without a
// successful Next.
var errNotPositioned = errors.New("record: Record called before Next or after iteration ended")

// MustPosition panics when an iterator has no current record. Iterator
// implementations call it from Record.
func MustPosition(ok bool) {
	if !ok {
		panic(errNotPositioned)
	}
}

// ForEach opens src and calls fn for every record. The iterator is always
// closed; a close failure is reported unless an earlier error occurred.
func ForEach(ctx context.Context, src Source, fn func(Record) error) (err error) {
	it, err := src.Open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := it.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()
	for it.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(it.Record()); err != nil {
			return err
		}
	}
	return it.Err()
}

// Collect reads every record of src into memory.
func Collect(ctx context.Context, src Source) ([]Record, error) {
	var out []Record
	err := ForEach(ctx, src, func(r Record) error {
		out = append(out, r)
		return nil
	})
	return out, err
}

// CollectN reads at most n records of src. n <= 0 reads everything.
func CollectN(ctx context.Context, src Source, n int) ([]Record, error) {
	var out []Record
	stop := errors.New("stop")
	err := ForEach(ctx, src, func(r Record) error {
		out = append(out, r)
		if n > 0 && len(out) >= n {
			return stop
		}
		return nil
	})
	if errors.Is(err, stop) {
		err = nil
	}
	return out, err
}

// Count iterates src and returns the number of records.
func Count(ctx context.Context, src Source) (int, error) {
	n := 0
	err := ForEach(ctx, src, func(Record) error {
		n++
		return nil
	})
	return n, err
}
