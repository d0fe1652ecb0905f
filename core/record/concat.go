package record

import (
	"context"
	"errors"
)

// Concat returns a Source that yields every record of the first part, then
// every record of the next, and so on. Parts are opened lazily, one at a
// time, and each is closed before the next one is opened.
func Concat(schema Schema, parts ...Source) Source {
	if len(parts) == 1 && parts[0].Schema().Equal(schema) {
		return parts[0]
	}
	list := make([]Source, len(parts))
	copy(list, parts)
	return NewSource(schema, func(ctx context.Context) (Iterator, error) {
		return &concatIterator{ctx: ctx, parts: list}, nil
	})
}

type concatIterator struct {
	ctx     context.Context
	parts   []Source
	next    int
	current Iterator
	rec     Record
	has     bool
	err     error
	done    bool
}

func (it *concatIterator) Next() bool {
	it.has = false
	if it.done {
		return false
	}
	for {
		if it.current == nil {
			if it.next >= len(it.parts) {
				it.done = true
				return false
			}
			cur, err := it.parts[it.next].Open(it.ctx)
			it.next++
			if err != nil {
				it.fail(err)
				return false
			}
			it.current = cur
		}
		if it.current.Next() {
			it.rec = it.current.Record()
			it.has = true
			return true
		}
		err := it.current.Err()
		cerr := it.current.Close()
		it.current = nil
		if err != nil || cerr != nil {
			it.fail(errors.Join(err, cerr))
			return false
		}
	}
}

func (it *concatIterator) fail(err error) {
	it.err = err
	it.done = true
}

func (it *concatIterator) Record() Record {
	MustPosition(it.has)
	return it.rec
}

func (it *concatIterator) Err() error { return it.err }

func (it *concatIterator) Close() error {
	it.done = true
	it.has = false
	if it.current == nil {
		return nil
	}
	err := it.current.Close()
	it.current = nil
	return err
}
