// Package synchro implements the record-stream readers behind the
// synchronization and grouping jobs: peek-ahead reading, key-based
// accumulation, control-break grouping and master/detail merging over
// ascending-key-ordered sources.
package synchro

import "io"

// ItemReader is the contract every record source satisfies: a forward-only
// stream of typed records. Read returns io.EOF once the source is exhausted.
// Sources are opened once, advance monotonically and are closed exactly once
// by their owner.
type ItemReader[T any] interface {
	Open() error
	Read() (T, error)
	Close() error
}

// SliceReader serves records from memory. It is used for in-process record
// streams and as a source stand-in throughout the tests.
type SliceReader[T any] struct {
	items []T
	pos   int
}

func NewSliceReader[T any](items []T) *SliceReader[T] {
	return &SliceReader[T]{items: items}
}

func (r *SliceReader[T]) Open() error { return nil }

func (r *SliceReader[T]) Read() (T, error) {
	if r.pos >= len(r.items) {
		var zero T
		return zero, io.EOF
	}
	item := r.items[r.pos]
	r.pos++
	return item, nil
}

func (r *SliceReader[T]) Close() error { return nil }
