package synchro

import (
	"errors"
	"io"
)

// SameGroupFunc reports whether candidate belongs to the same group as the
// record that opened the group. It lets break logic use composite or partial
// keys, not just strict equality.
type SameGroupFunc[T any] func(first, candidate T) bool

// GroupReader is the control-break reader: each Read returns the maximal run
// of consecutive records belonging to one group, as decided by the injected
// predicate. Groups are never empty and never split across calls; the source
// is consumed in a single forward pass.
//
// The source must already be ordered so that records of a group are adjacent;
// the reader does not sort and cannot detect unordered input.
type GroupReader[T any] struct {
	reader    *PeekingReader[T]
	sameGroup SameGroupFunc[T]
}

func NewGroupReader[T any](source ItemReader[T], sameGroup SameGroupFunc[T]) *GroupReader[T] {
	return &GroupReader[T]{
		reader:    NewPeekingReader(source),
		sameGroup: sameGroup,
	}
}

func (g *GroupReader[T]) Open() error { return g.reader.Open() }

// Read accumulates the next group. It returns io.EOF once the underlying
// source is fully consumed.
func (g *GroupReader[T]) Read() ([]T, error) {
	first, err := g.reader.Read()
	if err != nil {
		// io.EOF included: the stream is exhausted.
		return nil, err
	}

	group := []T{first}
	for {
		candidate, err := g.reader.Peek()
		if errors.Is(err, io.EOF) {
			return group, nil
		}
		if err != nil {
			return nil, err
		}
		if !g.sameGroup(first, candidate) {
			return group, nil
		}
		item, err := g.reader.Read()
		if err != nil {
			return nil, err
		}
		group = append(group, item)
	}
}

func (g *GroupReader[T]) Close() error { return g.reader.Close() }
