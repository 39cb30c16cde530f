package synchro

// PeekingReader decorates an ItemReader with single-record lookahead. Peek
// exposes the next record without advancing the consumption position and is
// idempotent: repeated peeks without an intervening Read return the same
// record.
type PeekingReader[T any] struct {
	delegate ItemReader[T]
	buffered bool
	lookahead T
}

func NewPeekingReader[T any](delegate ItemReader[T]) *PeekingReader[T] {
	return &PeekingReader[T]{delegate: delegate}
}

func (r *PeekingReader[T]) Open() error { return r.delegate.Open() }

// Read returns the buffered lookahead record if one exists, otherwise the
// next record from the delegate.
func (r *PeekingReader[T]) Read() (T, error) {
	if r.buffered {
		item := r.lookahead
		r.buffered = false
		var zero T
		r.lookahead = zero
		return item, nil
	}
	return r.delegate.Read()
}

// Peek returns the next record without consuming it. io.EOF means the
// delegate is exhausted; read errors are returned as-is and nothing is
// buffered.
func (r *PeekingReader[T]) Peek() (T, error) {
	if r.buffered {
		return r.lookahead, nil
	}
	item, err := r.delegate.Read()
	if err != nil {
		var zero T
		return zero, err
	}
	r.lookahead = item
	r.buffered = true
	return item, nil
}

func (r *PeekingReader[T]) Close() error { return r.delegate.Close() }
