package synchro

// Accumulator reads all consecutive records sharing one key from an ordered
// source. It is the key-equality specialization of GroupReader, plus a key
// accessor so callers can compare groups from different streams.
type Accumulator[T any, K comparable] struct {
	group *GroupReader[T]
	key   func(T) K
}

func NewAccumulator[T any, K comparable](source ItemReader[T], key func(T) K) *Accumulator[T, K] {
	return &Accumulator[T, K]{
		group: NewGroupReader(source, func(first, candidate T) bool {
			return key(first) == key(candidate)
		}),
		key: key,
	}
}

func (a *Accumulator[T, K]) Open() error { return a.group.Open() }

// Read returns the next key group, or io.EOF when the source is exhausted.
// A single-record group is normal: it means the key has no duplicates.
func (a *Accumulator[T, K]) Read() ([]T, error) {
	return a.group.Read()
}

// Key returns the grouping key of a record.
func (a *Accumulator[T, K]) Key(item T) K { return a.key(item) }

func (a *Accumulator[T, K]) Close() error { return a.group.Close() }
