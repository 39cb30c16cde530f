package pipeline

import "errors"

// ItemWriter is the sink side of a pipeline: it durably persists one chunk
// per call. A failed Write means the whole chunk is uncommitted; the
// checkpoint is not advanced and the run fails.
type ItemWriter[T any] interface {
	Open() error
	Write(chunk []T) error
	Close() error
}

// multiWriter fans each chunk out to several sinks in order.
type multiWriter[T any] struct {
	writers []ItemWriter[T]
}

// MultiWriter composes writers into one sink. Open, Write and Close are
// applied to every delegate in order; the first Write error aborts the chunk.
func MultiWriter[T any](writers ...ItemWriter[T]) ItemWriter[T] {
	return &multiWriter[T]{writers: writers}
}

func (m *multiWriter[T]) Open() error {
	for _, w := range m.writers {
		if err := w.Open(); err != nil {
			return err
		}
	}
	return nil
}

func (m *multiWriter[T]) Write(chunk []T) error {
	for _, w := range m.writers {
		if err := w.Write(chunk); err != nil {
			return err
		}
	}
	return nil
}

func (m *multiWriter[T]) Close() error {
	var errs []error
	for _, w := range m.writers {
		errs = append(errs, w.Close())
	}
	return errors.Join(errs...)
}
