package flatfile

import (
	"encoding/csv"
	"fmt"
	"os"
)

// EncodeFunc renders a record as positional fields, mirroring the header.
type EncodeFunc[T any] func(record T) []string

// Writer persists chunks of records to a delimited file, writing the header
// first. In append mode it reopens an existing file without rewriting the
// header, which is how a resumed run continues behind already-committed
// output.
type Writer[T any] struct {
	path   string
	header []string
	encode EncodeFunc[T]
	append bool

	file *os.File
	csv  *csv.Writer
}

func NewWriter[T any](path string, header []string, encode EncodeFunc[T]) *Writer[T] {
	return &Writer[T]{path: path, header: header, encode: encode}
}

// WithAppend reopens existing output instead of truncating it. Used when the
// job resumes from a checkpoint.
func (w *Writer[T]) WithAppend(appendMode bool) *Writer[T] {
	w.append = appendMode
	return w
}

func (w *Writer[T]) Open() error {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if w.append {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(w.path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", w.path, err)
	}
	w.file = f
	w.csv = csv.NewWriter(f)
	w.csv.Comma = Delimiter

	writeHeader := true
	if w.append {
		info, err := f.Stat()
		if err != nil {
			f.Close()
			w.file = nil
			return err
		}
		writeHeader = info.Size() == 0
	}
	if writeHeader {
		if err := w.csv.Write(w.header); err != nil {
			f.Close()
			w.file = nil
			return fmt.Errorf("write header of %s: %w", w.path, err)
		}
	}
	return nil
}

// Write appends one chunk and flushes it, so a committed chunk is on disk
// before the checkpoint advances.
func (w *Writer[T]) Write(chunk []T) error {
	for _, record := range chunk {
		if err := w.csv.Write(w.encode(record)); err != nil {
			return fmt.Errorf("write to %s: %w", w.path, err)
		}
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", w.path, err)
	}
	return w.file.Sync()
}

func (w *Writer[T]) Close() error {
	if w.file == nil {
		return nil
	}
	w.csv.Flush()
	err := w.file.Close()
	w.file = nil
	return err
}
