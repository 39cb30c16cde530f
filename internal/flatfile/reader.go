// Package flatfile reads and writes the delimited record files moved by the
// batch jobs: `;`-separated fields, one header line, positional columns.
package flatfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Delimiter separates fields in every flat file handled by the jobs.
const Delimiter = ';'

// ParseError reports a line that could not be decoded into the expected
// record shape, with its position and content. It is fatal to the run.
type ParseError struct {
	Path    string
	Line    int
	Content string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: cannot parse %q: %v", e.Path, e.Line, e.Content, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// DecodeFunc maps the fields of one line onto a record, by position.
type DecodeFunc[T any] func(fields []string) (T, error)

// Reader streams records from a delimited file. The header line is skipped
// on Open; Read returns io.EOF at end of file.
type Reader[T any] struct {
	path   string
	decode DecodeFunc[T]

	file *os.File
	csv  *csv.Reader
	line int
}

func NewReader[T any](path string, decode DecodeFunc[T]) *Reader[T] {
	return &Reader[T]{path: path, decode: decode}
}

func (r *Reader[T]) Open() error {
	f, err := os.Open(r.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", r.path, err)
	}
	r.file = f
	r.csv = csv.NewReader(f)
	r.csv.Comma = Delimiter
	r.csv.FieldsPerRecord = -1
	r.line = 0

	// Skip the header. An empty file behaves like an exhausted source.
	if _, err := r.csv.Read(); err != nil && !errors.Is(err, io.EOF) {
		f.Close()
		r.file = nil
		return fmt.Errorf("read header of %s: %w", r.path, err)
	}
	r.line = 1
	return nil
}

func (r *Reader[T]) Read() (T, error) {
	var zero T

	fields, err := r.csv.Read()
	if errors.Is(err, io.EOF) {
		return zero, io.EOF
	}
	r.line++
	if err != nil {
		return zero, &ParseError{Path: r.path, Line: r.line, Content: "", Err: err}
	}

	record, err := r.decode(fields)
	if err != nil {
		return zero, &ParseError{
			Path:    r.path,
			Line:    r.line,
			Content: strings.Join(fields, string(Delimiter)),
			Err:     err,
		}
	}
	return record, nil
}

func (r *Reader[T]) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
