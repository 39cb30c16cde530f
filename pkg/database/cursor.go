package database

import (
	"database/sql"
	"fmt"
	"io"
)

// RowScanner maps the current row of a result set onto a record.
type RowScanner[T any] func(rows *sql.Rows) (T, error)

// CursorReader streams records from an ordered query, one row per Read.
// The query's ORDER BY establishes the key ordering that accumulation and
// merging rely on; the reader itself does not sort. Replaying is reopening:
// the same query yields the same rows in the same order, which is what
// checkpoint resume requires.
type CursorReader[T any] struct {
	db    *sql.DB
	query string
	args  []interface{}
	scan  RowScanner[T]

	rows *sql.Rows
}

func NewCursorReader[T any](db *sql.DB, query string, scan RowScanner[T], args ...interface{}) *CursorReader[T] {
	return &CursorReader[T]{db: db, query: query, args: args, scan: scan}
}

func (r *CursorReader[T]) Open() error {
	rows, err := r.db.Query(r.query, r.args...)
	if err != nil {
		return fmt.Errorf("open cursor: %w", err)
	}
	r.rows = rows
	return nil
}

func (r *CursorReader[T]) Read() (T, error) {
	var zero T
	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			return zero, fmt.Errorf("cursor read: %w", err)
		}
		return zero, io.EOF
	}
	record, err := r.scan(r.rows)
	if err != nil {
		return zero, fmt.Errorf("scan row: %w", err)
	}
	return record, nil
}

func (r *CursorReader[T]) Close() error {
	if r.rows == nil {
		return nil
	}
	err := r.rows.Close()
	r.rows = nil
	return err
}
