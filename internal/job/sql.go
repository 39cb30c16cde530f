// Package job assembles the batch jobs: it wires readers, processors,
// writers and checkpointing into runnable pipelines.
package job

import (
	"database/sql"
	"fmt"

	"github.com/BartekS5/batchline/pkg/database"
	"github.com/BartekS5/batchline/pkg/models"
)

// Ordered queries back the cursor readers. The ORDER BY on the key column is
// what makes accumulation and merging valid.
const (
	customerQuery = `SELECT number, first_name, last_name, address, city, state, post_code
		FROM customer ORDER BY number`
	transactionQuery = `SELECT customer_number, number, amount, transaction_date
		FROM [transaction] ORDER BY customer_number, number`
)

func scanCustomer(rows *sql.Rows) (models.Customer, error) {
	var c models.Customer
	err := rows.Scan(&c.Number, &c.FirstName, &c.LastName, &c.Address, &c.City, &c.State, &c.PostCode)
	return c, err
}

func scanTransaction(rows *sql.Rows) (models.Transaction, error) {
	var t models.Transaction
	err := rows.Scan(&t.CustomerNumber, &t.Number, &t.Amount, &t.TransactionDate)
	return t, err
}

// NewCustomerTableReader streams the customer table in key order.
func NewCustomerTableReader(db *sql.DB) *database.CursorReader[models.Customer] {
	return database.NewCursorReader(db, customerQuery, scanCustomer)
}

// NewTransactionTableReader streams the transaction table in key order.
func NewTransactionTableReader(db *sql.DB) *database.CursorReader[models.Transaction] {
	return database.NewCursorReader(db, transactionQuery, scanTransaction)
}

// TransactionTableWriter upserts transactions keyed by (customer number,
// transaction number). Upserting keeps the import job idempotent, which is
// what lets a resumed run re-process a chunk boundary safely.
type TransactionTableWriter struct {
	DB *sql.DB
}

func (w *TransactionTableWriter) Open() error { return nil }

func (w *TransactionTableWriter) Write(chunk []models.Transaction) error {
	for _, t := range chunk {
		var exists int
		err := w.DB.QueryRow(
			`SELECT 1 FROM [transaction] WHERE customer_number = @p1 AND number = @p2`,
			t.CustomerNumber, t.Number,
		).Scan(&exists)

		switch {
		case err == sql.ErrNoRows:
			if _, err := w.DB.Exec(
				`INSERT INTO [transaction] (customer_number, number, amount, transaction_date)
				VALUES (@p1, @p2, @p3, @p4)`,
				t.CustomerNumber, t.Number, t.Amount, t.TransactionDate,
			); err != nil {
				return fmt.Errorf("insert transaction %s/%s: %w", t.CustomerNumber, t.Number, err)
			}
		case err == nil:
			if _, err := w.DB.Exec(
				`UPDATE [transaction] SET amount = @p3, transaction_date = @p4
				WHERE customer_number = @p1 AND number = @p2`,
				t.CustomerNumber, t.Number, t.Amount, t.TransactionDate,
			); err != nil {
				return fmt.Errorf("update transaction %s/%s: %w", t.CustomerNumber, t.Number, err)
			}
		default:
			return fmt.Errorf("check transaction %s/%s: %w", t.CustomerNumber, t.Number, err)
		}
	}
	return nil
}

func (w *TransactionTableWriter) Close() error { return nil }
