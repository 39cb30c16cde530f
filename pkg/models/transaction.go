package models

import (
	"fmt"
	"time"

	"github.com/BartekS5/batchline/pkg/utils"
)

// Transaction is the detail record attached to customers during
// synchronization, and the unit of the export, import and grouping jobs.
type Transaction struct {
	CustomerNumber  string
	Number          string
	TransactionDate time.Time
	Amount          float64
}

// Key returns the join/grouping key of the record.
func (t Transaction) Key() string { return t.CustomerNumber }

// TransactionFileFields is the transaction flat-file header.
var TransactionFileFields = []string{"customerNumber", "number", "transactionDate", "amount"}

// DecodeTransaction maps one delimited transaction line, field by position.
func DecodeTransaction(fields []string) (Transaction, error) {
	if len(fields) != len(TransactionFileFields) {
		return Transaction{}, fmt.Errorf("expected %d fields, got %d", len(TransactionFileFields), len(fields))
	}
	date, err := utils.ParseDate(fields[2])
	if err != nil {
		return Transaction{}, err
	}
	amount, err := utils.ParseAmount(fields[3])
	if err != nil {
		return Transaction{}, err
	}
	return Transaction{
		CustomerNumber:  fields[0],
		Number:          fields[1],
		TransactionDate: date,
		Amount:          amount,
	}, nil
}

// EncodeTransaction renders a transaction for the export file.
func EncodeTransaction(t Transaction) []string {
	return []string{
		t.CustomerNumber,
		t.Number,
		utils.FormatDate(t.TransactionDate),
		utils.FormatAmount(t.Amount),
	}
}

// TransactionSum is the aggregate emitted by the grouping job: one row per
// customer with the sum of its transaction amounts.
type TransactionSum struct {
	CustomerNumber string
	Balance        float64
}

// TransactionSumFileFields is the grouping output header.
var TransactionSumFileFields = []string{"customerNumber", "balance"}

// EncodeTransactionSum renders a grouping aggregate row.
func EncodeTransactionSum(s TransactionSum) []string {
	return []string{s.CustomerNumber, utils.FormatAmount(s.Balance)}
}

// SumTransactions folds a transaction group into its aggregate. The group
// must be non-empty; accumulated groups always are.
func SumTransactions(group []Transaction) TransactionSum {
	var sum float64
	for _, t := range group {
		sum += t.Amount
	}
	return TransactionSum{
		CustomerNumber: group[0].CustomerNumber,
		Balance:        utils.RoundHalfUp(sum),
	}
}
