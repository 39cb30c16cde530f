package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCustomer(t *testing.T) {
	c, err := DecodeCustomer([]string{"1", "John", "Doe", "1 Main St", "Springfield", "IL", "62704"})
	require.NoError(t, err)
	assert.Equal(t, "1", c.Number)
	assert.Equal(t, "Doe", c.LastName)
	assert.Equal(t, "62704", c.PostCode)

	_, err = DecodeCustomer([]string{"1", "John"})
	assert.Error(t, err)
}

func TestDecodeTransaction(t *testing.T) {
	tx, err := DecodeTransaction([]string{"1", "tx-001", "2024-01-15", "12.50"})
	require.NoError(t, err)
	assert.Equal(t, "1", tx.CustomerNumber)
	assert.Equal(t, "tx-001", tx.Number)
	assert.Equal(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), tx.TransactionDate)
	assert.InDelta(t, 12.50, tx.Amount, 1e-9)
}

func TestDecodeTransactionBadFields(t *testing.T) {
	_, err := DecodeTransaction([]string{"1", "tx-001", "15/01/2024", "12.50"})
	assert.Error(t, err, "wrong date layout")

	_, err = DecodeTransaction([]string{"1", "tx-001", "2024-01-15", "abc"})
	assert.Error(t, err, "non-numeric amount")

	_, err = DecodeTransaction([]string{"1", "tx-001"})
	assert.Error(t, err, "missing fields")
}

func TestEncodeTransactionMatchesDecodeLayout(t *testing.T) {
	tx := Transaction{
		CustomerNumber:  "2",
		Number:          "tx-007",
		TransactionDate: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		Amount:          3.456,
	}
	assert.Equal(t, []string{"2", "tx-007", "2024-06-01", "3.46"}, EncodeTransaction(tx))
}

func TestComputeBalanceRoundsHalfUp(t *testing.T) {
	c := Customer{
		Number: "1",
		Transactions: []Transaction{
			{Amount: 5.0},
			{Amount: 5.125},
		},
	}
	c.ComputeBalance()
	assert.InDelta(t, 10.13, c.Balance, 1e-9)
}

func TestComputeBalanceEmptyTransactions(t *testing.T) {
	c := Customer{Number: "1", Transactions: []Transaction{}}
	c.ComputeBalance()
	assert.Zero(t, c.Balance)
}

func TestEncodeCustomerBalance(t *testing.T) {
	c := Customer{
		Number:    "1",
		FirstName: "John",
		LastName:  "Doe",
		Address:   "1 Main St",
		City:      "Springfield",
		State:     "IL",
		PostCode:  "62704",
		Balance:   15.5,
	}
	fields := EncodeCustomerBalance(c)
	require.Len(t, fields, len(CustomerBalanceFileFields))
	assert.Equal(t, "15.50", fields[len(fields)-1])
}

func TestSumTransactions(t *testing.T) {
	sum := SumTransactions([]Transaction{
		{CustomerNumber: "3", Amount: 4.0},
		{CustomerNumber: "3", Amount: 6.004},
	})
	assert.Equal(t, "3", sum.CustomerNumber)
	assert.InDelta(t, 10.00, sum.Balance, 1e-9)
}

func TestDecodeStagingItem(t *testing.T) {
	item, err := DecodeStagingItem([]string{"staging-job", "value-1"})
	require.NoError(t, err)
	assert.Equal(t, "staging-job", item.JobID)
	assert.Equal(t, "value-1", item.Value)
	assert.False(t, item.Processed)

	_, err = DecodeStagingItem([]string{"only-one"})
	assert.Error(t, err)
}
