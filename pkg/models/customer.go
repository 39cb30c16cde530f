// Package models defines the record shapes moved by the batch jobs, together
// with their positional flat-file codecs. Field order in the codecs matches
// the header declared for each file format.
package models

import (
	"fmt"

	"github.com/BartekS5/batchline/pkg/utils"
)

// Customer is the master record of the synchro jobs. Its Transactions
// collection is populated by the master/detail merge and its Balance by the
// processing stage.
type Customer struct {
	Number    string
	FirstName string
	LastName  string
	Address   string
	City      string
	State     string
	PostCode  string

	Transactions []Transaction
	Balance      float64
}

// Key returns the join/grouping key of the record.
func (c Customer) Key() string { return c.Number }

// ComputeBalance sums the attached transaction amounts, rounded to two
// decimal places (half up).
func (c *Customer) ComputeBalance() {
	var sum float64
	for _, tx := range c.Transactions {
		sum += tx.Amount
	}
	c.Balance = utils.RoundHalfUp(sum)
}

// CustomerFileFields is the customer flat-file header.
var CustomerFileFields = []string{"number", "firstName", "lastName", "address", "city", "state", "postCode"}

// CustomerBalanceFileFields is the header of the enriched output file.
var CustomerBalanceFileFields = []string{"number", "firstName", "lastName", "address", "city", "state", "postCode", "balance"}

// DecodeCustomer maps one delimited customer line, field by position.
func DecodeCustomer(fields []string) (Customer, error) {
	if len(fields) != len(CustomerFileFields) {
		return Customer{}, fmt.Errorf("expected %d fields, got %d", len(CustomerFileFields), len(fields))
	}
	return Customer{
		Number:    fields[0],
		FirstName: fields[1],
		LastName:  fields[2],
		Address:   fields[3],
		City:      fields[4],
		State:     fields[5],
		PostCode:  fields[6],
	}, nil
}

// EncodeCustomerBalance renders a customer with its computed balance for the
// synchro output file.
func EncodeCustomerBalance(c Customer) []string {
	return []string{
		c.Number,
		c.FirstName,
		c.LastName,
		c.Address,
		c.City,
		c.State,
		c.PostCode,
		utils.FormatAmount(c.Balance),
	}
}
