package job

import (
	"context"
	"database/sql"

	"github.com/BartekS5/batchline/internal/flatfile"
	"github.com/BartekS5/batchline/internal/pipeline"
	"github.com/BartekS5/batchline/internal/synchro"
	"github.com/BartekS5/batchline/pkg/models"
)

// SynchroOptions are the settings shared by the three synchro variants.
// Archive, when set, receives every written chunk in addition to the output
// file.
type SynchroOptions struct {
	ChunkSize int
	Store     pipeline.CheckpointStore
	Archive   pipeline.ItemWriter[models.Customer]
	DryRun    bool
}

// Table2FileSynchro merges the customer table (master) with a transaction
// file (detail) into a balance-enriched customer file.
func Table2FileSynchro(ctx context.Context, db *sql.DB, transactionFile, outputFile string, opts SynchroOptions) error {
	master := NewCustomerTableReader(db)
	detail := flatfile.NewReader(transactionFile, models.DecodeTransaction)
	return runCustomerSynchro(ctx, "table2filesynchro-job", master, detail, outputFile, opts)
}

// File2TableSynchro merges a customer file (master) with the transaction
// table (detail) into a balance-enriched customer file.
func File2TableSynchro(ctx context.Context, db *sql.DB, customerFile, outputFile string, opts SynchroOptions) error {
	master := flatfile.NewReader(customerFile, models.DecodeCustomer)
	detail := NewTransactionTableReader(db)
	return runCustomerSynchro(ctx, "file2tablesynchro-job", master, detail, outputFile, opts)
}

// File2FileSynchro merges a customer file (master) with a transaction file
// (detail) into a balance-enriched customer file. No database involved.
func File2FileSynchro(ctx context.Context, customerFile, transactionFile, outputFile string, opts SynchroOptions) error {
	master := flatfile.NewReader(customerFile, models.DecodeCustomer)
	detail := flatfile.NewReader(transactionFile, models.DecodeTransaction)
	return runCustomerSynchro(ctx, "file2filesynchro-job", master, detail, outputFile, opts)
}

func runCustomerSynchro(
	ctx context.Context,
	name string,
	master synchro.ItemReader[models.Customer],
	detail synchro.ItemReader[models.Transaction],
	outputFile string,
	opts SynchroOptions,
) error {
	resume, err := pipeline.Resuming(opts.Store, name)
	if err != nil {
		return err
	}

	merged := synchro.NewMasterDetailReader(
		synchro.NewAccumulator(master, models.Customer.Key),
		synchro.NewAccumulator(detail, models.Transaction.Key),
		attachTransactions,
	)

	writer := flatfile.NewWriter(
		outputFile,
		models.CustomerBalanceFileFields,
		models.EncodeCustomerBalance,
	).WithAppend(resume)

	var sink pipeline.ItemWriter[models.Customer] = writer
	if opts.Archive != nil {
		sink = pipeline.MultiWriter[models.Customer](writer, opts.Archive)
	}

	return pipeline.New(name, merged, computeBalance, sink).
		WithChunkSize(opts.ChunkSize).
		WithCheckpointStore(opts.Store).
		WithDryRun(opts.DryRun).
		Run(ctx)
}

// attachTransactions is the merge's attach step. A customer with no matching
// detail group carries an empty collection, never a nil one.
func attachTransactions(c models.Customer, details []models.Transaction) models.Customer {
	if details == nil {
		details = []models.Transaction{}
	}
	c.Transactions = details
	return c
}

func computeBalance(c models.Customer) (models.Customer, error) {
	c.ComputeBalance()
	return c, nil
}
