package job

import (
	"context"

	"github.com/BartekS5/batchline/internal/flatfile"
	"github.com/BartekS5/batchline/internal/pipeline"
	"github.com/BartekS5/batchline/internal/synchro"
	"github.com/BartekS5/batchline/pkg/models"
)

const groupingJobName = "groupingrecord-job"

// GroupingConfig wires the control-break job: transactions grouped by
// customer number, one summed balance row per customer.
type GroupingConfig struct {
	TransactionFile string
	OutputFile      string
	ChunkSize       int
	Store           pipeline.CheckpointStore
	DryRun          bool
}

// Grouping sums each customer's transactions from an ordered transaction
// file into a customerNumber;balance file.
func Grouping(ctx context.Context, cfg GroupingConfig) error {
	resume, err := pipeline.Resuming(cfg.Store, groupingJobName)
	if err != nil {
		return err
	}

	reader := synchro.NewGroupReader(
		flatfile.NewReader(cfg.TransactionFile, models.DecodeTransaction),
		sameCustomer,
	)

	process := func(group []models.Transaction) (models.TransactionSum, error) {
		return models.SumTransactions(group), nil
	}

	writer := flatfile.NewWriter(
		cfg.OutputFile,
		models.TransactionSumFileFields,
		models.EncodeTransactionSum,
	).WithAppend(resume)

	return pipeline.New(groupingJobName, reader, process, writer).
		WithChunkSize(cfg.ChunkSize).
		WithCheckpointStore(cfg.Store).
		WithDryRun(cfg.DryRun).
		Run(ctx)
}

// sameCustomer is the break-key predicate of the grouping job.
func sameCustomer(first, candidate models.Transaction) bool {
	return first.CustomerNumber == candidate.CustomerNumber
}
