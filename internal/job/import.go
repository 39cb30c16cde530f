package job

import (
	"context"
	"database/sql"

	"github.com/BartekS5/batchline/internal/flatfile"
	"github.com/BartekS5/batchline/internal/pipeline"
	"github.com/BartekS5/batchline/pkg/models"
)

const importJobName = "simple-import-job"

// ImportConfig wires the simple import job: transaction file in, upserts
// into the transaction table.
type ImportConfig struct {
	DB        *sql.DB
	InputFile string
	ChunkSize int
	Store     pipeline.CheckpointStore
	DryRun    bool
}

// Import loads a transaction flat file into the transaction table.
func Import(ctx context.Context, cfg ImportConfig) error {
	reader := flatfile.NewReader(cfg.InputFile, models.DecodeTransaction)
	writer := &TransactionTableWriter{DB: cfg.DB}

	return pipeline.New(importJobName, reader, pipeline.Identity[models.Transaction](), writer).
		WithChunkSize(cfg.ChunkSize).
		WithCheckpointStore(cfg.Store).
		WithDryRun(cfg.DryRun).
		Run(ctx)
}
