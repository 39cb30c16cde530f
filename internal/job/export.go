package job

import (
	"context"
	"database/sql"
	"path/filepath"

	"github.com/BartekS5/batchline/internal/flatfile"
	"github.com/BartekS5/batchline/internal/pipeline"
	"github.com/BartekS5/batchline/pkg/models"
)

const exportJobName = "simple-export-job"

// exportFileName is fixed; runs are distinguished by the output directory.
const exportFileName = "simple-export.csv"

// ExportConfig wires the simple export job: transaction table, key order,
// out to a delimited file.
type ExportConfig struct {
	DB        *sql.DB
	OutputDir string
	ChunkSize int
	Store     pipeline.CheckpointStore
	DryRun    bool
}

// Export streams the transaction table to OutputDir/simple-export.csv.
func Export(ctx context.Context, cfg ExportConfig) error {
	resume, err := pipeline.Resuming(cfg.Store, exportJobName)
	if err != nil {
		return err
	}

	reader := NewTransactionTableReader(cfg.DB)
	writer := flatfile.NewWriter(
		filepath.Join(cfg.OutputDir, exportFileName),
		models.TransactionFileFields,
		models.EncodeTransaction,
	).WithAppend(resume)

	return pipeline.New(exportJobName, reader, pipeline.Identity[models.Transaction](), writer).
		WithChunkSize(cfg.ChunkSize).
		WithCheckpointStore(cfg.Store).
		WithDryRun(cfg.DryRun).
		Run(ctx)
}
