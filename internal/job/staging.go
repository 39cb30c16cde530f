package job

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/BartekS5/batchline/internal/flatfile"
	"github.com/BartekS5/batchline/internal/pipeline"
	"github.com/BartekS5/batchline/pkg/database"
	"github.com/BartekS5/batchline/pkg/logger"
	"github.com/BartekS5/batchline/pkg/models"
)

const (
	stageJobName   = "staging-job.stage"
	processJobName = "staging-job.process"
)

// StagingConfig wires the two steps of the deferred-processing job.
type StagingConfig struct {
	DB        *sql.DB
	InputFile string
	ChunkSize int
	Store     pipeline.CheckpointStore
	DryRun    bool
}

// Stage inserts the values of the input file into batch_staging, unprocessed.
func Stage(ctx context.Context, cfg StagingConfig) error {
	reader := flatfile.NewReader(cfg.InputFile, models.DecodeStagingItem)
	writer := &stagingInsertWriter{db: cfg.DB}

	return pipeline.New(stageJobName, reader, pipeline.Identity[models.StagingItem](), writer).
		WithChunkSize(cfg.ChunkSize).
		WithCheckpointStore(cfg.Store).
		WithDryRun(cfg.DryRun).
		Run(ctx)
}

// Process picks up unprocessed staged rows in id order and marks them
// processed chunk by chunk. The processed flag is itself the progress
// record, so this step runs without a checkpoint store: re-running simply
// continues with whatever is still unprocessed.
func Process(ctx context.Context, cfg StagingConfig) error {
	reader := database.NewCursorReader(cfg.DB,
		`SELECT id, job_id, value, processed FROM batch_staging WHERE processed = 0 ORDER BY id`,
		scanStagingItem)
	writer := &stagingMarkWriter{db: cfg.DB}

	return pipeline.New(processJobName, reader, processStagingItem, writer).
		WithChunkSize(cfg.ChunkSize).
		WithDryRun(cfg.DryRun).
		Run(ctx)
}

func scanStagingItem(rows *sql.Rows) (models.StagingItem, error) {
	var item models.StagingItem
	err := rows.Scan(&item.ID, &item.JobID, &item.Value, &item.Processed)
	return item, err
}

func processStagingItem(item models.StagingItem) (models.StagingItem, error) {
	logger.Debugf("processing staged value %q for job %s", item.Value, item.JobID)
	item.Processed = true
	return item, nil
}

type stagingInsertWriter struct {
	db *sql.DB
}

func (w *stagingInsertWriter) Open() error { return nil }

func (w *stagingInsertWriter) Write(chunk []models.StagingItem) error {
	for _, item := range chunk {
		if _, err := w.db.Exec(
			`INSERT INTO batch_staging (job_id, value, processed) VALUES (@p1, @p2, 0)`,
			item.JobID, item.Value,
		); err != nil {
			return fmt.Errorf("stage value for job %s: %w", item.JobID, err)
		}
	}
	return nil
}

func (w *stagingInsertWriter) Close() error { return nil }

type stagingMarkWriter struct {
	db *sql.DB
}

func (w *stagingMarkWriter) Open() error { return nil }

func (w *stagingMarkWriter) Write(chunk []models.StagingItem) error {
	for _, item := range chunk {
		if _, err := w.db.Exec(
			`UPDATE batch_staging SET processed = 1 WHERE id = @p1`,
			item.ID,
		); err != nil {
			return fmt.Errorf("mark staged row %d processed: %w", item.ID, err)
		}
	}
	return nil
}

func (w *stagingMarkWriter) Close() error { return nil }
