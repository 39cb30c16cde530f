package cli

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/BartekS5/batchline/internal/checkpoint"
	"github.com/BartekS5/batchline/internal/config"
	"github.com/BartekS5/batchline/internal/job"
	"github.com/BartekS5/batchline/internal/pipeline"
	"github.com/BartekS5/batchline/pkg/database"
	"github.com/BartekS5/batchline/pkg/logger"
	"github.com/BartekS5/batchline/pkg/models"
)

const archiveDatabase = "batchline"

// checkpointBackend is what both checkpoint stores provide.
type checkpointBackend interface {
	pipeline.CheckpointStore
	Purge(maxAge time.Duration) (int, error)
}

// runtime carries the per-invocation wiring: environment, job-file defaults,
// checkpoint store and lazily opened connections.
type runtime struct {
	env     config.Env
	jobFile *config.JobFile
	store   checkpointBackend
	purger  checkpointBackend

	mu      sync.Mutex
	db      *sql.DB
	cleanup []func() error
}

func newRuntime(cmd *cobra.Command) (*runtime, error) {
	env := config.LoadEnv()

	jobFilePath, _ := cmd.Flags().GetString("job-file")
	jobFile, err := config.LoadJobFile(jobFilePath)
	if err != nil {
		return nil, err
	}

	rt := &runtime{env: env, jobFile: jobFile}

	switch env.CheckpointStore {
	case config.BackendFile:
		store, err := checkpoint.NewFileStore(env.CheckpointDir)
		if err != nil {
			return nil, err
		}
		rt.store = store
	case config.BackendPebble:
		store, err := checkpoint.OpenPebbleStore(env.CheckpointDir + "/checkpoints")
		if err != nil {
			return nil, err
		}
		rt.store = store
		rt.cleanup = append(rt.cleanup, store.Close)
	default:
		return nil, fmt.Errorf("unknown checkpoint store backend %q", env.CheckpointStore)
	}
	rt.purger = rt.store

	return rt, nil
}

func (rt *runtime) close() {
	for i := len(rt.cleanup) - 1; i >= 0; i-- {
		if err := rt.cleanup[i](); err != nil {
			logger.Errorf("cleanup: %v", err)
		}
	}
}

// sqlDB lazily opens the shared SQL connection pool. database/sql pools are
// safe for concurrent use by run-all.
func (rt *runtime) sqlDB() (*sql.DB, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.db != nil {
		return rt.db, nil
	}
	connString, err := rt.env.SQLConn()
	if err != nil {
		return nil, err
	}
	db, err := database.ConnectSQL(connString)
	if err != nil {
		return nil, err
	}
	rt.db = db
	rt.cleanup = append(rt.cleanup, db.Close)
	return db, nil
}

// archiveWriter builds the optional MongoDB sink for synchro jobs.
func (rt *runtime) archiveWriter(collection string) (pipeline.ItemWriter[models.Customer], error) {
	if collection == "" {
		return nil, nil
	}
	connString, err := rt.env.MongoConn()
	if err != nil {
		return nil, err
	}
	client, err := database.ConnectMongo(connString)
	if err != nil {
		return nil, err
	}
	rt.mu.Lock()
	rt.cleanup = append(rt.cleanup, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return client.Disconnect(ctx)
	})
	rt.mu.Unlock()
	return &job.CustomerArchiveWriter{Client: client, Database: archiveDatabase, Collection: collection}, nil
}

// dispatch validates a job's parameters and runs it. Validation failures
// abort before any I/O.
func (rt *runtime) dispatch(ctx context.Context, name string, params config.Params) error {
	chunkSize, err := params.Int("chunk-size", pipeline.DefaultChunkSize)
	if err != nil {
		return err
	}
	dryRun := params["dry-run"] == "true"

	logger.Infof("launching job %s", name)

	switch name {
	case jobExport:
		if err := params.Require("output-dir"); err != nil {
			return err
		}
		db, err := rt.sqlDB()
		if err != nil {
			return err
		}
		return job.Export(ctx, job.ExportConfig{
			DB: db, OutputDir: params["output-dir"],
			ChunkSize: chunkSize, Store: rt.store, DryRun: dryRun,
		})

	case jobImport:
		if err := params.Require("input-file"); err != nil {
			return err
		}
		db, err := rt.sqlDB()
		if err != nil {
			return err
		}
		return job.Import(ctx, job.ImportConfig{
			DB: db, InputFile: params["input-file"],
			ChunkSize: chunkSize, Store: rt.store, DryRun: dryRun,
		})

	case jobTable2File:
		if err := params.Require("transaction-file", "output-file"); err != nil {
			return err
		}
		db, err := rt.sqlDB()
		if err != nil {
			return err
		}
		opts, err := rt.synchroOptions(chunkSize, dryRun, params)
		if err != nil {
			return err
		}
		return job.Table2FileSynchro(ctx, db, params["transaction-file"], params["output-file"], opts)

	case jobFile2Table:
		if err := params.Require("customer-file", "output-file"); err != nil {
			return err
		}
		db, err := rt.sqlDB()
		if err != nil {
			return err
		}
		opts, err := rt.synchroOptions(chunkSize, dryRun, params)
		if err != nil {
			return err
		}
		return job.File2TableSynchro(ctx, db, params["customer-file"], params["output-file"], opts)

	case jobFile2File:
		if err := params.Require("customer-file", "transaction-file", "output-file"); err != nil {
			return err
		}
		opts, err := rt.synchroOptions(chunkSize, dryRun, params)
		if err != nil {
			return err
		}
		return job.File2FileSynchro(ctx, params["customer-file"], params["transaction-file"], params["output-file"], opts)

	case jobGrouping:
		if err := params.Require("transaction-file", "output-file"); err != nil {
			return err
		}
		return job.Grouping(ctx, job.GroupingConfig{
			TransactionFile: params["transaction-file"],
			OutputFile:      params["output-file"],
			ChunkSize:       chunkSize, Store: rt.store, DryRun: dryRun,
		})

	case jobStage:
		if err := params.Require("input-file"); err != nil {
			return err
		}
		db, err := rt.sqlDB()
		if err != nil {
			return err
		}
		return job.Stage(ctx, job.StagingConfig{
			DB: db, InputFile: params["input-file"],
			ChunkSize: chunkSize, Store: rt.store, DryRun: dryRun,
		})

	case jobProcess:
		db, err := rt.sqlDB()
		if err != nil {
			return err
		}
		return job.Process(ctx, job.StagingConfig{
			DB: db, ChunkSize: chunkSize, DryRun: dryRun,
		})

	default:
		return fmt.Errorf("unknown job %q", name)
	}
}

func (rt *runtime) synchroOptions(chunkSize int, dryRun bool, params config.Params) (job.SynchroOptions, error) {
	archive, err := rt.archiveWriter(params["archive-collection"])
	if err != nil {
		return job.SynchroOptions{}, err
	}
	return job.SynchroOptions{
		ChunkSize: chunkSize,
		Store:     rt.store,
		Archive:   archive,
		DryRun:    dryRun,
	}, nil
}

// runAll launches the jobs listed in the job file. Jobs are independent
// pipeline runs sharing no mutable state, so they execute concurrently.
func (rt *runtime) runAll(ctx context.Context) error {
	jobs := rt.jobFile.RunAllJobs()
	if len(jobs) == 0 {
		return fmt.Errorf("no jobs listed in the run-all section of the job file")
	}

	group, ctx := errgroup.WithContext(ctx)
	for _, name := range jobs {
		name := name
		group.Go(func() error {
			if err := rt.dispatch(ctx, name, rt.jobFile.Params(name)); err != nil {
				return fmt.Errorf("job %s: %w", name, err)
			}
			return nil
		})
	}
	return group.Wait()
}
