// Package pipeline drives a reader through process and write stages in
// fixed-size commit chunks, advancing a checkpoint after each chunk so a
// failed run can resume without rewriting committed output.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/BartekS5/batchline/internal/synchro"
	"github.com/BartekS5/batchline/pkg/logger"
)

// DefaultChunkSize is the number of units committed per chunk when a job
// does not configure its own.
const DefaultChunkSize = 10

// ErrSkipItem can be returned by a Processor to drop the current item:
// nothing is written for it and the run continues. Any other processor error
// aborts the enclosing chunk and fails the run.
var ErrSkipItem = errors.New("skip item")

// Processor transforms one read unit into one output unit.
type Processor[I, O any] func(item I) (O, error)

// Identity passes items through unchanged.
func Identity[T any]() Processor[T, T] {
	return func(item T) (T, error) { return item, nil }
}

// Stats counts what a run did. The pipeline is single-threaded, so plain
// counters are enough.
type Stats struct {
	Read     int
	Written  int
	Skipped  int
	Chunks   int
	Replayed int
}

// Pipeline reads units until a chunk is full, processes them, writes the
// chunk to the sink and commits the checkpoint, until the reader returns
// io.EOF. On resume, chunks below the committed count are re-read and
// re-processed but not re-written, which requires the reader to replay
// deterministically from the start.
type Pipeline[I, O any] struct {
	name      string
	reader    synchro.ItemReader[I]
	process   Processor[I, O]
	writer    ItemWriter[O]
	chunkSize int
	store     CheckpointStore
	dryRun    bool
	stats     Stats
}

func New[I, O any](name string, reader synchro.ItemReader[I], process Processor[I, O], writer ItemWriter[O]) *Pipeline[I, O] {
	return &Pipeline[I, O]{
		name:      name,
		reader:    reader,
		process:   process,
		writer:    writer,
		chunkSize: DefaultChunkSize,
	}
}

// WithChunkSize overrides the commit chunk size. Values below 1 are ignored.
func (p *Pipeline[I, O]) WithChunkSize(n int) *Pipeline[I, O] {
	if n >= 1 {
		p.chunkSize = n
	}
	return p
}

// WithCheckpointStore enables checkpointing under the pipeline's job name.
func (p *Pipeline[I, O]) WithCheckpointStore(store CheckpointStore) *Pipeline[I, O] {
	p.store = store
	return p
}

// WithDryRun processes every unit but skips writes and checkpoint commits.
func (p *Pipeline[I, O]) WithDryRun(dryRun bool) *Pipeline[I, O] {
	p.dryRun = dryRun
	return p
}

// Stats returns the counters of the last Run.
func (p *Pipeline[I, O]) Stats() Stats { return p.stats }

// Run executes the pipeline to completion. A nil return means every unit
// reached the sink and the checkpoint was cleared. On error the checkpoint
// stays at the last successful commit so a relaunch resumes cleanly.
// Cancellation is honored at chunk boundaries only.
func (p *Pipeline[I, O]) Run(ctx context.Context) error {
	p.stats = Stats{}
	start := time.Now()

	committed := 0
	if p.store != nil {
		cp, err := p.store.Load(p.name)
		if err != nil {
			return fmt.Errorf("load checkpoint: %w", err)
		}
		if cp != nil {
			committed = cp.ChunksCommitted
			logger.Infof("job %s: resuming after %d committed chunk(s)", p.name, committed)
		}
	}

	if err := p.reader.Open(); err != nil {
		return fmt.Errorf("open reader: %w", err)
	}
	defer p.reader.Close()

	if err := p.writer.Open(); err != nil {
		return fmt.Errorf("open writer: %w", err)
	}
	defer p.writer.Close()

	chunkIndex := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		chunk, done, err := p.readChunk()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if len(chunk) == 0 {
			break
		}

		out := make([]O, 0, len(chunk))
		for _, item := range chunk {
			result, err := p.process(item)
			if errors.Is(err, ErrSkipItem) {
				p.stats.Skipped++
				continue
			}
			if err != nil {
				return fmt.Errorf("process: %w", err)
			}
			out = append(out, result)
		}

		switch {
		case chunkIndex < committed:
			// Already durably written by a previous run of this job.
			p.stats.Replayed += len(out)
		case p.dryRun:
			logger.Infof("job %s: [dry run] would write %d unit(s)", p.name, len(out))
		default:
			if err := p.writer.Write(out); err != nil {
				return fmt.Errorf("write chunk %d: %w", chunkIndex, err)
			}
			p.stats.Written += len(out)
			p.stats.Chunks++
			if err := p.commit(chunkIndex + 1); err != nil {
				return err
			}
		}

		chunkIndex++
		if done {
			break
		}
	}

	if p.store != nil && !p.dryRun {
		if err := p.store.Clear(p.name); err != nil {
			return fmt.Errorf("clear checkpoint: %w", err)
		}
	}

	logger.Infof("job %s: completed, read=%d written=%d replayed=%d skipped=%d chunks=%d in %s",
		p.name, p.stats.Read, p.stats.Written, p.stats.Replayed, p.stats.Skipped, p.stats.Chunks,
		time.Since(start).Round(time.Millisecond))
	return nil
}

// readChunk reads up to chunkSize units. done reports that the reader hit
// io.EOF; EndOfStream is not an error.
func (p *Pipeline[I, O]) readChunk() ([]I, bool, error) {
	chunk := make([]I, 0, p.chunkSize)
	for len(chunk) < p.chunkSize {
		item, err := p.reader.Read()
		if errors.Is(err, io.EOF) {
			return chunk, true, nil
		}
		if err != nil {
			return nil, false, err
		}
		p.stats.Read++
		chunk = append(chunk, item)
	}
	return chunk, false, nil
}

func (p *Pipeline[I, O]) commit(chunks int) error {
	if p.store == nil {
		return nil
	}
	cp := Checkpoint{
		ChunksCommitted: chunks,
		ItemsWritten:    p.stats.Written,
		UpdatedAt:       time.Now().UTC(),
	}
	if err := p.store.Save(p.name, cp); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}
