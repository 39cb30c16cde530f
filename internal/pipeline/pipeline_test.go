package pipeline

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BartekS5/batchline/internal/synchro"
)

// memoryStore is an in-process CheckpointStore for pipeline tests.
type memoryStore struct {
	checkpoints map[string]Checkpoint
}

func newMemoryStore() *memoryStore {
	return &memoryStore{checkpoints: map[string]Checkpoint{}}
}

func (s *memoryStore) Load(job string) (*Checkpoint, error) {
	cp, ok := s.checkpoints[job]
	if !ok {
		return nil, nil
	}
	return &cp, nil
}

func (s *memoryStore) Save(job string, cp Checkpoint) error {
	s.checkpoints[job] = cp
	return nil
}

func (s *memoryStore) Clear(job string) error {
	delete(s.checkpoints, job)
	return nil
}

// collectWriter records written chunks and can be told to fail on a given
// chunk index.
type collectWriter struct {
	chunks [][]int
	failAt int // chunk index to fail on, -1 for never
}

func newCollectWriter() *collectWriter { return &collectWriter{failAt: -1} }

func (w *collectWriter) Open() error { return nil }

func (w *collectWriter) Write(chunk []int) error {
	if w.failAt >= 0 && len(w.chunks) == w.failAt {
		return errors.New("sink unavailable")
	}
	copied := append([]int(nil), chunk...)
	w.chunks = append(w.chunks, copied)
	return nil
}

func (w *collectWriter) Close() error { return nil }

func (w *collectWriter) written() []int {
	var all []int
	for _, chunk := range w.chunks {
		all = append(all, chunk...)
	}
	return all
}

func sequence(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i + 1
	}
	return items
}

func TestPipelineWritesAllItemsInChunks(t *testing.T) {
	writer := newCollectWriter()
	p := New("test-job", synchro.NewSliceReader(sequence(7)), Identity[int](), writer).
		WithChunkSize(3)

	require.NoError(t, p.Run(context.Background()))

	require.Len(t, writer.chunks, 3)
	assert.Len(t, writer.chunks[0], 3)
	assert.Len(t, writer.chunks[1], 3)
	assert.Len(t, writer.chunks[2], 1)
	assert.Equal(t, sequence(7), writer.written())

	stats := p.Stats()
	assert.Equal(t, 7, stats.Read)
	assert.Equal(t, 7, stats.Written)
	assert.Equal(t, 3, stats.Chunks)
}

func TestPipelineEmptySource(t *testing.T) {
	writer := newCollectWriter()
	p := New("test-job", synchro.NewSliceReader[int](nil), Identity[int](), writer)

	require.NoError(t, p.Run(context.Background()))
	assert.Empty(t, writer.chunks)
	assert.Equal(t, Stats{}, p.Stats())
}

func TestPipelineCommitsCheckpointPerChunk(t *testing.T) {
	store := newMemoryStore()
	writer := newCollectWriter()
	writer.failAt = 2 // chunks 0 and 1 commit, chunk 2 fails

	p := New("test-job", synchro.NewSliceReader(sequence(9)), Identity[int](), writer).
		WithChunkSize(3).
		WithCheckpointStore(store)

	err := p.Run(context.Background())
	require.Error(t, err)

	cp, loadErr := store.Load("test-job")
	require.NoError(t, loadErr)
	require.NotNil(t, cp)
	assert.Equal(t, 2, cp.ChunksCommitted)
	assert.Equal(t, 6, cp.ItemsWritten)
}

func TestPipelineClearsCheckpointOnSuccess(t *testing.T) {
	store := newMemoryStore()
	p := New("test-job", synchro.NewSliceReader(sequence(5)), Identity[int](), newCollectWriter()).
		WithChunkSize(2).
		WithCheckpointStore(store)

	require.NoError(t, p.Run(context.Background()))

	cp, err := store.Load("test-job")
	require.NoError(t, err)
	assert.Nil(t, cp)
}

func TestPipelineResumeSkipsCommittedChunks(t *testing.T) {
	store := newMemoryStore()

	// First run fails after committing two chunks.
	failing := newCollectWriter()
	failing.failAt = 2
	first := New("test-job", synchro.NewSliceReader(sequence(9)), Identity[int](), failing).
		WithChunkSize(3).
		WithCheckpointStore(store)
	require.Error(t, first.Run(context.Background()))

	// The relaunch replays the reader from the start but only writes the
	// third chunk.
	writer := newCollectWriter()
	second := New("test-job", synchro.NewSliceReader(sequence(9)), Identity[int](), writer).
		WithChunkSize(3).
		WithCheckpointStore(store)
	require.NoError(t, second.Run(context.Background()))

	assert.Equal(t, []int{7, 8, 9}, writer.written())
	stats := second.Stats()
	assert.Equal(t, 9, stats.Read)
	assert.Equal(t, 6, stats.Replayed)
	assert.Equal(t, 3, stats.Written)

	// Completed run leaves no checkpoint behind.
	cp, err := store.Load("test-job")
	require.NoError(t, err)
	assert.Nil(t, cp)
}

func TestPipelineSkipItem(t *testing.T) {
	writer := newCollectWriter()
	dropOdd := func(item int) (int, error) {
		if item%2 == 1 {
			return 0, ErrSkipItem
		}
		return item, nil
	}
	p := New("test-job", synchro.NewSliceReader(sequence(6)), dropOdd, writer).
		WithChunkSize(4)

	require.NoError(t, p.Run(context.Background()))

	assert.Equal(t, []int{2, 4, 6}, writer.written())
	stats := p.Stats()
	assert.Equal(t, 6, stats.Read)
	assert.Equal(t, 3, stats.Skipped)
	assert.Equal(t, 3, stats.Written)
}

func TestPipelineProcessorErrorAbortsRun(t *testing.T) {
	boom := errors.New("bad record")
	process := func(item int) (int, error) {
		if item == 2 {
			return 0, boom
		}
		return item, nil
	}
	writer := newCollectWriter()
	p := New("test-job", synchro.NewSliceReader(sequence(3)), process, writer)

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, writer.chunks)
}

func TestPipelineDryRunWritesNothing(t *testing.T) {
	store := newMemoryStore()
	writer := newCollectWriter()
	p := New("test-job", synchro.NewSliceReader(sequence(5)), Identity[int](), writer).
		WithChunkSize(2).
		WithCheckpointStore(store).
		WithDryRun(true)

	require.NoError(t, p.Run(context.Background()))

	assert.Empty(t, writer.chunks)
	assert.Equal(t, 5, p.Stats().Read)
	assert.Zero(t, p.Stats().Written)
	assert.Empty(t, store.checkpoints)
}

func TestPipelineCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	writer := newCollectWriter()
	p := New("test-job", synchro.NewSliceReader(sequence(5)), Identity[int](), writer)

	err := p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, writer.chunks)
}

func TestPipelineChunkSizeExactMultiple(t *testing.T) {
	writer := newCollectWriter()
	p := New("test-job", synchro.NewSliceReader(sequence(6)), Identity[int](), writer).
		WithChunkSize(3)

	require.NoError(t, p.Run(context.Background()))
	require.Len(t, writer.chunks, 2)
	assert.Equal(t, sequence(6), writer.written())
}

func TestResuming(t *testing.T) {
	store := newMemoryStore()

	resume, err := Resuming(store, "test-job")
	require.NoError(t, err)
	assert.False(t, resume)

	require.NoError(t, store.Save("test-job", Checkpoint{ChunksCommitted: 1}))
	resume, err = Resuming(store, "test-job")
	require.NoError(t, err)
	assert.True(t, resume)

	resume, err = Resuming(nil, "test-job")
	require.NoError(t, err)
	assert.False(t, resume)
}

// failingReader errors mid-stream to verify read failures surface.
type failingReader struct {
	items []int
	pos   int
}

func (r *failingReader) Open() error { return nil }

func (r *failingReader) Read() (int, error) {
	if r.pos >= len(r.items) {
		return 0, errors.New("source truncated")
	}
	item := r.items[r.pos]
	r.pos++
	return item, nil
}

func (r *failingReader) Close() error { return nil }

func TestPipelineReaderErrorAbortsRun(t *testing.T) {
	writer := newCollectWriter()
	p := New("test-job", &failingReader{items: sequence(2)}, Identity[int](), writer).
		WithChunkSize(10)

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
	assert.Empty(t, writer.chunks)
}
