package pipeline

import "time"

// Checkpoint records how far a job run has durably committed. Chunks are
// committed in order, so the chunk count alone is enough to resume: the
// reader replays from the start and already-committed chunks are skipped on
// the write side.
type Checkpoint struct {
	ChunksCommitted int       `json:"chunksCommitted"`
	ItemsWritten    int       `json:"itemsWritten"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// CheckpointStore persists per-job checkpoints between runs. Load returns
// (nil, nil) when no checkpoint exists for the job.
type CheckpointStore interface {
	Load(job string) (*Checkpoint, error)
	Save(job string, cp Checkpoint) error
	Clear(job string) error
}

// Resuming reports whether a previous run of the job left a checkpoint
// behind, i.e. it failed or was cancelled after committing at least one
// chunk. Sinks that append (flat files) use this to reopen instead of
// truncating committed output.
func Resuming(store CheckpointStore, job string) (bool, error) {
	if store == nil {
		return false, nil
	}
	cp, err := store.Load(job)
	if err != nil {
		return false, err
	}
	return cp != nil && cp.ChunksCommitted > 0, nil
}
