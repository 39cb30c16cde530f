package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"

	"github.com/BartekS5/batchline/internal/pipeline"
)

// PebbleStore keeps checkpoints in an embedded pebble database, keyed by job
// name. A single store may be shared by concurrently running jobs: pebble is
// safe for concurrent use and every job writes its own key.
type PebbleStore struct {
	db *pebble.DB
}

func OpenPebbleStore(path string) (*PebbleStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open checkpoint store: %w", err)
	}
	return &PebbleStore{db: db}, nil
}

func (s *PebbleStore) Load(job string) (*pipeline.Checkpoint, error) {
	value, closer, err := s.db.Get([]byte(job))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	var cp pipeline.Checkpoint
	if err := json.Unmarshal(value, &cp); err != nil {
		return nil, fmt.Errorf("decode checkpoint for %s: %w", job, err)
	}
	return &cp, nil
}

func (s *PebbleStore) Save(job string, cp pipeline.Checkpoint) error {
	data, err := json.Marshal(cp)
	if err != nil {
		return err
	}
	return s.db.Set([]byte(job), data, pebble.Sync)
}

func (s *PebbleStore) Clear(job string) error {
	return s.db.Delete([]byte(job), pebble.Sync)
}

// Purge removes checkpoints not updated within maxAge and returns how many
// were removed.
func (s *PebbleStore) Purge(maxAge time.Duration) (int, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	var stale []string
	for iter.First(); iter.Valid(); iter.Next() {
		var cp pipeline.Checkpoint
		if err := json.Unmarshal(iter.Value(), &cp); err != nil {
			continue
		}
		if cp.UpdatedAt.Before(cutoff) {
			stale = append(stale, string(iter.Key()))
		}
	}
	if err := iter.Close(); err != nil {
		return 0, err
	}

	for i, job := range stale {
		if err := s.Clear(job); err != nil {
			return i, err
		}
	}
	return len(stale), nil
}

func (s *PebbleStore) Close() error {
	return s.db.Close()
}
