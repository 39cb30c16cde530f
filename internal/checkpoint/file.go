// Package checkpoint provides the durable stores behind the pipeline's
// checkpoint contract: a plain-file store and an embedded pebble store.
package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BartekS5/batchline/internal/pipeline"
)

// FileStore keeps one JSON checkpoint file per job under a directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create checkpoint dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(job string) string {
	return filepath.Join(s.dir, job+".json")
}

func (s *FileStore) Load(job string) (*pipeline.Checkpoint, error) {
	data, err := os.ReadFile(s.path(job))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cp pipeline.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("decode checkpoint for %s: %w", job, err)
	}
	return &cp, nil
}

func (s *FileStore) Save(job string, cp pipeline.Checkpoint) error {
	data, err := json.Marshal(cp)
	if err != nil {
		return err
	}
	// Write-then-rename so a crash mid-save never leaves a torn checkpoint.
	tmp := s.path(job) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path(job))
}

func (s *FileStore) Clear(job string) error {
	err := os.Remove(s.path(job))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Purge removes checkpoints not updated within maxAge and returns how many
// were removed.
func (s *FileStore) Purge(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		job := strings.TrimSuffix(entry.Name(), ".json")
		cp, err := s.Load(job)
		if err != nil || cp == nil {
			continue
		}
		if cp.UpdatedAt.Before(cutoff) {
			if err := s.Clear(job); err != nil {
				return removed, err
			}
			removed++
		}
	}
	return removed, nil
}
