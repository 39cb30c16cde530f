package models

import "fmt"

// StagingItem is one row of the batch_staging table used by the deferred
// processing job: values are staged first, then picked up and marked
// processed by a later step.
type StagingItem struct {
	ID        int64
	JobID     string
	Value     string
	Processed bool
}

// StagingFileFields is the staging input-file header.
var StagingFileFields = []string{"jobId", "value"}

// DecodeStagingItem maps one delimited staging line, field by position.
func DecodeStagingItem(fields []string) (StagingItem, error) {
	if len(fields) != len(StagingFileFields) {
		return StagingItem{}, fmt.Errorf("expected %d fields, got %d", len(StagingFileFields), len(fields))
	}
	return StagingItem{JobID: fields[0], Value: fields[1]}, nil
}
