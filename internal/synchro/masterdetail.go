package synchro

import (
	"cmp"
	"errors"
	"fmt"
	"io"

	"github.com/BartekS5/batchline/pkg/logger"
)

// ErrDuplicateMasterKey reports a master group holding more than one record
// for the same key. Attaching one detail group to several master records
// would silently duplicate data, so the merge refuses instead.
var ErrDuplicateMasterKey = errors.New("duplicate key in master stream")

// AttachFunc decorates a master record with the detail records sharing its
// key. details may be nil when no detail group matched; implementations
// decide how an empty collection is represented.
type AttachFunc[M, D any] func(master M, details []D) M

// MasterDetailReader merge-joins two ascending-key-ordered streams: each Read
// emits one master record decorated with the detail group sharing its key.
// The merge ends when the master stream ends, whatever is left in the detail
// stream.
//
// One pending detail group is carried across calls because detail keys need
// not align 1:1 with master keys. Detail groups whose key was already passed
// by the master stream are orphans: they are logged and discarded without
// blocking or misaligning subsequent groups.
//
// Both streams MUST be pre-sorted ascending by key. This is a precondition,
// not a runtime check: unsorted input yields incorrect groups.
type MasterDetailReader[M, D any, K cmp.Ordered] struct {
	master *Accumulator[M, K]
	detail *Accumulator[D, K]
	attach AttachFunc[M, D]

	pending    []D
	pendingKey K
	hasPending bool
	detailDone bool
}

func NewMasterDetailReader[M, D any, K cmp.Ordered](
	master *Accumulator[M, K],
	detail *Accumulator[D, K],
	attach AttachFunc[M, D],
) *MasterDetailReader[M, D, K] {
	return &MasterDetailReader[M, D, K]{
		master: master,
		detail: detail,
		attach: attach,
	}
}

func (r *MasterDetailReader[M, D, K]) Open() error {
	if err := r.master.Open(); err != nil {
		return fmt.Errorf("open master: %w", err)
	}
	if err := r.detail.Open(); err != nil {
		return fmt.Errorf("open detail: %w", err)
	}
	return nil
}

// Read emits the next merged record, or io.EOF when the master stream is
// exhausted.
func (r *MasterDetailReader[M, D, K]) Read() (M, error) {
	var zero M

	group, err := r.master.Read()
	if err != nil {
		return zero, err
	}
	if len(group) > 1 {
		return zero, fmt.Errorf("%w: %v (%d records)", ErrDuplicateMasterKey, r.master.Key(group[0]), len(group))
	}

	masterKey := r.master.Key(group[0])
	details, err := r.matchDetails(masterKey)
	if err != nil {
		return zero, err
	}
	return r.attach(group[0], details), nil
}

// matchDetails returns the detail group whose key equals masterKey, or nil
// when none exists. Orphan groups behind the master key are discarded;
// a group ahead of it stays pending for a later master record.
func (r *MasterDetailReader[M, D, K]) matchDetails(masterKey K) ([]D, error) {
	for {
		if !r.hasPending {
			if r.detailDone {
				return nil, nil
			}
			group, err := r.detail.Read()
			if errors.Is(err, io.EOF) {
				r.detailDone = true
				return nil, nil
			}
			if err != nil {
				return nil, err
			}
			r.pending = group
			r.pendingKey = r.detail.Key(group[0])
			r.hasPending = true
		}

		switch {
		case r.pendingKey == masterKey:
			details := r.pending
			r.clearPending()
			return details, nil
		case r.pendingKey < masterKey:
			// The master stream is already past this key: no master record
			// will ever match it.
			logger.Warnf("discarding %d orphan detail record(s) for key %v", len(r.pending), r.pendingKey)
			r.clearPending()
		default:
			return nil, nil
		}
	}
}

func (r *MasterDetailReader[M, D, K]) clearPending() {
	r.pending = nil
	r.hasPending = false
}

func (r *MasterDetailReader[M, D, K]) Close() error {
	return errors.Join(r.master.Close(), r.detail.Close())
}
