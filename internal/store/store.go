// Package store implements the durable job and proof tables described
// in the system's data model: one Job row per escrow contract address,
// an optional Proof row once that job completes, monotonic status
// transitions, and atomic change notification on every terminal
// transition.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/l-adic/ttc-monitor/internal/ttcerr"
)

// Store is the durable job/proof table described in the system's data
// model. All writes are synchronous and durable before returning;
// readers observe writes in commit order because every method runs
// inside its own serializable-enough (row-locked) transaction.
type Store struct {
	db *gorm.DB
}

// New wraps an already-connected, already-migrated *gorm.DB.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// CreateJob inserts a new Created row for addr. Fails with
// ttcerr.ErrAlreadyExists if a row for addr is already present; the
// contract's creation is idempotent at the Rank->Trade boundary only
// in the sense that a duplicate call is rejected, not silently merged.
func (s *Store) CreateJob(ctx context.Context, addr common.Address, blockNumber uint64, blockTimestamp time.Time) error {
	job := Job{
		Address:        addr.Bytes(),
		BlockNumber:    blockNumber,
		BlockTimestamp: blockTimestamp,
		Status:         JobStatusCreated,
	}
	err := s.db.WithContext(ctx).Create(&job).Error
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("store: create job %s: %w", addr, ttcerr.ErrAlreadyExists)
		}
		return fmt.Errorf("store: create job %s: %w", addr, err)
	}
	return nil
}

// GetJob returns the Job row for addr, or ttcerr.ErrNotFound if absent.
func (s *Store) GetJob(ctx context.Context, addr common.Address) (Job, error) {
	var job Job
	err := s.db.WithContext(ctx).First(&job, "address = ?", addr.Bytes()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Job{}, fmt.Errorf("store: get job %s: %w", addr, ttcerr.ErrNotFound)
	}
	if err != nil {
		return Job{}, fmt.Errorf("store: get job %s: %w", addr, err)
	}
	return job, nil
}

// GetProof returns the Proof row for addr, or ttcerr.ErrNotFound if
// absent. A Proof row exists if and only if the corresponding Job row
// is Completed.
func (s *Store) GetProof(ctx context.Context, addr common.Address) (Proof, error) {
	var proof Proof
	err := s.db.WithContext(ctx).First(&proof, "address = ?", addr.Bytes()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Proof{}, fmt.Errorf("store: get proof %s: %w", addr, ttcerr.ErrNotFound)
	}
	if err != nil {
		return Proof{}, fmt.Errorf("store: get proof %s: %w", addr, err)
	}
	return proof, nil
}

// SetInProgress transitions addr's job from Created to InProgress.
func (s *Store) SetInProgress(ctx context.Context, addr common.Address) error {
	return s.transition(ctx, addr, func(current JobStatus) (JobStatus, error) {
		if current != JobStatusCreated {
			return "", illegalTransition(current, JobStatusInProgress)
		}
		return JobStatusInProgress, nil
	}, nil)
}

// SetCompleted transitions addr's job from InProgress to Completed at
// wall-clock time at. This is a terminal transition: it is part of the
// same atomic write as the change notification emitted by the jobs
// table's trigger (see migrations/00001_jobs_and_proofs.sql).
//
// This does not write the Proof row. Callers that also need to persist
// the proof bytes must use CompleteProof instead, so the two writes
// commit as a single transaction and a reader can never observe one
// without the other.
func (s *Store) SetCompleted(ctx context.Context, addr common.Address, at time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return completeTx(tx, addr, at)
	})
}

// CompleteProof writes the Proof row for addr and transitions its job
// from InProgress to Completed in a single transaction, so the
// §4.2/§3 invariant "a Proof row exists iff the Job row is Completed"
// never has a visible window where one write has committed without the
// other (getProof and getProofStatus must stay strictly consistent,
// per §7).
func (s *Store) CompleteProof(ctx context.Context, addr common.Address, journal, seal []byte, at time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := putProofTx(tx, addr, journal, seal); err != nil {
			return err
		}
		return completeTx(tx, addr, at)
	})
}

func completeTx(tx *gorm.DB, addr common.Address, at time.Time) error {
	return transitionTx(tx, addr, func(current JobStatus) (JobStatus, error) {
		if current != JobStatusInProgress {
			return "", illegalTransition(current, JobStatusCompleted)
		}
		return JobStatusCompleted, nil
	}, &at)
}

// SetError transitions addr's job from InProgress to Errored at
// wall-clock time at, recording msg. Also a terminal transition.
func (s *Store) SetError(ctx context.Context, addr common.Address, msg string, at time.Time) error {
	return s.transition(ctx, addr, func(current JobStatus) (JobStatus, error) {
		if current != JobStatusInProgress {
			return "", illegalTransition(current, JobStatusErrored)
		}
		return JobStatusErrored, nil
	}, &at, msg)
}

func (s *Store) transition(ctx context.Context, addr common.Address, next func(JobStatus) (JobStatus, error), completedAt *time.Time, errMsg ...string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return transitionTx(tx, addr, next, completedAt, errMsg...)
	})
}

func transitionTx(tx *gorm.DB, addr common.Address, next func(JobStatus) (JobStatus, error), completedAt *time.Time, errMsg ...string) error {
	var job Job
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&job, "address = ?", addr.Bytes()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("store: transition job %s: %w", addr, ttcerr.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("store: transition job %s: %w", addr, err)
	}
	target, err := next(job.Status)
	if err != nil {
		return err
	}
	updates := map[string]interface{}{"status": target}
	if completedAt != nil {
		updates["completed_at"] = *completedAt
	}
	if len(errMsg) > 0 {
		updates["error"] = errMsg[0]
	}
	if err := tx.Model(&job).Updates(updates).Error; err != nil {
		return fmt.Errorf("store: transition job %s: %w", addr, err)
	}
	return nil
}

// PutProof writes the Proof row for addr. Idempotent if journal and
// seal are byte-identical to an existing row; fails with
// ttcerr.ErrAlreadyExists if a conflicting row is already present.
func (s *Store) PutProof(ctx context.Context, addr common.Address, journal, seal []byte) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return putProofTx(tx, addr, journal, seal)
	})
}

func putProofTx(tx *gorm.DB, addr common.Address, journal, seal []byte) error {
	var existing Proof
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&existing, "address = ?", addr.Bytes()).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		proof := Proof{Address: addr.Bytes(), Journal: journal, Seal: seal}
		if err := tx.Create(&proof).Error; err != nil {
			return fmt.Errorf("store: put proof %s: %w", addr, err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("store: put proof %s: %w", addr, err)
	default:
		if bytes.Equal(existing.Journal, journal) && bytes.Equal(existing.Seal, seal) {
			return nil
		}
		return fmt.Errorf("store: put proof %s: %w", addr, ttcerr.ErrAlreadyExists)
	}
}

func illegalTransition(from, to JobStatus) error {
	return fmt.Errorf("store: %s -> %s: %w", from, to, ttcerr.ErrIllegalTransition)
}

// isUniqueViolation reports whether err is a primary-key conflict. GORM
// wraps ErrDuplicatedKey for drivers it recognizes; this also checks the
// pq error code directly in case the conflict surfaces unwrapped.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "duplicate key")
}
