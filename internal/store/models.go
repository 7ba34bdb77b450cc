package store

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// JobStatus is the wire representation of jobs.status. Values are
// monotonic: Created -> InProgress -> {Completed, Errored}; no row ever
// leaves a terminal status.
type JobStatus string

const (
	JobStatusCreated    JobStatus = "created"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusErrored    JobStatus = "errored"
)

// Terminal reports whether s is a terminal status (Completed or Errored).
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusErrored
}

// Job is the GORM model backing the jobs table: one durable row per
// escrow contract address, tracking the status of its proving job.
type Job struct {
	Address        []byte `gorm:"primaryKey"`
	BlockNumber    uint64
	BlockTimestamp time.Time
	Status         JobStatus `gorm:"type:job_status;default:created"`
	Error          *string
	CompletedAt    *time.Time
}

func (Job) TableName() string { return "jobs" }

// JobAddress returns the Go-native address for this row.
func (j Job) JobAddress() common.Address {
	return common.BytesToAddress(j.Address)
}

// Proof is the GORM model backing the proofs table: the journal and
// seal bytes produced by the external prover for a completed job.
type Proof struct {
	Address []byte `gorm:"primaryKey"`
	Journal []byte
	Seal    []byte
}

func (Proof) TableName() string { return "proofs" }
