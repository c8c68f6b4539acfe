package model

import (
	"crypto/rand"
	"encoding/json"
	"time"

	"paperlearn/internal/domain"

	"github.com/oklog/ulid/v2"
)

type JobKind string

const (
	JobKindIngestPaper JobKind = "ingest_paper"
	JobKindSummarize   JobKind = "summarize"
	JobKindCover       JobKind = "cover"
)

func ParseJobKind(s string) (JobKind, bool) {
	switch JobKind(s) {
	case JobKindIngestPaper, JobKindSummarize, JobKindCover:
		return JobKind(s), true
	}
	return "", false
}

type JobStatus string

const (
	JobStatusQueued  JobStatus = "queued"
	JobStatusRunning JobStatus = "running"
	JobStatusDone    JobStatus = "done"
	JobStatusFailed  JobStatus = "failed"
)

// Job is a single asynchronous task: queued -> running -> {done | failed}.
// States never regress and failed jobs are never retried automatically;
// resilience means enqueueing a fresh job. In a terminal state exactly one
// of Output/LastError is set.
type Job struct {
	ID        string
	Kind      JobKind
	Status    JobStatus
	Payload   json.RawMessage
	Output    json.RawMessage
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewJob(kind JobKind, payload json.RawMessage) *Job {
	now := time.Now()
	return &Job{
		ID:        ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		Kind:      kind,
		Status:    JobStatusQueued,
		Payload:   payload,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (j *Job) Terminal() bool {
	return j.Status == JobStatusDone || j.Status == JobStatusFailed
}

// Start moves the job from queued to running.
func (j *Job) Start() error {
	if j.Status != JobStatusQueued {
		return domain.ErrJobTerminal
	}
	j.Status = JobStatusRunning
	j.UpdatedAt = time.Now()
	return nil
}

// Complete moves a running job to done and records its output.
func (j *Job) Complete(output json.RawMessage) error {
	if j.Status != JobStatusRunning {
		return domain.ErrJobTerminal
	}
	j.Status = JobStatusDone
	j.Output = output
	j.LastError = ""
	j.UpdatedAt = time.Now()
	return nil
}

// Fail moves a running job to failed and records the error text.
func (j *Job) Fail(msg string) error {
	if j.Status != JobStatusRunning {
		return domain.ErrJobTerminal
	}
	if msg == "" {
		msg = "unknown error"
	}
	j.Status = JobStatusFailed
	j.Output = nil
	j.LastError = msg
	j.UpdatedAt = time.Now()
	return nil
}
