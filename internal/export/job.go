package export

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// Status is the phase an export job is in.
type Status int

const (
	StatusIdle Status = iota
	StatusPreparing
	StatusRendering
	StatusAssembling
	StatusDone
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPreparing:
		return "preparing"
	case StatusRendering:
		return "rendering"
	case StatusAssembling:
		return "assembling"
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// MarshalText lets job snapshots serialize the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Active reports whether a job in this status blocks a new export.
func (s Status) Active() bool {
	return s == StatusPreparing || s == StatusRendering || s == StatusAssembling
}

// Job is a snapshot of the export job state.
type Job struct {
	ID        string    `json:"id,omitempty"`
	Status    Status    `json:"status"`
	Progress  int       `json:"progress"`
	PageCount int       `json:"page_count"`
	Reason    string    `json:"reason,omitempty"`
	StartedAt time.Time `json:"started_at,omitzero"`
}

// Progress returns the percentage reported after capturing the slide at
// zero-based index of total slides.
func Progress(index, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(index+1) / float64(total)))
}

// ErrExportInProgress is returned when Export is called while a job runs.
var ErrExportInProgress = errors.New("export already in progress")

// Phase names where a fatal error happened.
type Phase string

const (
	PhasePreparing  Phase = "preparing"
	PhaseRendering  Phase = "rendering"
	PhaseAssembling Phase = "assembling"
	PhaseSaving     Phase = "saving"
)

// PhaseError is a fatal export error. Index is the slide index for
// per-slide failures and -1 otherwise.
type PhaseError struct {
	Phase Phase
	Index int
	Err   error
}

func (e *PhaseError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("export %s slide %d: %v", e.Phase, e.Index, e.Err)
	}
	return fmt.Sprintf("export %s: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error { return e.Err }

type jobIDKey struct{}

// WithJobID annotates ctx with the ID of the job a save belongs to.
func WithJobID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, jobIDKey{}, id)
}

// JobIDFromContext returns the job ID set by WithJobID.
func JobIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(jobIDKey{}).(string)
	return id, ok && id != ""
}
