package export

import (
	"context"

	"stravagpx/internal/strava"
)

// Status classifies what happened to one activity.
type Status string

const (
	StatusFiltered        Status = "filtered"
	StatusAlreadyExported Status = "already_exported"
	StatusFailed          Status = "failed"
	StatusExported        Status = "exported"
)

// Outcome is the result for one activity.
type Outcome struct {
	Activity strava.Activity
	Status   Status
	// Path is the written file for exported activities.
	Path string
	// Err is set for failed activities.
	Err error
}

// Observer receives every outcome as it happens.
type Observer interface {
	Observe(ctx context.Context, outcome Outcome)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, outcome Outcome)

// Observe calls f.
func (f ObserverFunc) Observe(ctx context.Context, outcome Outcome) { f(ctx, outcome) }

// Report summarizes a run.
type Report struct {
	Seen            int
	Exported        int
	AlreadyExported int
	Filtered        int
	Failed          int
	FailedIDs       []int64
}

func (r *Report) add(outcome Outcome) {
	r.Seen++
	switch outcome.Status {
	case StatusFiltered:
		r.Filtered++
	case StatusAlreadyExported:
		r.AlreadyExported++
	case StatusFailed:
		r.Failed++
		r.FailedIDs = append(r.FailedIDs, outcome.Activity.ID)
	case StatusExported:
		r.Exported++
	}
}
