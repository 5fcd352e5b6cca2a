// Package context carries simulation run metadata through context.Context
// for logging and reports.
package context

import (
	"context"
	"time"

	"github.com/google/uuid"
)

var (
	runIDKey     = &struct{}{}
	jobKey       = &struct{}{}
	operationKey = &struct{}{}
	startTimeKey = &struct{}{}
)

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return "run_" + uuid.New().String()
}

// WithRunID tags ctx with a run id, generating one when id is empty.
func WithRunID(parent context.Context, id string) context.Context {
	if id == "" {
		id = NewRunID()
	}
	return context.WithValue(parent, runIDKey, id)
}

// RunID returns the run id of ctx, or "" if none was set.
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey).(string)
	return id
}

// WithJob tags ctx with the name of the workload job being handled.
func WithJob(parent context.Context, job string) context.Context {
	return context.WithValue(parent, jobKey, job)
}

// Job returns the job name of ctx, or "".
func Job(ctx context.Context) string {
	job, _ := ctx.Value(jobKey).(string)
	return job
}

// WithOperation tags ctx with an operation name such as "run" or "watch".
func WithOperation(parent context.Context, operation string) context.Context {
	return context.WithValue(parent, operationKey, operation)
}

// Operation returns the operation of ctx, or "".
func Operation(ctx context.Context) string {
	op, _ := ctx.Value(operationKey).(string)
	return op
}

// WithStartTime records when the operation began.
func WithStartTime(parent context.Context, t time.Time) context.Context {
	return context.WithValue(parent, startTimeKey, t)
}

// StartTime returns the recorded start time and whether one was set.
func StartTime(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(startTimeKey).(time.Time)
	return t, ok
}

// Elapsed is the wall time since the recorded start, or zero.
func Elapsed(ctx context.Context) time.Duration {
	t, ok := StartTime(ctx)
	if !ok {
		return 0
	}
	return time.Since(t)
}

// NewRun returns ctx tagged with a new run id, the operation and the
// current time, keeping a run id that is already present.
func NewRun(parent context.Context, operation string) context.Context {
	ctx := parent
	if RunID(ctx) == "" {
		ctx = WithRunID(ctx, "")
	}
	ctx = WithOperation(ctx, operation)
	return WithStartTime(ctx, time.Now())
}
