package engine

import (
	"github.com/poltergeist/mlfq/pkg/types"
)

//go:generate mockgen -destination=../../pkg/mocks/engine.go -package=mocks github.com/poltergeist/mlfq/internal/engine ReportStore,RunNotifier

// ReportStore persists finished runs.
type ReportStore interface {
	Save(report *types.RunReport) error
}

// RunNotifier is told when runs start and finish.
type RunNotifier interface {
	NotifyRunStart(name string, jobs int)
	NotifyRunComplete(report *types.RunReport)
}
