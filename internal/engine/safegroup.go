package engine

import (
	"context"
	"fmt"
	"runtime/debug"

	"golang.org/x/sync/errgroup"

	"github.com/poltergeist/mlfq/pkg/logger"
)

// SafeGroup wraps errgroup.Group with panic recovery. A panicking task
// fails the group with an error instead of taking the process down.
type SafeGroup struct {
	group  *errgroup.Group
	logger logger.Logger
}

// NewSafeGroup creates a new SafeGroup whose context is cancelled when
// any task fails.
func NewSafeGroup(ctx context.Context, log logger.Logger) (*SafeGroup, context.Context) {
	if log == nil {
		log = logger.Discard()
	}
	g, ctx := errgroup.WithContext(ctx)
	return &SafeGroup{
		group:  g,
		logger: log,
	}, ctx
}

// Go runs fn in a new goroutine. A panic is logged with its stack and
// returned as the task's error.
func (sg *SafeGroup) Go(task string, fn func() error) {
	sg.group.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				sg.logger.Error("Goroutine panic recovered",
					logger.WithField("task", task),
					logger.WithField("panic", r),
					logger.WithField("stack_trace", string(debug.Stack())))
				err = fmt.Errorf("%s: goroutine panic: %v", task, r)
			}
		}()

		if err := fn(); err != nil {
			return fmt.Errorf("%s: %w", task, err)
		}
		return nil
	})
}

// SetLimit sets the maximum number of concurrent goroutines.
func (sg *SafeGroup) SetLimit(n int) {
	sg.group.SetLimit(n)
}

// Wait blocks until every task has returned and reports the first error.
func (sg *SafeGroup) Wait() error {
	return sg.group.Wait()
}
