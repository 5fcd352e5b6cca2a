package kernel

import (
	"sync"
	"sync/atomic"
)

// Context is the saved execution state of a record or of a core's
// scheduler. A record context starts at its entry function the first time
// it is switched to.
type Context struct {
	resume  chan struct{}
	retired chan struct{}
	once    sync.Once
	entry   func()
	started bool

	// exited is set once the record running on this context has called
	// exit. The context is never reused, so the flag outlives the slot.
	exited atomic.Bool
}

// NewContext returns a context that begins at entry.
func NewContext(entry func()) *Context {
	return &Context{
		resume:  make(chan struct{}, 1),
		retired: make(chan struct{}),
		entry:   entry,
	}
}

func newSchedulerContext() *Context {
	c := NewContext(nil)
	c.started = true
	return c
}

// Retire releases whoever is parked on c. Their Switch returns ErrRetired.
func (c *Context) Retire() {
	c.once.Do(func() { close(c.retired) })
}

// Switcher suspends the caller's execution in from and resumes to.
// Switch returns nil once someone switches back into from. Otherwise it
// returns ErrRetired when from was retired, ErrHalted when the kernel
// halted before to took over (the caller still owns everything it meant to
// hand off), or ErrDetached when the kernel halted after to took over.
type Switcher interface {
	Switch(from, to *Context) error
}

type goroutineSwitcher struct {
	halt <-chan struct{}
}

// NewGoroutineSwitcher backs every context with its own goroutine and
// hands control between them over channels, so exactly one of a core's
// scheduler and the record it hosts runs at a time.
func NewGoroutineSwitcher(halt <-chan struct{}) Switcher {
	return &goroutineSwitcher{halt: halt}
}

func (s *goroutineSwitcher) Switch(from, to *Context) error {
	fresh := !to.started
	if fresh {
		to.started = true
		go to.entry()
	} else {
		to.resume <- struct{}{}
	}

	select {
	case <-from.resume:
		return nil
	case <-from.retired:
		return ErrRetired
	case <-s.halt:
	}

	select {
	case <-from.resume:
		return nil
	default:
	}
	if fresh {
		return ErrDetached
	}
	// Take the hand-off back if to never picked it up.
	select {
	case <-to.resume:
		return ErrHalted
	default:
		return ErrDetached
	}
}
