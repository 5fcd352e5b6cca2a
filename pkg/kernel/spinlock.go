package kernel

import (
	"sync"
	"sync/atomic"
)

// external marks a lock held by a caller outside any simulated core, such as
// the clock or a host goroutine querying the table.
var external = &cpu{id: -1}

// spinlock is a mutex that remembers which core holds it and keeps that
// core's nesting depth. Ownership travels with the core, not the goroutine:
// a record may take its own lock and hand it to the scheduler across a
// context switch.
type spinlock struct {
	name  string
	mu    sync.Mutex
	owner atomic.Pointer[cpu]
}

func (l *spinlock) acquire(c *cpu) {
	if c == nil {
		l.mu.Lock()
		l.owner.Store(external)
		return
	}
	c.noff++
	if l.holding(c) {
		fatal("acquire " + l.name)
	}
	l.mu.Lock()
	l.owner.Store(c)
}

func (l *spinlock) tryAcquire() bool {
	if !l.mu.TryLock() {
		return false
	}
	l.owner.Store(external)
	return true
}

func (l *spinlock) release(c *cpu) {
	if c == nil {
		c = external
	}
	if !l.holding(c) {
		fatal("release " + l.name)
	}
	l.owner.Store(nil)
	l.mu.Unlock()
	if c != external {
		if c.noff < 1 {
			fatal("pop_off")
		}
		c.noff--
	}
}

func (l *spinlock) holding(c *cpu) bool {
	if c == nil {
		c = external
	}
	return l.owner.Load() == c
}
