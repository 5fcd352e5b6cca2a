package kernel

import (
	"errors"
	"runtime"
	"sync"
)

// runQueue holds runnable records per level for PolicyFIFO. Under
// PolicyScan it only serializes the boost.
type runQueue struct {
	mu     sync.Mutex
	levels [NumLevels][]*proc
}

func (q *runQueue) push(p *proc) {
	lvl := p.loadMLFQ().level()
	q.levels[lvl] = append(q.levels[lvl], p)
}

func (q *runQueue) pop() *proc {
	for lvl := range q.levels {
		if len(q.levels[lvl]) > 0 {
			p := q.levels[lvl][0]
			q.levels[lvl][0] = nil
			q.levels[lvl] = q.levels[lvl][1:]
			return p
		}
	}
	return nil
}

// promote moves every queued record to the tail of the HIGH queue in
// level order.
func (q *runQueue) promote() {
	for lvl := Medium; lvl < NumLevels; lvl++ {
		q.levels[High] = append(q.levels[High], q.levels[lvl]...)
		q.levels[lvl] = nil
	}
}

// makeRunnable marks p RUNNABLE and lets idle cores know. p.lock must be
// held.
func (k *Kernel) makeRunnable(p *proc) {
	p.setState(Runnable)
	if k.cfg.Policy == PolicyFIFO {
		k.rq.mu.Lock()
		k.rq.push(p)
		k.rq.mu.Unlock()
	}
	for _, c := range k.cpus {
		c.ring(c.wake)
	}
}

// scheduler is the per-core dispatch loop. It returns when the kernel
// halts.
func (k *Kernel) scheduler(c *cpu) {
	c.proc.Store(nil)
	for !k.Halted() {
		p := k.pick(c)
		if p == nil {
			if !k.idle(c) {
				return
			}
			continue
		}
		if !k.dispatch(c, p) {
			return
		}
	}
}

// pick returns a RUNNABLE record, locked, or nil when there is none.
func (k *Kernel) pick(c *cpu) *proc {
	if k.cfg.Policy == PolicyFIFO {
		for {
			k.rq.mu.Lock()
			p := k.rq.pop()
			k.rq.mu.Unlock()
			if p == nil {
				return nil
			}
			p.lock.acquire(c)
			if p.getState() == Runnable {
				return p
			}
			p.lock.release(c)
		}
	}

	for lvl := High; lvl < NumLevels; lvl++ {
		for _, p := range k.procs {
			p.lock.acquire(c)
			if p.getState() == Runnable && p.loadMLFQ().level() == lvl {
				return p
			}
			p.lock.release(c)
		}
	}
	return nil
}

// dispatch runs p on c until p gives the core back. p.lock is held on entry
// and released on return. It reports false when the kernel halted while p
// was running.
func (k *Kernel) dispatch(c *cpu, p *proc) bool {
	now := k.ticks.Load()
	p.setState(Running)
	p.cpu = c
	c.proc.Store(p)
	p.runs++
	if p.runs == 1 {
		p.firstRun = now
	}
	p.waited += now - p.lastRun

	// Ticks that arrived while the core was idle belong to nobody.
	c.pending.Store(0)
	select {
	case <-c.tick:
	default:
	}

	if err := k.switcher.Switch(c.context, p.context); err != nil {
		if errors.Is(err, ErrHalted) {
			p.lock.release(c)
		}
		return false
	}

	p.lastRun = k.ticks.Load()
	c.proc.Store(nil)
	p.lock.release(c)
	return true
}

// idle waits for something to do. It reports false on halt.
func (k *Kernel) idle(c *cpu) bool {
	select {
	case <-c.wake:
	case <-c.tick:
		c.pending.Store(0)
	case <-k.halt:
		return false
	}
	return true
}

// sched switches from p back to its core's scheduler. The caller must hold
// exactly p.lock and must already have moved p out of RUNNING.
func (k *Kernel) sched(p *proc) {
	c := p.cpu
	if !p.lock.holding(c) {
		fatal("sched p->lock")
	}
	if c.noff != 1 {
		fatal("sched locks")
	}
	if p.getState() == Running {
		fatal("sched running")
	}

	if err := k.switcher.Switch(p.context, c.context); err != nil {
		if errors.Is(err, ErrHalted) {
			p.lock.release(c)
		}
		runtime.Goexit()
	}
}

// yield gives up the core for one scheduling round. A record that yields
// while still RUNNING keeps its level and is marked interactive.
func (k *Kernel) yield(p *proc) {
	p.lock.acquire(p.cpu)
	if p.getState() == Running {
		p.yielded = true
	}
	k.makeRunnable(p)
	k.sched(p)
	p.lock.release(p.cpu)
}
