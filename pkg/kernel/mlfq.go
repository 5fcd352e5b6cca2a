package kernel

import (
	"github.com/poltergeist/mlfq/pkg/logger"
)

func (k *Kernel) sliceFor(lvl Level) int {
	return k.cfg.Slices[lvl]
}

// resetMLFQ puts a fresh record at HIGH with clean accounting. p.lock must
// be held.
func (k *Kernel) resetMLFQ(p *proc) {
	now := k.ticks.Load()
	p.storeMLFQ(packMLFQ(High, k.sliceFor(High), 0))
	p.yielded = false
	p.cpuTicks = 0
	p.runs = 0
	p.start = now
	p.firstRun = 0
	p.end = 0
	p.lastRun = now
	p.waited = 0
}

// Tick is the clock interrupt. It advances the global tick count, wakes
// tick sleepers, boosts every BoostInterval ticks, and posts one tick to
// each core for its running record to charge.
func (k *Kernel) Tick() {
	if k.Halted() {
		return
	}

	k.tickslock.acquire(nil)
	k.ticks.Add(1)
	k.wakeup(nil, &k.ticks)
	k.starvation++
	boost := k.starvation >= k.cfg.BoostInterval
	if boost {
		k.starvation = 0
	}
	k.tickslock.release(nil)

	if boost {
		k.boost()
	}
	for _, c := range k.cpus {
		c.pending.Add(1)
		c.ring(c.tick)
	}
}

// boost lifts every RUNNABLE or RUNNING record back to HIGH with a fresh
// slice. It does not take p.lock: each record's level, slice and usage are
// replaced with one atomic store, and a record that leaves those states
// concurrently gets its boosted values reset on its next allocation.
func (k *Kernel) boost() {
	fresh := packMLFQ(High, k.sliceFor(High), 0)

	k.rq.mu.Lock()
	n := 0
	for _, p := range k.procs {
		switch p.getState() {
		case Runnable, Running:
			p.storeMLFQ(fresh)
			n++
		}
	}
	k.rq.promote()
	k.rq.mu.Unlock()

	k.log.Debug("Priority boost", logger.WithField("records", n))
	k.emit(Event{Kind: EventBoost, PID: -1, Level: High})
}

// chargeTick bills one tick to p, which must be RUNNING on its core. When
// the slice runs out p is demoted one level, unless already LOW, and gives
// up the core. It reports whether p was switched out.
func (k *Kernel) chargeTick(p *proc) bool {
	c := p.cpu
	p.lock.acquire(c)
	if p.getState() != Running {
		p.lock.release(c)
		return false
	}
	p.cpuTicks++

	var (
		old     mlfqWord
		next    mlfqWord
		expired bool
	)
	for {
		old = p.loadMLFQ()
		lvl, slice, used := old.level(), old.slice(), old.used()+1
		expired = used >= slice
		if expired {
			if lvl < Low {
				lvl++
				slice = k.sliceFor(lvl)
			}
			used = 0
		}
		next = packMLFQ(lvl, slice, used)
		if p.mlfq.CompareAndSwap(uint64(old), uint64(next)) {
			break
		}
	}

	if !expired {
		p.lock.release(c)
		return false
	}

	p.yielded = false
	if next.level() != old.level() {
		k.emit(Event{Kind: EventDemote, PID: p.pid, Level: next.level()})
	}
	k.makeRunnable(p)
	k.sched(p)
	p.lock.release(p.cpu)
	return true
}
