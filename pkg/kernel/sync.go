package kernel

import (
	"github.com/poltergeist/mlfq/pkg/logger"
)

// mycpu is the core a record runs on, or nil for callers outside any core.
func mycpu(p *proc) *cpu {
	if p == nil {
		return nil
	}
	return p.cpu
}

// sleep atomically releases lk and blocks p on ch. lk is reacquired before
// returning. Taking p.lock before dropping lk means a wakeup on ch cannot
// slip in between.
func (k *Kernel) sleep(p *proc, ch any, lk *spinlock) {
	c := p.cpu
	p.lock.acquire(c)
	lk.release(c)

	p.waitChan = ch
	p.setState(Sleeping)
	k.sched(p)
	p.waitChan = nil

	c = p.cpu
	p.lock.release(c)
	lk.acquire(c)
}

// wakeup makes every record sleeping on ch RUNNABLE, except self.
func (k *Kernel) wakeup(self *proc, ch any) {
	c := mycpu(self)
	for _, p := range k.procs {
		if p == self {
			continue
		}
		p.lock.acquire(c)
		if p.getState() == Sleeping && p.waitChan == ch {
			k.makeRunnable(p)
		}
		p.lock.release(c)
	}
}

// kill flags the record with the given pid. It does not preempt: the
// victim exits the next time it returns to user mode. A sleeping victim
// is made RUNNABLE so that happens promptly.
func (k *Kernel) kill(self *proc, pid int) error {
	c := mycpu(self)
	for _, p := range k.procs {
		p.lock.acquire(c)
		if p.pid == pid && p.getState() != Unused {
			p.killed = true
			if p.getState() == Sleeping {
				k.makeRunnable(p)
			}
			p.lock.release(c)
			k.log.Debug("Kill", logger.WithField("pid", pid))
			k.emit(Event{Kind: EventKill, PID: pid})
			return nil
		}
		p.lock.release(c)
	}
	return ErrNoSuchProcess
}

func (k *Kernel) setKilled(p *proc) {
	p.lock.acquire(p.cpu)
	p.killed = true
	p.lock.release(p.cpu)
}

func (k *Kernel) killed(p *proc) bool {
	p.lock.acquire(p.cpu)
	v := p.killed
	p.lock.release(p.cpu)
	return v
}

// Kill flags pid for termination from outside any record.
func (k *Kernel) Kill(pid int) error {
	if k.Halted() {
		return ErrHalted
	}
	return k.kill(nil, pid)
}
