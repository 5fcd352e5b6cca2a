package kernel

import (
	"runtime"
)

// trap charges up to limit of the ticks pending on p's core, or all of them
// when limit is negative. It stops early when p used up its slice and was
// switched out, and returns how many ticks it charged.
func (k *Kernel) trap(p *proc, limit int) int {
	charged := 0
	for limit < 0 || charged < limit {
		c := p.cpu
		if c.pending.Load() <= 0 {
			break
		}
		c.pending.Add(-1)
		charged++
		if k.chargeTick(p) {
			break
		}
	}
	return charged
}

// usertrap is the return path to user mode. It settles the clock and
// terminates p if it was killed.
func (k *Kernel) usertrap(pr *Process) int {
	pr.check()
	p := pr.p
	if k.Halted() {
		runtime.Goexit()
	}
	n := k.trap(p, -1)
	if k.killed(p) {
		k.exit(p, -1)
	}
	return n
}

// compute burns n ticks of CPU time on p's behalf.
func (k *Kernel) compute(p *proc, n int) {
	done := 0
	for done < n {
		c := p.cpu
		if c.pending.Load() <= 0 {
			select {
			case <-c.tick:
			case <-k.halt:
				runtime.Goexit()
			}
		}
		done += k.trap(p, n-done)
		if k.killed(p) {
			k.exit(p, -1)
		}
	}
}

// sleepTicks blocks p until n more clock ticks have passed.
func (k *Kernel) sleepTicks(p *proc, n uint64) {
	k.tickslock.acquire(p.cpu)
	t0 := k.ticks.Load()
	for k.ticks.Load()-t0 < n {
		if k.killed(p) {
			k.tickslock.release(p.cpu)
			k.exit(p, -1)
		}
		k.sleep(p, &k.ticks, &k.tickslock)
	}
	k.tickslock.release(p.cpu)
}
