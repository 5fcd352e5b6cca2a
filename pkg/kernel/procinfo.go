package kernel

import (
	"fmt"
	"io"
)

// ProcInfo is the scheduling and timing record of one process. Times are in
// clock ticks; a zero FirstRun or EndTime means the event has not happened.
type ProcInfo struct {
	PID           int    `json:"pid"`
	Name          string `json:"name"`
	State         State  `json:"state"`
	Priority      Level  `json:"priority"`
	Timeslice     int    `json:"timeslice"`
	TimesliceUsed int    `json:"timesliceUsed"`
	CPUTicks      uint64 `json:"cpuTicks"`
	SchedCount    uint64 `json:"schedCount"`
	StartTime     uint64 `json:"startTime"`
	FirstRun      uint64 `json:"firstRun"`
	EndTime       uint64 `json:"endTime"`
	TotalWait     uint64 `json:"totalWait"`
	Yielded       bool   `json:"yielded"`
}

// Turnaround is the time from creation to exit.
func (pi ProcInfo) Turnaround() uint64 {
	if pi.EndTime < pi.StartTime {
		return 0
	}
	return pi.EndTime - pi.StartTime
}

// Response is the time from creation to first dispatch.
func (pi ProcInfo) Response() uint64 {
	if pi.FirstRun < pi.StartTime {
		return 0
	}
	return pi.FirstRun - pi.StartTime
}

// infoLocked snapshots p. p.lock must be held.
func (k *Kernel) infoLocked(p *proc) ProcInfo {
	w := p.loadMLFQ()
	return ProcInfo{
		PID:           p.pid,
		Name:          p.name,
		State:         p.getState(),
		Priority:      w.level(),
		Timeslice:     w.slice(),
		TimesliceUsed: w.used(),
		CPUTicks:      p.cpuTicks,
		SchedCount:    p.runs,
		StartTime:     p.start,
		FirstRun:      p.firstRun,
		EndTime:       p.end,
		TotalWait:     p.waited,
		Yielded:       p.yielded,
	}
}

func (k *Kernel) procInfo(self *proc, pid int) (ProcInfo, error) {
	c := mycpu(self)
	for _, p := range k.procs {
		p.lock.acquire(c)
		if p.pid == pid && p.getState() != Unused {
			info := k.infoLocked(p)
			p.lock.release(c)
			return info, nil
		}
		p.lock.release(c)
	}
	return ProcInfo{}, fmt.Errorf("pid %d: %w", pid, ErrNoSuchProcess)
}

// ProcInfo returns the accounting of the live record with the given pid.
func (k *Kernel) ProcInfo(pid int) (ProcInfo, error) {
	if k.Halted() {
		return ProcInfo{}, ErrHalted
	}
	return k.procInfo(nil, pid)
}

// Snapshot returns the accounting of every live record in table order.
func (k *Kernel) Snapshot() ([]ProcInfo, error) {
	if k.Halted() {
		return nil, ErrHalted
	}
	var out []ProcInfo
	for _, p := range k.procs {
		p.lock.acquire(nil)
		if p.getState() != Unused {
			out = append(out, k.infoLocked(p))
		}
		p.lock.release(nil)
	}
	return out, nil
}

// Dump writes one line per live record. It never blocks on a record lock,
// so it is safe to call on a wedged or halted kernel.
func (k *Kernel) Dump(w io.Writer) {
	fmt.Fprintln(w)
	for _, p := range k.procs {
		st := p.getState()
		if st == Unused {
			continue
		}
		if !p.lock.tryAcquire() {
			fmt.Fprintf(w, "slot %d %s (locked)\n", p.index, st)
			continue
		}
		lvl := p.loadMLFQ().level()
		fmt.Fprintf(w, "%d %s %s %s\n", p.pid, st, p.name, lvl)
		p.lock.release(nil)
	}
}
