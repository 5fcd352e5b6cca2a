package kernel

import (
	"sync/atomic"
)

// State is the lifecycle state of a process record.
type State int32

const (
	Unused State = iota
	Used
	Sleeping
	Runnable
	Running
	Zombie
)

var stateNames = [...]string{
	Unused:   "unused",
	Used:     "used",
	Sleeping: "sleep",
	Runnable: "runble",
	Running:  "run",
	Zombie:   "zombie",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "???"
}

// MarshalText renders the state name in reports.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Level is a feedback queue priority. Lower values run first.
type Level int

const (
	High Level = iota
	Medium
	Low
	NumLevels = 3
)

func (l Level) String() string {
	switch l {
	case High:
		return "high"
	case Medium:
		return "medium"
	case Low:
		return "low"
	default:
		return "???"
	}
}

// MarshalText renders the level name in reports.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// mlfqWord packs level, slice length and slice ticks used into one word so
// the boost can reset a record with a single store.
//
//	bits 32..39 level | bits 16..31 slice | bits 0..15 used
type mlfqWord uint64

func packMLFQ(level Level, slice, used int) mlfqWord {
	return mlfqWord(uint64(level)<<32 | uint64(slice&0xffff)<<16 | uint64(used&0xffff))
}

func (w mlfqWord) level() Level { return Level(w >> 32 & 0xff) }
func (w mlfqWord) slice() int   { return int(w >> 16 & 0xffff) }
func (w mlfqWord) used() int    { return int(w & 0xffff) }

// Trapframe is the saved user register state of a record. Entry is where
// the record resumes in user mode; Ret is the value returned by the system
// call that created it.
type Trapframe struct {
	frame Frame
	Entry Program
	Ret   int
}

// proc is a process control block. It lives in the table for the whole
// life of the kernel and is reset in place.
type proc struct {
	lock  spinlock
	index int

	// p.lock must be held when using these. state is also read without
	// the lock by the boost and by Dump.
	state    atomic.Int32
	waitChan any
	killed   bool
	xstate   int
	pid      int
	name     string
	mlfq     atomic.Uint64
	yielded  bool
	cpuTicks uint64
	runs     uint64
	start    uint64
	firstRun uint64
	end      uint64
	lastRun  uint64
	waited   uint64

	// waitLock must be held when using this. Index of the parent in the
	// table, or -1.
	parent int

	// Private to the record; no lock needed.
	sz        uint64
	pagetable AddressSpace
	trapframe *Trapframe
	ofile     [NOFILE]File
	cwd       Dir

	context *Context
	cpu     *cpu
}

func (p *proc) getState() State { return State(p.state.Load()) }

func (p *proc) setState(s State) { p.state.Store(int32(s)) }

func (p *proc) loadMLFQ() mlfqWord { return mlfqWord(p.mlfq.Load()) }

func (p *proc) storeMLFQ(w mlfqWord) { p.mlfq.Store(uint64(w)) }
