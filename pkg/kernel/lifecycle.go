package kernel

import (
	"encoding/binary"
	"fmt"

	"github.com/poltergeist/mlfq/pkg/logger"
)

// Program is the user-mode code of a record. Returning from it exits with
// status 0.
type Program func(p *Process)

func (k *Kernel) allocpid() int {
	k.pidLock.Lock()
	defer k.pidLock.Unlock()
	pid := k.nextPID
	k.nextPID++
	return pid
}

// allocproc claims an UNUSED slot and prepares it to run in the kernel. It
// returns the record with p.lock held.
func (k *Kernel) allocproc(c *cpu) (*proc, error) {
	var p *proc
	for _, cand := range k.procs {
		cand.lock.acquire(c)
		if cand.getState() == Unused {
			p = cand
			break
		}
		cand.lock.release(c)
	}
	if p == nil {
		return nil, ErrTableFull
	}

	p.pid = k.allocpid()
	p.setState(Used)
	k.resetMLFQ(p)

	frame, err := k.mem.AllocFrame()
	if err != nil {
		k.freeproc(p)
		p.lock.release(c)
		return nil, fmt.Errorf("allocate trapframe: %w", err)
	}
	p.trapframe = &Trapframe{frame: frame}

	as, err := k.mem.Create()
	if err != nil {
		k.freeproc(p)
		p.lock.release(c)
		return nil, fmt.Errorf("create address space: %w", err)
	}
	p.pagetable = as

	p.context = NewContext(func() { k.forkret(p) })
	return p, nil
}

// freeproc returns p to UNUSED. p.lock must be held; a record that still
// has a parent must also be covered by waitLock.
func (k *Kernel) freeproc(p *proc) {
	if p.trapframe != nil {
		k.mem.FreeFrame(p.trapframe.frame)
	}
	p.trapframe = nil
	if p.pagetable != nil {
		k.mem.Destroy(p.pagetable, p.sz)
	}
	p.pagetable = nil
	p.sz = 0
	p.pid = 0
	p.parent = -1
	p.name = ""
	p.waitChan = nil
	p.killed = false
	p.xstate = 0
	if p.context != nil {
		p.context.Retire()
		p.context = nil
	}
	p.cpu = nil
	p.setState(Unused)
}

// Boot creates the first record, running init. It must be called once,
// before Run. The init record never exits: after init returns it keeps
// reaping orphans.
func (k *Kernel) Boot(init Program) (int, error) {
	if k.initProc != nil {
		return 0, ErrAlreadyBooted
	}

	p, err := k.allocproc(nil)
	if err != nil {
		return 0, err
	}
	sz, err := k.mem.Resize(p.pagetable, 0, PageSize)
	if err != nil {
		k.freeproc(p)
		p.lock.release(nil)
		return 0, fmt.Errorf("size init: %w", err)
	}
	root, err := k.fs.Root()
	if err != nil {
		k.freeproc(p)
		p.lock.release(nil)
		return 0, fmt.Errorf("resolve root: %w", err)
	}

	p.sz = sz
	p.trapframe.Entry = init
	p.name = "initcode"
	p.cwd = root
	k.initProc = p
	k.makeRunnable(p)
	pid := p.pid
	p.lock.release(nil)

	k.log.Debug("Booted init", logger.WithField("pid", pid))
	return pid, nil
}

// growproc grows or shrinks p's memory by n bytes.
func (k *Kernel) growproc(p *proc, n int) error {
	sz := p.sz
	newSize := sz
	switch {
	case n > 0:
		newSize = sz + uint64(n)
	case n < 0:
		if uint64(-n) > sz {
			return fmt.Errorf("%w: shrink by %d below zero", ErrBadAddress, -n)
		}
		newSize = sz - uint64(-n)
	default:
		return nil
	}
	got, err := k.mem.Resize(p.pagetable, sz, newSize)
	if err != nil {
		return fmt.Errorf("resize: %w", err)
	}
	p.sz = got
	return nil
}

// fork creates a child of p running prog. The child gets a copy of p's
// memory and registers, shares p's open files and directory, and sees 0 as
// its fork result.
func (k *Kernel) fork(p *proc, prog Program) (int, error) {
	c := p.cpu
	np, err := k.allocproc(c)
	if err != nil {
		return -1, err
	}

	if err := k.mem.Copy(p.pagetable, np.pagetable, p.sz); err != nil {
		k.freeproc(np)
		np.lock.release(c)
		return -1, fmt.Errorf("copy address space: %w", err)
	}
	np.sz = p.sz

	frame := np.trapframe.frame
	*np.trapframe = *p.trapframe
	np.trapframe.frame = frame
	np.trapframe.Entry = prog
	np.trapframe.Ret = 0

	for fd, f := range p.ofile {
		if f == nil {
			continue
		}
		nf, err := k.fs.Dup(f)
		if err != nil {
			k.closeFiles(np)
			k.freeproc(np)
			np.lock.release(c)
			return -1, fmt.Errorf("dup fd %d: %w", fd, err)
		}
		np.ofile[fd] = nf
	}
	np.cwd = k.fs.DupDir(p.cwd)
	np.name = p.name

	pid := np.pid
	np.lock.release(c)

	k.waitLock.acquire(c)
	np.parent = p.index
	k.waitLock.release(c)

	np.lock.acquire(c)
	k.makeRunnable(np)
	np.lock.release(c)

	k.log.Debug("Fork", logger.WithField("parent", p.pid), logger.WithField("child", pid))
	k.emit(Event{Kind: EventFork, PID: pid, Parent: p.pid, Level: High})
	return pid, nil
}

func (k *Kernel) closeFiles(p *proc) {
	for fd, f := range p.ofile {
		if f != nil {
			k.fs.Close(f)
			p.ofile[fd] = nil
		}
	}
}

// reparent hands p's children to init. waitLock must be held.
func (k *Kernel) reparent(p *proc) {
	for _, pp := range k.procs {
		if pp.parent == p.index {
			pp.parent = k.initProc.index
			k.wakeup(p, k.initProc)
		}
	}
}

// exit terminates p. The record stays ZOMBIE until its parent reaps it.
// exit does not return.
func (k *Kernel) exit(p *proc, status int) {
	if p == k.initProc {
		fatal("init exiting")
	}
	p.context.exited.Store(true)

	k.closeFiles(p)
	k.fs.BeginOp()
	k.fs.PutDir(p.cwd)
	k.fs.EndOp()
	p.cwd = nil

	c := p.cpu
	k.waitLock.acquire(c)
	k.reparent(p)
	if p.parent >= 0 {
		k.wakeup(p, k.procs[p.parent])
	}

	p.lock.acquire(c)
	p.xstate = status
	p.end = k.ticks.Load()
	p.setState(Zombie)
	info := k.infoLocked(p)
	parent := -1
	if p.parent >= 0 {
		parent = k.procs[p.parent].pid
	}
	k.waitLock.release(c)

	k.log.Debug("Exit", logger.WithField("pid", p.pid), logger.WithField("status", status))
	k.emit(Event{Kind: EventExit, PID: p.pid, Parent: parent, Level: info.Priority, Status: status, Info: &info})

	k.sched(p)
	fatal("zombie exit")
}

// wait reaps one ZOMBIE child of p and returns its pid, copying its exit
// status to addr when addr is not zero. With block set and no children, p
// sleeps until one is handed to it instead of failing.
func (k *Kernel) wait(p *proc, addr uint64, block bool) (int, error) {
	c := p.cpu
	k.waitLock.acquire(c)
	for {
		haveKids := false
		for _, pp := range k.procs {
			if pp.parent != p.index {
				continue
			}
			pp.lock.acquire(c)
			haveKids = true
			if pp.getState() == Zombie {
				pid := pp.pid
				if addr != 0 {
					var buf [statusBytes]byte
					binary.LittleEndian.PutUint32(buf[:], uint32(int32(pp.xstate)))
					if err := k.mem.CopyOut(p.pagetable, addr, buf[:]); err != nil {
						pp.lock.release(c)
						k.waitLock.release(c)
						return -1, fmt.Errorf("%w: %v", ErrBadAddress, err)
					}
				}
				status := pp.xstate
				k.freeproc(pp)
				pp.lock.release(c)
				k.waitLock.release(c)
				k.emit(Event{Kind: EventReap, PID: pid, Parent: p.pid, Status: status})
				return pid, nil
			}
			pp.lock.release(c)
		}

		if !haveKids && !block {
			k.waitLock.release(c)
			return -1, ErrNoChildren
		}
		if k.killed(p) {
			k.waitLock.release(p.cpu)
			return -1, fmt.Errorf("%w: %w", ErrNoChildren, ErrKilled)
		}

		k.sleep(p, p, &k.waitLock)
		c = p.cpu
	}
}

// forkret is where every record starts executing. The scheduler still
// holds p.lock on entry.
func (k *Kernel) forkret(p *proc) {
	pr := &Process{k: k, p: p, ctx: p.context}
	p.lock.release(p.cpu)

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if fe, ok := r.(*FatalError); ok {
			k.crash(fe)
			return
		}
		// The slot may already be reaped and reused; exiting again would
		// act on another record.
		if pr.ctx.exited.Load() {
			return
		}
		if p == k.initProc {
			k.crash(&FatalError{Op: fmt.Sprintf("init fault: %v", r)})
			return
		}
		k.log.Warn("User fault", logger.WithField("pid", p.pid), logger.WithField("fault", r))
		k.setKilled(p)
		k.exit(p, -1)
	}()

	p.trapframe.Entry(pr)

	if p == k.initProc {
		for {
			if _, err := k.wait(p, 0, true); err != nil {
				k.usertrap(pr)
			}
		}
	}
	k.exit(p, 0)
}
