package kernel

import (
	"encoding/binary"
	"fmt"
	"runtime"
)

// Process is the system call surface handed to a running Program. It is
// only valid on the goroutine the Program was started on.
type Process struct {
	k   *Kernel
	p   *proc
	ctx *Context

	// scratch is a user address reserved for WaitStatus.
	scratch uint64
}

// check ends the calling goroutine once its record has exited. Deferred
// calls of an exited Program run after the slot may have been reaped and
// handed to someone else, so they must not touch it.
func (pr *Process) check() {
	if pr.ctx.exited.Load() {
		runtime.Goexit()
	}
}

func (pr *Process) enter() {
	pr.check()
	if pr.k.Halted() {
		runtime.Goexit()
	}
	if pr.k.killed(pr.p) {
		pr.k.exit(pr.p, -1)
	}
}

func (pr *Process) leave() {
	pr.k.usertrap(pr)
}

// PID returns the caller's pid.
func (pr *Process) PID() int {
	pr.check()
	return pr.p.pid
}

// Name returns the caller's name.
func (pr *Process) Name() string {
	pr.check()
	p := pr.p
	p.lock.acquire(p.cpu)
	defer p.lock.release(p.cpu)
	return p.name
}

// SetName renames the caller. Children forked afterwards inherit the name.
func (pr *Process) SetName(name string) {
	pr.enter()
	p := pr.p
	p.lock.acquire(p.cpu)
	p.name = name
	p.lock.release(p.cpu)
	pr.leave()
}

// Fork starts a child running prog and returns its pid.
func (pr *Process) Fork(prog Program) (int, error) {
	pr.enter()
	pid, err := pr.k.fork(pr.p, prog)
	pr.leave()
	return pid, err
}

// Exit terminates the caller with status. It does not return.
func (pr *Process) Exit(status int) {
	pr.enter()
	pr.k.exit(pr.p, status)
}

// Wait reaps an exited child, blocking until one exits. The child's status
// is written as a little-endian int32 at addr unless addr is zero.
func (pr *Process) Wait(addr uint64) (int, error) {
	pr.enter()
	pid, err := pr.k.wait(pr.p, addr, false)
	pr.leave()
	return pid, err
}

// WaitStatus reaps an exited child and returns its pid and exit status.
func (pr *Process) WaitStatus() (int, int, error) {
	pr.enter()
	k, p := pr.k, pr.p
	if pr.scratch == 0 || pr.scratch+statusBytes > p.sz {
		old := p.sz
		if err := k.growproc(p, statusBytes); err != nil {
			pr.leave()
			return -1, 0, err
		}
		pr.scratch = old
	}

	pid, err := k.wait(p, pr.scratch, false)
	if err != nil {
		pr.leave()
		return pid, 0, err
	}
	buf, err := k.mem.CopyIn(p.pagetable, pr.scratch, statusBytes)
	if err != nil {
		pr.leave()
		return pid, 0, fmt.Errorf("%w: %v", ErrBadAddress, err)
	}
	status := int(int32(binary.LittleEndian.Uint32(buf)))
	pr.leave()
	return pid, status, nil
}

// Kill flags pid for termination.
func (pr *Process) Kill(pid int) error {
	pr.enter()
	err := pr.k.kill(pr.p, pid)
	pr.leave()
	return err
}

// Killed reports whether the caller has been killed.
func (pr *Process) Killed() bool {
	pr.check()
	return pr.k.killed(pr.p)
}

// Yield gives up the core voluntarily. The caller keeps its level.
func (pr *Process) Yield() {
	pr.enter()
	pr.k.yield(pr.p)
	pr.leave()
}

// Compute runs for n clock ticks.
func (pr *Process) Compute(n int) {
	pr.enter()
	pr.k.compute(pr.p, n)
	pr.leave()
}

// Sleep blocks for n clock ticks.
func (pr *Process) Sleep(n uint64) {
	pr.enter()
	pr.k.sleepTicks(pr.p, n)
	pr.leave()
}

// Sbrk grows or shrinks the caller's memory by n bytes and returns the
// previous size.
func (pr *Process) Sbrk(n int) (uint64, error) {
	pr.enter()
	old := pr.p.sz
	err := pr.k.growproc(pr.p, n)
	pr.leave()
	if err != nil {
		return 0, err
	}
	return old, nil
}

// Size returns the caller's memory size in bytes.
func (pr *Process) Size() uint64 {
	pr.check()
	return pr.p.sz
}

// Open opens path and returns the lowest free descriptor.
func (pr *Process) Open(path string) (int, error) {
	pr.enter()
	defer pr.leave()

	k, p := pr.k, pr.p
	k.fs.BeginOp()
	f, err := k.fs.Open(path)
	k.fs.EndOp()
	if err != nil {
		return -1, fmt.Errorf("open %s: %w", path, err)
	}
	for fd := range p.ofile {
		if p.ofile[fd] == nil {
			p.ofile[fd] = f
			return fd, nil
		}
	}
	k.fs.Close(f)
	return -1, ErrTooManyFiles
}

// Close releases descriptor fd.
func (pr *Process) Close(fd int) error {
	pr.enter()
	defer pr.leave()

	p := pr.p
	if fd < 0 || fd >= NOFILE || p.ofile[fd] == nil {
		return fmt.Errorf("fd %d: %w", fd, ErrBadDescriptor)
	}
	f := p.ofile[fd]
	p.ofile[fd] = nil
	pr.k.fs.Close(f)
	return nil
}

// ProcInfo returns the accounting of the record with the given pid.
func (pr *Process) ProcInfo(pid int) (ProcInfo, error) {
	pr.enter()
	info, err := pr.k.procInfo(pr.p, pid)
	pr.leave()
	return info, err
}

// Uptime returns the number of clock ticks since boot.
func (pr *Process) Uptime() uint64 {
	return pr.k.ticks.Load()
}
