package kernel

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/poltergeist/mlfq/pkg/logger"
)

// cpu is the per-core state. proc and context are only changed by the
// goroutine currently executing on the core.
type cpu struct {
	id      int
	proc    atomic.Pointer[proc]
	context *Context
	noff    int

	// pending counts clock ticks not yet charged to the record running
	// here. tick is rung after each increment; wake is rung when a record
	// becomes runnable.
	pending atomic.Int64
	tick    chan struct{}
	wake    chan struct{}
}

func (c *cpu) ring(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// Kernel owns the process table, the cores and the scheduler.
type Kernel struct {
	cfg      Config
	log      logger.Logger
	mem      AddressSpaces
	fs       FileSystem
	switcher Switcher
	sink     EventSink

	procs []*proc
	cpus  []*cpu
	rq    runQueue

	pidLock sync.Mutex
	nextPID int

	// waitLock serializes parent fields and is taken before any p.lock.
	waitLock spinlock

	tickslock  spinlock
	ticks      atomic.Uint64
	starvation uint64

	initProc *proc

	halt     chan struct{}
	haltOnce sync.Once
	crashed  atomic.Pointer[FatalError]
	running  atomic.Bool
}

// New creates a kernel over the given memory and file system collaborators.
func New(mem AddressSpaces, fs FileSystem, opts ...Option) (*Kernel, error) {
	if mem == nil || fs == nil {
		return nil, ErrNilCollaborators
	}

	k := &Kernel{
		cfg:     DefaultConfig(),
		log:     logger.Discard(),
		mem:     mem,
		fs:      fs,
		nextPID: 1,
		halt:    make(chan struct{}),
	}
	k.waitLock.name = "wait_lock"
	k.tickslock.name = "time"

	for _, opt := range opts {
		opt(k)
	}
	if err := k.cfg.Validate(); err != nil {
		return nil, err
	}
	if k.switcher == nil {
		k.switcher = NewGoroutineSwitcher(k.halt)
	}

	k.procs = make([]*proc, k.cfg.NProc)
	for i := range k.procs {
		p := &proc{index: i, parent: -1}
		p.lock.name = "proc"
		k.procs[i] = p
	}
	k.cpus = make([]*cpu, k.cfg.NCPU)
	for i := range k.cpus {
		k.cpus[i] = &cpu{
			id:      i,
			context: newSchedulerContext(),
			tick:    make(chan struct{}, 1),
			wake:    make(chan struct{}, 1),
		}
	}

	return k, nil
}

// Config returns the active configuration.
func (k *Kernel) Config() Config {
	return k.cfg
}

// Run starts one scheduler loop per core and, when configured, the clock.
// It blocks until ctx is done, Halt is called, or a fatal invariant
// violation stops the kernel, in which case the FatalError is returned.
func (k *Kernel) Run(ctx context.Context) error {
	if k.initProc == nil {
		return ErrNotBooted
	}
	if !k.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	k.log.Info("Kernel starting",
		logger.WithField("ncpu", k.cfg.NCPU),
		logger.WithField("nproc", k.cfg.NProc),
		logger.WithField("policy", k.cfg.Policy))

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range k.cpus {
		c := c
		g.Go(func() error {
			return k.guard(func() { k.scheduler(c) })
		})
	}
	if k.cfg.TickInterval > 0 {
		g.Go(func() error {
			return k.clock(gctx)
		})
	}
	g.Go(func() error {
		select {
		case <-gctx.Done():
			k.Halt()
		case <-k.halt:
		}
		return nil
	})

	err := g.Wait()
	if fe := k.crashed.Load(); fe != nil {
		return fe
	}
	return err
}

// Halt stops every core. Records parked in the kernel are abandoned.
func (k *Kernel) Halt() {
	k.haltOnce.Do(func() {
		close(k.halt)
	})
}

// Halted reports whether the kernel has stopped.
func (k *Kernel) Halted() bool {
	select {
	case <-k.halt:
		return true
	default:
		return false
	}
}

// Done is closed when the kernel halts.
func (k *Kernel) Done() <-chan struct{} {
	return k.halt
}

// Uptime returns the number of clock ticks since boot.
func (k *Kernel) Uptime() uint64 {
	return k.ticks.Load()
}

func (k *Kernel) clock(ctx context.Context) error {
	t := time.NewTicker(k.cfg.TickInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-k.halt:
			return nil
		case <-t.C:
			k.Tick()
		}
	}
}

// guard runs fn and turns a kernel panic into a halt.
func (k *Kernel) guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if fe, ok := r.(*FatalError); ok {
				k.crash(fe)
				return
			}
			k.log.Error("Scheduler panic recovered",
				logger.WithField("panic", r),
				logger.WithField("stack_trace", string(debug.Stack())))
			err = fmt.Errorf("scheduler panic: %v", r)
			k.Halt()
		}
	}()
	fn()
	return nil
}

func (k *Kernel) crash(fe *FatalError) {
	if k.crashed.CompareAndSwap(nil, fe) {
		k.log.Error("Kernel panic", logger.WithField("op", fe.Op))
	}
	k.Halt()
}

func (k *Kernel) emit(e Event) {
	if k.sink == nil {
		return
	}
	e.Tick = k.ticks.Load()
	k.sink.Emit(e)
}
