package kernel

import (
	"errors"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poltergeist/mlfq/internal/sim"
	"github.com/poltergeist/mlfq/pkg/mocks"
)

// stubSwitcher returns immediately, as if the other side had already
// switched back.
type stubSwitcher struct {
	switches int
}

func (s *stubSwitcher) Switch(from, to *Context) error {
	s.switches++
	return nil
}

type eventLog struct {
	events []Event
}

func (l *eventLog) Emit(e Event) { l.events = append(l.events, e) }

func (l *eventLog) kinds() []EventKind {
	var out []EventKind
	for _, e := range l.events {
		out = append(out, e.Kind)
	}
	return out
}

func newTestKernel(t *testing.T, mutate func(*Config)) (*Kernel, *eventLog) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.NProc = 8
	cfg.NCPU = 1
	if mutate != nil {
		mutate(&cfg)
	}
	events := &eventLog{}
	k, err := New(sim.NewMemory(0), sim.NewFileSystem("console"),
		WithConfig(cfg),
		WithSwitcher(&stubSwitcher{}),
		WithEventSink(events))
	require.NoError(t, err)
	return k, events
}

// alloc returns an unlocked USED record.
func alloc(t *testing.T, k *Kernel) *proc {
	t.Helper()
	p, err := k.allocproc(nil)
	require.NoError(t, err)
	p.lock.release(nil)
	return p
}

// place makes p the RUNNING record of core 0, as dispatch would.
func place(k *Kernel, p *proc) *cpu {
	c := k.cpus[0]
	p.lock.acquire(nil)
	p.setState(Running)
	p.cpu = c
	c.proc.Store(p)
	p.lock.release(nil)
	return c
}

func TestAllocproc_Defaults(t *testing.T) {
	k, _ := newTestKernel(t, nil)
	for i := 0; i < 3; i++ {
		k.Tick()
	}

	p := alloc(t, k)

	assert.Equal(t, 1, p.pid)
	assert.Equal(t, Used, p.getState())
	w := p.loadMLFQ()
	assert.Equal(t, High, w.level())
	assert.Equal(t, 4, w.slice())
	assert.Equal(t, 0, w.used())
	assert.Equal(t, uint64(3), p.start)
	assert.Equal(t, uint64(3), p.lastRun)
	assert.Zero(t, p.cpuTicks)
	assert.Zero(t, p.runs)
	assert.False(t, p.yielded)
	assert.NotNil(t, p.trapframe)
	assert.NotNil(t, p.pagetable)
	assert.NotNil(t, p.context)
}

func TestAllocproc_TableFull(t *testing.T) {
	k, _ := newTestKernel(t, func(c *Config) { c.NProc = 2 })
	alloc(t, k)
	alloc(t, k)

	_, err := k.allocproc(nil)
	assert.ErrorIs(t, err, ErrTableFull)
}

func TestAllocproc_UniquePIDs(t *testing.T) {
	k, _ := newTestKernel(t, func(c *Config) { c.NProc = 4 })

	seen := make(map[int]bool)
	for round := 0; round < 10; round++ {
		var live []*proc
		for i := 0; i < 4; i++ {
			p := alloc(t, k)
			assert.False(t, seen[p.pid], "pid %d reused", p.pid)
			seen[p.pid] = true
			live = append(live, p)
		}
		for _, p := range live {
			p.lock.acquire(nil)
			k.freeproc(p)
			p.lock.release(nil)
		}
	}
	assert.Len(t, seen, 40)
}

func TestFreeproc_Resets(t *testing.T) {
	k, _ := newTestKernel(t, nil)
	mem := k.mem.(*sim.Memory)

	p := alloc(t, k)
	p.lock.acquire(nil)
	p.name = "victim"
	p.killed = true
	p.xstate = 3
	ctx := p.context
	k.freeproc(p)
	p.lock.release(nil)

	assert.Equal(t, Unused, p.getState())
	assert.Zero(t, p.pid)
	assert.Empty(t, p.name)
	assert.False(t, p.killed)
	assert.Nil(t, p.trapframe)
	assert.Nil(t, p.pagetable)
	assert.Equal(t, -1, p.parent)
	assert.Zero(t, mem.PagesInUse())

	select {
	case <-ctx.retired:
	default:
		t.Fatal("context not retired")
	}
}

func TestAllocproc_CollaboratorFailures(t *testing.T) {
	injected := errors.New("injected")

	t.Run("trapframe", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mem := mocks.NewMockAddressSpaces(ctrl)
		fs := mocks.NewMockFileSystem(ctrl)
		mem.EXPECT().AllocFrame().Return(nil, injected)

		k, err := New(mem, fs, WithSwitcher(&stubSwitcher{}))
		require.NoError(t, err)

		_, err = k.allocproc(nil)
		assert.ErrorIs(t, err, injected)
		assert.Equal(t, Unused, k.procs[0].getState())
	})

	t.Run("address space", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mem := mocks.NewMockAddressSpaces(ctrl)
		fs := mocks.NewMockFileSystem(ctrl)
		frame := &struct{}{}
		gomock.InOrder(
			mem.EXPECT().AllocFrame().Return(frame, nil),
			mem.EXPECT().Create().Return(nil, injected),
			mem.EXPECT().FreeFrame(frame),
		)

		k, err := New(mem, fs, WithSwitcher(&stubSwitcher{}))
		require.NoError(t, err)

		_, err = k.allocproc(nil)
		assert.ErrorIs(t, err, injected)
		assert.Equal(t, Unused, k.procs[0].getState())
	})
}

func TestFork_TeardownOnCollaboratorFailure(t *testing.T) {
	injected := errors.New("injected")

	// setup returns a kernel whose first record is running on core 0 with
	// the given frame and address space.
	setup := func(t *testing.T, mem *mocks.MockAddressSpaces, fs *mocks.MockFileSystem, frame, as any) (*Kernel, *proc, *cpu) {
		t.Helper()
		gomock.InOrder(
			mem.EXPECT().AllocFrame().Return(frame, nil),
			mem.EXPECT().Create().Return(as, nil),
		)
		k, err := New(mem, fs, WithSwitcher(&stubSwitcher{}))
		require.NoError(t, err)
		p := alloc(t, k)
		return k, p, place(k, p)
	}

	t.Run("copy", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mem := mocks.NewMockAddressSpaces(ctrl)
		fs := mocks.NewMockFileSystem(ctrl)
		parentFrame, parentAS := new(int), new(int)
		childFrame, childAS := new(int), new(int)
		k, p, c := setup(t, mem, fs, parentFrame, parentAS)
		gomock.InOrder(
			mem.EXPECT().AllocFrame().Return(childFrame, nil),
			mem.EXPECT().Create().Return(childAS, nil),
			mem.EXPECT().Copy(parentAS, childAS, uint64(0)).Return(injected),
			mem.EXPECT().FreeFrame(childFrame),
			mem.EXPECT().Destroy(childAS, uint64(0)),
		)

		pid, err := k.fork(p, func(*Process) {})
		assert.ErrorIs(t, err, injected)
		assert.Equal(t, -1, pid)
		assert.Equal(t, Unused, k.procs[1].getState())
		assert.Zero(t, c.noff)
		assert.Equal(t, Running, p.getState())
	})

	t.Run("dup", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mem := mocks.NewMockAddressSpaces(ctrl)
		fs := mocks.NewMockFileSystem(ctrl)
		parentFrame, parentAS := new(int), new(int)
		childFrame, childAS := new(int), new(int)
		console, data, consoleDup := new(int), new(int), new(int)
		k, p, c := setup(t, mem, fs, parentFrame, parentAS)
		p.ofile[0] = console
		p.ofile[1] = data
		gomock.InOrder(
			mem.EXPECT().AllocFrame().Return(childFrame, nil),
			mem.EXPECT().Create().Return(childAS, nil),
			mem.EXPECT().Copy(parentAS, childAS, uint64(0)).Return(nil),
			fs.EXPECT().Dup(console).Return(consoleDup, nil),
			fs.EXPECT().Dup(data).Return(nil, injected),
			fs.EXPECT().Close(consoleDup),
			mem.EXPECT().FreeFrame(childFrame),
			mem.EXPECT().Destroy(childAS, uint64(0)),
		)

		_, err := k.fork(p, func(*Process) {})
		assert.ErrorIs(t, err, injected)
		assert.Contains(t, err.Error(), "dup fd 1")
		child := k.procs[1]
		assert.Equal(t, Unused, child.getState())
		assert.Nil(t, child.ofile[0])
		assert.Zero(t, c.noff)
	})
}

func TestMLFQWord(t *testing.T) {
	tests := []struct {
		level       Level
		slice, used int
	}{
		{High, 4, 0},
		{Medium, 8, 7},
		{Low, 16, 15},
		{Low, maxSliceTicks, maxSliceTicks - 1},
	}
	for _, tt := range tests {
		w := packMLFQ(tt.level, tt.slice, tt.used)
		assert.Equal(t, tt.level, w.level())
		assert.Equal(t, tt.slice, w.slice())
		assert.Equal(t, tt.used, w.used())
	}
}

func TestDump(t *testing.T) {
	k, _ := newTestKernel(t, nil)
	_, err := k.Boot(func(*Process) {})
	require.NoError(t, err)

	var sb strings.Builder
	k.Dump(&sb)
	assert.Contains(t, sb.String(), "1 runble initcode high")

	k.procs[0].lock.acquire(nil)
	sb.Reset()
	k.Dump(&sb)
	k.procs[0].lock.release(nil)
	assert.Contains(t, sb.String(), "slot 0 runble (locked)")
}
