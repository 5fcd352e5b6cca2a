package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sleepOn(p *proc, ch any) {
	p.lock.acquire(nil)
	p.waitChan = ch
	p.setState(Sleeping)
	p.lock.release(nil)
}

func TestWakeup_OnlyMatchingChannel(t *testing.T) {
	k, _ := newTestKernel(t, nil)
	a := alloc(t, k)
	b := alloc(t, k)
	chA, chB := new(int), new(int)
	sleepOn(a, chA)
	sleepOn(b, chB)

	k.wakeup(nil, chA)

	assert.Equal(t, Runnable, a.getState())
	assert.Equal(t, Sleeping, b.getState())
}

func TestWakeup_SkipsSelf(t *testing.T) {
	k, _ := newTestKernel(t, nil)
	self := alloc(t, k)
	other := alloc(t, k)
	ch := new(int)
	place(k, self)
	self.lock.acquire(nil)
	self.waitChan = ch
	self.setState(Sleeping)
	self.lock.release(nil)
	sleepOn(other, ch)

	k.wakeup(self, ch)

	assert.Equal(t, Sleeping, self.getState())
	assert.Equal(t, Runnable, other.getState())
}

func TestSleep_ReleasesAndReacquires(t *testing.T) {
	k, _ := newTestKernel(t, nil)
	p := alloc(t, k)
	c := place(k, p)
	ch := new(int)

	var during State
	var chanDuring any
	k.switcher = switchFunc(func(from, to *Context) error {
		during = p.getState()
		chanDuring = p.waitChan
		assert.False(t, k.waitLock.holding(c), "condition lock must be dropped while asleep")
		return nil
	})

	k.waitLock.acquire(c)
	k.sleep(p, ch, &k.waitLock)

	assert.Equal(t, Sleeping, during)
	assert.Equal(t, ch, chanDuring)
	assert.Nil(t, p.waitChan)
	assert.True(t, k.waitLock.holding(c))
	assert.False(t, p.lock.holding(c))
	k.waitLock.release(c)
	assert.Zero(t, c.noff)
}

type switchFunc func(from, to *Context) error

func (f switchFunc) Switch(from, to *Context) error { return f(from, to) }

func TestKill(t *testing.T) {
	k, events := newTestKernel(t, nil)
	sleeper := alloc(t, k)
	sleepOn(sleeper, new(int))
	sleeper.storeMLFQ(packMLFQ(Medium, 8, 3))
	used := alloc(t, k)

	require.NoError(t, k.Kill(sleeper.pid))
	assert.True(t, sleeper.killed)
	assert.Equal(t, Runnable, sleeper.getState())
	assert.Equal(t, packMLFQ(Medium, 8, 3), sleeper.loadMLFQ(), "kill keeps the sleeper's level and slice")

	require.NoError(t, k.Kill(used.pid))
	assert.True(t, used.killed)
	assert.Equal(t, Used, used.getState())

	assert.ErrorIs(t, k.Kill(999), ErrNoSuchProcess)
	assert.Equal(t, []EventKind{EventKill, EventKill}, events.kinds())
}

func TestKill_UnusedSlotIsNotAMatch(t *testing.T) {
	k, _ := newTestKernel(t, nil)
	p := alloc(t, k)
	pid := p.pid
	p.lock.acquire(nil)
	k.freeproc(p)
	p.lock.release(nil)

	assert.ErrorIs(t, k.Kill(pid), ErrNoSuchProcess)
	assert.ErrorIs(t, k.Kill(0), ErrNoSuchProcess)
}

func TestKill_Halted(t *testing.T) {
	k, _ := newTestKernel(t, nil)
	k.Halt()
	assert.ErrorIs(t, k.Kill(1), ErrHalted)
}

func TestProcInfo_Internal(t *testing.T) {
	k, _ := newTestKernel(t, nil)
	p := alloc(t, k)
	p.lock.acquire(nil)
	p.name = "worker"
	p.storeMLFQ(packMLFQ(Medium, 8, 3))
	p.cpuTicks = 7
	p.lock.release(nil)

	info, err := k.ProcInfo(p.pid)
	require.NoError(t, err)
	assert.Equal(t, ProcInfo{
		PID:           p.pid,
		Name:          "worker",
		State:         Used,
		Priority:      Medium,
		Timeslice:     8,
		TimesliceUsed: 3,
		CPUTicks:      7,
	}, info)

	_, err = k.ProcInfo(12345)
	assert.ErrorIs(t, err, ErrNoSuchProcess)

	snap, err := k.Snapshot()
	require.NoError(t, err)
	assert.Len(t, snap, 1)
}
