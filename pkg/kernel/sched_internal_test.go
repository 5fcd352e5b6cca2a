package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChargeTick_DemotesOnSliceExhaustion(t *testing.T) {
	k, events := newTestKernel(t, nil)
	p := alloc(t, k)
	place(k, p)

	for i := 1; i < 4; i++ {
		require.False(t, k.chargeTick(p), "tick %d", i)
		assert.Equal(t, i, p.loadMLFQ().used())
	}
	assert.True(t, k.chargeTick(p))

	w := p.loadMLFQ()
	assert.Equal(t, Medium, w.level())
	assert.Equal(t, 8, w.slice())
	assert.Equal(t, 0, w.used())
	assert.Equal(t, Runnable, p.getState())
	assert.Equal(t, uint64(4), p.cpuTicks)
	assert.Equal(t, []EventKind{EventDemote}, events.kinds())
	assert.Equal(t, Medium, events.events[0].Level)
	assert.Zero(t, k.cpus[0].noff)
}

func TestChargeTick_FullDescent(t *testing.T) {
	k, _ := newTestKernel(t, nil)
	p := alloc(t, k)

	levels := []struct {
		ticks int
		after Level
	}{
		{4, Medium},
		{8, Low},
		{16, Low},
	}
	for _, lv := range levels {
		place(k, p)
		for i := 1; i < lv.ticks; i++ {
			require.False(t, k.chargeTick(p))
		}
		require.True(t, k.chargeTick(p))
		assert.Equal(t, lv.after, p.loadMLFQ().level())
		assert.Equal(t, 0, p.loadMLFQ().used())
	}
	assert.Equal(t, 16, p.loadMLFQ().slice())
}

func TestChargeTick_LowStaysLow(t *testing.T) {
	k, events := newTestKernel(t, nil)
	p := alloc(t, k)
	p.storeMLFQ(packMLFQ(Low, 16, 15))
	place(k, p)

	assert.True(t, k.chargeTick(p))
	assert.Equal(t, packMLFQ(Low, 16, 0), p.loadMLFQ())
	assert.Empty(t, events.events, "no demotion below LOW")
}

func TestChargeTick_ClearsYielded(t *testing.T) {
	k, _ := newTestKernel(t, nil)
	p := alloc(t, k)
	p.yielded = true
	p.storeMLFQ(packMLFQ(High, 4, 3))
	place(k, p)

	require.True(t, k.chargeTick(p))
	assert.False(t, p.yielded)
}

func TestChargeTick_IgnoresNonRunning(t *testing.T) {
	k, _ := newTestKernel(t, nil)
	p := alloc(t, k)
	place(k, p)
	p.setState(Runnable)

	assert.False(t, k.chargeTick(p))
	assert.Zero(t, p.cpuTicks)
}

func TestYield_KeepsLevelAndMarksInteractive(t *testing.T) {
	k, _ := newTestKernel(t, nil)
	p := alloc(t, k)
	p.storeMLFQ(packMLFQ(Medium, 8, 2))
	place(k, p)

	k.yield(p)

	assert.True(t, p.yielded)
	assert.Equal(t, Runnable, p.getState())
	assert.Equal(t, packMLFQ(Medium, 8, 2), p.loadMLFQ())
}

func TestTick_BoostEveryInterval(t *testing.T) {
	k, events := newTestKernel(t, nil)
	runnable := alloc(t, k)
	sleeping := alloc(t, k)
	running := alloc(t, k)

	runnable.lock.acquire(nil)
	runnable.storeMLFQ(packMLFQ(Low, 16, 5))
	k.makeRunnable(runnable)
	runnable.lock.release(nil)

	sleeping.lock.acquire(nil)
	sleeping.storeMLFQ(packMLFQ(Low, 16, 5))
	sleeping.setState(Sleeping)
	sleeping.waitChan = sleeping
	sleeping.lock.release(nil)

	running.storeMLFQ(packMLFQ(Medium, 8, 1))
	place(k, running)

	for i := 0; i < 9; i++ {
		k.Tick()
	}
	assert.Equal(t, Low, runnable.loadMLFQ().level())
	assert.NotContains(t, events.kinds(), EventBoost)

	k.Tick()
	fresh := packMLFQ(High, 4, 0)
	assert.Equal(t, fresh, runnable.loadMLFQ())
	assert.Equal(t, fresh, running.loadMLFQ())
	assert.Equal(t, packMLFQ(Low, 16, 5), sleeping.loadMLFQ())
	assert.Contains(t, events.kinds(), EventBoost)
	assert.Equal(t, uint64(10), k.Uptime())
	assert.Equal(t, int64(10), k.cpus[0].pending.Load())
}

func TestTick_WakesTickSleepers(t *testing.T) {
	k, _ := newTestKernel(t, nil)
	p := alloc(t, k)
	p.lock.acquire(nil)
	p.setState(Sleeping)
	p.waitChan = &k.ticks
	p.lock.release(nil)

	k.Tick()
	assert.Equal(t, Runnable, p.getState())
}

func TestTick_NoopWhenHalted(t *testing.T) {
	k, _ := newTestKernel(t, nil)
	k.Halt()
	k.Tick()
	assert.Zero(t, k.Uptime())
}

func TestPick_ScanPrefersLevelThenIndex(t *testing.T) {
	k, _ := newTestKernel(t, nil)
	a := alloc(t, k)
	b := alloc(t, k)
	c := alloc(t, k)

	for _, p := range []*proc{a, b, c} {
		p.lock.acquire(nil)
		k.makeRunnable(p)
		p.lock.release(nil)
	}
	a.storeMLFQ(packMLFQ(Medium, 8, 0))

	core := k.cpus[0]
	got := k.pick(core)
	require.NotNil(t, got)
	assert.Same(t, b, got)
	got.lock.release(core)
}

func TestPick_FIFOWithinLevel(t *testing.T) {
	k, _ := newTestKernel(t, func(c *Config) { c.Policy = PolicyFIFO })
	a := alloc(t, k)
	b := alloc(t, k)
	c := alloc(t, k)

	for _, p := range []*proc{c, a, b} {
		p.lock.acquire(nil)
		k.makeRunnable(p)
		p.lock.release(nil)
	}

	core := k.cpus[0]
	for _, want := range []*proc{c, a, b} {
		got := k.pick(core)
		require.NotNil(t, got)
		assert.Same(t, want, got)
		got.lock.release(core)
	}
	assert.Nil(t, k.pick(core))
}

func TestPick_FIFOBoostPromotesQueued(t *testing.T) {
	k, _ := newTestKernel(t, func(c *Config) { c.Policy = PolicyFIFO })
	low := alloc(t, k)
	high := alloc(t, k)

	low.lock.acquire(nil)
	low.storeMLFQ(packMLFQ(Low, 16, 0))
	k.makeRunnable(low)
	low.lock.release(nil)

	high.lock.acquire(nil)
	k.makeRunnable(high)
	high.lock.release(nil)

	k.boost()

	core := k.cpus[0]
	first := k.pick(core)
	require.NotNil(t, first)
	assert.Same(t, high, first)
	first.lock.release(core)

	second := k.pick(core)
	require.NotNil(t, second)
	assert.Same(t, low, second)
	assert.Equal(t, High, second.loadMLFQ().level())
	second.lock.release(core)
}

func TestPick_FIFOSkipsStaleEntries(t *testing.T) {
	k, _ := newTestKernel(t, func(c *Config) { c.Policy = PolicyFIFO })
	p := alloc(t, k)
	p.lock.acquire(nil)
	k.makeRunnable(p)
	k.freeproc(p)
	p.lock.release(nil)

	assert.Nil(t, k.pick(k.cpus[0]))
}

func TestDispatch_Accounting(t *testing.T) {
	k, _ := newTestKernel(t, nil)
	p := alloc(t, k)
	p.lock.acquire(nil)
	k.makeRunnable(p)
	p.lock.release(nil)

	for i := 0; i < 3; i++ {
		k.Tick()
	}

	c := k.cpus[0]
	got := k.pick(c)
	require.Same(t, p, got)
	require.True(t, k.dispatch(c, p))

	assert.Equal(t, uint64(1), p.runs)
	assert.Equal(t, uint64(3), p.firstRun)
	assert.Equal(t, uint64(3), p.waited)
	assert.Equal(t, uint64(3), p.lastRun)
	assert.Zero(t, c.pending.Load(), "idle ticks are dropped")
	assert.Nil(t, c.proc.Load())
	assert.Zero(t, c.noff)
}

func fatalOp(t *testing.T, fn func()) string {
	t.Helper()
	var op string
	func() {
		defer func() {
			r := recover()
			fe, ok := r.(*FatalError)
			require.True(t, ok, "expected FatalError, got %v", r)
			op = fe.Op
		}()
		fn()
	}()
	return op
}

func TestSched_Preconditions(t *testing.T) {
	t.Run("lock not held", func(t *testing.T) {
		k, _ := newTestKernel(t, nil)
		p := alloc(t, k)
		place(k, p)
		p.setState(Runnable)
		assert.Equal(t, "sched p->lock", fatalOp(t, func() { k.sched(p) }))
	})

	t.Run("extra lock held", func(t *testing.T) {
		k, _ := newTestKernel(t, nil)
		p := alloc(t, k)
		c := place(k, p)
		k.waitLock.acquire(c)
		p.lock.acquire(c)
		p.setState(Runnable)
		assert.Equal(t, "sched locks", fatalOp(t, func() { k.sched(p) }))
	})

	t.Run("still running", func(t *testing.T) {
		k, _ := newTestKernel(t, nil)
		p := alloc(t, k)
		c := place(k, p)
		p.lock.acquire(c)
		assert.Equal(t, "sched running", fatalOp(t, func() { k.sched(p) }))
	})
}

func TestSpinlock_Reacquire(t *testing.T) {
	c := &cpu{id: 0}
	l := spinlock{name: "test"}
	l.acquire(c)
	assert.Equal(t, "acquire test", fatalOp(t, func() { l.acquire(c) }))
}

func TestSpinlock_ReleaseUnheld(t *testing.T) {
	c := &cpu{id: 0}
	l := spinlock{name: "test"}
	assert.Equal(t, "release test", fatalOp(t, func() { l.release(c) }))
}
