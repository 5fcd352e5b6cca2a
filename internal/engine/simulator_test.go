package engine

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poltergeist/mlfq/pkg/config"
	"github.com/poltergeist/mlfq/pkg/logger"
	"github.com/poltergeist/mlfq/pkg/tracing"
	"github.com/poltergeist/mlfq/pkg/types"
)

type memoryStore struct {
	mu      sync.Mutex
	reports []*types.RunReport
	err     error
}

func (s *memoryStore) Save(r *types.RunReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
	return s.err
}

type recordingNotifier struct {
	mu       sync.Mutex
	started  []string
	finished []types.RunStatus
}

func (n *recordingNotifier) NotifyRunStart(name string, jobs int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.started = append(n.started, name)
}

func (n *recordingNotifier) NotifyRunComplete(r *types.RunReport) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.finished = append(n.finished, r.Status)
}

func intp(v int) *int { return &v }

func createTestConfig(jobs ...types.JobConfig) *types.SimulationConfig {
	m := config.NewManager()
	cfg := &types.SimulationConfig{
		Version: config.CurrentVersion,
		Name:    "test",
		Scheduler: types.SchedulerConfig{
			NProc:         16,
			NCPU:          2,
			BoostInterval: 1 << 20,
			TickInterval:  100,
		},
		MaxTicks: 100000,
		Jobs:     jobs,
	}
	m.ApplyDefaults(cfg)
	return cfg
}

func TestSimulatorRun_Completes(t *testing.T) {
	cfg := createTestConfig(
		types.JobConfig{Name: "hog", Kind: types.WorkloadCPU, Count: intp(2), Bursts: intp(2), BurstTicks: intp(10), ExitStatus: 4},
		types.JobConfig{Name: "shell", Kind: types.WorkloadIO, Bursts: intp(3)},
		types.JobConfig{Name: "make", Kind: types.WorkloadForker, Children: intp(2), BurstTicks: intp(2)},
	)
	require.NoError(t, config.NewManager().ValidateConfig(cfg))

	store := &memoryStore{}
	notes := &recordingNotifier{}
	var trace bytes.Buffer
	tracer, err := tracing.New("mlfqsim", "test", &trace)
	require.NoError(t, err)

	deps := Dependencies{Store: store, Notifier: notes, Tracer: tracer}
	sim := New(cfg, "mlfq.yaml", logger.CreateLoggerWithOutput("", "debug", nil), deps)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	report, err := sim.Run(ctx)
	require.NoError(t, err)
	require.NoError(t, deps.Close(context.Background()))

	assert.Equal(t, types.RunStatusCompleted, report.Status, report.Error)
	assert.True(t, strings.HasPrefix(report.RunID, "run_"))
	assert.Equal(t, "scan", report.Policy)
	assert.Equal(t, 2, report.NCPU)
	assert.Equal(t, "mlfq.yaml", report.ConfigPath)
	assert.Greater(t, report.Ticks, uint64(0))

	// Two hogs, one shell, the forker and its two children.
	require.Len(t, report.Results, 6)
	byJob := map[string]int{}
	for _, r := range report.Results {
		byJob[r.Job]++
		assert.NotZero(t, r.Parent)
		if r.Job == "hog" {
			assert.Equal(t, 4, r.ExitStatus)
			assert.Equal(t, "LOW", r.Priority)
			assert.GreaterOrEqual(t, r.Demotions, 2)
		}
		assert.GreaterOrEqual(t, r.EndTick, r.StartTick)
	}
	assert.Equal(t, map[string]int{"hog": 2, "shell": 1, "make": 3}, byJob)

	require.Len(t, report.Summary, 3)
	assert.Equal(t, "hog", report.Summary[0].Job)
	assert.Equal(t, 2, report.Summary[0].Processes)
	assert.Greater(t, report.Summary[0].CPUTicks, report.Summary[1].CPUTicks)

	require.Len(t, store.reports, 1)
	assert.Same(t, report, store.reports[0])
	assert.Equal(t, []string{"test"}, notes.started)
	assert.Equal(t, []types.RunStatus{types.RunStatusCompleted}, notes.finished)

	assert.Contains(t, trace.String(), `"Name":"simulation.run"`)
	assert.Contains(t, trace.String(), `"fork"`)
}

func TestSimulatorRun_Timeout(t *testing.T) {
	cfg := createTestConfig(
		types.JobConfig{Name: "hog", Kind: types.WorkloadCPU, Bursts: intp(1000), BurstTicks: intp(20)},
	)
	cfg.MaxTicks = 30

	store := &memoryStore{}
	sim := New(cfg, "", nil, Dependencies{Store: store})
	report, err := sim.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, types.RunStatusTimeout, report.Status)
	assert.False(t, report.Succeeded())
	assert.Equal(t, uint64(30), report.Ticks)
	assert.Empty(t, report.Results)
	require.Len(t, report.Summary, 1)
	assert.Equal(t, 0, report.Summary[0].Processes)
	assert.Len(t, store.reports, 1)
}

func TestSimulatorRun_Cancelled(t *testing.T) {
	cfg := createTestConfig(
		types.JobConfig{Name: "hog", Kind: types.WorkloadCPU, Bursts: intp(1000), BurstTicks: intp(20)},
	)
	cfg.MaxTicks = 0

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	report, err := New(cfg, "", nil, Dependencies{}).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.RunStatusCancelled, report.Status)
	assert.Equal(t, context.Canceled.Error(), report.Error)
}

func TestSimulatorRun_SaveFailureIsNotFatal(t *testing.T) {
	cfg := createTestConfig(
		types.JobConfig{Name: "hog", Kind: types.WorkloadCPU, Bursts: intp(1), BurstTicks: intp(1)},
	)
	store := &memoryStore{err: errors.New("disk full")}

	report, err := New(cfg, "", nil, Dependencies{Store: store}).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, report.Succeeded())
}

func TestSimulatorRun_InvalidScheduler(t *testing.T) {
	cfg := createTestConfig(types.JobConfig{Name: "hog", Kind: types.WorkloadCPU})
	cfg.Scheduler.Policy = "lottery"

	_, err := New(cfg, "", nil, Dependencies{}).Run(context.Background())
	assert.Error(t, err)
}

func TestSimulatorRun_UnknownKind(t *testing.T) {
	cfg := createTestConfig(types.JobConfig{Name: "gpu", Kind: "gpu"})

	_, err := New(cfg, "", nil, Dependencies{}).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job gpu")
}
