// Package types holds the configuration and report models of the
// scheduler simulator.
package types

import (
	"time"
)

// WorkloadKind selects the program a job runs.
type WorkloadKind string

const (
	// WorkloadCPU computes in long bursts and never yields.
	WorkloadCPU WorkloadKind = "cpu"
	// WorkloadIO computes briefly, yields, and sleeps between bursts.
	WorkloadIO WorkloadKind = "io"
	// WorkloadMixed alternates CPU and IO phases.
	WorkloadMixed WorkloadKind = "mixed"
	// WorkloadForker forks short-lived children and reaps them.
	WorkloadForker WorkloadKind = "forker"
)

// LogLevel represents logging verbosity levels
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// RunStatus is the outcome of a simulation run.
type RunStatus string

const (
	RunStatusCompleted RunStatus = "completed"
	RunStatusTimeout   RunStatus = "timeout"
	RunStatusCrashed   RunStatus = "crashed"
	RunStatusCancelled RunStatus = "cancelled"
)

// SliceConfig overrides the time slice of each level, in ticks.
type SliceConfig struct {
	High   int `json:"high" yaml:"high"`
	Medium int `json:"medium" yaml:"medium"`
	Low    int `json:"low" yaml:"low"`
}

// SchedulerConfig sizes the kernel and tunes the feedback queue.
type SchedulerConfig struct {
	NProc         int          `json:"nproc" yaml:"nproc"`
	NCPU          int          `json:"ncpu" yaml:"ncpu"`
	Policy        string       `json:"policy" yaml:"policy"`
	BoostInterval uint64       `json:"boostInterval" yaml:"boostInterval"`
	Slices        *SliceConfig `json:"slices,omitempty" yaml:"slices,omitempty"`
	// TickInterval is the wall time between clock ticks in microseconds.
	// Zero runs the clock as fast as the simulator can drive it.
	TickInterval int `json:"tickInterval" yaml:"tickInterval"`
}

// JobConfig describes one workload. Count copies are forked by init.
type JobConfig struct {
	Name       string       `json:"name" yaml:"name"`
	Kind       WorkloadKind `json:"kind" yaml:"kind"`
	Enabled    *bool        `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Count      *int         `json:"count,omitempty" yaml:"count,omitempty"`
	Bursts     *int         `json:"bursts,omitempty" yaml:"bursts,omitempty"`
	BurstTicks *int         `json:"burstTicks,omitempty" yaml:"burstTicks,omitempty"`
	SleepTicks *int         `json:"sleepTicks,omitempty" yaml:"sleepTicks,omitempty"`
	Children   *int         `json:"children,omitempty" yaml:"children,omitempty"`
	ExitStatus int          `json:"exitStatus,omitempty" yaml:"exitStatus,omitempty"`
}

// IsEnabled reports whether the job takes part in runs.
func (j *JobConfig) IsEnabled() bool { return j.Enabled == nil || *j.Enabled }

// GetCount returns the number of instances, default 1.
func (j *JobConfig) GetCount() int {
	if j.Count != nil {
		return *j.Count
	}
	return 1
}

// GetBursts returns the number of work bursts, default 10.
func (j *JobConfig) GetBursts() int {
	if j.Bursts != nil {
		return *j.Bursts
	}
	return 10
}

// GetBurstTicks returns the length of one burst. IO jobs default to 1
// tick, everything else to 20.
func (j *JobConfig) GetBurstTicks() int {
	if j.BurstTicks != nil {
		return *j.BurstTicks
	}
	if j.Kind == WorkloadIO {
		return 1
	}
	return 20
}

// GetSleepTicks returns the sleep between IO bursts, default 2.
func (j *JobConfig) GetSleepTicks() int {
	if j.SleepTicks != nil {
		return *j.SleepTicks
	}
	return 2
}

// GetChildren returns how many children a forker spawns, default 4.
func (j *JobConfig) GetChildren() int {
	if j.Children != nil {
		return *j.Children
	}
	return 4
}

// NotificationConfig represents notification preferences
type NotificationConfig struct {
	Enabled      *bool  `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	SuccessSound string `json:"successSound,omitempty" yaml:"successSound,omitempty"`
	FailureSound string `json:"failureSound,omitempty" yaml:"failureSound,omitempty"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	File  string   `json:"file" yaml:"file"`
	Level LogLevel `json:"level" yaml:"level"`
}

// TracingConfig enables span export for runs.
type TracingConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	// Output is a file path, or "stdout".
	Output string `json:"output,omitempty" yaml:"output,omitempty"`
}

// SimulationConfig is the top-level configuration file.
type SimulationConfig struct {
	Version       string              `json:"version" yaml:"version"`
	Name          string              `json:"name" yaml:"name"`
	Scheduler     SchedulerConfig     `json:"scheduler" yaml:"scheduler"`
	MaxTicks      uint64              `json:"maxTicks" yaml:"maxTicks"`
	MemoryPages   int                 `json:"memoryPages,omitempty" yaml:"memoryPages,omitempty"`
	Jobs          []JobConfig         `json:"jobs" yaml:"jobs"`
	Notifications *NotificationConfig `json:"notifications,omitempty" yaml:"notifications,omitempty"`
	Logging       *LoggingConfig      `json:"logging,omitempty" yaml:"logging,omitempty"`
	Tracing       *TracingConfig      `json:"tracing,omitempty" yaml:"tracing,omitempty"`
}

// EnabledJobs returns the jobs that take part in runs.
func (c *SimulationConfig) EnabledJobs() []JobConfig {
	var out []JobConfig
	for _, j := range c.Jobs {
		if j.IsEnabled() {
			out = append(out, j)
		}
	}
	return out
}

// JobResult is the accounting of one exited process.
type JobResult struct {
	Job        string `json:"job"`
	PID        int    `json:"pid"`
	Parent     int    `json:"parent"`
	Name       string `json:"name"`
	ExitStatus int    `json:"exitStatus"`
	Priority   string `json:"priority"`
	CPUTicks   uint64 `json:"cpuTicks"`
	Dispatches uint64 `json:"dispatches"`
	Demotions  int    `json:"demotions"`
	StartTick  uint64 `json:"startTick"`
	EndTick    uint64 `json:"endTick"`
	Turnaround uint64 `json:"turnaround"`
	Response   uint64 `json:"response"`
	Wait       uint64 `json:"wait"`
}

// JobSummary aggregates the results of one job.
type JobSummary struct {
	Job           string  `json:"job"`
	Kind          string  `json:"kind"`
	Processes     int     `json:"processes"`
	AvgTurnaround float64 `json:"avgTurnaround"`
	AvgResponse   float64 `json:"avgResponse"`
	AvgWait       float64 `json:"avgWait"`
	CPUTicks      uint64  `json:"cpuTicks"`
	Demotions     int     `json:"demotions"`
}

// RunReport is the persisted outcome of a simulation run.
type RunReport struct {
	RunID      string       `json:"runId"`
	Name       string       `json:"name"`
	ConfigPath string       `json:"configPath,omitempty"`
	Status     RunStatus    `json:"status"`
	Error      string       `json:"error,omitempty"`
	Policy     string       `json:"policy"`
	NCPU       int          `json:"ncpu"`
	StartedAt  time.Time    `json:"startedAt"`
	FinishedAt time.Time    `json:"finishedAt"`
	Ticks      uint64       `json:"ticks"`
	Boosts     int          `json:"boosts"`
	Results    []JobResult  `json:"results"`
	Summary    []JobSummary `json:"summary"`
}

// Duration is the wall time of the run.
func (r *RunReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Succeeded reports whether the run completed.
func (r *RunReport) Succeeded() bool {
	return r.Status == RunStatusCompleted
}
