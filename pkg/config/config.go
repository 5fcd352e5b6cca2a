// Package config loads, validates and watches simulation configuration
// files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/poltergeist/mlfq/pkg/kernel"
	"github.com/poltergeist/mlfq/pkg/types"
)

// DefaultFileName is the configuration file looked up in the working
// directory.
const DefaultFileName = "mlfq.yaml"

// CurrentVersion is the only configuration schema version understood.
const CurrentVersion = "1.0"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Manager handles configuration operations
type Manager struct{}

// NewManager creates a new configuration manager
func NewManager() *Manager {
	return &Manager{}
}

// LoadConfig reads a JSON or YAML configuration, fills in defaults and
// validates it.
func (m *Manager) LoadConfig(path string) (*types.SimulationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := m.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes JSON or YAML, fills in defaults and validates.
func (m *Manager) Parse(data []byte) (*types.SimulationConfig, error) {
	var cfg types.SimulationConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		cfg = types.SimulationConfig{}
		dec := yaml.NewDecoder(strings.NewReader(string(data)))
		dec.KnownFields(true)
		if yerr := dec.Decode(&cfg); yerr != nil {
			return nil, fmt.Errorf("failed to parse config as JSON or YAML: %w", yerr)
		}
	}
	m.ApplyDefaults(&cfg)
	if err := m.ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveConfig writes cfg as YAML, or as JSON when path ends in .json.
func (m *Manager) SaveConfig(path string, cfg *types.SimulationConfig) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ApplyDefaults fills unset scheduler fields from the kernel defaults.
func (m *Manager) ApplyDefaults(cfg *types.SimulationConfig) {
	def := kernel.DefaultConfig()
	s := &cfg.Scheduler
	if s.NProc == 0 {
		s.NProc = def.NProc
	}
	if s.NCPU == 0 {
		s.NCPU = def.NCPU
	}
	if s.Policy == "" {
		s.Policy = string(def.Policy)
	}
	if s.BoostInterval == 0 {
		s.BoostInterval = def.BoostInterval
	}
	if s.Slices == nil {
		s.Slices = &types.SliceConfig{
			High:   def.Slices[kernel.High],
			Medium: def.Slices[kernel.Medium],
			Low:    def.Slices[kernel.Low],
		}
	}
	if cfg.MaxTicks == 0 {
		cfg.MaxTicks = 10000
	}
	if cfg.Name == "" {
		cfg.Name = "simulation"
	}
}

// ValidateConfig validates a configuration
func (m *Manager) ValidateConfig(cfg *types.SimulationConfig) error {
	if cfg.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported config version: %q", ErrInvalid, cfg.Version)
	}
	if _, err := m.KernelConfig(cfg); err != nil {
		return fmt.Errorf("%w: scheduler: %v", ErrInvalid, err)
	}
	if cfg.MemoryPages < 0 {
		return fmt.Errorf("%w: memoryPages must not be negative", ErrInvalid)
	}
	if len(cfg.Jobs) == 0 {
		return fmt.Errorf("%w: no jobs defined", ErrInvalid)
	}

	names := make(map[string]bool)
	processes := 1
	for i := range cfg.Jobs {
		job := &cfg.Jobs[i]
		if job.Name == "" {
			return fmt.Errorf("%w: job %d: missing name", ErrInvalid, i)
		}
		if names[job.Name] {
			return fmt.Errorf("%w: duplicate job name: %s", ErrInvalid, job.Name)
		}
		names[job.Name] = true
		if err := validateJob(job); err != nil {
			return fmt.Errorf("%w: job '%s': %v", ErrInvalid, job.Name, err)
		}
		if job.IsEnabled() {
			processes += job.GetCount()
		}
	}
	if processes > cfg.Scheduler.NProc {
		return fmt.Errorf("%w: %d processes do not fit a table of %d", ErrInvalid, processes, cfg.Scheduler.NProc)
	}
	return nil
}

func validateJob(job *types.JobConfig) error {
	switch job.Kind {
	case types.WorkloadCPU, types.WorkloadIO, types.WorkloadMixed, types.WorkloadForker:
	default:
		return fmt.Errorf("unknown kind: %q", job.Kind)
	}
	if job.GetCount() < 1 {
		return fmt.Errorf("count must be positive")
	}
	if job.GetBursts() < 1 {
		return fmt.Errorf("bursts must be positive")
	}
	if job.GetBurstTicks() < 1 {
		return fmt.Errorf("burstTicks must be positive")
	}
	if job.GetSleepTicks() < 0 {
		return fmt.Errorf("sleepTicks must not be negative")
	}
	if job.Kind == types.WorkloadForker && job.GetChildren() < 1 {
		return fmt.Errorf("children must be positive")
	}
	return nil
}

// KernelConfig converts the scheduler section to a kernel configuration.
func (m *Manager) KernelConfig(cfg *types.SimulationConfig) (kernel.Config, error) {
	s := cfg.Scheduler
	kc := kernel.DefaultConfig()
	kc.NProc = s.NProc
	kc.NCPU = s.NCPU
	kc.Policy = kernel.Policy(s.Policy)
	kc.BoostInterval = s.BoostInterval
	if s.Slices != nil {
		kc.Slices = [kernel.NumLevels]int{s.Slices.High, s.Slices.Medium, s.Slices.Low}
	}
	kc.TickInterval = time.Duration(s.TickInterval) * time.Microsecond
	if err := kc.Validate(); err != nil {
		return kernel.Config{}, err
	}
	return kc, nil
}

// GetDefaultConfig returns a starter configuration with one job of each
// kind.
func (m *Manager) GetDefaultConfig() *types.SimulationConfig {
	enabled := true
	two := 2
	cfg := &types.SimulationConfig{
		Version: CurrentVersion,
		Name:    "mlfq-demo",
		Jobs: []types.JobConfig{
			{Name: "hog", Kind: types.WorkloadCPU, Count: &two},
			{Name: "shell", Kind: types.WorkloadIO, Count: &two},
			{Name: "editor", Kind: types.WorkloadMixed},
			{Name: "make", Kind: types.WorkloadForker},
		},
		Notifications: &types.NotificationConfig{
			Enabled: &enabled,
		},
		Logging: &types.LoggingConfig{
			Level: types.LogLevelInfo,
		},
	}
	m.ApplyDefaults(cfg)
	return cfg
}
