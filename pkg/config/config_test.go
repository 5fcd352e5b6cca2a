package config_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/poltergeist/mlfq/pkg/config"
	"github.com/poltergeist/mlfq/pkg/kernel"
	"github.com/poltergeist/mlfq/pkg/logger"
	"github.com/poltergeist/mlfq/pkg/types"
)

func sampleConfig() map[string]interface{} {
	return map[string]interface{}{
		"version": "1.0",
		"name":    "sample",
		"scheduler": map[string]interface{}{
			"ncpu":   2,
			"policy": "fifo",
		},
		"jobs": []map[string]interface{}{
			{"name": "hog", "kind": "cpu", "count": 2},
			{"name": "shell", "kind": "io"},
		},
	}
}

func TestLoadConfig_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mlfq.json")
	data, _ := json.Marshal(sampleConfig())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.NewManager().LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Scheduler.Policy != "fifo" {
		t.Errorf("expected fifo policy, got %s", cfg.Scheduler.Policy)
	}
	if cfg.Scheduler.NProc != kernel.DefaultNProc {
		t.Errorf("expected default nproc, got %d", cfg.Scheduler.NProc)
	}
	if cfg.Scheduler.Slices == nil || cfg.Scheduler.Slices.Low != 16 {
		t.Errorf("expected default slices, got %+v", cfg.Scheduler.Slices)
	}
	if len(cfg.Jobs) != 2 {
		t.Errorf("expected 2 jobs, got %d", len(cfg.Jobs))
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mlfq.yaml")
	data, _ := yaml.Marshal(sampleConfig())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.NewManager().LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load YAML config: %v", err)
	}
	if cfg.Scheduler.NCPU != 2 {
		t.Errorf("expected 2 cpus, got %d", cfg.Scheduler.NCPU)
	}
	if cfg.MaxTicks == 0 {
		t.Error("expected maxTicks default")
	}
}

func TestLoadConfig_Unparseable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mlfq.yaml")
	os.WriteFile(path, []byte("version: [1.0\n"), 0o644)

	if _, err := config.NewManager().LoadConfig(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidateConfig(t *testing.T) {
	m := config.NewManager()
	three := 3
	zero := 0

	tests := []struct {
		name   string
		mutate func(*types.SimulationConfig)
		errMsg string
	}{
		{"valid", func(*types.SimulationConfig) {}, ""},
		{"version", func(c *types.SimulationConfig) { c.Version = "2.0" }, "unsupported config version"},
		{"policy", func(c *types.SimulationConfig) { c.Scheduler.Policy = "lottery" }, "unknown policy"},
		{"no jobs", func(c *types.SimulationConfig) { c.Jobs = nil }, "no jobs"},
		{"duplicate", func(c *types.SimulationConfig) {
			c.Jobs = append(c.Jobs, c.Jobs[0])
		}, "duplicate job name"},
		{"kind", func(c *types.SimulationConfig) { c.Jobs[0].Kind = "gpu" }, "unknown kind"},
		{"count", func(c *types.SimulationConfig) { c.Jobs[0].Count = &zero }, "count must be positive"},
		{"table", func(c *types.SimulationConfig) {
			c.Scheduler.NProc = 3
			c.Jobs[0].Count = &three
		}, "do not fit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := m.GetDefaultConfig()
			tt.mutate(cfg)
			err := m.ValidateConfig(cfg)
			if tt.errMsg == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.errMsg)
			}
			if !errors.Is(err, config.ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("expected error containing %q, got %v", tt.errMsg, err)
			}
		})
	}
}

func TestKernelConfig(t *testing.T) {
	m := config.NewManager()
	cfg := m.GetDefaultConfig()
	cfg.Scheduler.TickInterval = 500
	cfg.Scheduler.Slices = &types.SliceConfig{High: 2, Medium: 4, Low: 8}

	kc, err := m.KernelConfig(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if kc.TickInterval != 500*time.Microsecond {
		t.Errorf("tick interval = %v", kc.TickInterval)
	}
	if kc.Slices != [kernel.NumLevels]int{2, 4, 8} {
		t.Errorf("slices = %v", kc.Slices)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	m := config.NewManager()
	for _, name := range []string{"mlfq.yaml", "mlfq.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := m.SaveConfig(path, m.GetDefaultConfig()); err != nil {
				t.Fatal(err)
			}
			cfg, err := m.LoadConfig(path)
			if err != nil {
				t.Fatalf("saved config does not load: %v", err)
			}
			if len(cfg.Jobs) != 4 {
				t.Errorf("expected 4 jobs, got %d", len(cfg.Jobs))
			}
		})
	}
}

func TestReloadManager(t *testing.T) {
	m := config.NewManager()
	path := filepath.Join(t.TempDir(), "mlfq.yaml")
	if err := m.SaveConfig(path, m.GetDefaultConfig()); err != nil {
		t.Fatal(err)
	}

	rm := config.NewReloadManager(path, logger.Discard())
	rm.SetDebouncePeriod(20 * time.Millisecond)
	events := make(chan config.ReloadEvent, 4)
	rm.AddCallback(func(ev config.ReloadEvent) {
		select {
		case events <- ev:
		default:
		}
	})

	if err := rm.Start(); err != nil {
		t.Fatal(err)
	}
	defer rm.Stop()
	if !rm.IsWatching() {
		t.Fatal("expected watching")
	}

	time.Sleep(20 * time.Millisecond)
	cfg := m.GetDefaultConfig()
	cfg.Scheduler.Policy = "fifo"
	if err := m.SaveConfig(path, cfg); err != nil {
		t.Fatal(err)
	}
	// Make sure the modification time moves on coarse file systems.
	future := time.Now().Add(2 * time.Second)
	os.Chtimes(path, future, future)

	timeout := time.After(5 * time.Second)
	for reloaded := false; !reloaded; {
		select {
		case ev := <-events:
			reloaded = ev.Error == nil && ev.Config != nil && ev.Config.Scheduler.Policy == "fifo"
		case <-timeout:
			t.Fatal("no reload event")
		}
	}

	if err := os.WriteFile(path, []byte("version: \"9\"\njobs: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	rm.TriggerReload()
	ev := rm.LastEvent()
	if ev == nil || ev.Error == nil {
		t.Fatalf("expected invalid revision to be reported, got %+v", ev)
	}

	if err := rm.Stop(); err != nil {
		t.Fatal(err)
	}
	if rm.IsWatching() {
		t.Error("expected watching to stop")
	}
}
