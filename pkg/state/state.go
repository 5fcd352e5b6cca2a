// Package state persists simulation run reports.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/poltergeist/mlfq/pkg/logger"
	"github.com/poltergeist/mlfq/pkg/types"
)

// ErrNoRuns is returned by Latest when nothing has been stored.
var ErrNoRuns = errors.New("no stored runs")

// StateManager stores one JSON file per run under <root>/.mlfq/runs.
type StateManager struct {
	runDir string
	logger logger.Logger
	mu     sync.RWMutex
}

// NewStateManager creates a state manager rooted at projectRoot.
func NewStateManager(projectRoot string, log logger.Logger) *StateManager {
	if log == nil {
		log = logger.Discard()
	}
	return &StateManager{
		runDir: filepath.Join(projectRoot, ".mlfq", "runs"),
		logger: log.WithComponent("state"),
	}
}

// Dir returns the directory holding run files.
func (sm *StateManager) Dir() string {
	return sm.runDir
}

// Save writes the report, replacing any earlier report with the same id.
func (sm *StateManager) Save(report *types.RunReport) error {
	if report == nil || report.RunID == "" {
		return fmt.Errorf("report has no run id")
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	if err := os.MkdirAll(sm.runDir, 0o755); err != nil {
		return fmt.Errorf("failed to create run directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	// Write atomically
	path := sm.path(report.RunID)
	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename report: %w", err)
	}

	sm.logger.Debug("Saved run report",
		logger.WithField("run_id", report.RunID),
		logger.WithField("status", report.Status))
	return nil
}

// Load reads the report of one run.
func (sm *StateManager) Load(runID string) (*types.RunReport, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.load(runID)
}

// List returns every stored report, oldest first. Unreadable files are
// skipped with a warning.
func (sm *StateManager) List() ([]*types.RunReport, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	files, err := os.ReadDir(sm.runDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read run directory: %w", err)
	}

	var reports []*types.RunReport
	for _, file := range files {
		name := file.Name()
		if file.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		runID := strings.TrimSuffix(name, ".json")
		report, err := sm.load(runID)
		if err != nil {
			sm.logger.Warn("Failed to load run report",
				logger.WithField("run_id", runID),
				logger.WithField("error", err))
			continue
		}
		reports = append(reports, report)
	}

	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].StartedAt.Before(reports[j].StartedAt)
	})
	return reports, nil
}

// Latest returns the most recently started run.
func (sm *StateManager) Latest() (*types.RunReport, error) {
	reports, err := sm.List()
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, ErrNoRuns
	}
	return reports[len(reports)-1], nil
}

// Remove deletes the report of one run.
func (sm *StateManager) Remove(runID string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if err := os.Remove(sm.path(runID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove report: %w", err)
	}
	return nil
}

// Prune keeps the newest keep reports and deletes the rest. It returns the
// number of reports removed.
func (sm *StateManager) Prune(keep int) (int, error) {
	reports, err := sm.List()
	if err != nil {
		return 0, err
	}
	if keep < 0 {
		keep = 0
	}
	removed := 0
	for len(reports)-removed > keep {
		if err := sm.Remove(reports[removed].RunID); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func (sm *StateManager) path(runID string) string {
	return filepath.Join(sm.runDir, runID+".json")
}

func (sm *StateManager) load(runID string) (*types.RunReport, error) {
	data, err := os.ReadFile(sm.path(runID))
	if err != nil {
		return nil, err
	}

	var report types.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}
