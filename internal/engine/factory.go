package engine

import (
	"context"

	"github.com/poltergeist/mlfq/pkg/logger"
	"github.com/poltergeist/mlfq/pkg/notifier"
	"github.com/poltergeist/mlfq/pkg/state"
	"github.com/poltergeist/mlfq/pkg/tracing"
	"github.com/poltergeist/mlfq/pkg/types"
)

// DependencyFactory creates the default collaborators of a Simulator from
// its configuration.
type DependencyFactory struct {
	projectRoot string
	logger      logger.Logger
	config      *types.SimulationConfig
	version     string
}

// NewDependencyFactory creates a new dependency factory
func NewDependencyFactory(projectRoot string, log logger.Logger, config *types.SimulationConfig, version string) *DependencyFactory {
	if log == nil {
		log = logger.Discard()
	}
	return &DependencyFactory{
		projectRoot: projectRoot,
		logger:      log,
		config:      config,
		version:     version,
	}
}

// CreateDefaults creates every dependency the configuration asks for. The
// caller must Close the result.
func (f *DependencyFactory) CreateDefaults() (Dependencies, error) {
	tracer, err := tracing.Open(f.config.Tracing, f.version)
	if err != nil {
		return Dependencies{}, err
	}

	deps := Dependencies{
		Store:  f.createStateManager(),
		Tracer: tracer,
	}
	// Leave the interface nil rather than holding a typed nil.
	if n := f.createNotifier(); n != nil {
		deps.Notifier = n
	}
	return deps, nil
}

// CreateWithOverrides creates the defaults and replaces every one that
// overrides sets.
func (f *DependencyFactory) CreateWithOverrides(overrides Dependencies) (Dependencies, error) {
	deps, err := f.CreateDefaults()
	if err != nil {
		return Dependencies{}, err
	}
	if overrides.Store != nil {
		deps.Store = overrides.Store
	}
	if overrides.Notifier != nil {
		deps.Notifier = overrides.Notifier
	}
	if overrides.Tracer != nil {
		deps.Tracer.Shutdown(context.Background())
		deps.Tracer = overrides.Tracer
	}
	return deps, nil
}

func (f *DependencyFactory) createStateManager() *state.StateManager {
	return state.NewStateManager(f.projectRoot, f.logger)
}

func (f *DependencyFactory) createNotifier() *notifier.RunNotifier {
	cfg := notifier.FromTypes(f.config.Notifications)
	if !cfg.Enabled {
		return nil
	}
	return notifier.New(cfg, f.logger)
}
