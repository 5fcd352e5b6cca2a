package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/poltergeist/mlfq/internal/sim"
	"github.com/poltergeist/mlfq/pkg/config"
	mlfqctx "github.com/poltergeist/mlfq/pkg/context"
	"github.com/poltergeist/mlfq/pkg/kernel"
	"github.com/poltergeist/mlfq/pkg/logger"
	"github.com/poltergeist/mlfq/pkg/tracing"
	"github.com/poltergeist/mlfq/pkg/types"
	"github.com/poltergeist/mlfq/pkg/workload"
)

// DefaultTickInterval is the clock period when the configuration leaves it
// unset.
const DefaultTickInterval = 100 * time.Microsecond

// Dependencies are the collaborators of a Simulator. Every field is
// optional.
type Dependencies struct {
	Store    ReportStore
	Notifier RunNotifier
	Tracer   *tracing.Tracer
}

// Close flushes the tracer.
func (d Dependencies) Close(ctx context.Context) error {
	return d.Tracer.Shutdown(ctx)
}

// Simulator runs one configuration.
type Simulator struct {
	config     *types.SimulationConfig
	configPath string
	logger     logger.Logger
	deps       Dependencies
	manager    *config.Manager
}

// New creates a simulator. cfg must already carry defaults.
func New(cfg *types.SimulationConfig, configPath string, log logger.Logger, deps Dependencies) *Simulator {
	if log == nil {
		log = logger.Discard()
	}
	return &Simulator{
		config:     cfg,
		configPath: configPath,
		logger:     log.WithComponent("engine"),
		deps:       deps,
		manager:    config.NewManager(),
	}
}

type launch struct {
	job  string
	prog kernel.Program
}

// Run executes the simulation and returns its report. Kernel crashes,
// timeouts and cancellation are outcomes recorded in the report; the
// error is only set when the run could not be started.
func (s *Simulator) Run(ctx context.Context) (*types.RunReport, error) {
	ctx = mlfqctx.NewRun(ctx, "run")
	log := logger.WithContext(ctx, s.logger)

	kcfg, err := s.manager.KernelConfig(s.config)
	if err != nil {
		return nil, err
	}
	interval := kcfg.TickInterval
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	// The simulator owns the clock so it can stop at maxTicks.
	kcfg.TickInterval = 0

	jobs := s.config.EnabledJobs()
	var launches []launch
	for _, j := range jobs {
		for i := 0; i < j.GetCount(); i++ {
			prog, err := workload.Program(j, i, s.observe(ctx))
			if err != nil {
				return nil, fmt.Errorf("job %s: %w", j.Name, err)
			}
			launches = append(launches, launch{job: j.Name, prog: prog})
		}
	}

	ctx, span := s.deps.Tracer.Start(ctx, "simulation.run")
	span.WithAttributes(map[string]string{
		"run_id": mlfqctx.RunID(ctx),
		"name":   s.config.Name,
		"policy": string(kcfg.Policy),
	})
	span.SetInt("ncpu", int64(kcfg.NCPU))

	col := newCollector(span)
	k, err := kernel.New(
		sim.NewMemory(s.config.MemoryPages),
		sim.NewFileSystem(workload.Console),
		kernel.WithConfig(kcfg),
		kernel.WithLogger(s.logger.WithComponent("kernel")),
		kernel.WithEventSink(col),
	)
	if err != nil {
		tracing.EndSpan(span, err)
		return nil, err
	}

	done := make(chan struct{})
	if _, err := k.Boot(s.initProgram(launches, col, log, done)); err != nil {
		tracing.EndSpan(span, err)
		return nil, fmt.Errorf("boot: %w", err)
	}

	report := &types.RunReport{
		RunID:      mlfqctx.RunID(ctx),
		Name:       s.config.Name,
		ConfigPath: s.configPath,
		Policy:     string(kcfg.Policy),
		NCPU:       kcfg.NCPU,
		StartedAt:  time.Now(),
	}
	log.Info("Simulation starting",
		logger.WithField("processes", len(launches)),
		logger.WithField("max_ticks", s.config.MaxTicks))
	if s.deps.Notifier != nil {
		s.deps.Notifier.NotifyRunStart(s.config.Name, len(launches))
	}

	status := types.RunStatusCompleted
	g, gctx := NewSafeGroup(ctx, log)
	g.Go("kernel", func() error {
		return k.Run(gctx)
	})
	g.Go("clock", func() error {
		status = s.drive(gctx, k, interval, done)
		k.Halt()
		return nil
	})
	runErr := g.Wait()

	switch {
	case runErr != nil:
		status = types.RunStatusCrashed
		report.Error = runErr.Error()
	case status == types.RunStatusCancelled && ctx.Err() != nil:
		report.Error = ctx.Err().Error()
	}

	report.Status = status
	report.FinishedAt = time.Now()
	report.Ticks = k.Uptime()
	report.Boosts = col.boostCount()
	report.Results = col.results()
	report.Summary = summarize(jobs, report.Results)

	if !report.Succeeded() {
		var buf bytes.Buffer
		k.Dump(&buf)
		log.Debug("Process table at stop", logger.WithField("table", buf.String()))
	}

	s.finish(ctx, log, span, report)
	return report, nil
}

// initProgram opens the console for its children, forks every launch and
// reaps until no children are left, orphans included.
func (s *Simulator) initProgram(launches []launch, col *collector, log logger.Logger, done chan struct{}) kernel.Program {
	return func(p *kernel.Process) {
		p.SetName("init")
		if _, err := p.Open(workload.Console); err != nil {
			log.Warn("Init could not open console", logger.WithField("error", err))
		}

		for _, l := range launches {
			pid, err := p.Fork(l.prog)
			if err != nil {
				log.Warn("Fork failed",
					logger.WithField("job", l.job),
					logger.WithField("error", err))
				continue
			}
			col.assign(pid, l.job)
		}

		for {
			pid, status, err := p.WaitStatus()
			if err != nil {
				if !errors.Is(err, kernel.ErrNoChildren) {
					log.Warn("Init wait failed", logger.WithField("error", err))
				}
				break
			}
			log.Debug("Reaped", logger.WithField("pid", pid), logger.WithField("status", status))
		}
		close(done)
	}
}

// drive ticks the kernel clock until init is done, the tick budget is
// spent, the kernel stops on its own, or ctx ends.
func (s *Simulator) drive(ctx context.Context, k *kernel.Kernel, interval time.Duration, done <-chan struct{}) types.RunStatus {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return types.RunStatusCompleted
		case <-k.Done():
			if ctx.Err() != nil {
				return types.RunStatusCancelled
			}
			return types.RunStatusCrashed
		case <-ctx.Done():
			return types.RunStatusCancelled
		case <-ticker.C:
			if s.config.MaxTicks > 0 && k.Uptime() >= s.config.MaxTicks {
				return types.RunStatusTimeout
			}
			k.Tick()
		}
	}
}

func (s *Simulator) observe(ctx context.Context) workload.Observer {
	return func(job string, burst int, info kernel.ProcInfo) {
		log := logger.WithContext(mlfqctx.WithJob(ctx, job), s.logger)
		log.Debug("Burst done",
			logger.WithField("pid", info.PID),
			logger.WithField("burst", burst),
			logger.WithField("priority", info.Priority),
			logger.WithField("cpu_ticks", info.CPUTicks))
	}
}

// finish logs, persists, notifies and closes the run span.
func (s *Simulator) finish(ctx context.Context, log logger.Logger, span *tracing.Span, report *types.RunReport) {
	span.SetInt("ticks", int64(report.Ticks))
	span.SetInt("processes", int64(len(report.Results)))
	span.WithAttributes(map[string]string{"status": string(report.Status)})

	fields := []logger.Field{
		logger.WithField("status", report.Status),
		logger.WithField("ticks", report.Ticks),
		logger.WithField("processes", len(report.Results)),
		logger.WithField("boosts", report.Boosts),
		logger.WithField("duration", report.Duration().String()),
	}
	if report.Succeeded() {
		log.Success("Simulation completed", fields...)
	} else {
		if report.Error != "" {
			fields = append(fields, logger.WithField("error", report.Error))
		}
		log.Warn("Simulation stopped early", fields...)
	}

	if s.deps.Store != nil {
		if err := s.deps.Store.Save(report); err != nil {
			log.Warn("Failed to save run report", logger.WithField("error", err))
		}
	}
	if s.deps.Notifier != nil {
		s.deps.Notifier.NotifyRunComplete(report)
	}

	var err error
	if !report.Succeeded() {
		err = fmt.Errorf("run %s after %d ticks", report.Status, report.Ticks)
	}
	tracing.EndSpan(span, err)
}
