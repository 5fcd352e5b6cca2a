package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/poltergeist/mlfq/pkg/config"
	"github.com/poltergeist/mlfq/pkg/logger"
	"github.com/poltergeist/mlfq/pkg/process"
	"github.com/poltergeist/mlfq/pkg/types"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	var maxRuns int
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the simulation whenever the configuration changes",
		Long: `Run once, then watch the configuration file and run again after every valid
edit. Invalid revisions are reported and the previous one stays in effect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadSimulation()
			if err != nil {
				return err
			}

			pm := process.NewManager(c.logger)
			pm.RegisterShutdownHandler(func() {
				c.console.Info("Stopped watching %s", c.config.ConfigPath())
			})
			ctx := pm.Start(cmd.Context())
			defer pm.Stop()

			return c.watch(ctx, cfg, maxRuns)
		},
	}
	c.addOverrideFlags(cmd)
	cmd.Flags().IntVar(&maxRuns, "max-runs", 0, "stop after this many runs (0 watches until interrupted)")
	return cmd
}

func (c *CLI) watch(ctx context.Context, cfg *types.SimulationConfig, maxRuns int) error {
	log := c.logger.WithComponent("watch")
	rm := config.NewReloadManager(c.config.ConfigPath(), c.logger)

	// Only the newest pending revision matters.
	pending := make(chan *types.SimulationConfig, 1)
	rm.AddCallback(func(ev config.ReloadEvent) {
		if ev.Error != nil {
			c.console.Warn("Configuration rejected: %v", ev.Error)
			return
		}
		if err := c.applyOverrides(ev.Config); err != nil {
			c.console.Warn("Configuration rejected: %v", err)
			return
		}
		select {
		case <-pending:
		default:
		}
		pending <- ev.Config
	})
	if err := rm.Start(); err != nil {
		return err
	}
	defer rm.Stop()

	c.console.Info("Watching %s", c.config.ConfigPath())
	runs := 0
	for {
		report, err := c.simulate(ctx, cfg)
		runs++
		switch {
		case err != nil:
			c.console.Error("Run failed: %v", err)
		default:
			printReport(c.output, report)
			if report.Status == types.RunStatusCancelled {
				return nil
			}
		}
		if maxRuns > 0 && runs >= maxRuns {
			log.Debug("Run limit reached", logger.WithField("runs", runs))
			return nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case next := <-pending:
			c.console.Info("Configuration changed, running %s again", next.Name)
			cfg = next
		}
	}
}
