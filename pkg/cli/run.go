package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/poltergeist/mlfq/internal/engine"
	"github.com/poltergeist/mlfq/pkg/logger"
	"github.com/poltergeist/mlfq/pkg/process"
	"github.com/poltergeist/mlfq/pkg/types"
)

func (c *CLI) newRunCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the configured workloads once",
		Long: `Boot a kernel, fork every configured job from init and drive the clock until
all of them have been reaped, maxTicks is reached or the run is interrupted.
The report is saved under <root>/.mlfq/runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadSimulation()
			if err != nil {
				return err
			}

			pm := process.NewManager(c.logger)
			ctx := pm.Start(cmd.Context())
			defer pm.Stop()

			report, err := c.simulate(ctx, cfg)
			if err != nil {
				return err
			}
			if asJSON {
				if err := writeJSON(c.output, report); err != nil {
					return err
				}
			} else {
				printReport(c.output, report)
			}
			if !report.Succeeded() {
				return fmt.Errorf("run %s %s", report.RunID, report.Status)
			}
			return nil
		},
	}
	c.addOverrideFlags(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

// runLogger honours the logging section of the configuration unless the
// log file was given on the command line.
func (c *CLI) runLogger(cfg *types.SimulationConfig) logger.Logger {
	if cfg.Logging == nil || c.config.LogFile != "" {
		return c.logger
	}
	level := c.config.Verbosity
	if cfg.Logging.Level != "" && !c.rootCmd.PersistentFlags().Changed("verbosity") {
		level = string(cfg.Logging.Level)
	}
	return c.newLogger(cfg.Logging.File, level)
}

// simulate runs cfg once with the default dependencies.
func (c *CLI) simulate(ctx context.Context, cfg *types.SimulationConfig) (*types.RunReport, error) {
	log := c.runLogger(cfg)
	factory := engine.NewDependencyFactory(c.config.ProjectRoot, log, cfg, c.config.Version)
	deps, err := factory.CreateDefaults()
	if err != nil {
		return nil, err
	}
	defer deps.Close(context.Background())

	sim := engine.New(cfg, c.config.ConfigPath(), log, deps)
	return sim.Run(ctx)
}
