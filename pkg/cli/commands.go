package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/poltergeist/mlfq/pkg/state"
	"github.com/poltergeist/mlfq/pkg/types"
)

func (c *CLI) newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration without running it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.manager.LoadConfig(c.config.ConfigPath())
			if err != nil {
				return err
			}
			kcfg, err := c.manager.KernelConfig(cfg)
			if err != nil {
				return err
			}
			c.console.Success("%s is valid", c.config.ConfigPath())
			fmt.Fprintf(c.output, "Scheduler: %d procs, %d cpus, policy %s, slices %v, boost every %d ticks\n",
				kcfg.NProc, kcfg.NCPU, kcfg.Policy, kcfg.Slices, kcfg.BoostInterval)
			fmt.Fprintf(c.output, "Max ticks: %d\n\n", cfg.MaxTicks)
			printJobs(c.output, cfg)
			return nil
		},
	}
}

func (c *CLI) newReportCmd() *cobra.Command {
	var (
		list   bool
		asJSON bool
		prune  int
	)
	cmd := &cobra.Command{
		Use:   "report [run-id]",
		Short: "Show saved run reports",
		Long: `Show the latest saved run, or the run with the given id. --list prints every
saved run and --prune N keeps only the newest N.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := state.NewStateManager(c.config.ProjectRoot, c.logger)

			if cmd.Flags().Changed("prune") {
				n, err := store.Prune(prune)
				if err != nil {
					return err
				}
				c.console.Success("Removed %d runs", n)
				return nil
			}

			if list {
				reports, err := store.List()
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(c.output, reports)
				}
				if len(reports) == 0 {
					c.console.Info("No saved runs in %s", store.Dir())
					return nil
				}
				printRunList(c.output, reports)
				return nil
			}

			var (
				report *types.RunReport
				err    error
			)
			if len(args) == 1 {
				report, err = store.Load(args[0])
			} else {
				report, err = store.Latest()
			}
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(c.output, report)
			}
			printReport(c.output, report)
			return nil
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "list saved runs")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().IntVar(&prune, "prune", 0, "keep only the newest N runs")
	return cmd
}

func (c *CLI) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(c.output, "mlfqsim v%s\n", c.config.Version)
		},
	}
}
