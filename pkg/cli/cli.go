// Package cli provides the mlfqsim command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/poltergeist/mlfq/pkg/config"
	"github.com/poltergeist/mlfq/pkg/logger"
	"github.com/poltergeist/mlfq/pkg/types"
)

// EnvPrefix prefixes the environment variables that override flags, as in
// MLFQ_POLICY or MLFQ_MAX_TICKS.
const EnvPrefix = "MLFQ"

// CLI holds the command tree and its settings.
type CLI struct {
	config  *Config
	rootCmd *cobra.Command
	viper   *viper.Viper
	logger  logger.Logger
	console *logger.Console
	output  io.Writer
	errOut  io.Writer
	manager *config.Manager
}

// NewCLI creates a new CLI instance with the given configuration
func NewCLI(cfg *Config) *CLI {
	return NewCLIWithOutput(cfg, os.Stdout, os.Stderr)
}

// NewCLIWithOutput creates a CLI with custom output writers.
func NewCLIWithOutput(cfg *Config, output, errorOut io.Writer) *CLI {
	if cfg == nil {
		cfg = NewConfig()
	}
	c := &CLI{
		config:  cfg,
		viper:   viper.New(),
		logger:  logger.Discard(),
		console: &logger.Console{Out: output, Err: errorOut},
		output:  output,
		errOut:  errorOut,
		manager: config.NewManager(),
	}
	c.setupCommands()
	c.rootCmd.SetOut(output)
	c.rootCmd.SetErr(errorOut)
	return c
}

// Execute runs the CLI with the given arguments
func (c *CLI) Execute(args []string) error {
	return c.ExecuteContext(context.Background(), args)
}

// ExecuteContext runs the CLI with context support
func (c *CLI) ExecuteContext(ctx context.Context, args []string) error {
	c.rootCmd.SetArgs(args)
	return c.rootCmd.ExecuteContext(ctx)
}

// ExecuteWithVersion runs the CLI on the process arguments.
func ExecuteWithVersion(version string) error {
	cfg := NewConfig()
	cfg.Version = version
	return NewCLI(cfg).Execute(os.Args[1:])
}

func (c *CLI) setupCommands() {
	c.rootCmd = &cobra.Command{
		Use:   "mlfqsim",
		Short: "Multi-level feedback queue scheduler simulator",
		Long: `mlfqsim runs workloads on a simulated multi-core kernel whose scheduler is a
three-level feedback queue. CPU-bound jobs sink to LOW as they burn through
their time slices, interactive jobs stay near HIGH, and a periodic boost lifts
everything back up. Each run reports turnaround, response and wait times.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.initializeConfig,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	c.setupFlags()

	c.rootCmd.Version = c.config.Version
	c.rootCmd.SetVersionTemplate("mlfqsim v{{.Version}}\n")

	c.rootCmd.AddCommand(c.newRunCmd())
	c.rootCmd.AddCommand(c.newWatchCmd())
	c.rootCmd.AddCommand(c.newInitCmd())
	c.rootCmd.AddCommand(c.newValidateCmd())
	c.rootCmd.AddCommand(c.newReportCmd())
	c.rootCmd.AddCommand(c.newVersionCmd())
}

func (c *CLI) setupFlags() {
	flags := c.rootCmd.PersistentFlags()
	flags.StringVar(&c.config.ConfigFile, "config", "", "config file (default: <root>/"+config.DefaultFileName+")")
	flags.StringVar(&c.config.ProjectRoot, "root", ".", "project root directory")
	flags.StringVarP(&c.config.Verbosity, "verbosity", "v", "info", "log level (debug, info, warn, error)")
	flags.StringVar(&c.config.LogFile, "log-file", "", "also append logs to this file")
}

// addOverrideFlags registers the scheduler overrides shared by run and
// watch. They are read through viper so MLFQ_* variables work too.
func (c *CLI) addOverrideFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("policy", "", "dispatch policy (scan, fifo)")
	flags.Int("ncpu", 0, "number of cores")
	flags.Uint64("max-ticks", 0, "stop the run after this many ticks")
	flags.Int("tick-interval", 0, "microseconds between clock ticks")
	flags.Uint64("boost-interval", 0, "ticks between priority boosts")
	flags.Bool("no-notify", false, "disable desktop notifications")
}

func (c *CLI) initializeConfig(cmd *cobra.Command, args []string) error {
	c.logger = c.newLogger(c.config.LogFile, c.config.Verbosity)

	c.viper.SetEnvPrefix(EnvPrefix)
	c.viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.viper.AutomaticEnv()
	if err := c.viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	c.logger.Debug("Configuration resolved",
		logger.WithField("config", c.config.ConfigPath()),
		logger.WithField("root", c.config.ProjectRoot))
	return nil
}

// newLogger logs to stderr, or to the error writer the CLI was built with.
func (c *CLI) newLogger(file, level string) logger.Logger {
	if c.errOut == os.Stderr {
		return logger.CreateLogger(file, level)
	}
	return logger.CreateLoggerWithOutput(file, level, c.errOut)
}

// loadSimulation reads the configuration file and applies flag and
// environment overrides.
func (c *CLI) loadSimulation() (*types.SimulationConfig, error) {
	cfg, err := c.manager.LoadConfig(c.config.ConfigPath())
	if err != nil {
		return nil, err
	}
	if err := c.applyOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *CLI) applyOverrides(cfg *types.SimulationConfig) error {
	v := c.viper
	changed := false
	if v.IsSet("policy") && v.GetString("policy") != "" {
		cfg.Scheduler.Policy = v.GetString("policy")
		changed = true
	}
	if v.IsSet("ncpu") && v.GetInt("ncpu") > 0 {
		cfg.Scheduler.NCPU = v.GetInt("ncpu")
		changed = true
	}
	if v.IsSet("max-ticks") && v.GetUint64("max-ticks") > 0 {
		cfg.MaxTicks = v.GetUint64("max-ticks")
		changed = true
	}
	if v.IsSet("tick-interval") && v.GetInt("tick-interval") > 0 {
		cfg.Scheduler.TickInterval = v.GetInt("tick-interval")
		changed = true
	}
	if v.IsSet("boost-interval") && v.GetUint64("boost-interval") > 0 {
		cfg.Scheduler.BoostInterval = v.GetUint64("boost-interval")
		changed = true
	}
	if v.GetBool("no-notify") {
		off := false
		cfg.Notifications = &types.NotificationConfig{Enabled: &off}
	}
	if !changed {
		return nil
	}
	return c.manager.ValidateConfig(cfg)
}
