package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/poltergeist/mlfq/pkg/config"
)

func (c *CLI) newInitCmd() *cobra.Command {
	var (
		format string
		force  bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration",
		Long: `Write a configuration with a mix of CPU-bound, interactive and forking jobs
to the project root. The file is YAML unless --format json is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.config.ConfigFile
			switch format {
			case "yaml", "yml":
				if path == "" {
					path = filepath.Join(c.config.ProjectRoot, config.DefaultFileName)
				}
			case "json":
				if path == "" {
					path = filepath.Join(c.config.ProjectRoot, "mlfq.json")
				}
			default:
				return fmt.Errorf("unsupported format %q (use yaml or json)", format)
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			cfg := c.manager.GetDefaultConfig()
			if err := c.manager.SaveConfig(path, cfg); err != nil {
				return err
			}
			c.console.Success("Created %s with %d jobs", path, len(cfg.Jobs))
			c.console.Info("Run it with: mlfqsim run --config %s", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "file format (yaml, json)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
