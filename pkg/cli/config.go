package cli

import (
	"path/filepath"

	"github.com/poltergeist/mlfq/pkg/config"
)

// Config holds the global flags of the CLI.
type Config struct {
	ConfigFile  string
	ProjectRoot string
	Verbosity   string
	LogFile     string
	Version     string
}

// NewConfig creates a new CLI configuration with defaults
func NewConfig() *Config {
	return &Config{
		ProjectRoot: ".",
		Verbosity:   "info",
	}
}

// ConfigPath is the simulation configuration the commands read.
func (c *Config) ConfigPath() string {
	if c.ConfigFile != "" {
		return c.ConfigFile
	}
	return filepath.Join(c.ProjectRoot, config.DefaultFileName)
}
