package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/matzehuels/acknowledge/pkg/buildinfo"
	"github.com/matzehuels/acknowledge/pkg/observability"
	"github.com/matzehuels/acknowledge/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "acknowledge"

	// envPrefix prefixes environment variables that override flags.
	envPrefix = "ACKNOWLEDGE"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// config layers flags over ACKNOWLEDGE_* env vars over the config file.
	config *viper.Viper
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		config: newConfig(),
	}
}

// SetLogLevel updates the logger's level. At debug level, pipeline stages
// repository fetches, cache traffic and HTTP calls are logged too.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		h := logHooks{logger: c.Logger}
		observability.SetPipelineHooks(h)
		observability.SetCacheHooks(h)
		observability.SetHTTPHooks(h)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
// The root command itself generates the acknowledgements file.
func (c *CLI) RootCommand() *cobra.Command {
	root := c.generateCommand()
	root.Use = appName + " [path]"
	root.Short = "Acknowledge the people behind your Rust dependencies"
	root.Long = `Acknowledge reads a Cargo.toml, finds the GitHub and GitLab repositories of
its dependencies, and writes an ACKNOWLEDGEMENTS.md crediting their contributors.

Repository lookups and contributor lists are cached, so repeated runs are fast
and make no network calls.`
	root.Version = buildinfo.Version
	root.SilenceUsage = true
	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().String("config", "", "config file (default ~/.config/acknowledge/config.yaml)")
	root.PersistentFlags().String("cache", cacheFile, "cache backend: file, bolt, redis, mongo, none")
	root.PersistentFlags().String("cache-url", "", "redis or mongo connection URL")
	c.bind(root.PersistentFlags())

	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner over the configured cache backend.
// The caller owns the returned runner's cache and must close it.
func (c *CLI) newRunner(cmd *cobra.Command) (*pipeline.Runner, error) {
	backend, err := openCache(cmd.Context(), c.cacheSettings())
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(backend, nil, c.Logger), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/acknowledge/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configDir returns the config directory using XDG standard (~/.config/acknowledge/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
