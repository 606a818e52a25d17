package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/panecraft/pkg/buildinfo"
	"github.com/matzehuels/panecraft/pkg/cache"
	"github.com/matzehuels/panecraft/pkg/config"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = config.AppName

	// defaultDesignFile is the design file commands operate on without -f.
	defaultDesignFile = "design.json"
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

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. Debug output includes callers.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	c.Logger.SetReportCaller(level <= log.DebugLevel)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Panecraft designs terminal user interfaces",
		Long: `Panecraft edits nested terminal layouts and turns them into ratatui programs.

A design is a tree of layouts and widgets stored in a JSON file. Commands
add, move and resize panes, preview the result in the terminal and generate
a Rust main.rs plus Cargo.toml for it.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/panecraft/config.toml)")

	// Design file commands
	root.AddCommand(c.newCommand())
	root.AddCommand(c.addCommand())
	root.AddCommand(c.deleteCommand())
	root.AddCommand(c.moveCommand())
	root.AddCommand(c.setCommand())
	root.AddCommand(c.constraintCommand())
	root.AddCommand(c.resizeCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.editCommand())

	// Output
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.graphCommand())

	// Projects and accounts
	root.AddCommand(c.projectCommand())
	root.AddCommand(c.loginCommand())
	root.AddCommand(c.logoutCommand())
	root.AddCommand(c.whoamiCommand())
	root.AddCommand(c.serveCommand())

	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the --config file, or the default one if it exists.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("config loaded", "storage", cfg.Storage.Backend, "session", cfg.Session.Backend, "cache", cfg.Cache.Backend)
	return cfg, nil
}

// newCache opens the configured artifact cache, or a null cache when
// noCache is set.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	return cfg.OpenCache(ctx)
}
