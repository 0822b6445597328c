// Package cli implements the floorplanner command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/matzehuels/floorplanner/pkg/buildinfo"
	"github.com/matzehuels/floorplanner/pkg/cache"
	"github.com/matzehuels/floorplanner/pkg/config"
	"github.com/matzehuels/floorplanner/pkg/observability"
	"github.com/matzehuels/floorplanner/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = config.AppName

	// redisDialTimeout bounds the initial connection to a Redis cache.
	redisDialTimeout = 2 * time.Second
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
	Config config.Config

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger and the built-in
// configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "floorplanner",
		Short: "floorplanner rearranges slicing floorplans",
		Long: `floorplanner reads a chip floorplan as a list of rectangular modules, builds
its slicing tree, and rearranges the tree by swapping cut children: net
migration pulls a net toward a target point, distance reduction brings two
modules next to each other. Module sizes never change.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.preRun,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/floorplanner/config.toml)")

	// Register all subcommands
	root.AddCommand(c.buildCommand())
	root.AddCommand(c.migrateCommand())
	root.AddCommand(c.reduceCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// skipConfigLoad marks commands that must run without a readable
// configuration file.
const skipConfigLoad = "skip-config-load"

// preRun applies --verbose, loads the configuration and attaches the logger
// to the command context.
func (c *CLI) preRun(cmd *cobra.Command, args []string) error {
	if c.verbose {
		c.SetLogLevel(LogDebug)
		hooks := observability.NewLogHooks(c.Logger)
		observability.SetPipelineHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetHTTPHooks(hooks)
	}

	if cmd.Annotations[skipConfigLoad] == "" {
		cfg, warnings, err := config.Load(c.configPath)
		if err != nil {
			return err
		}
		for _, w := range warnings {
			c.Logger.Warn(w)
		}
		c.Config = cfg
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	backend, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(backend, cache.NewScopedKeyer(nil, c.Config.Cache.Scope), c.Logger)
	runner.TTL = c.Config.Cache.TTL.Duration
	return runner, nil
}

// newCache opens the configured cache backend. An unreachable Redis server
// is logged and replaced by the null cache so a command still runs.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.Config.Cache
	if noCache || cfg.Backend == config.BackendNone {
		return cache.NewNullCache(), nil
	}

	if cfg.Backend == config.BackendRedis {
		rc, err := cache.NewRedisCache(ctx, &redis.Options{
			Addr:        cfg.RedisAddr,
			DialTimeout: redisDialTimeout,
		})
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "addr", cfg.RedisAddr, "error", err)
			return cache.Disabled("redis at " + cfg.RedisAddr + " is unreachable"), nil
		}
		return rc, nil
	}

	dir, err := c.cacheDir()
	if err != nil {
		return cache.Disabled("no cache directory: " + err.Error()), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the file cache directory: the configured one, or the
// XDG default.
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return config.CacheDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// defaultOptions returns pipeline options seeded from the configuration.
// Flags registered on top of them override the file values.
func (c *CLI) defaultOptions(op string) pipeline.Options {
	r := c.Config.Render
	opts := pipeline.Options{
		Operation: op,
		TargetX:   c.Config.Target.X,
		TargetY:   c.Config.Target.Y,
		Formats:   append([]string(nil), r.Formats...),
		Width:     r.Width,
		Height:    r.Height,
		Scale:     r.Scale,
		Labels:    r.Labels,
		Cuts:      r.Cuts,
		Font:      r.Font,
	}
	opts.SetLayoutDefaults()
	opts.SetRenderDefaults()
	return opts
}

// parseFormats parses a comma-separated format string into a slice.
// An empty string keeps fallback.
func parseFormats(s string, fallback []string) ([]string, error) {
	if s == "" {
		return fallback, nil
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if err := pipeline.ValidateFormat(f); err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	if len(formats) == 0 {
		return nil, fmt.Errorf("no output format in %q", s)
	}
	return formats, nil
}

// parseIDs splits a comma-separated list of module IDs.
func parseIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
