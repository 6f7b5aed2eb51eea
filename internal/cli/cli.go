// Package cli implements the bimtower command-line interface.
//
// # Commands
//
//   - export: Write an IFC exchange file from a building manifest
//   - render: Draw plan, isometric or hierarchy views (SVG, PNG, PDF, DOT)
//     and scene JSON
//   - inspect: Summarize a model, optionally in an interactive tree browser
//   - validate: Check manifests for structural problems
//   - demo: Write a bundled example manifest
//   - serve: Run the HTTP API
//   - cache: Manage the render cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// installs log-backed observability hooks.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/bimtower/pkg/buildinfo"
	"github.com/matzehuels/bimtower/pkg/cache"
	"github.com/matzehuels/bimtower/pkg/config"
	"github.com/matzehuels/bimtower/pkg/errors"
	"github.com/matzehuels/bimtower/pkg/observability"
	"github.com/matzehuels/bimtower/pkg/pipeline"
	"github.com/matzehuels/bimtower/pkg/storage"
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

	// Config is loaded before any command runs.
	Config *config.Config

	// errOut receives progress output that must not mix with artifacts
	// written to stdout.
	errOut io.Writer

	configPath string
	verbose    bool
	noCache    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
		errOut: w,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "bimtower",
		Short:        "bimtower builds IFC exchange files from building manifests",
		Long:         `bimtower manages a hierarchy of building elements (sites, buildings, storeys, walls, openings), resolves their placement, exports IFC STEP exchange files and renders plan, isometric and hierarchy views.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
				hooks := observability.NewLogHooks(c.Logger)
				observability.SetPipelineHooks(hooks)
				observability.SetCacheHooks(hooks)
				observability.SetHTTPHooks(hooks)
			}
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/bimtower/config.toml)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the render cache")

	root.AddCommand(c.exportCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.demoCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. keyPrefix scopes cache
// keys; the server passes "api:" so it never collides with CLI entries in a
// shared Redis.
func (c *CLI) newRunner(ctx context.Context, keyPrefix string) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if keyPrefix != "" {
		keyer = cache.NewScopedKeyer(nil, keyPrefix)
	}
	r := pipeline.NewRunner(cc, keyer, c.Logger)
	if ttl := c.Config.Cache.TTL.Duration; ttl > 0 {
		r.TTL = ttl
	}
	return r, nil
}

func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, c.Config.Cache.RedisURL)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCache, err, "connect to redis cache")
		}
		return rc, nil
	default:
		dir, err := c.cacheDir()
		if err != nil {
			c.Logger.Warn("cache disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return config.CacheDir()
}

func (c *CLI) newRepository(ctx context.Context) (storage.Repository, error) {
	if c.Config.Storage.Backend == config.StorageMongo {
		repo, err := storage.NewMongoRepository(ctx, c.Config.Storage.MongoURI, c.Config.Storage.Database)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect to mongo")
		}
		return repo, nil
	}
	return storage.NewMemoryRepository(), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseList splits a comma-separated flag value.
func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a known output extension, it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	switch strings.TrimPrefix(filepath.Ext(output), ".") {
	case pipeline.FormatSVG, pipeline.FormatPNG, pipeline.FormatPDF,
		pipeline.FormatJSON, pipeline.FormatDOT, pipeline.FormatIFC:
		return strings.TrimSuffix(output, filepath.Ext(output))
	}
	return output
}

// writeOutput writes data to path, or to w when path is "-".
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "-" {
		_, err := w.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
