package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/roach88/dasha/internal/compiler"
	"github.com/roach88/dasha/internal/config"
	"github.com/roach88/dasha/internal/engine"
	"github.com/roach88/dasha/internal/system"
)

// RootOptions holds global flags for all commands, merged with the
// configuration file and DASHA_* environment before any command runs.
type RootOptions struct {
	Verbose    bool
	Format     string // "text" | "json" | "yaml" | "toml"
	ConfigFile string
	SystemsDir string
	CachePath  string
	MaxCycles  int
	Metrics    bool

	// Config is the merged configuration, set before RunE.
	Config config.Config

	// IDs overrides the query id source; nil means UUIDv7.
	IDs engine.IDGenerator

	registry *prometheus.Registry
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml", "toml"}

// NewRootCommand creates the root command for the dasha CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dasha",
		Short: "dasha - proportional period subdivision",
		Long: `Subdivide a cycle of rulers into nested periods and locate any instant
or longitude in the hierarchy.

Built-in systems: Vimsottari, Yogini, Ashtottari, Kalachakra, Chara,
KP sub-lords and Kakshya. Custom systems are loaded from CUE files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.dumpMetrics(cmd.ErrOrStderr())
		},
	}

	// Global flags
	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (debug logs on stderr)")
	flags.StringVar(&opts.Format, "format", "text", "output format (text|json|yaml|toml)")
	flags.StringVar(&opts.ConfigFile, "config", "", "config file (default .dasha.yaml in . or $HOME)")
	flags.StringVar(&opts.SystemsDir, "systems", "", "directory of custom CUE system definitions")
	flags.StringVar(&opts.CachePath, "cache", "", "SQLite timeline cache path")
	flags.IntVar(&opts.MaxCycles, "max-cycles", 0, "ruler cycles a tree may span (default 1000)")
	flags.BoolVar(&opts.Metrics, "metrics", false, "print engine metrics to stderr on exit")

	// Add subcommands
	cmd.AddCommand(NewSystemsCommand(opts))
	cmd.AddCommand(NewLocateCommand(opts))
	cmd.AddCommand(NewSudarshanaCommand(opts))
	cmd.AddCommand(NewTimelineCommand(opts))
	cmd.AddCommand(NewCacheCommand(opts))
	cmd.AddCommand(NewKPCommand(opts))
	cmd.AddCommand(NewKakshyaCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// configKeys maps config keys to the global flags that override them.
var configKeys = map[string]string{
	"verbose":     "verbose",
	"format":      "format",
	"systems_dir": "systems",
	"cache_path":  "cache",
	"max_cycles":  "max-cycles",
}

// load merges flags over the config file and environment.
func (o *RootOptions) load(cmd *cobra.Command) error {
	v, err := config.New(o.ConfigFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	for key, name := range configKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return WrapExitError(ExitCommandError, "bind flag "+name, err)
			}
		}
	}
	cfg, err := config.Load(v)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	o.Config = cfg
	o.Verbose = cfg.Verbose
	o.Format = cfg.Format
	o.SystemsDir = cfg.SystemsDir
	o.CachePath = cfg.CachePath
	o.MaxCycles = cfg.MaxCycles
	return nil
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting structured output
		Verbose:   o.Verbose,
	}
}

// logger writes structured logs to stderr: warnings by default, debug
// detail with --verbose.
func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Registry returns the built-in systems plus any custom definitions from
// the systems directory.
func (o *RootOptions) Registry() (*system.Registry, error) {
	reg, err := system.NewBuiltinRegistry()
	if err != nil {
		return nil, err
	}
	if o.SystemsDir != "" {
		loaded, errs := compiler.LoadDir(o.SystemsDir, compiler.LoadModeFailFast)
		if len(errs) > 0 {
			return nil, WrapExitError(ExitCommandError, "load custom systems", errs[0])
		}
		if err := compiler.Register(reg, loaded.Definitions); err != nil {
			return nil, WrapExitError(ExitCommandError, "register custom systems", err)
		}
	}
	reg.Freeze()
	return reg, nil
}

// Engine builds an engine over Registry with the configured logger, cycle
// bound and metrics.
func (o *RootOptions) Engine(cmd *cobra.Command) (*engine.Engine, error) {
	reg, err := o.Registry()
	if err != nil {
		return nil, err
	}
	opts := []engine.Option{
		engine.WithLogger(o.logger(cmd.ErrOrStderr())),
		engine.WithMaxCycles(o.MaxCycles),
		engine.WithIDGenerator(o.IDs),
	}
	if o.Metrics {
		o.registry = prometheus.NewRegistry()
		opts = append(opts, engine.WithMetrics(engine.NewMetrics(o.registry)))
	}
	return engine.New(reg, opts...), nil
}

// dumpMetrics writes the gathered engine metrics in the Prometheus text
// format.
func (o *RootOptions) dumpMetrics(w io.Writer) error {
	if o.registry == nil {
		return nil
	}
	families, err := o.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
