package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/dasha/internal/ir"
	"github.com/roach88/dasha/internal/store"
)

// CacheListOutput lists cached timelines.
type CacheListOutput struct {
	Path      string        `json:"path" yaml:"path" toml:"path"`
	Timelines []store.Entry `json:"timelines" yaml:"timelines" toml:"timelines"`
}

// WriteText implements Text.
func (o CacheListOutput) WriteText(w io.Writer) error {
	if len(o.Timelines) == 0 {
		_, err := fmt.Fprintf(w, "%s: no cached timelines\n", o.Path)
		return err
	}
	for _, e := range o.Timelines {
		if _, err := fmt.Fprintf(w, "%-12s depth %d  %6d periods  %s\n", e.System, e.Depth, e.PeriodCount, e.KeyHash); err != nil {
			return err
		}
	}
	return nil
}

// CacheSystemOutput is the stored definition record of one system.
type CacheSystemOutput struct {
	Hash   string          `json:"hash" yaml:"hash" toml:"hash"`
	System ir.SystemRecord `json:"system" yaml:"system" toml:"system"`
}

// WriteText implements Text.
func (o CacheSystemOutput) WriteText(w io.Writer) error {
	if err := (SystemsOutput{Systems: []ir.SystemRecord{o.System}}).WriteText(w); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "  hash %s\n", o.Hash)
	return err
}

// CachePurgeOutput reports how many timelines were dropped.
type CachePurgeOutput struct {
	System  string `json:"system" yaml:"system" toml:"system"`
	Removed int64  `json:"removed" yaml:"removed" toml:"removed"`
}

// WriteText implements Text.
func (o CachePurgeOutput) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "removed %d cached timeline(s) of %s\n", o.Removed, o.System)
	return err
}

// NewCacheCommand creates the cache command group.
func NewCacheCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the timeline cache",
		Long:  `Inspect or purge the SQLite timeline cache configured with --cache or cache_path.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List cached timelines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(rootOpts, cmd, func(st *store.Store, f *OutputFormatter) error {
				entries, err := st.ListTimelines(cmd.Context())
				if err != nil {
					return err
				}
				return f.Success(CacheListOutput{Path: rootOpts.CachePath, Timelines: entries})
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "system <id>",
		Short: "Show the stored definition of a system",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(rootOpts, cmd, func(st *store.Store, f *OutputFormatter) error {
				id := strings.ToUpper(args[0])
				rec, hash, ok, err := st.GetSystem(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !ok {
					return NewExitError(ExitFailure, fmt.Sprintf("%s is not cached", id))
				}
				return f.Success(CacheSystemOutput{Hash: hash, System: rec})
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "purge <id>",
		Short: "Drop every cached timeline of a system",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(rootOpts, cmd, func(st *store.Store, f *OutputFormatter) error {
				id := strings.ToUpper(args[0])
				n, err := st.PurgeSystem(cmd.Context(), id)
				if err != nil {
					return err
				}
				return f.Success(CachePurgeOutput{System: id, Removed: n})
			})
		},
	})

	return cmd
}

func withCache(opts *RootOptions, cmd *cobra.Command, fn func(*store.Store, *OutputFormatter) error) error {
	formatter := opts.formatter(cmd)
	if opts.CachePath == "" {
		return formatter.Fail(NewExitError(ExitCommandError, "no cache configured: set --cache or cache_path"))
	}
	st, err := store.Open(opts.CachePath)
	if err != nil {
		return formatter.Fail(WrapExitError(ExitCommandError, "open cache", err))
	}
	defer st.Close()

	if err := fn(st, formatter); err != nil {
		return formatter.Fail(err)
	}
	return nil
}
