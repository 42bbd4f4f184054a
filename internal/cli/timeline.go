package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/dasha/internal/engine"
	"github.com/roach88/dasha/internal/ir"
	"github.com/roach88/dasha/internal/store"
)

// TimelineOptions holds flags for the timeline command.
type TimelineOptions struct {
	*RootOptions
	chartFlags
	NoCache bool
}

// TimelineOutput is a flattened timeline and where it came from.
type TimelineOutput struct {
	KeyHash  string      `json:"key_hash" yaml:"key_hash" toml:"key_hash"`
	Cached   bool        `json:"cached" yaml:"cached" toml:"cached"`
	Timeline ir.Timeline `json:"timeline" yaml:"timeline" toml:"timeline"`
}

// WriteText implements Text.
func (o TimelineOutput) WriteText(w io.Writer) error {
	b := o.Timeline.Balance
	src := "computed"
	if o.Cached {
		src = "cached"
	}
	fmt.Fprintf(w, "%s  balance %s %d/%d consumed  (%s, %d periods)\n",
		o.Timeline.Key.System, b.Ruler, b.Num, b.Den, src, len(o.Timeline.Periods))
	return writePeriods(w, o.Timeline.Periods)
}

// NewTimelineCommand creates the timeline command.
func NewTimelineCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TimelineOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Print every period over the horizon",
		Long: `Flatten the period tree over the horizon down to the requested depth,
parents before children.

With a cache path configured (--cache or cache_path), timelines are stored
in SQLite under the hash of (system, reference, epoch, horizon, depth) and
reused while the system definition is unchanged.

Examples:
  dasha timeline -r 45:20 -e 1990-03-14T06:30:00Z --horizon 120 -d 1
  dasha timeline -s KAKSHYA -d 0 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTimeline(opts, cmd)
		},
	}

	opts.chartFlags.register(cmd)
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "bypass the timeline cache")

	return cmd
}

func runTimeline(opts *TimelineOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()

	eng, err := opts.Engine(cmd)
	if err != nil {
		return formatter.Fail(err)
	}
	req, err := opts.request(cmd, eng, opts.Config.HorizonYears)
	if err != nil {
		return formatter.Fail(err)
	}
	q, err := eng.Open(ctx, req)
	if err != nil {
		return formatter.Fail(err)
	}
	if err := requireEpoch(q, &opts.chartFlags); err != nil {
		return formatter.Fail(err)
	}
	depth := opts.depth(cmd, opts.Config.Depth)

	out, err := opts.timeline(ctx, q, depth, formatter)
	if err != nil {
		return formatter.Fail(err)
	}
	return formatter.Success(out)
}

// timeline computes the timeline or serves it from the cache.
func (o *TimelineOptions) timeline(ctx context.Context, q *engine.QueryContext, depth int, formatter *OutputFormatter) (TimelineOutput, error) {
	key := q.Key(depth)
	keyHash, err := key.Hash()
	if err != nil {
		return TimelineOutput{}, err
	}

	if o.CachePath == "" || o.NoCache {
		tl, err := q.Timeline(ctx, depth)
		if err != nil {
			return TimelineOutput{}, err
		}
		return TimelineOutput{KeyHash: keyHash, Timeline: tl}, nil
	}

	st, err := store.Open(o.CachePath)
	if err != nil {
		return TimelineOutput{}, WrapExitError(ExitCommandError, "open cache", err)
	}
	defer st.Close()

	rec := engine.Describe(q.Definition())
	systemHash, err := rec.Hash()
	if err != nil {
		return TimelineOutput{}, err
	}
	if tl, ok, err := st.GetTimeline(ctx, key, systemHash); err != nil {
		return TimelineOutput{}, err
	} else if ok {
		formatter.VerboseLog("cache hit %s", keyHash)
		return TimelineOutput{KeyHash: keyHash, Cached: true, Timeline: tl}, nil
	}

	tl, err := q.Timeline(ctx, depth)
	if err != nil {
		return TimelineOutput{}, err
	}
	if _, err := st.PutSystem(ctx, rec); err != nil {
		return TimelineOutput{}, err
	}
	if _, err := st.PutTimeline(ctx, tl, systemHash); err != nil {
		return TimelineOutput{}, err
	}
	formatter.VerboseLog("cache stored %s (%d periods)", keyHash, len(tl.Periods))
	return TimelineOutput{KeyHash: keyHash, Timeline: tl}, nil
}
