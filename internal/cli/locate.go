package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/dasha/internal/domain"
	"github.com/roach88/dasha/internal/engine"
	"github.com/roach88/dasha/internal/ir"
	"github.com/roach88/dasha/internal/system"
)

// LocateOptions holds flags for the locate command.
type LocateOptions struct {
	*RootOptions
	chartFlags
	At        string // instant for time systems
	Longitude string // point for zodiac systems
	Siblings  bool
}

// LocateOutput is the located chain.
type LocateOutput struct {
	QueryID  string      `json:"query_id" yaml:"query_id" toml:"query_id"`
	System   string      `json:"system" yaml:"system" toml:"system"`
	Balance  ir.Balance  `json:"balance" yaml:"balance" toml:"balance"`
	Point    int64       `json:"point" yaml:"point" toml:"point"`
	Periods  []ir.Period `json:"periods" yaml:"periods" toml:"periods"`
	Siblings []ir.Period `json:"siblings,omitempty" yaml:"siblings,omitempty" toml:"siblings,omitempty"`
}

// WriteText implements Text.
func (o LocateOutput) WriteText(w io.Writer) error {
	fmt.Fprintf(w, "%s  balance %s %d/%d consumed\n", o.System, o.Balance.Ruler, o.Balance.Num, o.Balance.Den)
	if err := writePeriods(w, o.Periods); err != nil {
		return err
	}
	if len(o.Siblings) > 0 {
		fmt.Fprintln(w, "\nsiblings:")
		return writePeriods(w, o.Siblings)
	}
	return nil
}

// NewLocateCommand creates the locate command.
func NewLocateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LocateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Show the current period chain",
		Long: `Locate an instant (time systems) or a longitude (zodiac systems) and
print the containing period at every depth, top level first.

Examples:
  dasha locate -r 45:20 -e 1990-03-14T06:30:00Z --at 2026-01-01T00:00:00Z
  dasha locate -s YOGINI -r 123.5 -e 1990-03-14T06:30:00Z -d 1 --siblings
  dasha locate -s KP_SUBLORD --longitude 100:00`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocate(opts, cmd)
		},
	}

	opts.chartFlags.register(cmd)
	cmd.Flags().StringVar(&opts.At, "at", "", "instant to locate (RFC 3339, default now)")
	cmd.Flags().StringVar(&opts.Longitude, "longitude", "", "longitude to locate (zodiac systems)")
	cmd.Flags().BoolVar(&opts.Siblings, "siblings", false, "also list the siblings of the deepest period")

	return cmd
}

func runLocate(opts *LocateOptions, cmd *cobra.Command) error {
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
	depth := opts.depth(cmd, opts.Config.Depth)

	point, err := opts.point(q)
	if err != nil {
		return formatter.Fail(err)
	}
	formatter.VerboseLog("query %s: point %d depth %d", q.ID(), point, depth)

	res, err := q.AtValue(ctx, point, depth)
	if err != nil {
		return formatter.Fail(err)
	}
	out := LocateOutput{
		QueryID: res.QueryID,
		System:  string(res.System),
		Balance: balanceOf(q),
		Point:   int64(point),
		Periods: res.Records(),
	}
	if opts.Siblings {
		sibs, err := q.Siblings(ctx, point, depth)
		if err != nil {
			return formatter.Fail(err)
		}
		for _, p := range sibs {
			out.Siblings = append(out.Siblings, p.Record())
		}
	}
	return formatter.Success(out)
}

// point resolves --at or --longitude against the system's axis.
func (o *LocateOptions) point(q *engine.QueryContext) (domain.Value, error) {
	if q.Definition().Axis == system.AxisZodiac {
		if o.Longitude == "" {
			return 0, NewExitError(ExitCommandError, fmt.Sprintf("%s subdivides the zodiac: --longitude is required", q.Definition().ID))
		}
		lon, err := domain.ParseLongitude(o.Longitude)
		if err != nil {
			return 0, err
		}
		return lon.Normalize(), nil
	}

	if err := requireEpoch(q, &o.chartFlags); err != nil {
		return 0, err
	}
	if o.Longitude != "" {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("%s subdivides time: use --at", q.Definition().ID))
	}
	at := time.Now()
	if o.At != "" {
		t, err := time.Parse(time.RFC3339Nano, o.At)
		if err != nil {
			return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid --at %q: want RFC 3339", o.At))
		}
		at = t
	}
	return domain.SinceEpoch(q.Request().Epoch, at)
}
