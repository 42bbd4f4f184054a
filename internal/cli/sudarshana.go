package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/dasha/internal/domain"
	"github.com/roach88/dasha/internal/engine"
	"github.com/roach88/dasha/internal/ir"
	"github.com/roach88/dasha/internal/system"
)

// SudarshanaOptions holds flags for the sudarshana command.
type SudarshanaOptions struct {
	*RootOptions
	System string
	Epoch  string
	At     string
	Lagna  string
	Moon   string
	Sun    string
	Depth  int
}

// SudarshanaChart is the chain for one reference.
type SudarshanaChart struct {
	Reference string      `json:"reference" yaml:"reference" toml:"reference"`
	QueryID   string      `json:"query_id" yaml:"query_id" toml:"query_id"`
	Balance   ir.Balance  `json:"balance" yaml:"balance" toml:"balance"`
	Periods   []ir.Period `json:"periods" yaml:"periods" toml:"periods"`
}

// SudarshanaOutput holds the three chains in lagna, moon, sun order.
type SudarshanaOutput struct {
	System string            `json:"system" yaml:"system" toml:"system"`
	Charts []SudarshanaChart `json:"charts" yaml:"charts" toml:"charts"`
}

// WriteText implements Text.
func (o SudarshanaOutput) WriteText(w io.Writer) error {
	for i, c := range o.Charts {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%s)  balance %s %d/%d consumed\n", o.System, c.Reference, c.Balance.Ruler, c.Balance.Num, c.Balance.Den)
		if err := writePeriods(w, c.Periods); err != nil {
			return err
		}
	}
	return nil
}

// NewSudarshanaCommand creates the sudarshana command.
func NewSudarshanaCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SudarshanaOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sudarshana",
		Short: "Run one system from the ascendant, Moon and Sun",
		Long: `Open the same time system three times, with the ascendant, Moon and Sun
longitudes as balance references, and locate one instant in each.

Example:
  dasha sudarshana -e 1990-03-14T06:30:00Z --lagna 0 --moon 45:20 --sun 100`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSudarshana(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.System, "system", "s", string(system.Vimsottari), "period system id")
	cmd.Flags().StringVarP(&opts.Epoch, "epoch", "e", "", "birth instant (RFC 3339)")
	cmd.Flags().StringVar(&opts.At, "at", "", "instant to locate (RFC 3339, default now)")
	cmd.Flags().StringVar(&opts.Lagna, "lagna", "", "ascendant longitude")
	cmd.Flags().StringVar(&opts.Moon, "moon", "", "Moon longitude")
	cmd.Flags().StringVar(&opts.Sun, "sun", "", "Sun longitude")
	cmd.Flags().IntVarP(&opts.Depth, "depth", "d", 0, "subdivision depth (default from config)")
	for _, name := range []string{"epoch", "lagna", "moon", "sun"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func runSudarshana(opts *SudarshanaOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()

	req, at, err := opts.request()
	if err != nil {
		return formatter.Fail(err)
	}
	depth := opts.Config.Depth
	if cmd.Flags().Changed("depth") {
		depth = opts.Depth
	}

	eng, err := opts.Engine(cmd)
	if err != nil {
		return formatter.Fail(err)
	}
	if req.HorizonYears == 0 {
		req.HorizonYears = eng.CycleYears(req.System)
	}
	s, err := eng.Sudarshana(ctx, req)
	if err != nil {
		return formatter.Fail(err)
	}
	results, err := s.At(ctx, at, depth)
	if err != nil {
		return formatter.Fail(err)
	}

	out := SudarshanaOutput{System: string(req.System)}
	for _, ref := range engine.References {
		res := results[ref]
		out.Charts = append(out.Charts, SudarshanaChart{
			Reference: string(ref),
			QueryID:   res.QueryID,
			Balance:   balanceOf(s.Context(ref)),
			Periods:   res.Records(),
		})
	}
	return formatter.Success(out)
}

func (o *SudarshanaOptions) request() (engine.SudarshanaRequest, time.Time, error) {
	req := engine.SudarshanaRequest{
		System:       system.ID(strings.ToUpper(o.System)),
		HorizonYears: o.Config.HorizonYears,
	}
	epoch, err := time.Parse(time.RFC3339Nano, o.Epoch)
	if err != nil {
		return req, time.Time{}, NewExitError(ExitCommandError, fmt.Sprintf("invalid epoch %q: want RFC 3339", o.Epoch))
	}
	req.Epoch = epoch

	at := time.Now()
	if o.At != "" {
		if at, err = time.Parse(time.RFC3339Nano, o.At); err != nil {
			return req, time.Time{}, NewExitError(ExitCommandError, fmt.Sprintf("invalid --at %q: want RFC 3339", o.At))
		}
	}

	for _, ref := range []struct {
		name string
		raw  string
		dst  *domain.Value
	}{
		{"lagna", o.Lagna, &req.Lagna},
		{"moon", o.Moon, &req.Moon},
		{"sun", o.Sun, &req.Sun},
	} {
		v, err := domain.ParseLongitude(ref.raw)
		if err != nil {
			return req, time.Time{}, fmt.Errorf("%s: %w", ref.name, err)
		}
		*ref.dst = v
	}
	return req, at, nil
}
