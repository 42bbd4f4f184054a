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

// chartFlags are the flags that open a query context.
type chartFlags struct {
	System    string
	Reference string
	Epoch     string
	Horizon   int64
	Depth     int
}

func (c *chartFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&c.System, "system", "s", string(system.Vimsottari), "period system id")
	f.StringVarP(&c.Reference, "reference", "r", "", `balance reference longitude, "45.3333" or "45:20[:00]"`)
	f.StringVarP(&c.Epoch, "epoch", "e", "", "birth instant (RFC 3339), required for time systems")
	f.Int64Var(&c.Horizon, "horizon", 0, "horizon in years (default from config, else one ruler cycle)")
	f.IntVarP(&c.Depth, "depth", "d", 0, "subdivision depth (default from config)")
}

// request builds the engine request; configured defaults fill flags the
// user did not set. With neither a flag nor a configured horizon, time
// systems get one full ruler cycle.
func (c *chartFlags) request(cmd *cobra.Command, eng *engine.Engine, horizon int64) (engine.Request, error) {
	req := engine.Request{System: system.ID(strings.ToUpper(c.System))}
	if c.Reference != "" {
		ref, err := domain.ParseLongitude(c.Reference)
		if err != nil {
			return engine.Request{}, err
		}
		req.Reference = ref
	}
	if c.Epoch != "" {
		t, err := time.Parse(time.RFC3339Nano, c.Epoch)
		if err != nil {
			return engine.Request{}, NewExitError(ExitCommandError, fmt.Sprintf("invalid epoch %q: want RFC 3339", c.Epoch))
		}
		req.Epoch = t
	}
	req.HorizonYears = horizon
	if cmd.Flags().Changed("horizon") {
		req.HorizonYears = c.Horizon
	} else if req.HorizonYears == 0 {
		req.HorizonYears = eng.CycleYears(req.System)
	}
	return req, nil
}

// depth returns the --depth flag or the configured default.
func (c *chartFlags) depth(cmd *cobra.Command, def int) int {
	if cmd.Flags().Changed("depth") {
		return c.Depth
	}
	return def
}

// requireEpoch rejects time-axis queries without a birth instant.
func requireEpoch(q *engine.QueryContext, c *chartFlags) error {
	if q.Definition().Axis == system.AxisTime && c.Epoch == "" {
		return NewExitError(ExitCommandError, fmt.Sprintf("%s subdivides time: --epoch is required", q.Definition().ID))
	}
	return nil
}

func balanceOf(q *engine.QueryContext) ir.Balance {
	b := q.Balance()
	return ir.Balance{
		Ruler: string(q.Definition().Table.At(b.Index).Ruler),
		Num:   b.Consumed.Num,
		Den:   b.Consumed.Den,
	}
}

// writePeriods renders records one per line, indented by depth.
func writePeriods(w io.Writer, periods []ir.Period) error {
	for _, p := range periods {
		indent := strings.Repeat("  ", int(p.Depth))
		var err error
		if p.From != "" {
			_, err = fmt.Fprintf(w, "%s%-10s %s  %s\n", indent, p.Ruler, p.From, p.To)
		} else {
			_, err = fmt.Fprintf(w, "%s%-10s %s  %s\n", indent, p.Ruler,
				domain.Value(p.Start).FormatDMS(), domain.Value(p.End).FormatDMS())
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func parseLongitudes(args []string) ([]domain.Value, error) {
	out := make([]domain.Value, len(args))
	for i, a := range args {
		v, err := domain.ParseLongitude(a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
