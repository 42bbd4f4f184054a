package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/dasha/internal/compiler"
	"github.com/roach88/dasha/internal/domain"
	"github.com/roach88/dasha/internal/engine"
	"github.com/roach88/dasha/internal/ir"
	"github.com/roach88/dasha/internal/system"
)

// Run executes a scenario and returns the result.
//
// Each scenario gets a fresh registry (built-ins plus its custom systems)
// and an engine with a fixed query id and discarded logs.
//
// Execution flow:
//  1. Register custom systems
//  2. Open the query context over the scenario horizon, one ruler cycle
//     if unset (or check the expected open error)
//  3. Check the balance
//  4. Locate every step and check its chain or error
//  5. Flatten the timeline if requested
//
// The returned error reports infrastructure failures only; expectation
// failures are recorded in the result.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	reg, err := system.NewBuiltinRegistry()
	if err != nil {
		return nil, err
	}
	if len(scenario.Systems) > 0 {
		loaded, errs := compiler.LoadFiles(scenario.Systems, compiler.LoadModeFailFast)
		if len(errs) > 0 {
			return nil, fmt.Errorf("load systems: %w", errs[0])
		}
		if err := compiler.Register(reg, loaded.Definitions); err != nil {
			return nil, fmt.Errorf("register systems: %w", err)
		}
	}
	reg.Freeze()

	req, err := request(scenario)
	if err != nil {
		return nil, err
	}

	eng := engine.New(reg,
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		engine.WithIDGenerator(engine.NewFixedGenerator(scenario.Name)),
	)
	if req.HorizonYears == 0 {
		req.HorizonYears = eng.CycleYears(req.System)
	}

	result := NewResult()
	q, err := eng.Open(ctx, req)
	if err != nil {
		code := codeOf(err)
		result.OpenError = code
		if code != scenario.ExpectError {
			result.AddError((&AssertionError{
				Type:     "open",
				Expected: orNone(scenario.ExpectError),
				Actual:   fmt.Sprintf("%s (%v)", code, err),
			}).Error())
		}
		return result, nil
	}
	if scenario.ExpectError != "" {
		result.AddError((&AssertionError{
			Type:     "open",
			Expected: scenario.ExpectError,
			Actual:   orNone(""),
		}).Error())
		return result, nil
	}

	b := q.Balance()
	result.Balance = &ir.Balance{
		Ruler: string(q.Definition().Table.At(b.Index).Ruler),
		Num:   b.Consumed.Num,
		Den:   b.Consumed.Den,
	}
	if scenario.Balance != nil {
		if err := assertBalance(*result.Balance, *scenario.Balance); err != nil {
			result.AddError(err.Error())
		}
	}

	for _, st := range scenario.Steps {
		ev, err := locate(ctx, q, st)
		if err != nil {
			return nil, err
		}
		result.Trace = append(result.Trace, ev)
		if err := assertStep(ev, st); err != nil {
			result.AddError(err.Error())
		}
	}

	if scenario.Timeline != nil {
		tl, err := q.Timeline(ctx, scenario.Timeline.Depth)
		if err != nil {
			result.AddError(fmt.Sprintf("timeline: %v", err))
		} else {
			result.Timeline = &tl
		}
	}
	return result, nil
}

func request(s *Scenario) (engine.Request, error) {
	req := engine.Request{
		System:       system.ID(s.System),
		HorizonYears: s.HorizonYears,
	}
	if s.Reference != "" {
		ref, err := domain.ParseLongitude(s.Reference)
		if err != nil {
			return engine.Request{}, fmt.Errorf("reference: %w", err)
		}
		req.Reference = ref
	}
	epoch := s.Epoch
	if epoch == "" {
		epoch = DefaultEpoch
	}
	t, err := time.Parse(time.RFC3339Nano, epoch)
	if err != nil {
		return engine.Request{}, fmt.Errorf("epoch: %w", err)
	}
	req.Epoch = t
	return req, nil
}

// locate runs one step. Engine errors become part of the event; only
// malformed steps fail.
func locate(ctx context.Context, q *engine.QueryContext, st Step) (TraceEvent, error) {
	ev := TraceEvent{Step: st.Name, Depth: st.Depth}

	var (
		res engine.Result
		err error
	)
	if st.Offset != "" {
		f, perr := parseFraction(st.Offset)
		if perr != nil {
			return ev, fmt.Errorf("step %s: %w", st.Name, perr)
		}
		p, perr := offsetOf(f)
		if perr != nil {
			return ev, fmt.Errorf("step %s: %w", st.Name, perr)
		}
		ev.Point = int64(p)
		res, err = q.At(ctx, q.Request().Epoch.Add(time.Duration(p)), st.Depth)
	} else {
		lon, perr := domain.ParseLongitude(st.Longitude)
		if perr != nil {
			return ev, fmt.Errorf("step %s: %w", st.Name, perr)
		}
		ev.Point = int64(lon)
		res, err = q.AtLongitude(ctx, lon, st.Depth)
	}
	if err != nil {
		ev.Error = codeOf(err)
		return ev, nil
	}
	ev.Periods = res.Records()
	return ev, nil
}

// offsetOf converts a signed fraction of Julian years to nanoseconds.
func offsetOf(f domain.Fraction) (domain.Value, error) {
	if f.Num < 0 {
		p, err := domain.MulDivRound(domain.Year, -f.Num, f.Den)
		return -p, err
	}
	return domain.MulDivRound(domain.Year, f.Num, f.Den)
}

func codeOf(err error) string {
	if code := domain.CodeOf(err); code != "" {
		return string(code)
	}
	return "ERROR"
}
