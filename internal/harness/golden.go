package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/dasha/internal/ir"
)

// Snapshot renders a result as canonical JSON for golden comparison.
func Snapshot(scenario *Scenario, result *Result) ([]byte, error) {
	trace := make(ir.Array, len(result.Trace))
	for i, ev := range result.Trace {
		trace[i] = ev.Value()
	}
	obj := ir.Object{
		"scenario": ir.String(scenario.Name),
		"system":   ir.String(scenario.System),
		"trace":    trace,
	}
	if result.Balance != nil {
		obj["balance"] = ir.Object{
			"ruler": ir.String(result.Balance.Ruler),
			"num":   ir.Int(result.Balance.Num),
			"den":   ir.Int(result.Balance.Den),
		}
	}
	if result.OpenError != "" {
		obj["open_error"] = ir.String(result.OpenError)
	}
	if result.Timeline != nil {
		obj["timeline"] = result.Timeline.Value()
	}
	return ir.MarshalCanonical(obj)
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also check Pass.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenario, result)
	if err != nil {
		return err
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return nil
}
