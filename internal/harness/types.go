package harness

import (
	"github.com/roach88/dasha/internal/ir"
)

// TraceEvent records one located point.
type TraceEvent struct {
	Step    string      `json:"step"`
	Point   int64       `json:"point"`
	Depth   int         `json:"depth"`
	Periods []ir.Period `json:"periods,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Value converts the event to its canonical form.
func (e TraceEvent) Value() ir.Object {
	obj := ir.Object{
		"step":  ir.String(e.Step),
		"point": ir.Int(e.Point),
		"depth": ir.Int(int64(e.Depth)),
	}
	if e.Error != "" {
		obj["error"] = ir.String(e.Error)
		return obj
	}
	periods := make(ir.Array, len(e.Periods))
	for i, p := range e.Periods {
		periods[i] = p.Value()
	}
	obj["periods"] = periods
	return obj
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expectation matched.
	Pass bool `json:"pass"`

	// Balance is the derived starting balance; nil when Open failed.
	Balance *ir.Balance `json:"balance,omitempty"`

	// Trace holds one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Timeline is set when the scenario asked for one.
	Timeline *ir.Timeline `json:"timeline,omitempty"`

	// OpenError is the error code Open failed with, if any.
	OpenError string `json:"open_error,omitempty"`

	// Errors contains expectation failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
