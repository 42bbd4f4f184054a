package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/roach88/dasha/internal/domain"
	"github.com/roach88/dasha/internal/ir"
	"github.com/roach88/dasha/internal/period"
	"github.com/roach88/dasha/internal/system"
)

// QueryContext owns the period tree of one chart, one system and one
// horizon. It is not safe for concurrent use; concurrent callers each
// open their own.
type QueryContext struct {
	id      string
	req     Request
	horizon domain.Value
	def     *system.Definition
	tree    *period.Tree
	engine  *Engine
	logger  *slog.Logger
}

// ID returns the context's correlation id.
func (q *QueryContext) ID() string { return q.id }

// Request returns the request with the effective horizon filled in.
func (q *QueryContext) Request() Request { return q.req }

// Definition returns the resolved system.
func (q *QueryContext) Definition() *system.Definition { return q.def }

// Balance returns the balance derived from the reference.
func (q *QueryContext) Balance() system.Balance { return q.tree.Balance() }

// TopLevel returns the generated top-level periods.
func (q *QueryContext) TopLevel() []Period {
	return q.periods(q.tree.TopLevel())
}

// At locates an instant on a time-axis system.
func (q *QueryContext) At(ctx context.Context, t time.Time, depth int) (Result, error) {
	if q.def.Axis != system.AxisTime {
		return Result{}, domain.NewError(domain.CodeInvalidReference,
			"%s subdivides the zodiac; locate a longitude instead", q.def.ID).WithSystem(string(q.def.ID))
	}
	p, err := domain.SinceEpoch(q.req.Epoch, t)
	if err != nil {
		return Result{}, tagged(err, q.def.ID)
	}
	return q.AtValue(ctx, p, depth)
}

// AtLongitude locates a longitude on a zodiac-axis system. The longitude
// is folded into [0°, 360°).
func (q *QueryContext) AtLongitude(ctx context.Context, lon domain.Value, depth int) (Result, error) {
	if q.def.Axis != system.AxisZodiac {
		return Result{}, domain.NewError(domain.CodeInvalidReference,
			"%s subdivides time; locate an instant instead", q.def.ID).WithSystem(string(q.def.ID))
	}
	return q.AtValue(ctx, lon.Normalize(), depth)
}

// AtValue locates a raw axis value.
func (q *QueryContext) AtValue(ctx context.Context, p domain.Value, depth int) (Result, error) {
	start := time.Now()
	before := q.tree.Stats()
	stack, err := q.tree.Locate(ctx, p, depth)
	q.observe("locate", start, before, err)
	if err != nil {
		q.logger.Warn("locate failed", "point", p, "depth", depth, "error", err)
		return Result{}, err
	}

	q.logger.Debug("period located",
		"point", p,
		"depth", depth,
		"rulers", stack.Rulers(),
	)
	return Result{
		QueryID: q.id,
		System:  q.def.ID,
		Stack:   stack,
		Periods: q.periods(stack.Intervals()),
	}, nil
}

// Siblings returns the full sibling list at depth around an instant or
// longitude (raw axis value), for timeline rendering.
func (q *QueryContext) Siblings(ctx context.Context, p domain.Value, depth int) ([]Period, error) {
	start := time.Now()
	before := q.tree.Stats()
	ivs, err := q.tree.Siblings(ctx, p, depth)
	q.observe("siblings", start, before, err)
	if err != nil {
		return nil, err
	}
	return q.periods(ivs), nil
}

// Timeline flattens every period over the context's horizon down to depth,
// parents before children.
func (q *QueryContext) Timeline(ctx context.Context, depth int) (ir.Timeline, error) {
	start := time.Now()
	before := q.tree.Stats()

	var records []ir.Period
	err := q.tree.Walk(ctx, 0, q.horizon, depth, func(iv period.Interval) error {
		records = append(records, q.period(iv).Record())
		return nil
	})
	q.observe("timeline", start, before, err)
	if err != nil {
		return ir.Timeline{}, err
	}

	b := q.tree.Balance()
	q.logger.Debug("timeline built", "depth", depth, "periods", len(records))
	return ir.Timeline{
		Key: q.Key(depth),
		Balance: ir.Balance{
			Ruler: string(q.def.Table.At(b.Index).Ruler),
			Num:   b.Consumed.Num,
			Den:   b.Consumed.Den,
		},
		Periods: records,
	}, nil
}

// Key returns the cache key of this context's timeline at depth.
func (q *QueryContext) Key(depth int) ir.TimelineKey {
	key := ir.TimelineKey{
		System:       string(q.def.ID),
		Reference:    int64(q.req.Reference),
		HorizonYears: q.req.HorizonYears,
		Depth:        int64(depth),
	}
	if q.def.Axis == system.AxisTime {
		key.Epoch = q.req.Epoch.UTC().Format(time.RFC3339Nano)
	}
	return key
}

func (q *QueryContext) observe(op string, start time.Time, before period.Stats, err error) {
	m := q.engine.metrics
	if m == nil {
		return
	}
	m.QueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	m.observe(q.def.ID, op, before, q.tree.Stats(), err)
}

// Period is an interval with wall-clock bounds. From and To are zero for
// zodiac-axis systems.
type Period struct {
	period.Interval
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	timed bool
}

// Record converts the period to its canonical record. Wall-clock bounds
// are rendered in UTC for time-axis systems only.
func (p Period) Record() ir.Period {
	rec := ir.Period{
		Ruler: string(p.Ruler),
		Depth: int64(p.Depth),
		Start: int64(p.Start),
		End:   int64(p.End),
	}
	if p.timed {
		rec.From = p.From.UTC().Format(time.RFC3339Nano)
		rec.To = p.To.UTC().Format(time.RFC3339Nano)
	}
	return rec
}

func (q *QueryContext) periods(ivs []period.Interval) []Period {
	out := make([]Period, len(ivs))
	for i, iv := range ivs {
		out[i] = q.period(iv)
	}
	return out
}

func (q *QueryContext) period(iv period.Interval) Period {
	p := Period{Interval: iv}
	if q.def.Axis == system.AxisTime {
		p.From = iv.Start.Time(q.req.Epoch)
		p.To = iv.End.Time(q.req.Epoch)
		p.timed = true
	}
	return p
}

// Result is the located ancestor stack plus its wall-clock rendering.
type Result struct {
	QueryID string       `json:"query_id"`
	System  system.ID    `json:"system"`
	Stack   period.Stack `json:"-"`
	Periods []Period     `json:"periods"`
}

// Rulers returns the ruler chain, top level first.
func (r Result) Rulers() []system.Ruler { return r.Stack.Rulers() }

// Records returns the chain as canonical records.
func (r Result) Records() []ir.Period {
	out := make([]ir.Period, len(r.Periods))
	for i, p := range r.Periods {
		out[i] = p.Record()
	}
	return out
}
