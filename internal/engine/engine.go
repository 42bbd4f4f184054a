package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/roach88/dasha/internal/domain"
	"github.com/roach88/dasha/internal/period"
	"github.com/roach88/dasha/internal/system"
)

// Engine resolves requests against a registry and opens query contexts.
//
// Thread-safety model:
//   - Engine: safe for concurrent use; it holds only read-only state
//   - QueryContext: owned by one caller, not safe for concurrent use
type Engine struct {
	registry  *system.Registry
	logger    *slog.Logger
	metrics   *Metrics
	ids       IDGenerator
	maxCycles int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithMaxCycles sets the ruler-cycle sanity bound for every tree.
//
// Default: 1000 cycles (period.DefaultMaxCycles)
func WithMaxCycles(n int) Option {
	return func(e *Engine) {
		e.maxCycles = n
	}
}

// WithIDGenerator replaces the UUIDv7 query id source.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) {
		if g != nil {
			e.ids = g
		}
	}
}

// New creates an Engine over reg. A nil reg uses the frozen built-in
// registry.
func New(reg *system.Registry, opts ...Option) *Engine {
	if reg == nil {
		reg = system.Global()
	}
	e := &Engine{
		registry:  reg,
		logger:    slog.Default(),
		ids:       UUIDv7Generator{},
		maxCycles: period.DefaultMaxCycles,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the registry the engine resolves systems in.
func (e *Engine) Registry() *system.Registry { return e.registry }

// Request describes one chart's query against one system.
type Request struct {
	// System is the period system id.
	System system.ID

	// Reference drives the balance: the sidereal longitude of the birth
	// Moon for the Vimsottari family. Ignored by fixed-balance systems.
	Reference domain.Value

	// Epoch is the origin of the time axis (the birth instant).
	Epoch time.Time

	// HorizonYears is how far the top level is generated up front. Must be
	// positive for time systems; see CycleYears for a one-cycle default.
	// Zodiac systems ignore it and always cover 360°.
	HorizonYears int64
}

// Open resolves the system, derives the balance and builds the tree.
//
// Fails with UnknownSystem, InvalidHorizon, InvalidReference or
// ArithmeticOverflow. A 10 000-year horizon does not fit nanosecond base
// units and is rejected with ArithmeticOverflow.
func (e *Engine) Open(ctx context.Context, req Request) (*QueryContext, error) {
	q, err := e.open(ctx, req)
	if err != nil {
		e.logger.Warn("query context rejected",
			"system", req.System,
			"code", domain.CodeOf(err),
			"error", err,
		)
		if e.metrics != nil {
			e.metrics.observe(req.System, "open", period.Stats{}, period.Stats{}, err)
		}
		return nil, err
	}
	return q, nil
}

func (e *Engine) open(ctx context.Context, req Request) (*QueryContext, error) {
	def, err := e.registry.Resolve(req.System)
	if err != nil {
		return nil, err
	}
	balance, err := def.DeriveBalance(req.Reference)
	if err != nil {
		return nil, err
	}
	horizon, years, err := horizonFor(def, req.HorizonYears)
	if err != nil {
		return nil, err
	}

	id := e.ids.Generate()
	logger := e.logger.With("query", id, "system", def.ID)

	tree, err := period.NewTree(ctx, def, balance, horizon,
		period.WithMaxCycles(e.maxCycles),
		period.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	if e.metrics != nil {
		e.metrics.TreesBuilt.WithLabelValues(string(def.ID)).Inc()
		e.metrics.observe(def.ID, "open", period.Stats{}, tree.Stats(), nil)
	}
	logger.Info("query context opened",
		"ruler", def.Table.At(balance.Index).Ruler,
		"consumed", balance.Consumed.String(),
		"horizon_years", years,
		"top_level", tree.Stats().TopLevel,
	)

	req.HorizonYears = years
	return &QueryContext{
		id:      id,
		req:     req,
		horizon: horizon,
		def:     def,
		tree:    tree,
		engine:  e,
		logger:  logger,
	}, nil
}

// horizonFor converts the requested horizon to base units. Returns the
// effective horizon in years (0 for zodiac systems).
func horizonFor(def *system.Definition, years int64) (domain.Value, int64, error) {
	if def.Axis == system.AxisZodiac {
		return domain.FullCircle, 0, nil
	}
	if years <= 0 {
		return 0, 0, domain.NewError(domain.CodeInvalidHorizon,
			"horizon must be positive, got %d years", years).WithSystem(string(def.ID))
	}
	h, err := domain.Years(years)
	if err != nil {
		return 0, 0, tagged(err, def.ID)
	}
	return h, years, nil
}

// CycleYears returns the length of one full ruler cycle of a time system in
// whole years, rounded up. Returns 0 for zodiac systems and unknown ids.
func (e *Engine) CycleYears(id system.ID) int64 {
	def, err := e.registry.Resolve(id)
	if err != nil || def.Axis != system.AxisTime {
		return 0
	}
	years := int64(def.Cycle / domain.Year)
	if def.Cycle%domain.Year != 0 {
		years++
	}
	return years
}

// Current opens a context and locates t in one call.
func (e *Engine) Current(ctx context.Context, req Request, t time.Time, depth int) (Result, error) {
	q, err := e.Open(ctx, req)
	if err != nil {
		return Result{}, err
	}
	return q.At(ctx, t, depth)
}

func tagged(err error, id system.ID) error {
	if de, ok := err.(*domain.Error); ok {
		return de.WithSystem(string(id))
	}
	return err
}
