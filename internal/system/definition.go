package system

import (
	"errors"

	"github.com/roach88/dasha/internal/domain"
)

// ID identifies a period system.
type ID string

// Built-in system ids.
const (
	Vimsottari ID = "VIMSOTTARI"
	Yogini     ID = "YOGINI"
	Ashtottari ID = "ASHTOTTARI"
	Kalachakra ID = "KALACHAKRA"
	Chara      ID = "CHARA"
	KPSublord  ID = "KP_SUBLORD"
	Kakshya    ID = "KAKSHYA"
)

// Axis is the domain a system subdivides.
type Axis string

const (
	// AxisTime subdivides elapsed time since an epoch (nanoseconds).
	AxisTime Axis = "time"
	// AxisZodiac subdivides ecliptic longitude (micro-arcseconds).
	AxisZodiac Axis = "zodiac"
)

// Unit returns the base unit of the axis.
func (a Axis) Unit() domain.Unit {
	if a == AxisZodiac {
		return domain.MicroArcsecond
	}
	return domain.Nanosecond
}

// ChildStart selects where a node's children begin in the ruler order.
type ChildStart string

const (
	// OwnRulerFirst starts the children at the parent's own ruler
	// (classical antardasha rule).
	OwnRulerFirst ChildStart = "own_ruler_first"
	// FixedSequence always starts the children at the table's first ruler.
	FixedSequence ChildStart = "fixed_sequence"
)

// TopLevel selects how top-level interval lengths are derived.
type TopLevel string

const (
	// WeightedSpans makes each top-level interval Cycle·weight/Total long.
	WeightedSpans TopLevel = "weighted"
	// EqualSpans makes each top-level interval Cycle/n long; only the sub
	// levels are weighted. KP stars are equal 13°20′ arcs.
	EqualSpans TopLevel = "equal"
)

// Definition is a period system modeled as data plus a small closed set
// of strategies. Definitions are immutable once registered and shared
// read-only by every query.
type Definition struct {
	ID   ID
	Name string
	Axis Axis

	Table *Table

	// CanonicalTotal is the family constant Table.Total must equal
	// (120 for Vimsottari, 36 for Yogini, 108 for Ashtottari, ...).
	CanonicalTotal int64

	// Cycle is one full pass through the table in axis base units.
	Cycle domain.Value

	ChildStart ChildStart
	TopLevel   TopLevel
	Balance    BalanceRule
}

// Validate checks the definition. All failures are InvalidSystemDefinition.
func (d *Definition) Validate() error {
	fail := func(format string, args ...any) error {
		return domain.NewError(domain.CodeInvalidSystemDefinition, format, args...).WithSystem(string(d.ID))
	}

	if d.ID == "" {
		return fail("system id is required")
	}
	if d.Table == nil {
		return fail("ruler table is required")
	}
	if d.Table.Total() != d.CanonicalTotal {
		return fail("table total %d does not match canonical constant %d", d.Table.Total(), d.CanonicalTotal)
	}
	if d.Cycle <= 0 {
		return fail("cycle length must be positive")
	}
	switch d.Axis {
	case AxisTime, AxisZodiac:
	default:
		return fail("unknown axis %q", d.Axis)
	}
	switch d.ChildStart {
	case OwnRulerFirst, FixedSequence:
	default:
		return fail("unknown child start rule %q", d.ChildStart)
	}
	switch d.TopLevel {
	case WeightedSpans, EqualSpans:
	default:
		return fail("unknown top level rule %q", d.TopLevel)
	}
	if d.Balance == nil {
		return fail("balance rule is required")
	}
	if err := d.Balance.validate(d.Table); err != nil {
		return fail("balance rule %s: %v", d.Balance.Kind(), err)
	}
	return nil
}

// DeriveBalance maps a reference value onto the active ruler and its
// consumed fraction.
func (d *Definition) DeriveBalance(ref domain.Value) (Balance, error) {
	b, err := d.Balance.Derive(d.Table, ref)
	var de *domain.Error
	if errors.As(err, &de) {
		return Balance{}, de.WithSystem(string(d.ID))
	}
	return b, err
}

// Span returns the nominal length of the ruler at table position i when
// it runs a full top-level period.
func (d *Definition) Span(i int) (domain.Value, error) {
	if d.TopLevel == EqualSpans {
		return domain.MulDivRound(d.Cycle, 1, int64(d.Table.Len()))
	}
	return domain.MulDivRound(d.Cycle, d.Table.At(i).Weight, d.Table.Total())
}
