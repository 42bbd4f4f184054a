package system

import (
	"fmt"

	"github.com/roach88/dasha/internal/domain"
)

// Balance is the ruler active at the reference value and how much of its
// full period had already elapsed there.
type Balance struct {
	Index    int             `json:"index"`
	Consumed domain.Fraction `json:"consumed"`
}

// Remaining returns the fraction of the first ruler's period still ahead.
func (b Balance) Remaining() domain.Fraction {
	return domain.NewFraction(b.Consumed.Den-b.Consumed.Num, b.Consumed.Den)
}

// BalanceKind names a balance derivation rule.
type BalanceKind string

const (
	BalanceEqualSpan     BalanceKind = "equal_span"
	BalanceGroupSpan     BalanceKind = "group_span"
	BalanceCycleFraction BalanceKind = "cycle_fraction"
	BalanceFixed         BalanceKind = "fixed"
)

// BalanceRule maps a reference longitude onto a Balance.
// Sealed - only the rule types in this file implement it.
type BalanceRule interface {
	Kind() BalanceKind
	Derive(t *Table, ref domain.Value) (Balance, error)
	validate(t *Table) error
}

// EqualSpanBalance divides the zodiac into equal spans ruled cyclically:
// span k belongs to ruler (k + Offset) mod n. Vimsottari uses the 13°20′
// nakshatra with offset 0 (Ashwini = Ketu); Yogini uses offset 3
// (Ashwini = Bhramari); Chara uses 30° signs.
type EqualSpanBalance struct {
	Span   domain.Value
	Offset int
}

func (EqualSpanBalance) Kind() BalanceKind { return BalanceEqualSpan }

func (r EqualSpanBalance) validate(*Table) error {
	if r.Span <= 0 || domain.FullCircle%r.Span != 0 {
		return fmt.Errorf("equal span %d must divide 360°", r.Span)
	}
	return nil
}

// Derive implements BalanceRule.
func (r EqualSpanBalance) Derive(t *Table, ref domain.Value) (Balance, error) {
	v := ref.Normalize()
	k := int(v / r.Span)
	within := v % r.Span
	return Balance{
		Index:    t.wrap(k + r.Offset),
		Consumed: domain.NewFraction(int64(within), int64(r.Span)),
	}, nil
}

// GroupSpanBalance gives ruler i Groups[i] consecutive spans, counting from
// Start. Ashtottari starts at Ardra (66°40′) with groups of three or four
// nakshatras; the consumed fraction is measured across the whole group.
type GroupSpanBalance struct {
	Start  domain.Value
	Span   domain.Value
	Groups []int
}

func (GroupSpanBalance) Kind() BalanceKind { return BalanceGroupSpan }

func (r GroupSpanBalance) validate(t *Table) error {
	if r.Span <= 0 {
		return fmt.Errorf("group span must be positive")
	}
	if len(r.Groups) != t.Len() {
		return fmt.Errorf("group span has %d groups for %d rulers", len(r.Groups), t.Len())
	}
	slots := 0
	for i, g := range r.Groups {
		if g <= 0 {
			return fmt.Errorf("group %d is empty", i)
		}
		slots += g
	}
	if domain.Value(slots)*r.Span != domain.FullCircle {
		return fmt.Errorf("groups cover %d spans, not the full circle", slots)
	}
	return nil
}

// Derive implements BalanceRule.
func (r GroupSpanBalance) Derive(t *Table, ref domain.Value) (Balance, error) {
	rel := (ref - r.Start).Normalize()
	slot := int(rel / r.Span)
	first := 0
	for i, g := range r.Groups {
		if slot < first+g {
			groupStart := domain.Value(first) * r.Span
			groupLen := domain.Value(g) * r.Span
			return Balance{
				Index:    i,
				Consumed: domain.NewFraction(int64(rel-groupStart), int64(groupLen)),
			}, nil
		}
		first += g
	}
	return Balance{}, domain.NewError(domain.CodeInvalidReference, "longitude %s outside group spans", ref.FormatDMS())
}

// CycleFractionBalance maps the position within Span linearly onto the
// whole cycle; the active ruler is found by cumulative weight. Kalachakra
// uses the 3°20′ navamsa: a Moon halfway through its navamsa sits halfway
// through the 100-year paramayus.
type CycleFractionBalance struct {
	Span domain.Value
}

func (CycleFractionBalance) Kind() BalanceKind { return BalanceCycleFraction }

func (r CycleFractionBalance) validate(*Table) error {
	if r.Span <= 0 {
		return fmt.Errorf("cycle fraction span must be positive")
	}
	return nil
}

// Derive implements BalanceRule.
func (r CycleFractionBalance) Derive(t *Table, ref domain.Value) (Balance, error) {
	within := ref.Normalize() % r.Span
	w, err := domain.MulDivFloor(within, t.Total(), int64(r.Span))
	if err != nil {
		return Balance{}, err
	}
	i := t.Locate(int64(w))

	// consumed = (within·Total/Span - before_i) / weight_i
	num, err := domain.Mul(within, t.Total())
	if err != nil {
		return Balance{}, err
	}
	base, err := domain.Mul(r.Span, t.Before(i))
	if err != nil {
		return Balance{}, err
	}
	den, err := domain.Mul(r.Span, t.At(i).Weight)
	if err != nil {
		return Balance{}, err
	}
	return Balance{
		Index:    i,
		Consumed: domain.NewFraction(int64(num-base), int64(den)),
	}, nil
}

// FixedBalance starts at the first ruler with nothing consumed. Used by
// the static zodiac systems whose reference is always 0°.
type FixedBalance struct{}

func (FixedBalance) Kind() BalanceKind { return BalanceFixed }

func (FixedBalance) validate(*Table) error { return nil }

// Derive implements BalanceRule.
func (FixedBalance) Derive(*Table, domain.Value) (Balance, error) {
	return Balance{Index: 0, Consumed: domain.Fraction{Num: 0, Den: 1}}, nil
}

// BalanceAt builds a balance from an explicit ruler and consumed fraction,
// for callers that already know them (tests, custom front-ends).
func BalanceAt(t *Table, r Ruler, consumed domain.Fraction) (Balance, error) {
	i := t.Index(r)
	if i < 0 {
		return Balance{}, domain.NewError(domain.CodeInvalidReference, "ruler %s not in table", r)
	}
	if !consumed.Valid() {
		return Balance{}, domain.NewError(domain.CodeInvalidReference, "consumed fraction %s outside [0, 1)", consumed)
	}
	return Balance{Index: i, Consumed: consumed}, nil
}
