package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/dasha/internal/domain"
	"github.com/roach88/dasha/internal/system"
)

// Reference names one of the three Sudarshana charts.
type Reference string

const (
	RefLagna Reference = "lagna"
	RefMoon  Reference = "moon"
	RefSun   Reference = "sun"
)

// References lists the Sudarshana references in rendering order.
var References = []Reference{RefLagna, RefMoon, RefSun}

// SudarshanaRequest opens one system three times, driven by the
// ascendant, Moon and Sun longitudes.
type SudarshanaRequest struct {
	// System defaults to Vimsottari.
	System       system.ID
	Epoch        time.Time
	HorizonYears int64

	Lagna domain.Value
	Moon  domain.Value
	Sun   domain.Value
}

// Sudarshana holds the three independent query contexts.
type Sudarshana struct {
	Lagna *QueryContext
	Moon  *QueryContext
	Sun   *QueryContext
}

// Sudarshana opens a context per reference. Fails on the first reference
// that cannot be opened.
func (e *Engine) Sudarshana(ctx context.Context, req SudarshanaRequest) (*Sudarshana, error) {
	id := req.System
	if id == "" {
		id = system.Vimsottari
	}
	open := func(ref domain.Value) (*QueryContext, error) {
		return e.Open(ctx, Request{
			System:       id,
			Reference:    ref,
			Epoch:        req.Epoch,
			HorizonYears: req.HorizonYears,
		})
	}

	var (
		s   Sudarshana
		err error
	)
	if s.Lagna, err = open(req.Lagna); err != nil {
		return nil, fmt.Errorf("lagna: %w", err)
	}
	if s.Moon, err = open(req.Moon); err != nil {
		return nil, fmt.Errorf("moon: %w", err)
	}
	if s.Sun, err = open(req.Sun); err != nil {
		return nil, fmt.Errorf("sun: %w", err)
	}
	return &s, nil
}

// Context returns the context for ref, or nil for an unknown reference.
func (s *Sudarshana) Context(ref Reference) *QueryContext {
	switch ref {
	case RefLagna:
		return s.Lagna
	case RefMoon:
		return s.Moon
	case RefSun:
		return s.Sun
	}
	return nil
}

// At locates t in all three charts, keyed by reference.
func (s *Sudarshana) At(ctx context.Context, t time.Time, depth int) (map[Reference]Result, error) {
	out := make(map[Reference]Result, len(References))
	for _, ref := range References {
		res, err := s.Context(ref).At(ctx, t, depth)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ref, err)
		}
		out[ref] = res
	}
	return out, nil
}
