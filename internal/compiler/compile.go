package compiler

import (
	"errors"
	"fmt"
	"regexp"

	"cuelang.org/go/cue"

	"github.com/roach88/dasha/internal/domain"
	"github.com/roach88/dasha/internal/system"
)

var idPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// CompileSystem parses a CUE value into a validated Definition.
// Uses the CUE SDK's Go API directly.
//
// The value should be the system struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`system: TRIAD: { ... }`)
//	def, err := CompileSystem(v.LookupPath(cue.ParsePath("system.TRIAD")))
//
// Errors are *CompileError. A definition the system model rejects carries
// ErrInvalidDefinition and unwraps to domain.ErrInvalidSystemDefinition.
func CompileSystem(v cue.Value) (*system.Definition, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err, "system")
	}

	var id string
	if sels := v.Path().Selectors(); len(sels) > 0 {
		id = sels[len(sels)-1].String()
	}
	if !idPattern.MatchString(id) {
		return nil, &CompileError{
			Code:    ErrInvalidValue,
			Field:   "system",
			Message: fmt.Sprintf("system id %q must be upper-case letters, digits and underscores", id),
			Pos:     v.Pos(),
		}
	}

	p := &parser{v: v}
	def := &system.Definition{ID: system.ID(id)}

	def.Name = p.optString("name", id)
	def.Axis = system.Axis(p.enum("axis", "", string(system.AxisTime), string(system.AxisZodiac)))
	def.CanonicalTotal = p.integer("total")
	def.ChildStart = system.ChildStart(p.enum("child_start", string(system.OwnRulerFirst),
		string(system.OwnRulerFirst), string(system.FixedSequence)))
	def.TopLevel = system.TopLevel(p.enum("top_level", string(system.WeightedSpans),
		string(system.WeightedSpans), string(system.EqualSpans)))
	if p.err != nil {
		return nil, p.err
	}

	switch def.Axis {
	case system.AxisTime:
		n := p.integer("cycle_years")
		if p.err != nil {
			return nil, p.err
		}
		cycle, err := domain.Years(n)
		if err != nil {
			return nil, p.fail(ErrInvalidValue, "cycle_years", err.Error())
		}
		def.Cycle = cycle
	case system.AxisZodiac:
		def.Cycle = p.arcmin("cycle_arcmin", true)
	}

	entries := p.rulers()
	def.Balance = p.balance()
	if p.err != nil {
		return nil, p.err
	}

	table, err := system.NewTable(entries)
	if err != nil {
		return nil, invalid(v.LookupPath(cue.ParsePath("rulers")), "rulers", err)
	}
	def.Table = table

	if err := def.Validate(); err != nil {
		return nil, invalid(v, "system", err)
	}
	return def, nil
}

func invalid(v cue.Value, field string, err error) *CompileError {
	ce := &CompileError{
		Code:    ErrInvalidDefinition,
		Field:   field,
		Message: err.Error(),
		Pos:     v.Pos(),
		Err:     err,
	}
	var de *domain.Error
	if !errors.As(err, &de) {
		ce.Err = domain.NewError(domain.CodeInvalidSystemDefinition, "%v", err)
	}
	return ce
}

// parser reads fields off one system struct, keeping the first error.
type parser struct {
	v   cue.Value
	err error
}

func (p *parser) fail(code, field, msg string) error {
	if p.err == nil {
		pos := p.v.Pos()
		if f := p.v.LookupPath(cue.ParsePath(field)); f.Exists() {
			pos = f.Pos()
		}
		p.err = &CompileError{Code: code, Field: field, Message: msg, Pos: pos}
	}
	return p.err
}

func (p *parser) lookup(field string, required bool) (cue.Value, bool) {
	f := p.v.LookupPath(cue.ParsePath(field))
	if !f.Exists() {
		if required {
			p.fail(ErrMissingField, field, "is required")
		}
		return f, false
	}
	if err := f.Err(); err != nil && p.err == nil {
		p.err = formatCUEError(err, field)
	}
	return f, p.err == nil
}

func (p *parser) optString(field, def string) string {
	f, ok := p.lookup(field, false)
	if !ok {
		return def
	}
	return p.stringOf(f, field)
}

func (p *parser) stringOf(f cue.Value, field string) string {
	s, err := f.String()
	if err != nil {
		p.fail(ErrInvalidValue, field, "must be a string")
		return ""
	}
	return s
}

// enum reads a string restricted to allowed. An empty def makes the field
// required.
func (p *parser) enum(field, def string, allowed ...string) string {
	f, ok := p.lookup(field, def == "")
	if !ok {
		return def
	}
	s := p.stringOf(f, field)
	for _, a := range allowed {
		if s == a {
			return s
		}
	}
	p.fail(ErrInvalidValue, field, fmt.Sprintf("%q is not one of %q", s, allowed))
	return ""
}

func (p *parser) integer(field string) int64 {
	f, ok := p.lookup(field, true)
	if !ok {
		return 0
	}
	return p.intOf(f, field)
}

func (p *parser) optInteger(field string) int64 {
	f, ok := p.lookup(field, false)
	if !ok {
		return 0
	}
	return p.intOf(f, field)
}

// arcmin reads a whole number of arcminutes as a longitude. Values whose
// microarcsecond form overflows are rejected rather than wrapped.
func (p *parser) arcmin(field string, required bool) domain.Value {
	f, ok := p.lookup(field, required)
	if !ok {
		return 0
	}
	n := p.intOf(f, field)
	if p.err != nil {
		return 0
	}
	v, err := domain.Mul(domain.Arcminute, n)
	if err != nil {
		p.fail(ErrInvalidValue, field, err.Error())
		return 0
	}
	return v
}

func (p *parser) intOf(f cue.Value, field string) int64 {
	if f.Kind() == cue.FloatKind {
		p.fail(ErrFloatForbidden, field, "floats are not allowed; use integer units")
		return 0
	}
	n, err := f.Int64()
	if err != nil {
		p.fail(ErrInvalidValue, field, "must be an integer")
		return 0
	}
	return n
}

func (p *parser) rulers() []system.Entry {
	f, ok := p.lookup("rulers", true)
	if !ok {
		return nil
	}
	iter, err := f.List()
	if err != nil {
		p.fail(ErrInvalidValue, "rulers", "must be a list")
		return nil
	}
	var entries []system.Entry
	for i := 0; iter.Next(); i++ {
		sub := &parser{v: iter.Value()}
		name := sub.optString("ruler", "")
		if name == "" && sub.err == nil {
			sub.fail(ErrMissingField, "ruler", "is required")
		}
		weight := sub.integer("weight")
		if sub.err != nil {
			if ce, ok := sub.err.(*CompileError); ok {
				ce.Field = fmt.Sprintf("rulers[%d].%s", i, ce.Field)
			}
			if p.err == nil {
				p.err = sub.err
			}
			return nil
		}
		entries = append(entries, system.Entry{Ruler: system.Ruler(name), Weight: weight})
	}
	return entries
}

func (p *parser) balance() system.BalanceRule {
	f, ok := p.lookup("balance", true)
	if !ok {
		return nil
	}
	sub := &parser{v: f}
	kind := sub.enum("kind", "",
		string(system.BalanceEqualSpan),
		string(system.BalanceGroupSpan),
		string(system.BalanceCycleFraction),
		string(system.BalanceFixed),
	)

	var rule system.BalanceRule
	switch system.BalanceKind(kind) {
	case system.BalanceEqualSpan:
		rule = system.EqualSpanBalance{
			Span:   sub.arcmin("span_arcmin", true),
			Offset: int(sub.optInteger("offset")),
		}
	case system.BalanceGroupSpan:
		rule = system.GroupSpanBalance{
			Start:  sub.arcmin("start_arcmin", false),
			Span:   sub.arcmin("span_arcmin", true),
			Groups: sub.groups(),
		}
	case system.BalanceCycleFraction:
		rule = system.CycleFractionBalance{
			Span: sub.arcmin("span_arcmin", true),
		}
	case system.BalanceFixed:
		rule = system.FixedBalance{}
	}
	if sub.err != nil {
		if ce, ok := sub.err.(*CompileError); ok {
			ce.Field = "balance." + ce.Field
		}
		if p.err == nil {
			p.err = sub.err
		}
		return nil
	}
	return rule
}

func (p *parser) groups() []int {
	f, ok := p.lookup("groups", true)
	if !ok {
		return nil
	}
	iter, err := f.List()
	if err != nil {
		p.fail(ErrInvalidValue, "groups", "must be a list")
		return nil
	}
	var out []int
	for iter.Next() {
		n := p.intOf(iter.Value(), "groups")
		if p.err != nil {
			return nil
		}
		out = append(out, int(n))
	}
	return out
}
