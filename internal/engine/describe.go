package engine

import (
	"github.com/roach88/dasha/internal/ir"
	"github.com/roach88/dasha/internal/system"
)

// Describe renders a definition as a canonical record.
func Describe(def *system.Definition) ir.SystemRecord {
	entries := def.Table.Entries()
	rulers := make([]ir.RulerWeight, len(entries))
	for i, e := range entries {
		rulers[i] = ir.RulerWeight{Ruler: string(e.Ruler), Weight: e.Weight}
	}
	return ir.SystemRecord{
		ID:         string(def.ID),
		Name:       def.Name,
		Axis:       string(def.Axis),
		Rulers:     rulers,
		Total:      def.Table.Total(),
		Cycle:      int64(def.Cycle),
		ChildStart: string(def.ChildStart),
		TopLevel:   string(def.TopLevel),
		Balance:    describeBalance(def.Balance),
	}
}

func describeBalance(rule system.BalanceRule) ir.BalanceRule {
	rec := ir.BalanceRule{Kind: string(rule.Kind())}
	switch r := rule.(type) {
	case system.EqualSpanBalance:
		rec.Span = int64(r.Span)
		rec.Offset = int64(r.Offset)
	case system.GroupSpanBalance:
		rec.Start = int64(r.Start)
		rec.Span = int64(r.Span)
		rec.Groups = make([]int64, len(r.Groups))
		for i, g := range r.Groups {
			rec.Groups[i] = int64(g)
		}
	case system.CycleFractionBalance:
		rec.Span = int64(r.Span)
	}
	return rec
}

// DescribeAll renders every definition in reg in registration order.
func DescribeAll(reg *system.Registry) []ir.SystemRecord {
	defs := reg.Definitions()
	out := make([]ir.SystemRecord, len(defs))
	for i, def := range defs {
		out[i] = Describe(def)
	}
	return out
}
