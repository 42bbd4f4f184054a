package ir

// TimelineKey identifies a computed timeline: the same key always yields
// the same periods.
type TimelineKey struct {
	System       string `json:"system" yaml:"system" toml:"system"`
	Reference    int64  `json:"reference" yaml:"reference" toml:"reference"` // µas
	Epoch        string `json:"epoch" yaml:"epoch" toml:"epoch"`             // RFC 3339, UTC
	HorizonYears int64  `json:"horizon_years" yaml:"horizon_years" toml:"horizon_years"`
	Depth        int64  `json:"depth" yaml:"depth" toml:"depth"`
}

// Value converts the key to its canonical form.
func (k TimelineKey) Value() Object {
	return Object{
		"system":        String(k.System),
		"reference":     Int(k.Reference),
		"epoch":         String(k.Epoch),
		"horizon_years": Int(k.HorizonYears),
		"depth":         Int(k.Depth),
	}
}

// Balance is the active ruler at the reference and the consumed fraction
// of its period.
type Balance struct {
	Ruler string `json:"ruler" yaml:"ruler" toml:"ruler"`
	Num   int64  `json:"num" yaml:"num" toml:"num"`
	Den   int64  `json:"den" yaml:"den" toml:"den"`
}

// Period is one interval of a timeline. Start and End are axis base units;
// From and To are set for time-axis systems only.
type Period struct {
	Ruler string `json:"ruler" yaml:"ruler" toml:"ruler"`
	Depth int64  `json:"depth" yaml:"depth" toml:"depth"`
	Start int64  `json:"start" yaml:"start" toml:"start"`
	End   int64  `json:"end" yaml:"end" toml:"end"`
	From  string `json:"from,omitempty" yaml:"from,omitempty" toml:"from,omitempty"`
	To    string `json:"to,omitempty" yaml:"to,omitempty" toml:"to,omitempty"`
}

// Value converts the period to its canonical form. Empty From/To are
// omitted.
func (p Period) Value() Object {
	obj := Object{
		"ruler": String(p.Ruler),
		"depth": Int(p.Depth),
		"start": Int(p.Start),
		"end":   Int(p.End),
	}
	if p.From != "" {
		obj["from"] = String(p.From)
	}
	if p.To != "" {
		obj["to"] = String(p.To)
	}
	return obj
}

// Timeline is a flattened, depth-first list of periods for one key.
type Timeline struct {
	Key     TimelineKey `json:"key" yaml:"key" toml:"key"`
	Balance Balance     `json:"balance" yaml:"balance" toml:"balance"`
	Periods []Period    `json:"periods" yaml:"periods" toml:"periods"`
}

// Value converts the timeline to its canonical form.
func (t Timeline) Value() Object {
	periods := make(Array, len(t.Periods))
	for i, p := range t.Periods {
		periods[i] = p.Value()
	}
	return Object{
		"key": t.Key.Value(),
		"balance": Object{
			"ruler": String(t.Balance.Ruler),
			"num":   Int(t.Balance.Num),
			"den":   Int(t.Balance.Den),
		},
		"periods": periods,
	}
}

// RulerWeight is one entry of a ruler table.
type RulerWeight struct {
	Ruler  string `json:"ruler" yaml:"ruler" toml:"ruler"`
	Weight int64  `json:"weight" yaml:"weight" toml:"weight"`
}

// SystemRecord describes a registered period system.
type SystemRecord struct {
	ID         string        `json:"id" yaml:"id" toml:"id"`
	Name       string        `json:"name" yaml:"name" toml:"name"`
	Axis       string        `json:"axis" yaml:"axis" toml:"axis"`
	Rulers     []RulerWeight `json:"rulers" yaml:"rulers" toml:"rulers"`
	Total      int64         `json:"total" yaml:"total" toml:"total"`
	Cycle      int64         `json:"cycle" yaml:"cycle" toml:"cycle"`
	ChildStart string        `json:"child_start" yaml:"child_start" toml:"child_start"`
	TopLevel   string        `json:"top_level" yaml:"top_level" toml:"top_level"`
	Balance    BalanceRule   `json:"balance" yaml:"balance" toml:"balance"`
}

// BalanceRule is a balance derivation rule with its parameters. Spans and
// starts are in microarcseconds; fields a rule kind does not use stay zero.
type BalanceRule struct {
	Kind   string  `json:"kind" yaml:"kind" toml:"kind"`
	Span   int64   `json:"span,omitempty" yaml:"span,omitempty" toml:"span,omitempty"`
	Offset int64   `json:"offset,omitempty" yaml:"offset,omitempty" toml:"offset,omitempty"`
	Start  int64   `json:"start,omitempty" yaml:"start,omitempty" toml:"start,omitempty"`
	Groups []int64 `json:"groups,omitempty" yaml:"groups,omitempty" toml:"groups,omitempty"`
}

// Value converts the rule to its canonical form. Every parameter is
// present so that any change to one changes the system hash.
func (b BalanceRule) Value() Object {
	groups := make(Array, len(b.Groups))
	for i, g := range b.Groups {
		groups[i] = Int(g)
	}
	return Object{
		"kind":   String(b.Kind),
		"span":   Int(b.Span),
		"offset": Int(b.Offset),
		"start":  Int(b.Start),
		"groups": groups,
	}
}

// Value converts the record to its canonical form.
func (s SystemRecord) Value() Object {
	rulers := make(Array, len(s.Rulers))
	for i, r := range s.Rulers {
		rulers[i] = Object{"ruler": String(r.Ruler), "weight": Int(r.Weight)}
	}
	return Object{
		"id":          String(s.ID),
		"name":        String(s.Name),
		"axis":        String(s.Axis),
		"rulers":      rulers,
		"total":       Int(s.Total),
		"cycle":       Int(s.Cycle),
		"child_start": String(s.ChildStart),
		"top_level":   String(s.TopLevel),
		"balance":     s.Balance.Value(),
	}
}
