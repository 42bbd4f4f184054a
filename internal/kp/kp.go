// Package kp provides the static Krishnamurti sub-lord table.
//
// The 360° zodiac is cut into 27 equal stars, each star into nine subs in
// Vimsottari proportion starting from the star's own lord, and each sub into
// nine sub-subs the same way. Splitting the subs at the twelve sign cusps
// yields the classical 249 numbered segments.
//
// The table is birth independent. It is built once on first use, fully
// materialized, and shared read-only by every caller.
package kp

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/roach88/dasha/internal/domain"
	"github.com/roach88/dasha/internal/period"
	"github.com/roach88/dasha/internal/system"
)

// Depth of the shared tree: star (0), sub (1), sub-sub (2).
const Depth = 2

// Nakshatras lists the 27 stars from 0° Aries.
var Nakshatras = [27]string{
	"Ashwini", "Bharani", "Krittika", "Rohini", "Mrigashira", "Ardra",
	"Punarvasu", "Pushya", "Ashlesha", "Magha", "Purva Phalguni", "Uttara Phalguni",
	"Hasta", "Chitra", "Swati", "Vishakha", "Anuradha", "Jyeshtha",
	"Mula", "Purva Ashadha", "Uttara Ashadha", "Shravana", "Dhanishta", "Shatabhisha",
	"Purva Bhadrapada", "Uttara Bhadrapada", "Revati",
}

// Segment is one of the 249 numbered sub-lord segments.
type Segment struct {
	Number    int          `json:"number" yaml:"number" toml:"number"`
	Sign      system.Ruler `json:"sign" yaml:"sign" toml:"sign"`
	SignLord  system.Ruler `json:"sign_lord" yaml:"sign_lord" toml:"sign_lord"`
	Nakshatra string       `json:"nakshatra" yaml:"nakshatra" toml:"nakshatra"`
	StarLord  system.Ruler `json:"star_lord" yaml:"star_lord" toml:"star_lord"`
	SubLord   system.Ruler `json:"sub_lord" yaml:"sub_lord" toml:"sub_lord"`
	Start     domain.Value `json:"start" yaml:"start" toml:"start"`
	End       domain.Value `json:"end" yaml:"end" toml:"end"`
}

// Contains reports whether lon (already normalized) lies in the segment.
func (s Segment) Contains(lon domain.Value) bool {
	return lon >= s.Start && lon < s.End
}

// Lords is the full lordship chain at one longitude.
type Lords struct {
	Longitude  domain.Value `json:"longitude" yaml:"longitude" toml:"longitude"`
	Sign       system.Ruler `json:"sign" yaml:"sign" toml:"sign"`
	SignLord   system.Ruler `json:"sign_lord" yaml:"sign_lord" toml:"sign_lord"`
	Nakshatra  string       `json:"nakshatra" yaml:"nakshatra" toml:"nakshatra"`
	StarLord   system.Ruler `json:"star_lord" yaml:"star_lord" toml:"star_lord"`
	SubLord    system.Ruler `json:"sub_lord" yaml:"sub_lord" toml:"sub_lord"`
	SubSubLord system.Ruler `json:"sub_sub_lord" yaml:"sub_sub_lord" toml:"sub_sub_lord"`
	Segment    int          `json:"segment" yaml:"segment" toml:"segment"`
}

type table struct {
	tree     *period.Tree
	segments []Segment
}

var (
	shared     *table
	sharedOnce sync.Once
)

func load() *table {
	sharedOnce.Do(func() {
		t, err := build(context.Background(), system.Global())
		if err != nil {
			panic(err)
		}
		shared = t
	})
	return shared
}

func build(ctx context.Context, reg *system.Registry) (*table, error) {
	def, err := reg.Resolve(system.KPSublord)
	if err != nil {
		return nil, err
	}
	b, err := def.DeriveBalance(0)
	if err != nil {
		return nil, err
	}
	tree, err := period.NewTree(ctx, def, b, domain.FullCircle)
	if err != nil {
		return nil, err
	}
	nodes, err := tree.Materialize(ctx, Depth)
	if err != nil {
		return nil, err
	}

	t := &table{tree: tree}
	for _, star := range tree.TopLevel() {
		subs, err := tree.Siblings(ctx, star.Start, 1)
		if err != nil {
			return nil, err
		}
		for _, sub := range subs {
			t.appendSplit(star, sub)
		}
	}

	slog.Debug("kp sub-lord table built",
		"segments", len(t.segments),
		"nodes", nodes,
	)
	return t, nil
}

// appendSplit adds sub as one segment, or two when a sign cusp falls
// inside it.
func (t *table) appendSplit(star, sub period.Interval) {
	start := sub.Start
	for start < sub.End {
		cusp := (start/domain.Sign + 1) * domain.Sign
		end := min(cusp, sub.End)
		sign := system.SignAt(int(start / domain.Sign))
		t.segments = append(t.segments, Segment{
			Number:    len(t.segments) + 1,
			Sign:      sign,
			SignLord:  sign.Lord(),
			Nakshatra: Nakshatras[star.Start/domain.Nakshatra],
			StarLord:  star.Ruler,
			SubLord:   sub.Ruler,
			Start:     start,
			End:       end,
		})
		start = end
	}
}

// Table returns a copy of the 249 segments in zodiac order.
func Table() []Segment {
	segs := load().segments
	out := make([]Segment, len(segs))
	copy(out, segs)
	return out
}

// Lookup returns the segment containing lon. Any longitude is accepted and
// folded into [0°, 360°).
func Lookup(lon domain.Value) Segment {
	segs := load().segments
	v := lon.Normalize()
	i := sort.Search(len(segs), func(i int) bool { return segs[i].Start > v }) - 1
	return segs[i]
}

// LordsAt returns the sign, star, sub and sub-sub lords at lon.
func LordsAt(ctx context.Context, lon domain.Value) (Lords, error) {
	t := load()
	v := lon.Normalize()
	stack, err := t.tree.Locate(ctx, v, Depth)
	if err != nil {
		return Lords{}, err
	}
	seg := Lookup(v)
	rulers := stack.Rulers()
	return Lords{
		Longitude:  v,
		Sign:       seg.Sign,
		SignLord:   seg.SignLord,
		Nakshatra:  seg.Nakshatra,
		StarLord:   rulers[0],
		SubLord:    rulers[1],
		SubSubLord: rulers[2],
		Segment:    seg.Number,
	}, nil
}
