// Package kakshya divides each zodiac sign into eight equal 3°45′ parts for
// transit timing.
//
// The rulers follow the fixed Kakshya order (Saturn, Jupiter, Mars, Sun,
// Venus, Mercury, Moon, Ascendant) in every sign. Only one level is ever
// computed. Scoring a division is left to the caller.
package kakshya

import (
	"context"
	"sync"

	"github.com/roach88/dasha/internal/domain"
	"github.com/roach88/dasha/internal/period"
	"github.com/roach88/dasha/internal/system"
)

// PerSign is the number of divisions in one sign.
const PerSign = 8

// Span is the length of one division (3°45′).
const Span = domain.Sign / PerSign

// Division is one eighth of a sign.
type Division struct {
	Sign   system.Ruler `json:"sign" yaml:"sign" toml:"sign"`
	Number int          `json:"number" yaml:"number" toml:"number"` // 1..8 within the sign
	Ruler  system.Ruler `json:"ruler" yaml:"ruler" toml:"ruler"`
	Start  domain.Value `json:"start" yaml:"start" toml:"start"`
	End    domain.Value `json:"end" yaml:"end" toml:"end"`
}

var (
	shared     *period.Tree
	sharedOnce sync.Once
)

func load() *period.Tree {
	sharedOnce.Do(func() {
		def, err := system.Global().Resolve(system.Kakshya)
		if err != nil {
			panic(err)
		}
		b, err := def.DeriveBalance(0)
		if err != nil {
			panic(err)
		}
		tree, err := period.NewTree(context.Background(), def, b, domain.FullCircle)
		if err != nil {
			panic(err)
		}
		shared = tree
	})
	return shared
}

// Locate returns the division containing an absolute longitude. Any value
// is folded into [0°, 360°). A longitude on a division boundary belongs to
// the later division.
func Locate(ctx context.Context, lon domain.Value) (Division, error) {
	v := lon.Normalize()
	stack, err := load().Locate(ctx, v, 0)
	if err != nil {
		return Division{}, err
	}
	l := stack.Levels[0]
	return Division{
		Sign:   system.SignAt(int(v / domain.Sign)),
		Number: l.Position%PerSign + 1,
		Ruler:  l.Ruler,
		Start:  l.Start,
		End:    l.End,
	}, nil
}

// LocateInSign resolves a sign-relative longitude in [0°, 30°).
func LocateInSign(ctx context.Context, sign system.Ruler, rel domain.Value) (Division, error) {
	idx := signIndex(sign)
	if idx < 0 {
		return Division{}, domain.NewError(domain.CodeInvalidReference, "%s is not a sign", sign)
	}
	if rel < 0 || rel >= domain.Sign {
		return Division{}, domain.NewError(domain.CodeInvalidReference,
			"sign-relative longitude %s outside [0°, 30°)", rel.FormatDMS())
	}
	return Locate(ctx, domain.Value(idx)*domain.Sign+rel)
}

// Divisions returns the eight divisions of a sign in order.
func Divisions(sign system.Ruler) ([]Division, error) {
	idx := signIndex(sign)
	if idx < 0 {
		return nil, domain.NewError(domain.CodeInvalidReference, "%s is not a sign", sign)
	}
	top := load().TopLevel()[idx*PerSign : (idx+1)*PerSign]
	out := make([]Division, len(top))
	for i, iv := range top {
		out[i] = Division{Sign: sign, Number: i + 1, Ruler: iv.Ruler, Start: iv.Start, End: iv.End}
	}
	return out, nil
}

func signIndex(sign system.Ruler) int {
	for i, s := range system.Signs {
		if s == sign {
			return i
		}
	}
	return -1
}
