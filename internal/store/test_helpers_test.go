package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/dasha/internal/ir"
)

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testTimeline is a two-period Vimsottari timeline.
func testTimeline(depth int64) ir.Timeline {
	return ir.Timeline{
		Key: ir.TimelineKey{
			System:       "VIMSOTTARI",
			Reference:    163_200_000_000,
			Epoch:        "1990-03-14T06:30:00Z",
			HorizonYears: 13,
			Depth:        depth,
		},
		Balance: ir.Balance{Ruler: "Moon", Num: 2, Den: 5},
		Periods: []ir.Period{
			{Ruler: "Moon", Depth: 0, Start: 0, End: 189_345_600_000_000_000, From: "1990-03-14T06:30:00Z", To: "1996-03-14T06:30:00Z"},
			{Ruler: "Mars", Depth: 0, Start: 189_345_600_000_000_000, End: 410_248_800_000_000_000, From: "1996-03-14T06:30:00Z", To: "2003-03-15T00:30:00Z"},
		},
	}
}

func testSystem(name string) ir.SystemRecord {
	return ir.SystemRecord{
		ID:         "VIMSOTTARI",
		Name:       name,
		Axis:       "time",
		Rulers:     []ir.RulerWeight{{Ruler: "Ketu", Weight: 7}},
		Total:      120,
		Cycle:      3_786_912_000_000_000_000,
		ChildStart: "own_ruler_first",
		TopLevel:   "weighted",
		Balance:    ir.BalanceRule{Kind: "equal_span", Span: 48_000_000_000},
	}
}
