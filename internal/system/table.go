package system

import (
	"fmt"

	"github.com/roach88/dasha/internal/domain"
)

// Entry is one ruler of a table and its weight.
//
// Weights are positive integers in a per-system unit. A table of rational
// weights is written in their common denominator: Kakshya uses arc-minutes
// (8 × 225′) rather than 8 × 3.75°.
type Entry struct {
	Ruler  Ruler `json:"ruler"`
	Weight int64 `json:"weight"`
}

// Table is an immutable ordered ruler table.
//
// INVARIANTS:
//   - every weight > 0
//   - no ruler appears twice
//   - Total() == Σ weight, computed once at construction
type Table struct {
	entries []Entry
	index   map[Ruler]int
	cum     []int64 // cum[i] = Σ weight[0:i], len = n+1
	total   int64
}

// NewTable validates entries and builds a table. The entries slice is
// copied.
func NewTable(entries []Entry) (*Table, error) {
	if len(entries) == 0 {
		return nil, domain.NewError(domain.CodeInvalidSystemDefinition, "ruler table is empty")
	}

	t := &Table{
		entries: make([]Entry, len(entries)),
		index:   make(map[Ruler]int, len(entries)),
		cum:     make([]int64, len(entries)+1),
	}
	copy(t.entries, entries)

	for i, e := range t.entries {
		if e.Ruler == "" {
			return nil, domain.NewError(domain.CodeInvalidSystemDefinition, "ruler %d has no name", i)
		}
		if e.Weight <= 0 {
			return nil, domain.NewError(domain.CodeInvalidSystemDefinition,
				"ruler %s has non-positive weight %d", e.Ruler, e.Weight)
		}
		if _, dup := t.index[e.Ruler]; dup {
			return nil, domain.NewError(domain.CodeInvalidSystemDefinition,
				"ruler %s appears twice", e.Ruler)
		}
		t.index[e.Ruler] = i
		next := t.cum[i] + e.Weight
		if next < t.cum[i] {
			return nil, domain.NewError(domain.CodeInvalidSystemDefinition, "table weights overflow")
		}
		t.cum[i+1] = next
	}
	t.total = t.cum[len(t.entries)]
	return t, nil
}

// MustTable is like NewTable but panics on error.
// Use only for built-in definitions and tests.
func MustTable(entries ...Entry) *Table {
	t, err := NewTable(entries)
	if err != nil {
		panic(err)
	}
	return t
}

// Len returns the number of rulers.
func (t *Table) Len() int { return len(t.entries) }

// Total returns the sum of all weights.
func (t *Table) Total() int64 { return t.total }

// At returns the entry at position i (taken modulo Len).
func (t *Table) At(i int) Entry { return t.entries[t.wrap(i)] }

// Entries returns a copy of the entries in table order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Index returns the position of a ruler, or -1.
func (t *Table) Index(r Ruler) int {
	if i, ok := t.index[r]; ok {
		return i
	}
	return -1
}

// CumulativeFrom returns the total weight of the k rulers starting at
// position first, cycling through the table. k may range over [0, Len].
func (t *Table) CumulativeFrom(first, k int) int64 {
	n := len(t.entries)
	first = t.wrap(first)
	end := first + k
	if end <= n {
		return t.cum[end] - t.cum[first]
	}
	return (t.total - t.cum[first]) + t.cum[end-n]
}

// Locate returns the ruler position whose cumulative weight range contains
// w, for 0 <= w < Total.
func (t *Table) Locate(w int64) int {
	lo, hi := 0, len(t.entries)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if t.cum[mid] <= w {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// Before returns the cumulative weight of all rulers before position i.
func (t *Table) Before(i int) int64 { return t.cum[t.wrap(i)] }

func (t *Table) wrap(i int) int {
	n := len(t.entries)
	return ((i % n) + n) % n
}

func (t *Table) String() string {
	return fmt.Sprintf("Table(%d rulers, total=%d)", len(t.entries), t.total)
}
