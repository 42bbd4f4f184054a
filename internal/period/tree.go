package period

import (
	"context"
	"errors"
	"log/slog"

	"github.com/roach88/dasha/internal/domain"
	"github.com/roach88/dasha/internal/system"
)

// DefaultMaxCycles bounds how many full ruler cycles a tree may span in
// either direction from its origin.
const DefaultMaxCycles = 1000

// Stats counts the work a tree has done so far.
type Stats struct {
	// TopLevel is the number of generated top-level intervals.
	TopLevel int
	// Nodes is the number of materialized nodes at every depth.
	Nodes int
	// Extensions counts forward and backward top-level extensions after
	// construction.
	Extensions int
}

// Option configures a Tree.
type Option func(*Tree)

// WithMaxCycles sets the sanity bound on ruler cycles.
//
// Default: 1000 cycles (DefaultMaxCycles)
func WithMaxCycles(n int) Option {
	return func(t *Tree) {
		if n > 0 {
			t.maxCycles = n
		}
	}
}

// WithLogger sets the logger used for extension events.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tree) {
		if l != nil {
			t.logger = l
		}
	}
}

// Tree is a lazily materialized period tree rooted at the origin (value 0).
//
// INVARIANTS:
//   - top is ordered and contiguous: top[i].End == top[i+1].Start
//   - top covers at least [0, horizon)
//   - nodes are never mutated once created, except for child memoization
type Tree struct {
	def     *system.Definition
	balance system.Balance

	// anchor is the nominal start of the birth period: -Consumed·span.
	anchor domain.Value

	top []*Node
	// next is the next top-level index to generate forward, prev the next
	// one backward. Index 0 is the birth period.
	next int
	prev int

	maxCycles int
	logger    *slog.Logger
	stats     Stats
}

// NewTree builds the top level of a tree covering [0, horizon).
//
// Fails with InvalidHorizon if horizon <= 0 or would need more than the
// configured number of ruler cycles, InvalidReference for an out-of-table
// balance, and ArithmeticOverflow if a boundary does not fit the base unit.
func NewTree(ctx context.Context, def *system.Definition, balance system.Balance, horizon domain.Value, opts ...Option) (*Tree, error) {
	if horizon <= 0 {
		return nil, domain.NewError(domain.CodeInvalidHorizon,
			"horizon must be positive, got %d", horizon).WithSystem(string(def.ID))
	}
	if balance.Index < 0 || balance.Index >= def.Table.Len() {
		return nil, domain.NewError(domain.CodeInvalidReference,
			"balance ruler index %d outside table", balance.Index).WithSystem(string(def.ID))
	}
	if !balance.Consumed.Valid() {
		return nil, domain.NewError(domain.CodeInvalidReference,
			"consumed fraction %s outside [0, 1)", balance.Consumed).WithSystem(string(def.ID))
	}

	t := &Tree{
		def:       def,
		balance:   balance,
		maxCycles: DefaultMaxCycles,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}

	span, err := def.Span(balance.Index)
	if err != nil {
		return nil, tag(err, def.ID)
	}
	consumed, err := balance.Consumed.Of(span)
	if err != nil {
		return nil, tag(err, def.ID)
	}
	t.anchor = -consumed

	if err := t.extendForward(ctx, horizon-1, domain.CodeInvalidHorizon); err != nil {
		return nil, err
	}
	t.stats.Extensions = 0
	return t, nil
}

// Definition returns the system the tree subdivides.
func (t *Tree) Definition() *system.Definition { return t.def }

// Balance returns the balance the tree was rooted with.
func (t *Tree) Balance() system.Balance { return t.balance }

// Stats returns the work counters.
func (t *Tree) Stats() Stats { return t.stats }

// TopLevel returns the generated top-level intervals in order.
func (t *Tree) TopLevel() []Interval { return intervals(t.top) }

// Range returns the span currently covered by the top level.
func (t *Tree) Range() (start, end domain.Value) {
	return t.top[0].iv.Start, t.top[len(t.top)-1].iv.End
}

// Materialize builds every node down to depth (0 = top level only) and
// returns the number of materialized nodes. A fully materialized tree that
// is not extended afterwards is safe for concurrent reads.
func (t *Tree) Materialize(ctx context.Context, depth int) (int, error) {
	if depth < 0 {
		return 0, domain.NewError(domain.CodeInvalidDepth, "depth must be >= 0, got %d", depth).WithSystem(string(t.def.ID))
	}
	var walk func(nodes []*Node) error
	walk = func(nodes []*Node) error {
		for _, n := range nodes {
			if n.iv.Depth >= depth {
				continue
			}
			kids, err := n.Children()
			if err != nil {
				return err
			}
			if err := walk(kids); err != nil {
				return err
			}
		}
		return nil
	}
	for _, n := range t.top {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if err := walk([]*Node{n}); err != nil {
			return 0, err
		}
	}
	return t.stats.Nodes, nil
}

// boundary returns the nominal start of top-level index i.
func (t *Tree) boundary(i int) (domain.Value, error) {
	tab := t.def.Table
	n := tab.Len()
	c := floorDiv(i, n)
	pos := i - c*n

	var off domain.Value
	var err error
	if t.def.TopLevel == system.EqualSpans {
		off, err = domain.MulDivRound(t.def.Cycle, int64(pos), int64(n))
	} else {
		off, err = domain.MulDivRound(t.def.Cycle, tab.CumulativeFrom(t.balance.Index, pos), tab.Total())
	}
	if err != nil {
		return 0, err
	}
	base, err := domain.Mul(t.def.Cycle, int64(c))
	if err != nil {
		return 0, err
	}
	v, err := domain.Add(t.anchor, base)
	if err != nil {
		return 0, err
	}
	return domain.Add(v, off)
}

// topNode builds top-level node i clipped to [lo, hi). Returns nil if the
// clipped interval is empty.
func (t *Tree) topNode(i int, lo, hi domain.Value) (*Node, error) {
	start, err := t.boundary(i)
	if err != nil {
		return nil, err
	}
	end, err := t.boundary(i + 1)
	if err != nil {
		return nil, err
	}
	slot := (t.balance.Index + i%t.def.Table.Len() + t.def.Table.Len()) % t.def.Table.Len()
	return clip(&Node{
		iv:       Interval{Ruler: t.def.Table.At(slot).Ruler, Start: start, End: end},
		slot:     slot,
		nomStart: start,
		nomLen:   end - start,
		tree:     t,
	}, lo, hi), nil
}

// checkCycle enforces the sanity bound for top-level index i.
func (t *Tree) checkCycle(i int, code domain.ErrorCode) error {
	c := floorDiv(i, t.def.Table.Len())
	if c >= t.maxCycles || -c > t.maxCycles {
		return domain.NewError(code, "would span more than %d ruler cycles", t.maxCycles).WithSystem(string(t.def.ID))
	}
	return nil
}

// extendForward appends top-level nodes until the last one ends after p.
func (t *Tree) extendForward(ctx context.Context, p domain.Value, code domain.ErrorCode) error {
	var fresh []*Node
	end := domain.Value(0)
	if len(t.top) > 0 {
		end = t.top[len(t.top)-1].iv.End
	}
	i := t.next
	n := t.def.Table.Len()
	for end <= p {
		if err := t.checkCycle(i, code); err != nil {
			return err
		}
		if i%n == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		node, err := t.topNode(i, 0, domain.MaxValue)
		if err != nil {
			return tag(err, t.def.ID)
		}
		i++
		if node == nil {
			continue
		}
		fresh = append(fresh, node)
		end = node.iv.End
	}
	if len(fresh) == 0 {
		return nil
	}

	t.top = append(t.top, fresh...)
	t.next = i
	t.stats.TopLevel += len(fresh)
	t.stats.Nodes += len(fresh)
	t.stats.Extensions++
	t.logger.Debug("period top level extended",
		"system", t.def.ID,
		"direction", "forward",
		"added", len(fresh),
		"end", end,
	)
	return nil
}

// extendBackward prepends top-level nodes until the first one starts at or
// before p. The pre-origin remainder of the birth period comes first.
func (t *Tree) extendBackward(ctx context.Context, p domain.Value) error {
	var fresh []*Node
	start := t.top[0].iv.Start
	i := t.prev
	n := t.def.Table.Len()
	for start > p {
		if err := t.checkCycle(i, domain.CodePointOutOfComputableRange); err != nil {
			return err
		}
		if i%n == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		node, err := t.topNode(i, -domain.MaxValue, 0)
		if err != nil {
			return tag(err, t.def.ID)
		}
		i--
		if node == nil {
			continue
		}
		fresh = append(fresh, node)
		start = node.iv.Start
	}
	if len(fresh) == 0 {
		return nil
	}

	top := make([]*Node, 0, len(fresh)+len(t.top))
	for k := len(fresh) - 1; k >= 0; k-- {
		top = append(top, fresh[k])
	}
	t.top = append(top, t.top...)
	t.prev = i
	t.stats.TopLevel += len(fresh)
	t.stats.Nodes += len(fresh)
	t.stats.Extensions++
	t.logger.Debug("period top level extended",
		"system", t.def.ID,
		"direction", "backward",
		"added", len(fresh),
		"start", start,
	)
	return nil
}

// subdivide computes the children of n over its nominal span and clips them
// to its visible interval. Zero-length children are dropped.
func (t *Tree) subdivide(n *Node) ([]*Node, error) {
	tab := t.def.Table
	first := n.slot
	if t.def.ChildStart == system.FixedSequence {
		first = 0
	}

	kids := make([]*Node, 0, tab.Len())
	prev := n.nomStart
	for k := 1; k <= tab.Len(); k++ {
		off, err := domain.MulDivRound(n.nomLen, tab.CumulativeFrom(first, k), tab.Total())
		if err != nil {
			return nil, tag(err, t.def.ID)
		}
		end, err := domain.Add(n.nomStart, off)
		if err != nil {
			return nil, tag(err, t.def.ID)
		}
		slot := (first + k - 1) % tab.Len()
		kid := clip(&Node{
			iv: Interval{
				Ruler: tab.At(slot).Ruler,
				Start: prev,
				End:   end,
				Depth: n.iv.Depth + 1,
			},
			slot:     slot,
			nomStart: prev,
			nomLen:   end - prev,
			parent:   n,
			tree:     t,
		}, n.iv.Start, n.iv.End)
		prev = end
		if kid != nil {
			kids = append(kids, kid)
		}
	}
	return kids, nil
}

// clip narrows the visible interval to [lo, hi), keeping the nominal span.
func clip(n *Node, lo, hi domain.Value) *Node {
	n.iv.Start = max(n.iv.Start, lo)
	n.iv.End = min(n.iv.End, hi)
	if n.iv.End <= n.iv.Start {
		return nil
	}
	return n
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// tag attaches the system id to domain errors.
func tag(err error, id system.ID) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return de.WithSystem(string(id))
	}
	return err
}
