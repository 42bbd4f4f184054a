package period

import (
	"context"
	"sort"

	"github.com/roach88/dasha/internal/domain"
	"github.com/roach88/dasha/internal/system"
)

// Level is one entry of an ancestor stack: the containing interval at one
// depth and its position among its siblings.
type Level struct {
	Interval
	Position int `json:"position"`

	siblings []*Node
}

// Siblings returns the full sibling list the level was located in, for
// timeline rendering. Computed from already materialized nodes.
func (l Level) Siblings() []Interval { return intervals(l.siblings) }

// Count returns the number of siblings including the level itself.
func (l Level) Count() int { return len(l.siblings) }

// Stack is the "current period" chain for a point, top level first.
type Stack struct {
	Point  domain.Value `json:"point"`
	Levels []Level      `json:"levels"`
}

// Intervals returns the chain without sibling context.
func (s Stack) Intervals() []Interval {
	out := make([]Interval, len(s.Levels))
	for i, l := range s.Levels {
		out[i] = l.Interval
	}
	return out
}

// Rulers returns the ruler at every depth.
func (s Stack) Rulers() []system.Ruler {
	out := make([]system.Ruler, len(s.Levels))
	for i, l := range s.Levels {
		out[i] = l.Ruler
	}
	return out
}

// Deepest returns the innermost level, if any.
func (s Stack) Deepest() (Level, bool) {
	if len(s.Levels) == 0 {
		return Level{}, false
	}
	return s.Levels[len(s.Levels)-1], true
}

// Locate returns the ancestor stack containing p from the top level down to
// maxDepth. Intervals are start-inclusive and end-exclusive at every depth.
//
// The top level is extended forward or backward when p lies outside the
// generated range. Fails with InvalidDepth for a negative depth and
// PointOutOfComputableRange when reaching p would exceed the cycle bound.
func (t *Tree) Locate(ctx context.Context, p domain.Value, maxDepth int) (Stack, error) {
	if maxDepth < 0 {
		return Stack{}, domain.NewError(domain.CodeInvalidDepth,
			"depth must be >= 0, got %d", maxDepth).WithSystem(string(t.def.ID))
	}
	if err := t.cover(ctx, p); err != nil {
		return Stack{}, err
	}

	stack := Stack{Point: p, Levels: make([]Level, 0, maxDepth+1)}
	siblings := t.top
	for depth := 0; depth <= maxDepth; depth++ {
		i := search(siblings, p)
		if i < 0 {
			break
		}
		node := siblings[i]
		stack.Levels = append(stack.Levels, Level{
			Interval: node.iv,
			Position: i,
			siblings: siblings,
		})
		if depth == maxDepth {
			break
		}
		kids, err := node.Children()
		if err != nil {
			return Stack{}, err
		}
		siblings = kids
	}
	return stack, nil
}

// Siblings returns the full sibling list at depth around p.
func (t *Tree) Siblings(ctx context.Context, p domain.Value, depth int) ([]Interval, error) {
	stack, err := t.Locate(ctx, p, depth)
	if err != nil {
		return nil, err
	}
	l, ok := stack.Deepest()
	if !ok {
		return nil, nil
	}
	return l.Siblings(), nil
}

// Window returns the top-level intervals overlapping [from, to), extending
// the tree as needed.
func (t *Tree) Window(ctx context.Context, from, to domain.Value) ([]Interval, error) {
	if to <= from {
		return nil, nil
	}
	if err := t.cover(ctx, from); err != nil {
		return nil, err
	}
	if err := t.cover(ctx, to-1); err != nil {
		return nil, err
	}
	lo := search(t.top, from)
	hi := search(t.top, to-1)
	return intervals(t.top[lo : hi+1]), nil
}

// Walk visits every interval overlapping [from, to) down to depth in
// depth-first order, parents before children. The tree is extended and
// materialized as needed.
func (t *Tree) Walk(ctx context.Context, from, to domain.Value, depth int, fn func(Interval) error) error {
	if depth < 0 {
		return domain.NewError(domain.CodeInvalidDepth,
			"depth must be >= 0, got %d", depth).WithSystem(string(t.def.ID))
	}
	if to <= from {
		return nil
	}
	if err := t.cover(ctx, from); err != nil {
		return err
	}
	if err := t.cover(ctx, to-1); err != nil {
		return err
	}

	var visit func(nodes []*Node) error
	visit = func(nodes []*Node) error {
		for _, n := range nodes {
			if n.iv.End <= from || n.iv.Start >= to {
				continue
			}
			if err := fn(n.iv); err != nil {
				return err
			}
			if n.iv.Depth >= depth {
				continue
			}
			kids, err := n.Children()
			if err != nil {
				return err
			}
			if err := visit(kids); err != nil {
				return err
			}
		}
		return nil
	}
	lo := search(t.top, from)
	hi := search(t.top, to-1)
	for _, n := range t.top[lo : hi+1] {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := visit([]*Node{n}); err != nil {
			return err
		}
	}
	return nil
}

// cover extends the top level until it contains p.
func (t *Tree) cover(ctx context.Context, p domain.Value) error {
	if start, _ := t.Range(); p < start {
		if err := t.extendBackward(ctx, p); err != nil {
			return err
		}
	}
	if _, end := t.Range(); p >= end {
		if err := t.extendForward(ctx, p, domain.CodePointOutOfComputableRange); err != nil {
			return err
		}
	}
	return nil
}

// search finds the sibling whose [Start, End) contains p by binary search
// over the sorted starts. Returns -1 if p is outside the list.
func search(nodes []*Node, p domain.Value) int {
	i := sort.Search(len(nodes), func(i int) bool { return nodes[i].iv.Start > p }) - 1
	if i < 0 || !nodes[i].iv.Contains(p) {
		return -1
	}
	return i
}
