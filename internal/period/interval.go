package period

import (
	"fmt"

	"github.com/roach88/dasha/internal/domain"
	"github.com/roach88/dasha/internal/system"
)

// Interval is a ruled, half-open range [Start, End) on a system axis.
// Depth 0 is the top level (mahadasha, star), depth 1 its first
// subdivision (antardasha, sub), and so on.
type Interval struct {
	Ruler system.Ruler `json:"ruler"`
	Start domain.Value `json:"start"`
	End   domain.Value `json:"end"`
	Depth int          `json:"depth"`
}

// Len returns End - Start.
func (iv Interval) Len() domain.Value { return iv.End - iv.Start }

// Contains reports whether p lies in [Start, End).
func (iv Interval) Contains(p domain.Value) bool {
	return p >= iv.Start && p < iv.End
}

func (iv Interval) String() string {
	return fmt.Sprintf("%s[%d, %d)@%d", iv.Ruler, iv.Start, iv.End, iv.Depth)
}

// Node is one materialized interval of a Tree.
//
// The parent pointer is a non-owning back-reference; parents own their
// children and nothing points upward except Parent.
type Node struct {
	iv Interval

	// slot is the ruler's position in the table.
	slot int

	// nomStart and nomLen describe the nominal span children are
	// proportioned over.
	nomStart domain.Value
	nomLen   domain.Value

	parent   *Node
	tree     *Tree
	children []*Node
	built    bool
}

// Interval returns the node's visible interval.
func (n *Node) Interval() Interval { return n.iv }

// Ruler returns the ruling body.
func (n *Node) Ruler() system.Ruler { return n.iv.Ruler }

// Depth returns the nesting depth (0 = top level).
func (n *Node) Depth() int { return n.iv.Depth }

// Parent returns the enclosing node, or nil at the top level.
func (n *Node) Parent() *Node { return n.parent }

// Clipped reports whether the visible interval is shorter than the nominal
// period, which only happens inside the birth period.
func (n *Node) Clipped() bool {
	return n.iv.Start != n.nomStart || n.iv.Len() != n.nomLen
}

// Children returns the node's subdivision, computing and memoizing it on
// first access.
func (n *Node) Children() ([]*Node, error) {
	if n.built {
		return n.children, nil
	}
	kids, err := n.tree.subdivide(n)
	if err != nil {
		return nil, err
	}
	n.children = kids
	n.built = true
	n.tree.stats.Nodes += len(kids)
	return kids, nil
}

// intervals projects nodes onto their intervals.
func intervals(nodes []*Node) []Interval {
	out := make([]Interval, len(nodes))
	for i, n := range nodes {
		out[i] = n.iv
	}
	return out
}
