// Package period implements proportional subdivision over a ruler table:
// the lazily materialized period tree and the point locator.
//
// BOUNDARIES:
//
// Every boundary is computed directly from cumulative weights, never by
// summing previously rounded lengths. Top-level boundary i is
//
//	anchor + c·Cycle + Cycle·cum(b, p)/Total      c = ⌊i/n⌋, p = i mod n
//
// and child boundary k of a node with nominal span [s, s+L) is
//
//	s + L·cum(f, k)/Total
//
// with one half-to-even rounding per boundary (domain.MulDivRound). Siblings
// are contiguous by construction and always sum exactly to their parent.
//
// NOMINAL AND VISIBLE SPANS:
//
// A node's children are proportioned over its nominal span: the full period
// its ruler would run. Only the birth period differs from its visible
// interval; it is clipped at the origin, and its children are clipped with
// it, so a truncated first period keeps its classical sub-period boundaries.
//
// LIFECYCLE:
//
// A Tree is owned by one query context and is not safe for concurrent use.
// Children are memoized on first access. Top-level generation extends
// forward or backward on demand; extension is all-or-nothing and checks the
// context between ruler cycles. A tree materialized up front (Materialize)
// and never extended afterwards is read-only and may be shared.
package period
