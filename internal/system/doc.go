// Package system defines period systems as data.
//
// A Definition is a weighted ruler table plus a closed set of strategies:
// where children start in the ruler order (ChildStart), how top-level spans
// are sized (TopLevel) and how a reference longitude maps onto the active
// ruler and its consumed fraction (BalanceRule). There is no per-system
// code path; adding a dasha variant means registering a new Definition.
//
// CONCURRENCY:
//
// Registration happens once during warm-up. After Freeze the Registry and
// every Definition it holds are read-only and safe for unsynchronized
// concurrent reads. Global returns the frozen built-in registry.
package system
