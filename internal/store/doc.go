// Package store provides a SQLite-backed timeline cache for hosts that
// recompute the same charts repeatedly.
//
// The engine itself never caches. The CLI stores flattened timelines
// here, keyed by the content hash of their TimelineKey:
//   - timelines: one row per (system, reference, epoch, horizon, depth)
//   - periods: the flattened periods of a timeline, in walk order
//   - systems: the canonical record of every system a timeline was built from
//
// A cached timeline is only returned while the hash of its system record
// and the record version still match, so redefining a custom system
// invalidates its entries.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: periods cascade with their timeline
//
// All queries order by seq ASC so reads are deterministic.
package store
