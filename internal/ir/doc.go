// Package ir provides the canonical record types a computed timeline is
// exchanged in: cache rows, golden snapshots and CLI output.
//
// This package imports nothing internal. Every other package may depend on
// it; it depends on none of them.
//
// Key design constraints:
//   - NO float types anywhere; axis values are int64 base units
//   - All JSON tags use snake_case
//   - Content hashes are computed over canonical JSON only
package ir
