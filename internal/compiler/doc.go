// Package compiler turns CUE period system definitions into
// system.Definition values.
//
// A definitions file declares one or more systems under the top-level
// "system" struct:
//
//	system: TRIAD: {
//		name: "Triad"
//		axis: "time"
//		cycle_years: 6
//		total: 6
//		rulers: [
//			{ruler: "Sun", weight: 1},
//			{ruler: "Moon", weight: 2},
//			{ruler: "Mars", weight: 3},
//		]
//		child_start: "own_ruler_first"
//		top_level: "weighted"
//		balance: {kind: "equal_span", span_arcmin: 800}
//	}
//
// Every number is an integer. Zodiac lengths are written in arc-minutes
// and time cycles in whole Julian years; floats are rejected so that no
// definition depends on binary rounding.
package compiler
