// Package domain provides the exact values every period computation runs on.
//
// A Value is a signed count of an indivisible base unit: nanoseconds on the
// time axis, micro-arcseconds on the zodiac axis. Floats never appear in a
// boundary computation. Proportional scaling goes through MulDivRound, which
// multiplies into a 128-bit intermediate and rounds half-to-even exactly once,
// so recursive subdivision cannot accumulate drift.
//
// This package imports nothing internal. The error taxonomy shared by the
// other packages lives here for the same reason.
package domain
