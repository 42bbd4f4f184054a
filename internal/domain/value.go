package domain

import (
	"fmt"
	"math"
	"math/bits"
	"time"
)

// Value is an exact signed quantity on a system's axis, counted in the
// axis base unit (see Unit). Zero is the tree origin: the epoch on the time
// axis, 0° Aries on the zodiac axis.
type Value int64

// Unit names the indivisible base unit of an axis.
type Unit int

const (
	// Nanosecond is the base unit of the time axis.
	Nanosecond Unit = iota
	// MicroArcsecond is the base unit of the zodiac axis.
	MicroArcsecond
)

func (u Unit) String() string {
	switch u {
	case Nanosecond:
		return "ns"
	case MicroArcsecond:
		return "µas"
	default:
		return "unknown"
	}
}

// Time axis constants.
const (
	Second Value = 1_000_000_000
	Day    Value = 86_400 * Second

	// Year is the Julian year of 365.25 days.
	Year Value = 31_557_600 * Second
)

// Zodiac axis constants.
const (
	Arcsecond Value = 1_000_000
	Arcminute Value = 60 * Arcsecond
	Degree    Value = 60 * Arcminute

	// FullCircle is 360°.
	FullCircle Value = 360 * Degree

	// Sign is one 30° zodiac sign.
	Sign Value = 30 * Degree

	// Nakshatra is one of 27 lunar mansions (13°20′).
	Nakshatra Value = 800 * Arcminute

	// Navamsa is one ninth of a sign (3°20′).
	Navamsa Value = 200 * Arcminute
)

// MaxValue is the largest representable value.
const MaxValue = Value(math.MaxInt64)

// Add returns a+b or ArithmeticOverflow.
func Add(a, b Value) (Value, error) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, overflow("add", int64(a), int64(b))
	}
	return s, nil
}

// Sub returns a-b or ArithmeticOverflow.
func Sub(a, b Value) (Value, error) {
	d := a - b
	if (b > 0 && d > a) || (b < 0 && d < a) {
		return 0, overflow("sub", int64(a), int64(b))
	}
	return d, nil
}

// Mul returns a*n or ArithmeticOverflow.
func Mul(a Value, n int64) (Value, error) {
	if a == 0 || n == 0 {
		return 0, nil
	}
	neg := (a < 0) != (n < 0)
	hi, lo := bits.Mul64(magnitude(int64(a)), magnitude(n))
	v, ok := signed(hi, lo, neg)
	if !ok {
		return 0, overflow("mul", int64(a), n)
	}
	return v, nil
}

// MulDivRound returns x·num/den computed exactly with a 128-bit intermediate
// and rounded half-to-even once. num must be non-negative and den positive.
// A quotient that does not fit int64 is an ArithmeticOverflow.
func MulDivRound(x Value, num, den int64) (Value, error) {
	if den <= 0 || num < 0 {
		return 0, NewError(CodeArithmeticOverflow, "invalid ratio %d/%d", num, den)
	}
	if x == 0 || num == 0 {
		return 0, nil
	}

	hi, lo := bits.Mul64(magnitude(int64(x)), uint64(num))
	d := uint64(den)
	if hi >= d {
		return 0, overflow("scale", int64(x), num)
	}
	q, r := bits.Div64(hi, lo, d)

	// Round half to even on the magnitude; d-r cannot underflow since r < d.
	if r > d-r || (r == d-r && q&1 == 1) {
		q++
	}

	v, ok := signed(0, q, x < 0)
	if !ok {
		return 0, overflow("scale", int64(x), num)
	}
	return v, nil
}

// MulDivFloor returns floor(x·num/den) for non-negative x and num and
// positive den, with the same 128-bit intermediate as MulDivRound.
func MulDivFloor(x Value, num, den int64) (Value, error) {
	if den <= 0 || num < 0 || x < 0 {
		return 0, NewError(CodeArithmeticOverflow, "invalid floor ratio %d*%d/%d", x, num, den)
	}
	hi, lo := bits.Mul64(uint64(x), uint64(num))
	if hi >= uint64(den) {
		return 0, overflow("scale", int64(x), num)
	}
	q, _ := bits.Div64(hi, lo, uint64(den))
	v, ok := signed(0, q, false)
	if !ok {
		return 0, overflow("scale", int64(x), num)
	}
	return v, nil
}

func magnitude(n int64) uint64 {
	if n < 0 {
		return uint64(-(n + 1)) + 1
	}
	return uint64(n)
}

func signed(hi, lo uint64, neg bool) (Value, bool) {
	if hi != 0 {
		return 0, false
	}
	if neg {
		if lo > uint64(math.MaxInt64)+1 {
			return 0, false
		}
		return Value(-int64(lo - 1) - 1), true
	}
	if lo > uint64(math.MaxInt64) {
		return 0, false
	}
	return Value(lo), true
}

// Years returns n Julian years in nanoseconds.
func Years(n int64) (Value, error) {
	v, err := Mul(Year, n)
	if err != nil {
		return 0, NewError(CodeArithmeticOverflow,
			"%d years does not fit nanosecond base units (max ~292 years)", n)
	}
	return v, nil
}

// SinceEpoch returns the exact nanosecond offset of t from epoch.
// Unlike time.Time.Sub it never saturates: out-of-range offsets are
// reported as ArithmeticOverflow.
func SinceEpoch(epoch, t time.Time) (Value, error) {
	secs, err := Sub(Value(t.Unix()), Value(epoch.Unix()))
	if err != nil {
		return 0, err
	}
	ns, err := Mul(Second, int64(secs))
	if err != nil {
		return 0, err
	}
	return Add(ns, Value(t.Nanosecond()-epoch.Nanosecond()))
}

// Time converts a time-axis value back to an instant.
func (v Value) Time(epoch time.Time) time.Time {
	return epoch.Add(time.Duration(v))
}

// Normalize folds a zodiac value into [0°, 360°).
func (v Value) Normalize() Value {
	r := v % FullCircle
	if r < 0 {
		r += FullCircle
	}
	return r
}

// FromDMS builds a longitude from degrees, arc-minutes and arc-seconds.
func FromDMS(deg, min, sec int64) Value {
	return Value(deg)*Degree + Value(min)*Arcminute + Value(sec)*Arcsecond
}

// FormatDMS renders a zodiac value as 123°04′05.678″.
func (v Value) FormatDMS() string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	deg := v / Degree
	rem := v % Degree
	mins := rem / Arcminute
	rem %= Arcminute
	sec := rem / Arcsecond
	micro := rem % Arcsecond
	if micro == 0 {
		return fmt.Sprintf("%s%d°%02d′%02d″", sign, deg, mins, sec)
	}
	return fmt.Sprintf("%s%d°%02d′%02d.%06d″", sign, deg, mins, sec, micro)
}

// Fraction is an exact proportion Num/Den.
type Fraction struct {
	Num int64 `json:"num"`
	Den int64 `json:"den"`
}

// NewFraction reduces num/den to lowest terms. Den must be positive.
func NewFraction(num, den int64) Fraction {
	if den == 0 {
		return Fraction{Num: 0, Den: 1}
	}
	g := gcd(magnitude(num), magnitude(den))
	if g > 1 {
		num /= int64(g)
		den /= int64(g)
	}
	return Fraction{Num: num, Den: den}
}

// Zero reports whether the fraction is 0.
func (f Fraction) Zero() bool { return f.Num == 0 }

// Valid reports whether the fraction lies in [0, 1).
func (f Fraction) Valid() bool {
	return f.Den > 0 && f.Num >= 0 && f.Num < f.Den
}

// Of scales v by the fraction.
func (f Fraction) Of(v Value) (Value, error) {
	return MulDivRound(v, f.Num, f.Den)
}

func (f Fraction) String() string {
	return fmt.Sprintf("%d/%d", f.Num, f.Den)
}

func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
