package domain

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// decimalContext carries enough digits that no ephemeris input is rounded
// before the single half-even step to micro-arcseconds.
var decimalContext = func() *apd.Context {
	c := apd.BaseContext.WithPrecision(64)
	c.Rounding = apd.RoundHalfEven
	return c
}()

// ParseDegrees parses a decimal degree string such as "45.333333" exactly
// and rounds it half-to-even once to micro-arcseconds.
//
// Ephemeris collaborators hand over longitudes as high-precision decimals;
// going through float64 here would already lose the last digits.
func ParseDegrees(s string) (Value, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "°")
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return 0, NewError(CodeInvalidReference, "invalid decimal degrees %q: %v", s, err)
	}
	if d.Form != apd.Finite {
		return 0, NewError(CodeInvalidReference, "non-finite degrees %q", s)
	}

	scaled := new(apd.Decimal)
	if _, err := decimalContext.Mul(scaled, d, apd.New(int64(Degree), 0)); err != nil {
		return 0, NewError(CodeInvalidReference, "scaling %q: %v", s, err)
	}
	rounded := new(apd.Decimal)
	if _, err := decimalContext.RoundToIntegralValue(rounded, scaled); err != nil {
		return 0, NewError(CodeInvalidReference, "rounding %q: %v", s, err)
	}
	n, err := rounded.Int64()
	if err != nil {
		return 0, NewError(CodeArithmeticOverflow, "degrees %q exceed base units", s)
	}
	return Value(n), nil
}

// MustParseDegrees is like ParseDegrees but panics on error.
// Use only in tests or for literal constants.
func MustParseDegrees(s string) Value {
	v, err := ParseDegrees(s)
	if err != nil {
		panic(err)
	}
	return v
}

// ParseLongitude accepts decimal degrees ("45.5") or sexagesimal
// degrees:minutes:seconds ("45:20:00", "45:20:07.25"). Seconds may carry
// a decimal fraction and are rounded half-to-even once to
// micro-arcseconds.
func ParseLongitude(s string) (Value, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ":") {
		return ParseDegrees(s)
	}

	neg := strings.HasPrefix(s, "-")
	parts := strings.Split(strings.TrimPrefix(s, "-"), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, NewError(CodeInvalidReference, "invalid longitude %q: want D:M or D:M:S", s)
	}
	deg, err := strconv.ParseInt(parts[0], 10, 32)
	if err != nil || deg < 0 {
		return 0, NewError(CodeInvalidReference, "invalid degrees in %q", s)
	}
	mins, err := strconv.ParseInt(parts[1], 10, 32)
	if err != nil || mins < 0 || mins >= 60 {
		return 0, NewError(CodeInvalidReference, "invalid arc-minutes in %q", s)
	}

	var micro Value
	if len(parts) == 3 {
		d, _, err := apd.NewFromString(parts[2])
		if err != nil || d.Form != apd.Finite || d.Negative {
			return 0, NewError(CodeInvalidReference, "invalid arc-seconds in %q", s)
		}
		if d.Cmp(apd.New(60, 0)) >= 0 {
			return 0, NewError(CodeInvalidReference, "arc-seconds out of range in %q", s)
		}
		scaled := new(apd.Decimal)
		if _, err := decimalContext.Mul(scaled, d, apd.New(int64(Arcsecond), 0)); err != nil {
			return 0, NewError(CodeInvalidReference, "scaling %q: %v", s, err)
		}
		rounded := new(apd.Decimal)
		if _, err := decimalContext.RoundToIntegralValue(rounded, scaled); err != nil {
			return 0, NewError(CodeInvalidReference, "rounding %q: %v", s, err)
		}
		n, err := rounded.Int64()
		if err != nil {
			return 0, NewError(CodeInvalidReference, "arc-seconds out of range in %q", s)
		}
		micro = Value(n)
	}

	v := FromDMS(deg, mins, 0) + micro
	if neg {
		v = -v
	}
	return v, nil
}
