package harness

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/dasha/internal/domain"
	"github.com/roach88/dasha/internal/ir"
)

// AssertionError is a failed expectation.
type AssertionError struct {
	Type     string // balance, rulers, error, open
	Step     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "assertion failed: %s", e.Type)
	if e.Step != "" {
		fmt.Fprintf(&buf, " (step %s)", e.Step)
	}
	fmt.Fprintf(&buf, "\n  Expected: %s\n  Actual: %s", e.Expected, e.Actual)
	return buf.String()
}

// parseFraction parses "n" or "n/d" with d > 0.
func parseFraction(s string) (domain.Fraction, error) {
	num, den, found := strings.Cut(strings.TrimSpace(s), "/")
	n, err := strconv.ParseInt(strings.TrimSpace(num), 10, 64)
	if err != nil {
		return domain.Fraction{}, fmt.Errorf("invalid fraction %q", s)
	}
	d := int64(1)
	if found {
		d, err = strconv.ParseInt(strings.TrimSpace(den), 10, 64)
		if err != nil || d <= 0 {
			return domain.Fraction{}, fmt.Errorf("invalid fraction %q", s)
		}
	}
	return domain.Fraction{Num: n, Den: d}, nil
}

// assertBalance compares the derived balance with the expectation. The
// expected fraction need not be in lowest terms.
func assertBalance(got ir.Balance, want BalanceExpect) error {
	f, err := parseFraction(want.Consumed)
	if err != nil {
		return err
	}
	expected := domain.NewFraction(f.Num, f.Den)
	if got.Ruler != want.Ruler || got.Num != expected.Num || got.Den != expected.Den {
		return &AssertionError{
			Type:     "balance",
			Expected: fmt.Sprintf("%s %d/%d", want.Ruler, expected.Num, expected.Den),
			Actual:   fmt.Sprintf("%s %d/%d", got.Ruler, got.Num, got.Den),
		}
	}
	return nil
}

// assertStep checks one traced step against its expectation.
func assertStep(ev TraceEvent, st Step) error {
	if st.Error != "" || ev.Error != "" {
		if ev.Error != st.Error {
			return &AssertionError{
				Type:     "error",
				Step:     st.Name,
				Expected: orNone(st.Error),
				Actual:   orNone(ev.Error),
			}
		}
		return nil
	}

	got := make([]string, len(ev.Periods))
	for i, p := range ev.Periods {
		got[i] = p.Ruler
	}
	if strings.Join(got, ",") != strings.Join(st.Rulers, ",") {
		return &AssertionError{
			Type:     "rulers",
			Step:     st.Name,
			Expected: "[" + strings.Join(st.Rulers, " ") + "]",
			Actual:   "[" + strings.Join(got, " ") + "]",
		}
	}
	return nil
}

func orNone(code string) string {
	if code == "" {
		return "no error"
	}
	return code
}
