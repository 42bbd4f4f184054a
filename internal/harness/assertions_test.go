package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dasha/internal/ir"
)

func TestParseFraction(t *testing.T) {
	f, err := parseFraction("13/12")
	require.NoError(t, err)
	assert.Equal(t, int64(13), f.Num)
	assert.Equal(t, int64(12), f.Den)

	f, err = parseFraction(" -2 ")
	require.NoError(t, err)
	assert.Equal(t, int64(-2), f.Num)
	assert.Equal(t, int64(1), f.Den)

	for _, bad := range []string{"", "x", "1/0", "1/-2", "1/y"} {
		_, err := parseFraction(bad)
		assert.Error(t, err, bad)
	}
}

func TestAssertBalance_NormalizesExpectation(t *testing.T) {
	got := ir.Balance{Ruler: "Moon", Num: 2, Den: 5}
	assert.NoError(t, assertBalance(got, BalanceExpect{Ruler: "Moon", Consumed: "4/10"}))
	assert.Error(t, assertBalance(got, BalanceExpect{Ruler: "Moon", Consumed: "1/2"}))
	assert.Error(t, assertBalance(got, BalanceExpect{Ruler: "Mars", Consumed: "2/5"}))
}

func TestAssertStep(t *testing.T) {
	ev := TraceEvent{Step: "s", Periods: []ir.Period{{Ruler: "Moon"}, {Ruler: "Jupiter"}}}
	assert.NoError(t, assertStep(ev, Step{Name: "s", Rulers: []string{"Moon", "Jupiter"}}))

	err := assertStep(ev, Step{Name: "s", Rulers: []string{"Moon"}})
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "rulers", ae.Type)
	assert.Equal(t, "[Moon Jupiter]", ae.Actual)

	failed := TraceEvent{Step: "s", Error: "INVALID_DEPTH"}
	assert.NoError(t, assertStep(failed, Step{Name: "s", Error: "INVALID_DEPTH"}))

	err = assertStep(failed, Step{Name: "s", Rulers: []string{"Moon"}})
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "no error", ae.Expected)
	assert.Equal(t, "INVALID_DEPTH", ae.Actual)
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{Type: "rulers", Step: "birth", Expected: "[Moon]", Actual: "[Mars]"}
	assert.Equal(t, "assertion failed: rulers (step birth)\n  Expected: [Moon]\n  Actual: [Mars]", err.Error())
}
