package domain

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMulDivRound_Exact(t *testing.T) {
	v, err := MulDivRound(20*Year, 20, 120)
	require.NoError(t, err)
	assert.Equal(t, Value(105_192_000_000_000_000), v)
}

func TestMulDivRound_HalfToEven(t *testing.T) {
	tests := []struct {
		x    Value
		num  int64
		den  int64
		want Value
	}{
		{5, 1, 2, 2},   // 2.5 -> 2
		{7, 1, 2, 4},   // 3.5 -> 4
		{1, 1, 3, 0},   // 0.333 -> 0
		{2, 1, 3, 1},   // 0.666 -> 1
		{-5, 1, 2, -2}, // -2.5 -> -2
		{-7, 1, 2, -4}, // -3.5 -> -4
		{10, 3, 4, 8},  // 7.5 -> 8
		{6, 3, 4, 4},   // 4.5 -> 4
	}
	for _, tt := range tests {
		got, err := MulDivRound(tt.x, tt.num, tt.den)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%d*%d/%d", tt.x, tt.num, tt.den)
	}
}

func TestMulDivRound_WideIntermediate(t *testing.T) {
	// x*num exceeds int64 but the quotient fits.
	v, err := MulDivRound(MaxValue, 7, 7)
	require.NoError(t, err)
	assert.Equal(t, MaxValue, v)
}

func TestMulDivRound_Overflow(t *testing.T) {
	_, err := MulDivRound(MaxValue, 2, 1)
	require.Error(t, err)
	assert.True(t, IsOverflow(err))
}

func TestMulDivRound_InvalidRatio(t *testing.T) {
	_, err := MulDivRound(10, 1, 0)
	require.Error(t, err)
	_, err = MulDivRound(10, -1, 2)
	require.Error(t, err)
}

func TestAddSubOverflow(t *testing.T) {
	_, err := Add(MaxValue, 1)
	assert.True(t, errors.Is(err, ErrArithmeticOverflow))

	_, err = Sub(Value(math.MinInt64), 1)
	assert.True(t, errors.Is(err, ErrArithmeticOverflow))

	v, err := Add(-5, 3)
	require.NoError(t, err)
	assert.Equal(t, Value(-2), v)
}

func TestMul(t *testing.T) {
	v, err := Mul(Year, -2)
	require.NoError(t, err)
	assert.Equal(t, -2*Year, v)

	_, err = Mul(Year, 1000)
	assert.True(t, IsOverflow(err))
}

func TestYears(t *testing.T) {
	v, err := Years(120)
	require.NoError(t, err)
	assert.Equal(t, Value(3_786_912_000_000_000_000), v)

	_, err = Years(10_000)
	require.Error(t, err)
	assert.Equal(t, CodeArithmeticOverflow, CodeOf(err))
}

func TestSinceEpoch(t *testing.T) {
	epoch := time.Date(1990, 5, 17, 4, 30, 0, 0, time.UTC)

	v, err := SinceEpoch(epoch, epoch.Add(36*time.Hour+5))
	require.NoError(t, err)
	assert.Equal(t, Value(36*3600)*Second+5, v)

	v, err = SinceEpoch(epoch, epoch.Add(-time.Second))
	require.NoError(t, err)
	assert.Equal(t, -Second, v)

	assert.True(t, epoch.Add(time.Hour).Equal(v.Time(epoch).Add(time.Hour+time.Second)))
}

func TestSinceEpoch_Overflow(t *testing.T) {
	epoch := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := SinceEpoch(epoch, time.Date(2500, 1, 1, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.True(t, IsOverflow(err))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, Value(0), FullCircle.Normalize())
	assert.Equal(t, 350*Degree, (-10 * Degree).Normalize())
	assert.Equal(t, 5*Degree, (365 * Degree).Normalize())
}

func TestFromDMSAndFormat(t *testing.T) {
	v := FromDMS(3, 45, 0)
	assert.Equal(t, 225*Arcminute, v)
	assert.Equal(t, "3°45′00″", v.FormatDMS())

	assert.Equal(t, "0°46′40″", (2_800_000_000 * Value(1)).FormatDMS())
	assert.Equal(t, "0°00′00.500000″", (Arcsecond / 2).FormatDMS())
	assert.Equal(t, "-1°00′00″", (-Degree).FormatDMS())
}

func TestParseDegrees(t *testing.T) {
	tests := []struct {
		in   string
		want Value
	}{
		{"0", 0},
		{"45.5", 45*Degree + 30*Arcminute},
		{"13.3333333333", 48_000_000_000},    // 47_999_999_999.88 µas
		{"359.999999999", 1_295_999_999_996}, // 1_295_999_999_996.4 µas
		{"0.00000000125", 4},                 // 4.5 µas, half to even
		{"0.00000000375", 14},                // 13.5 µas, half to even
		{"-1.5", -(Degree + 30*Arcminute)},
		{" 120° ", 120 * Degree},
	}
	for _, tt := range tests {
		got, err := ParseDegrees(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseDegrees_Invalid(t *testing.T) {
	_, err := ParseDegrees("north")
	require.Error(t, err)
	assert.Equal(t, CodeInvalidReference, CodeOf(err))
}

func TestParseLongitude(t *testing.T) {
	tests := []struct {
		in   string
		want Value
	}{
		{"45:20:00", 163_200_000_000},
		{"45:20", FromDMS(45, 20, 0)},
		{"100", 100 * Degree},
		{"0:00:07.25", 7_250_000},
		{"0:00:00.0000005", 0}, // 0.5 µas, half to even
		{"0:00:00.0000015", 2}, // 1.5 µas, half to even
		{"-3:45:00", -FromDMS(3, 45, 0)},
	}
	for _, tt := range tests {
		got, err := ParseLongitude(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"1:2:3:4", "x:20", "10:60", "10:20:60", "10:20:-1", "10:-5"} {
		_, err := ParseLongitude(bad)
		require.Error(t, err, bad)
		assert.Equal(t, CodeInvalidReference, CodeOf(err), bad)
	}
}

func TestFraction(t *testing.T) {
	f := NewFraction(320, 800)
	assert.Equal(t, Fraction{Num: 2, Den: 5}, f)
	assert.True(t, f.Valid())
	assert.False(t, f.Zero())
	assert.False(t, Fraction{Num: 1, Den: 1}.Valid())

	v, err := f.Of(10 * Year)
	require.NoError(t, err)
	assert.Equal(t, 4*Year, v)
}

func TestErrorMatching(t *testing.T) {
	err := NewError(CodeUnknownSystem, "no system %q", "X").WithSystem("X")
	assert.True(t, errors.Is(err, ErrUnknownSystem))
	assert.False(t, errors.Is(err, ErrInvalidHorizon))
	assert.Contains(t, err.Error(), "UNKNOWN_SYSTEM")
	assert.Contains(t, err.Error(), "system=X")

	wrapped := errors.Join(errors.New("context"), err)
	assert.True(t, IsCode(wrapped, CodeUnknownSystem))
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
}
