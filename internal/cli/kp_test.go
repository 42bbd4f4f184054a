package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dasha/internal/system"
)

func TestKPLords(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "kp", "100", "0")
	require.NoError(t, err)

	resp := decode[KPOutput](t, out)
	require.Len(t, resp.Data.Lords, 2)

	pushya := resp.Data.Lords[0]
	assert.Equal(t, system.Cancer, pushya.Sign)
	assert.Equal(t, system.Moon, pushya.SignLord)
	assert.Equal(t, "Pushya", pushya.Nakshatra)
	assert.Equal(t, system.Saturn, pushya.StarLord)
	assert.Equal(t, system.Venus, pushya.SubLord)

	ashwini := resp.Data.Lords[1]
	assert.Equal(t, "Ashwini", ashwini.Nakshatra)
	assert.Equal(t, system.Ketu, ashwini.SubLord)
	assert.Equal(t, 1, ashwini.Segment)
}

func TestKPText(t *testing.T) {
	out, _, err := execute(t, "kp", "100:00")
	require.NoError(t, err)
	assert.Contains(t, out, "Pushya")
	assert.Contains(t, out, "sub Venus")
}

func TestKPTable(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "kp", "--table")
	require.NoError(t, err)

	resp := decode[KPTableOutput](t, out)
	require.Len(t, resp.Data.Segments, 249)
	assert.Equal(t, 1, resp.Data.Segments[0].Number)
	assert.Equal(t, 249, resp.Data.Segments[248].Number)
}

func TestKPRequiresInput(t *testing.T) {
	_, _, err := execute(t, "kp")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestKPBadLongitude(t *testing.T) {
	_, _, err := execute(t, "kp", "north")
	require.Error(t, err)
	assert.NotEqual(t, ExitSuccess, GetExitCode(err))
}

func TestKakshyaLocate(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "kakshya", "3:45", "3.7")
	require.NoError(t, err)

	resp := decode[KakshyaOutput](t, out)
	require.Len(t, resp.Data.Divisions, 2)
	assert.Equal(t, 2, resp.Data.Divisions[0].Number)
	assert.Equal(t, system.Jupiter, resp.Data.Divisions[0].Ruler)
	assert.Equal(t, 1, resp.Data.Divisions[1].Number)
	assert.Equal(t, system.Saturn, resp.Data.Divisions[1].Ruler)
}

func TestKakshyaSign(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "kakshya", "--sign", "leo")
	require.NoError(t, err)

	resp := decode[KakshyaOutput](t, out)
	require.Len(t, resp.Data.Divisions, 8)
	for i, d := range resp.Data.Divisions {
		assert.Equal(t, system.Leo, d.Sign)
		assert.Equal(t, i+1, d.Number)
	}
	assert.Equal(t, system.Ascendant, resp.Data.Divisions[7].Ruler)
}

func TestKakshyaUnknownSign(t *testing.T) {
	_, _, err := execute(t, "kakshya", "--sign", "Ophiuchus")
	require.Error(t, err)
}

func TestKakshyaRequiresInput(t *testing.T) {
	_, _, err := execute(t, "kakshya")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
