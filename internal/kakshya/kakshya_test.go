package kakshya

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dasha/internal/domain"
	"github.com/roach88/dasha/internal/system"
)

func TestSpan(t *testing.T) {
	assert.Equal(t, domain.FromDMS(3, 45, 0), Span)
}

func TestLocateInSign_BoundaryBelongsToSecond(t *testing.T) {
	ctx := context.Background()

	d, err := LocateInSign(ctx, system.Aries, domain.FromDMS(3, 45, 0))
	require.NoError(t, err)
	assert.Equal(t, Division{
		Sign:   system.Aries,
		Number: 2,
		Ruler:  system.Jupiter,
		Start:  domain.FromDMS(3, 45, 0),
		End:    domain.FromDMS(7, 30, 0),
	}, d)

	d, err = LocateInSign(ctx, system.Aries, domain.FromDMS(3, 45, 0)-1)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Number)
	assert.Equal(t, system.Saturn, d.Ruler)
}

func TestLocate_EverySignRestartsTheOrder(t *testing.T) {
	ctx := context.Background()

	d, err := Locate(ctx, domain.FromDMS(59, 59, 59))
	require.NoError(t, err)
	assert.Equal(t, system.Taurus, d.Sign)
	assert.Equal(t, 8, d.Number)
	assert.Equal(t, system.Ascendant, d.Ruler)

	d, err = Locate(ctx, domain.FromDMS(60, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, system.Gemini, d.Sign)
	assert.Equal(t, 1, d.Number)
	assert.Equal(t, system.Saturn, d.Ruler)

	d, err = Locate(ctx, -domain.FromDMS(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, system.Pisces, d.Sign)
	assert.Equal(t, 8, d.Number)
}

func TestLocateInSign_Rejects(t *testing.T) {
	ctx := context.Background()

	_, err := LocateInSign(ctx, system.Saturn, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidReference)

	_, err = LocateInSign(ctx, system.Leo, domain.Sign)
	assert.ErrorIs(t, err, domain.ErrInvalidReference)

	_, err = LocateInSign(ctx, system.Leo, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidReference)
}

func TestDivisions(t *testing.T) {
	divs, err := Divisions(system.Scorpio)
	require.NoError(t, err)
	require.Len(t, divs, PerSign)

	signStart := 7 * domain.Sign
	wantRulers := []system.Ruler{
		system.Saturn, system.Jupiter, system.Mars, system.Sun,
		system.Venus, system.Mercury, system.Moon, system.Ascendant,
	}
	for i, d := range divs {
		assert.Equal(t, wantRulers[i], d.Ruler)
		assert.Equal(t, signStart+domain.Value(i)*Span, d.Start)
		assert.Equal(t, Span, d.End-d.Start)
	}

	_, err = Divisions(system.Ketu)
	assert.ErrorIs(t, err, domain.ErrInvalidReference)
}

func TestSharedTreeUsesRegistryBalance(t *testing.T) {
	def, err := system.Global().Resolve(system.Kakshya)
	require.NoError(t, err)
	want, err := def.DeriveBalance(0)
	require.NoError(t, err)

	assert.Equal(t, want, load().Balance())
	assert.Equal(t, def.Table.At(want.Index).Ruler, load().TopLevel()[0].Ruler)
}
