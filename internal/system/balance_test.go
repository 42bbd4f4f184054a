package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dasha/internal/domain"
)

func mustResolve(t *testing.T, id ID) *Definition {
	t.Helper()
	def, err := Global().Resolve(id)
	require.NoError(t, err)
	return def
}

func TestDeriveBalance(t *testing.T) {
	tests := []struct {
		name     string
		system   ID
		ref      domain.Value
		ruler    Ruler
		consumed domain.Fraction
	}{
		{"vimsottari ashwini start", Vimsottari, 0, Ketu, domain.Fraction{Num: 0, Den: 1}},
		{"vimsottari moon 40 percent", Vimsottari, domain.FromDMS(45, 20, 0), Moon, domain.Fraction{Num: 2, Den: 5}},
		{"vimsottari revati end", Vimsottari, domain.FromDMS(353, 20, 0), Mercury, domain.Fraction{Num: 1, Den: 2}},
		{"vimsottari wraps past 360", Vimsottari, domain.FullCircle + domain.FromDMS(45, 20, 0), Moon, domain.Fraction{Num: 2, Den: 5}},
		{"vimsottari negative longitude", Vimsottari, -domain.FromDMS(6, 40, 0), Mercury, domain.Fraction{Num: 1, Den: 2}},
		{"yogini ashwini is bhramari", Yogini, 0, Bhramari, domain.Fraction{Num: 0, Den: 1}},
		{"yogini rohini", Yogini, domain.FromDMS(40, 0, 0), Siddha, domain.Fraction{Num: 0, Den: 1}},
		{"ashtottari ardra start", Ashtottari, domain.FromDMS(66, 40, 0), Sun, domain.Fraction{Num: 0, Den: 1}},
		{"ashtottari ashwini", Ashtottari, 0, Rahu, domain.Fraction{Num: 1, Den: 2}},
		{"kalachakra navamsa start", Kalachakra, domain.FromDMS(3, 20, 0), Aries, domain.Fraction{Num: 0, Den: 1}},
		{"kalachakra half navamsa", Kalachakra, domain.FromDMS(1, 40, 0), Cancer, domain.Fraction{Num: 6, Den: 7}},
		{"chara mid taurus", Chara, domain.FromDMS(45, 0, 0), Taurus, domain.Fraction{Num: 1, Den: 2}},
		{"kp fixed", KPSublord, domain.FromDMS(123, 0, 0), Ketu, domain.Fraction{Num: 0, Den: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := mustResolve(t, tt.system)
			b, err := def.DeriveBalance(tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.ruler, def.Table.At(b.Index).Ruler)
			assert.Equal(t, tt.consumed, b.Consumed)
			assert.True(t, b.Consumed.Valid())
		})
	}
}

func TestBalance_Remaining(t *testing.T) {
	b := Balance{Index: 3, Consumed: domain.NewFraction(2, 5)}
	assert.Equal(t, domain.Fraction{Num: 3, Den: 5}, b.Remaining())
}

func TestBalanceAt(t *testing.T) {
	tab := MustTable(vimsottariEntries...)

	b, err := BalanceAt(tab, Venus, domain.NewFraction(1, 4))
	require.NoError(t, err)
	assert.Equal(t, 1, b.Index)

	_, err = BalanceAt(tab, Aries, domain.NewFraction(0, 1))
	assert.ErrorIs(t, err, domain.ErrInvalidReference)

	_, err = BalanceAt(tab, Venus, domain.Fraction{Num: 1, Den: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidReference)
}

func TestBalanceRule_Validate(t *testing.T) {
	tab := MustTable(vimsottariEntries...)

	assert.Error(t, EqualSpanBalance{Span: 7 * domain.Degree}.validate(tab))
	assert.NoError(t, EqualSpanBalance{Span: domain.Nakshatra}.validate(tab))

	assert.Error(t, GroupSpanBalance{Span: domain.Nakshatra, Groups: []int{3, 3}}.validate(tab))
	assert.Error(t, GroupSpanBalance{Span: domain.Nakshatra, Groups: []int{3, 3, 3, 3, 3, 3, 3, 3, 2}}.validate(tab))
	assert.NoError(t, GroupSpanBalance{Span: domain.Nakshatra, Groups: []int{3, 3, 3, 3, 3, 3, 3, 3, 3}}.validate(tab))

	assert.Error(t, CycleFractionBalance{}.validate(tab))
}
