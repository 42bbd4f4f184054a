package system

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dasha/internal/domain"
)

func TestNewTable_Totals(t *testing.T) {
	for _, def := range Builtins() {
		var sum int64
		for _, e := range def.Table.Entries() {
			sum += e.Weight
		}
		assert.Equal(t, sum, def.Table.Total(), "system %s", def.ID)
		assert.Equal(t, def.CanonicalTotal, def.Table.Total(), "system %s", def.ID)
	}
}

func TestNewTable_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
	}{
		{"empty", nil},
		{"zero weight", []Entry{{Sun, 1}, {Moon, 0}}},
		{"negative weight", []Entry{{Sun, -3}}},
		{"duplicate ruler", []Entry{{Sun, 1}, {Moon, 2}, {Sun, 3}}},
		{"unnamed ruler", []Entry{{"", 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.entries)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidSystemDefinition)
		})
	}
}

func TestNewTable_CopiesEntries(t *testing.T) {
	entries := []Entry{{Sun, 1}, {Moon, 2}}
	tab := MustTable(entries...)
	entries[0].Weight = 99
	assert.Equal(t, int64(1), tab.At(0).Weight)

	out := tab.Entries()
	out[1].Weight = 99
	assert.Equal(t, int64(2), tab.At(1).Weight)
}

func TestTable_CumulativeFrom(t *testing.T) {
	tab := MustTable(vimsottariEntries...)

	assert.Equal(t, int64(0), tab.CumulativeFrom(3, 0))
	assert.Equal(t, int64(17), tab.CumulativeFrom(3, 2))  // Moon + Mars
	assert.Equal(t, int64(24), tab.CumulativeFrom(8, 2))  // Mercury + Ketu, wraps
	assert.Equal(t, int64(120), tab.CumulativeFrom(5, 9)) // a full pass
	assert.Equal(t, int64(27), tab.CumulativeFrom(-1, 3)) // Mercury, Ketu, Venus
}

func TestTable_LocateAndIndex(t *testing.T) {
	tab := MustTable(vimsottariEntries...)

	assert.Equal(t, 0, tab.Locate(0))
	assert.Equal(t, 0, tab.Locate(6))
	assert.Equal(t, 1, tab.Locate(7))
	assert.Equal(t, 2, tab.Locate(27))
	assert.Equal(t, 8, tab.Locate(119))

	assert.Equal(t, 3, tab.Index(Moon))
	assert.Equal(t, -1, tab.Index(Aries))
	assert.Equal(t, Mercury, tab.At(-1).Ruler)
	assert.Equal(t, Ketu, tab.At(9).Ruler)
	assert.Equal(t, int64(33), tab.Before(3))
}

func TestRuler_Lord(t *testing.T) {
	assert.Equal(t, Mars, Scorpio.Lord())
	assert.Equal(t, Jupiter, Pisces.Lord())
	assert.Equal(t, Rahu, Sankata.Lord())
	assert.Equal(t, Moon, Mangala.Lord())
	assert.Equal(t, Saturn, Saturn.Lord())

	assert.Equal(t, Aries, SignAt(0))
	assert.Equal(t, Pisces, SignAt(-1))
	assert.Equal(t, Taurus, SignAt(13))
}
