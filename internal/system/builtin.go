package system

import "github.com/roach88/dasha/internal/domain"

// vimsottariEntries is the classical 120-year order from Ashwini's lord.
var vimsottariEntries = []Entry{
	{Ketu, 7}, {Venus, 20}, {Sun, 6}, {Moon, 10}, {Mars, 7},
	{Rahu, 18}, {Jupiter, 16}, {Saturn, 19}, {Mercury, 17},
}

// Builtins returns fresh copies of the built-in definitions in
// registration order.
func Builtins() []*Definition {
	return []*Definition{
		{
			ID:             Vimsottari,
			Name:           "Vimsottari",
			Axis:           AxisTime,
			Table:          MustTable(vimsottariEntries...),
			CanonicalTotal: 120,
			Cycle:          120 * domain.Year,
			ChildStart:     OwnRulerFirst,
			TopLevel:       WeightedSpans,
			Balance:        EqualSpanBalance{Span: domain.Nakshatra},
		},
		{
			ID:   Yogini,
			Name: "Yogini",
			Axis: AxisTime,
			Table: MustTable(
				Entry{Mangala, 1}, Entry{Pingala, 2}, Entry{Dhanya, 3}, Entry{Bhramari, 4},
				Entry{Bhadrika, 5}, Entry{Ulka, 6}, Entry{Siddha, 7}, Entry{Sankata, 8},
			),
			CanonicalTotal: 36,
			Cycle:          36 * domain.Year,
			ChildStart:     OwnRulerFirst,
			TopLevel:       WeightedSpans,
			Balance:        EqualSpanBalance{Span: domain.Nakshatra, Offset: 3},
		},
		{
			ID:   Ashtottari,
			Name: "Ashtottari",
			Axis: AxisTime,
			Table: MustTable(
				Entry{Sun, 6}, Entry{Moon, 15}, Entry{Mars, 8}, Entry{Mercury, 17},
				Entry{Saturn, 10}, Entry{Jupiter, 19}, Entry{Rahu, 12}, Entry{Venus, 21},
			),
			CanonicalTotal: 108,
			Cycle:          108 * domain.Year,
			ChildStart:     OwnRulerFirst,
			TopLevel:       WeightedSpans,
			// Counted from Ardra; Abhijit is folded into Saturn's three stars.
			Balance: GroupSpanBalance{
				Start:  5 * domain.Nakshatra,
				Span:   domain.Nakshatra,
				Groups: []int{4, 3, 4, 3, 3, 3, 4, 3},
			},
		},
		{
			ID:   Kalachakra,
			Name: "Kalachakra",
			Axis: AxisTime,
			// Savya sequence of the Aries navamsa group.
			Table: MustTable(
				Entry{Aries, 7}, Entry{Taurus, 16}, Entry{Gemini, 9}, Entry{Cancer, 21}, Entry{Leo, 5},
				Entry{Virgo, 9}, Entry{Libra, 16}, Entry{Scorpio, 7}, Entry{Sagittarius, 10},
			),
			CanonicalTotal: 100,
			Cycle:          100 * domain.Year,
			ChildStart:     OwnRulerFirst,
			TopLevel:       WeightedSpans,
			Balance:        CycleFractionBalance{Span: domain.Navamsa},
		},
		{
			ID:   Chara,
			Name: "Chara",
			Axis: AxisTime,
			// Nominal twelve years per sign; chart-specific lengths belong in
			// a custom definition.
			Table: MustTable(
				Entry{Aries, 12}, Entry{Taurus, 12}, Entry{Gemini, 12}, Entry{Cancer, 12},
				Entry{Leo, 12}, Entry{Virgo, 12}, Entry{Libra, 12}, Entry{Scorpio, 12},
				Entry{Sagittarius, 12}, Entry{Capricorn, 12}, Entry{Aquarius, 12}, Entry{Pisces, 12},
			),
			CanonicalTotal: 144,
			Cycle:          144 * domain.Year,
			ChildStart:     OwnRulerFirst,
			TopLevel:       WeightedSpans,
			Balance:        EqualSpanBalance{Span: domain.Sign},
		},
		{
			ID:             KPSublord,
			Name:           "KP sub-lord",
			Axis:           AxisZodiac,
			Table:          MustTable(vimsottariEntries...),
			CanonicalTotal: 120,
			// Nine equal stars per cycle, three cycles to the circle.
			Cycle:      120 * domain.Degree,
			ChildStart: OwnRulerFirst,
			TopLevel:   EqualSpans,
			Balance:    FixedBalance{},
		},
		{
			ID:   Kakshya,
			Name: "Kakshya",
			Axis: AxisZodiac,
			Table: MustTable(
				Entry{Saturn, 225}, Entry{Jupiter, 225}, Entry{Mars, 225}, Entry{Sun, 225},
				Entry{Venus, 225}, Entry{Mercury, 225}, Entry{Moon, 225}, Entry{Ascendant, 225},
			),
			CanonicalTotal: 1800,
			Cycle:          domain.Sign,
			ChildStart:     FixedSequence,
			TopLevel:       WeightedSpans,
			Balance:        FixedBalance{},
		},
	}
}
