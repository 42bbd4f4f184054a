package system

// Ruler identifies the body owning an interval: a planet, a sign, a yogini
// or the ascendant.
type Ruler string

// Planets.
const (
	Sun     Ruler = "Sun"
	Moon    Ruler = "Moon"
	Mars    Ruler = "Mars"
	Mercury Ruler = "Mercury"
	Jupiter Ruler = "Jupiter"
	Venus   Ruler = "Venus"
	Saturn  Ruler = "Saturn"
	Rahu    Ruler = "Rahu"
	Ketu    Ruler = "Ketu"

	// Ascendant rules the eighth Kakshya.
	Ascendant Ruler = "Ascendant"
)

// Signs.
const (
	Aries       Ruler = "Aries"
	Taurus      Ruler = "Taurus"
	Gemini      Ruler = "Gemini"
	Cancer      Ruler = "Cancer"
	Leo         Ruler = "Leo"
	Virgo       Ruler = "Virgo"
	Libra       Ruler = "Libra"
	Scorpio     Ruler = "Scorpio"
	Sagittarius Ruler = "Sagittarius"
	Capricorn   Ruler = "Capricorn"
	Aquarius    Ruler = "Aquarius"
	Pisces      Ruler = "Pisces"
)

// Yoginis.
const (
	Mangala  Ruler = "Mangala"
	Pingala  Ruler = "Pingala"
	Dhanya   Ruler = "Dhanya"
	Bhramari Ruler = "Bhramari"
	Bhadrika Ruler = "Bhadrika"
	Ulka     Ruler = "Ulka"
	Siddha   Ruler = "Siddha"
	Sankata  Ruler = "Sankata"
)

// Signs lists the zodiac in order from 0° Aries.
var Signs = [12]Ruler{
	Aries, Taurus, Gemini, Cancer, Leo, Virgo,
	Libra, Scorpio, Sagittarius, Capricorn, Aquarius, Pisces,
}

var signLords = map[Ruler]Ruler{
	Aries: Mars, Taurus: Venus, Gemini: Mercury, Cancer: Moon,
	Leo: Sun, Virgo: Mercury, Libra: Venus, Scorpio: Mars,
	Sagittarius: Jupiter, Capricorn: Saturn, Aquarius: Saturn, Pisces: Jupiter,
}

var yoginiLords = map[Ruler]Ruler{
	Mangala: Moon, Pingala: Sun, Dhanya: Jupiter, Bhramari: Mars,
	Bhadrika: Mercury, Ulka: Saturn, Siddha: Venus, Sankata: Rahu,
}

// Lord returns the planet behind a sign or a yogini. Planets are their own
// lord.
func (r Ruler) Lord() Ruler {
	if l, ok := signLords[r]; ok {
		return l
	}
	if l, ok := yoginiLords[r]; ok {
		return l
	}
	return r
}

// SignAt returns the sign index (0 = Aries) for a position counted in whole
// signs from 0°.
func SignAt(index int) Ruler {
	return Signs[((index%12)+12)%12]
}
