package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortsKeys(t *testing.T) {
	got, err := MarshalCanonical(Object{
		"b": Int(2),
		"a": Array{Int(1), Bool(true), String("x")},
		"c": Object{"z": Int(-1), "y": Bool(false)},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":[1,true,"x"],"b":2,"c":{"y":false,"z":-1}}`, string(got))
}

func TestMarshalCanonical_UTF16KeyOrder(t *testing.T) {
	// U+10000 encodes as a surrogate pair (0xD800...) which sorts before
	// U+FFFD in UTF-16 but after it in UTF-8.
	got, err := MarshalCanonical(Object{"\uFFFD": Int(1), "\U00010000": Int(2)})
	require.NoError(t, err)
	assert.Equal(t, "{\"\U00010000\":2,\"\uFFFD\":1}", string(got))
}

func TestMarshalCanonical_Strings(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no html escaping", "<a&b>", `"<a&b>"`},
		{"nfc normalized", "e\u0301", "\"\u00e9\""},
		{"line separator literal", "a\u2028b", "\"a\u2028b\""},
		{"escaped backslash kept", `a\u2028`, `"a\\u2028"`},
		{"control escaped", "a\nb", `"a\nb"`},
		{"degree sign", "13°20′", `"13°20′"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(String(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshalCanonical_RejectsNull(t *testing.T) {
	_, err := MarshalCanonical(nil)
	require.Error(t, err)

	_, err = MarshalCanonical(Object{"a": nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"a"`)
}

func TestTimelineKey_Hash(t *testing.T) {
	key := TimelineKey{
		System:       "VIMSOTTARI",
		Reference:    163_200_000_000,
		Epoch:        "1990-04-12T06:30:00Z",
		HorizonYears: 120,
		Depth:        2,
	}
	canonical, err := MarshalCanonical(key.Value())
	require.NoError(t, err)
	assert.Equal(t,
		`{"depth":2,"epoch":"1990-04-12T06:30:00Z","horizon_years":120,"reference":163200000000,"system":"VIMSOTTARI"}`,
		string(canonical))

	h1, err := key.Hash()
	require.NoError(t, err)
	h2, err := key.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)

	key.Depth = 3
	h3, err := key.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestPeriod_ValueOmitsEmptyTimes(t *testing.T) {
	zodiac := Period{Ruler: "Ketu", Start: 0, End: 2_800_000_000}
	got, err := MarshalCanonical(zodiac.Value())
	require.NoError(t, err)
	assert.Equal(t, `{"depth":0,"end":2800000000,"ruler":"Ketu","start":0}`, string(got))

	timed := Period{Ruler: "Moon", Depth: 1, Start: 0, End: 5, From: "a", To: "b"}
	got, err = MarshalCanonical(timed.Value())
	require.NoError(t, err)
	assert.Equal(t, `{"depth":1,"end":5,"from":"a","ruler":"Moon","start":0,"to":"b"}`, string(got))
}

func TestSystemRecord_HashDiffersByDomain(t *testing.T) {
	rec := SystemRecord{ID: "X", Rulers: []RulerWeight{{Ruler: "Sun", Weight: 1}}}
	h, err := rec.Hash()
	require.NoError(t, err)

	canonical, err := MarshalCanonical(rec.Value())
	require.NoError(t, err)
	assert.NotEqual(t, hashWithDomain(DomainTimeline, canonical), h)
	assert.Equal(t, hashWithDomain(DomainSystem, canonical), h)
}
