package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversine_SamePointIsZero(t *testing.T) {
	points := []Point{
		{Lon: 127.0, Lat: 37.5},
		{Lon: 126.97, Lat: 37.56},
		{Lon: 0, Lat: 0},
		{Lon: -122.4194, Lat: 37.7749},
	}

	for _, p := range points {
		assert.Equal(t, 0.0, Haversine(p.Lon, p.Lat, p.Lon, p.Lat))
	}
}

func TestHaversine_Symmetric(t *testing.T) {
	a := Point{Lon: 127.0, Lat: 37.5}
	b := Point{Lon: 129.07, Lat: 35.18}

	assert.InDelta(t, Distance(a, b), Distance(b, a), 1e-9)
}

func TestHaversine_KnownDistance(t *testing.T) {
	// one degree of latitude is about 111.19 km on a 6371 km sphere
	d := Haversine(127.0, 37.0, 127.0, 38.0)
	assert.InDelta(t, 111195.0, d, 5.0)
}

func TestHaversineStrings_InvalidInputIsInfinite(t *testing.T) {
	tests := []struct {
		name string
		args [4]string
	}{
		{"empty", [4]string{"", "37.5", "127.0", "37.5"}},
		{"letters", [4]string{"127.0", "abc", "127.0", "37.5"}},
		{"nan", [4]string{"127.0", "37.5", "NaN", "37.5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := HaversineStrings(tt.args[0], tt.args[1], tt.args[2], tt.args[3])
			assert.True(t, math.IsInf(d, 1))
		})
	}
}

func TestHaversine_NonFiniteIsInfinite(t *testing.T) {
	assert.True(t, math.IsInf(Haversine(math.NaN(), 37.5, 127, 37.5), 1))
	assert.True(t, math.IsInf(Haversine(127, math.Inf(-1), 127, 37.5), 1))
}

func TestCorrectAxes(t *testing.T) {
	lon, lat := CorrectAxes(37.5, 127.0)
	assert.Equal(t, 127.0, lon)
	assert.Equal(t, 37.5, lat)

	// already correct
	lon, lat = CorrectAxes(127.0, 37.5)
	assert.Equal(t, 127.0, lon)
	assert.Equal(t, 37.5, lat)

	// outside Korea either way stays untouched
	lon, lat = CorrectAxes(-122.4, 37.7)
	assert.Equal(t, -122.4, lon)
	assert.Equal(t, 37.7, lat)
}

func TestCorrectAxes_Idempotent(t *testing.T) {
	inputs := [][2]float64{
		{127.0, 37.5},
		{37.5, 127.0},
		{126.5, 33.2},
		{10, 20},
	}

	for _, in := range inputs {
		lon1, lat1 := CorrectAxes(in[0], in[1])
		lon2, lat2 := CorrectAxes(lon1, lat1)
		assert.Equal(t, lon1, lon2)
		assert.Equal(t, lat1, lat2)
	}
}

func TestParsePoint(t *testing.T) {
	p, ok := ParsePoint(" 37.5 ", "127.0")
	assert.True(t, ok)
	assert.Equal(t, Point{Lon: 127.0, Lat: 37.5}, p)

	_, ok = ParsePoint("", "37.5")
	assert.False(t, ok)
}
