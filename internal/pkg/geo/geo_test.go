package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance_Identity(t *testing.T) {
	p := &Coordinates{Lat: -3.7319, Lon: -38.5267}
	assert.Equal(t, 0.0, Distance(p, p))
}

func TestDistance_Symmetric(t *testing.T) {
	a := &Coordinates{Lat: -3.7319, Lon: -38.5267}
	b := &Coordinates{Lat: -3.7436, Lon: -38.5356}
	assert.InDelta(t, Distance(a, b), Distance(b, a), 1e-9)
}

func TestDistance_MissingPointIsInfinite(t *testing.T) {
	a := &Coordinates{Lat: 10, Lon: 10}
	assert.True(t, math.IsInf(Distance(nil, a), 1))
	assert.True(t, math.IsInf(Distance(a, nil), 1))
	assert.True(t, math.IsInf(Distance(nil, nil), 1))
}

func TestHaversineMeters_KnownDistance(t *testing.T) {
	// One degree of latitude on a 6,371 km sphere.
	got := HaversineMeters(0, 0, 1, 0)
	assert.InDelta(t, 111194.9, got, 0.5)
}

func TestOffset(t *testing.T) {
	origin := Coordinates{Lat: -3.7319, Lon: -38.5267}
	for _, meters := range []float64{1, 150, 300, 500} {
		p := Offset(origin, meters)
		assert.InDelta(t, meters, Distance(&origin, &p), 1e-6)
	}
}

func TestCoordinates_Valid(t *testing.T) {
	cases := []struct {
		c    Coordinates
		want bool
	}{
		{Coordinates{0, 0}, true},
		{Coordinates{90, 180}, true},
		{Coordinates{-90.1, 0}, false},
		{Coordinates{0, 180.5}, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.c.Valid(), "%+v", c.c)
	}
}
