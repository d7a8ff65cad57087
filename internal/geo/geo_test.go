package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm_KnownPair(t *testing.T) {
	// London to Paris is roughly 344 km.
	d := DistanceKm(51.5074, -0.1278, 48.8566, 2.3522)
	assert.InDelta(t, 344, d, 5)
}

func TestDistanceKm_ZeroForSamePoint(t *testing.T) {
	assert.Equal(t, 0.0, DistanceKm(40.0, -73.0, 40.0, -73.0))
}

func TestWithinRadius(t *testing.T) {
	lat, lon := 51.51, -0.12
	d, ok := WithinRadius(51.5074, -0.1278, &lat, &lon, 5)
	assert.True(t, ok)
	assert.Less(t, d, 5.0)

	far := 48.8566
	farLon := 2.3522
	_, ok = WithinRadius(51.5074, -0.1278, &far, &farLon, 50)
	assert.False(t, ok)
}

func TestWithinRadius_MissingCoordinates(t *testing.T) {
	_, ok := WithinRadius(51.5, -0.12, nil, nil, 1000)
	assert.False(t, ok)
}
