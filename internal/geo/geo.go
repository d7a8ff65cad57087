package geo

import "math"

const earthRadiusKm = 6371

// DistanceKm computes the great-circle distance between two points using the
// haversine formula.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := deg2rad(lat2 - lat1)
	dLon := deg2rad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(deg2rad(lat1))*math.Cos(deg2rad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// WithinRadius reports whether a candidate point with possibly-missing
// coordinates falls inside radiusKm of the origin. Points without
// coordinates are never "nearby".
func WithinRadius(originLat, originLon float64, lat, lon *float64, radiusKm float64) (float64, bool) {
	if lat == nil || lon == nil {
		return 0, false
	}
	d := DistanceKm(originLat, originLon, *lat, *lon)
	return d, d <= radiusKm
}

func deg2rad(deg float64) float64 {
	return deg * math.Pi / 180
}
