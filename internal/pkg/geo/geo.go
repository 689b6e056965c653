package geo

import "math"

// EarthRadiusMeters is the mean radius used by the haversine formula.
const EarthRadiusMeters = 6371000

// Coordinates is a WGS84 point in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the point lies inside the latitude/longitude ranges.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Distance returns the great-circle distance between a and b in meters.
// A missing point yields +Inf so it can never satisfy a proximity check.
func Distance(a, b *Coordinates) float64 {
	if a == nil || b == nil {
		return math.Inf(1)
	}
	return HaversineMeters(a.Lat, a.Lon, b.Lat, b.Lon)
}

// HaversineMeters computes the distance between two coordinate pairs in meters.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * (math.Pi / 180.0)
	dLon := (lon2 - lon1) * (math.Pi / 180.0)

	lat1Rad := lat1 * (math.Pi / 180.0)
	lat2Rad := lat2 * (math.Pi / 180.0)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// Offset returns the point reached by moving meters due north (positive) or
// south (negative) from origin along its meridian.
func Offset(origin Coordinates, meters float64) Coordinates {
	dLat := meters / EarthRadiusMeters * (180.0 / math.Pi)
	return Coordinates{Lat: origin.Lat + dLat, Lon: origin.Lon}
}
