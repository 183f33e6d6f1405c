package dtmprofile

import "math"

const earthRadiusMeters = 6371000.0

// haversineMeters returns the great-circle distance between a and b.
func haversineMeters(a, b GeoPoint) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Densify expands a polyline into points spaced roughly intervalMeters
// apart along each segment. Interpolation is linear in (lon, lat), a planar
// approximation acceptable at path scales of kilometers. Every input vertex
// appears in the output exactly once, joins included.
func Densify(vertices []GeoPoint, intervalMeters float64) []GeoPoint {
	if len(vertices) == 0 {
		return nil
	}
	if intervalMeters <= 0 {
		intervalMeters = DefaultSamplingIntervalMeters
	}

	points := make([]GeoPoint, 0, len(vertices))
	points = append(points, vertices[0])
	for i := 1; i < len(vertices); i++ {
		from, to := vertices[i-1], vertices[i]
		n := max(2, int(math.Ceil(haversineMeters(from, to)/intervalMeters)))
		for k := 1; k < n; k++ {
			t := float64(k) / float64(n-1)
			points = append(points, GeoPoint{
				Lon: from.Lon + t*(to.Lon-from.Lon),
				Lat: from.Lat + t*(to.Lat-from.Lat),
			})
		}
	}
	return points
}
