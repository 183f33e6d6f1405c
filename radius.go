package dtmprofile

import (
	"context"
	"math"
)

const (
	metersPerDegreeLat = 111320.0

	// Cap on the stepped-grid sample count; the stride grows on larger
	// windows so exhaustiveness is traded for speed.
	maxRadiusWindowSamples = 200

	// Neighborhood half-width of the unconditional center probe.
	centerProbeRadius = 2
)

// MinMaxInRadius returns the minimum and maximum valid elevation within
// radiusMeters of (lon, lat). Large pixel windows are subsampled with an
// adaptive stride, so results on large radii are approximate; a fixed ±2
// pixel probe around the query pixel guarantees the query location itself
// is never skipped. Reports not-ok when no valid sample exists.
func (s *Sampler) MinMaxInRadius(ctx context.Context, lon, lat, radiusMeters float64) (minElev, maxElev float64, ok bool) {
	minElev = math.Inf(1)
	maxElev = math.Inf(-1)
	found := false
	accept := func(elev float64) {
		minElev = math.Min(minElev, elev)
		maxElev = math.Max(maxElev, elev)
		found = true
	}

	center := GeoPoint{Lon: lon, Lat: lat}

	// Pixel window of the radius, via a degree-space bounding box. Both
	// corners clamp into the raster, so an off-raster radius degenerates
	// to edge pixels instead of failing.
	dLat := radiusMeters / metersPerDegreeLat
	cosLat := math.Abs(math.Cos(lat * math.Pi / 180))
	if cosLat < 1e-6 {
		cosLat = 1e-6
	}
	dLon := radiusMeters / (metersPerDegreeLat * cosLat)
	topLeft, ok1 := s.GeoToPixel(ctx, lon-dLon, lat+dLat)
	bottomRight, ok2 := s.GeoToPixel(ctx, lon+dLon, lat-dLat)
	if ok1 && ok2 && radiusMeters > 0 {
		x0, x1 := min(topLeft.X, bottomRight.X), max(topLeft.X, bottomRight.X)
		y0, y1 := min(topLeft.Y, bottomRight.Y), max(topLeft.Y, bottomRight.Y)
		stride := radiusStride((x1 - x0 + 1) * (y1 - y0 + 1))
		for py := y0; py <= y1; py += stride {
			for px := x0; px <= x1; px += stride {
				pc := PixelCoord{X: px, Y: py}
				elev := s.grid.At(pc)
				if math.IsNaN(elev) {
					continue
				}
				plon, plat, ok := s.PixelToGeo(ctx, pc)
				if !ok {
					continue
				}
				if haversineMeters(center, GeoPoint{Lon: plon, Lat: plat}) > radiusMeters {
					continue
				}
				accept(elev)
			}
		}
	}

	// Fixed probe around the exact query pixel, independent of the stride.
	// The query pixel itself is accepted unconditionally so a valid query
	// location never yields an empty result.
	if qp, ok := s.GeoToPixel(ctx, lon, lat); ok {
		for dy := -centerProbeRadius; dy <= centerProbeRadius; dy++ {
			for dx := -centerProbeRadius; dx <= centerProbeRadius; dx++ {
				pc := PixelCoord{X: qp.X + dx, Y: qp.Y + dy}
				if pc.X < 0 || pc.X >= s.grid.Width() || pc.Y < 0 || pc.Y >= s.grid.Height() {
					continue
				}
				elev := s.grid.At(pc)
				if math.IsNaN(elev) {
					continue
				}
				if dx != 0 || dy != 0 {
					plon, plat, ok := s.PixelToGeo(ctx, pc)
					if !ok {
						continue
					}
					if haversineMeters(center, GeoPoint{Lon: plon, Lat: plat}) > radiusMeters {
						continue
					}
				}
				accept(elev)
			}
		}
	}

	if !found {
		return 0, 0, false
	}
	return minElev, maxElev, true
}

// radiusStride picks the step that keeps a windowPixels-sized window at or
// under maxRadiusWindowSamples stepped samples.
func radiusStride(windowPixels int) int {
	if windowPixels <= maxRadiusWindowSamples {
		return 1
	}
	return int(math.Ceil(math.Sqrt(float64(windowPixels) / maxRadiusWindowSamples)))
}
