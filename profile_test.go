package dtmprofile_test

import (
	"context"
	"math"
	"testing"

	"github.com/alecthomas/assert/v2"

	dtmprofile "github.com/levenhar/go-dtmprofile"
)

func TestBuildProfile_ShortPath(t *testing.T) {
	// Rejected before any raster access: a nil grid must not be touched.
	for _, vertices := range [][]dtmprofile.GeoPoint{
		nil,
		{},
		{{Lon: 1, Lat: 1}},
	} {
		_, err := dtmprofile.BuildProfile(t.Context(), nil, vertices)
		assert.IsError(t, err, dtmprofile.ErrInvalidPath)
	}
}

func TestBuildProfile_StraightPath(t *testing.T) {
	grid := gradientGrid(t)
	// 1000m due north.
	deltaLat := 1000 / 6371000.0 * 180 / math.Pi
	vertices := []dtmprofile.GeoPoint{
		{Lon: 0.005, Lat: 0.0005},
		{Lon: 0.005, Lat: 0.0005 + deltaLat},
	}

	profile, err := dtmprofile.BuildProfile(t.Context(), grid, vertices,
		dtmprofile.WithSamplingInterval(5),
		dtmprofile.WithRadius(50),
	)
	assert.NoError(t, err)

	assert.True(t, 200 <= len(profile) && len(profile) <= 201)
	assert.Equal(t, 0.0, profile[0].DistanceFromStart)
	for i := 1; i < len(profile); i++ {
		assert.True(t, profile[i].DistanceFromStart >= profile[i-1].DistanceFromStart)
	}
	finalDistance := profile[len(profile)-1].DistanceFromStart
	assert.True(t, math.Abs(finalDistance-1000) <= 10)

	for _, sample := range profile {
		assert.False(t, math.IsNaN(sample.Elevation))
		assert.False(t, math.IsNaN(sample.MinElevationInRadius))
		assert.False(t, math.IsNaN(sample.MaxElevationInRadius))
		assert.True(t, sample.MinElevationInRadius <= sample.Elevation)
		assert.True(t, sample.Elevation <= sample.MaxElevationInRadius)
	}
}

func TestBuildProfile_DefaultCRSFallback(t *testing.T) {
	// Projected raster with no recoverable CRS: the default zone is
	// substituted and a full profile comes back rather than a failure.
	grid := projectedGrid(t)
	reproj := &scaleReprojector{factor: 100000}
	vertices := []dtmprofile.GeoPoint{
		{Lon: 0.5, Lat: 0.5},
		{Lon: 3.5, Lat: 3.5},
	}

	profile, err := dtmprofile.BuildProfile(t.Context(), grid, vertices,
		dtmprofile.WithReprojector(reproj),
		dtmprofile.WithSamplingInterval(50000),
	)
	assert.NoError(t, err)
	assert.True(t, len(profile) >= 2)
	assert.Equal(t, dtmprofile.DefaultProjectedCRS, reproj.lastNativeCRS)
	for _, sample := range profile {
		assert.False(t, math.IsNaN(sample.Elevation))
	}
}

func TestBuildProfile_PartialFailure(t *testing.T) {
	// Per-point reprojection failures degrade to NaN fields without
	// losing samples or ordering.
	grid := projectedGrid(t)
	vertices := []dtmprofile.GeoPoint{
		{Lon: 0.5, Lat: 0.5},
		{Lon: 3.5, Lat: 3.5},
	}

	profile, err := dtmprofile.BuildProfile(t.Context(), grid, vertices,
		dtmprofile.WithReprojector(failingReprojector{}),
		dtmprofile.WithSamplingInterval(50000),
	)
	assert.NoError(t, err)
	assert.True(t, len(profile) >= 2)
	assert.Equal(t, 0.0, profile[0].DistanceFromStart)
	for i, sample := range profile {
		assert.True(t, math.IsNaN(sample.Elevation))
		assert.True(t, math.IsNaN(sample.MinElevationInRadius))
		assert.True(t, math.IsNaN(sample.MaxElevationInRadius))
		if i > 0 {
			assert.True(t, sample.DistanceFromStart >= profile[i-1].DistanceFromStart)
		}
	}
}

func TestBuildProfile_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err := dtmprofile.BuildProfile(ctx, gradientGrid(t), []dtmprofile.GeoPoint{
		{Lon: 0.001, Lat: 0.001},
		{Lon: 0.009, Lat: 0.009},
	})
	assert.IsError(t, err, context.Canceled)
}

func BenchmarkBuildProfile(b *testing.B) {
	grid := gradientGrid(b)
	deltaLat := 1000 / 6371000.0 * 180 / math.Pi
	vertices := []dtmprofile.GeoPoint{
		{Lon: 0.005, Lat: 0.0005},
		{Lon: 0.005, Lat: 0.0005 + deltaLat},
	}
	b.ResetTimer()
	for range b.N {
		profile, err := dtmprofile.BuildProfile(b.Context(), grid, vertices)
		assert.NoError(b, err)
		assert.True(b, len(profile) >= 200)
	}
}
