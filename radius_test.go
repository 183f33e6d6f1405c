package dtmprofile_test

import (
	"math"
	"testing"

	"github.com/alecthomas/assert/v2"

	dtmprofile "github.com/levenhar/go-dtmprofile"
)

// gradientGrid is a 50x50 geographic raster over a ~1.1km square with
// elevation x+y, so min/max within any radius are found toward opposite
// corners.
func gradientGrid(t testing.TB) *dtmprofile.RasterGrid {
	t.Helper()
	const n = 50
	pixels := make([]float64, n*n)
	for y := range n {
		for x := range n {
			pixels[y*n+x] = float64(x + y)
		}
	}
	grid, err := dtmprofile.NewRasterGrid(dtmprofile.RasterGridParams{
		Width:  n,
		Height: n,
		Pixels: pixels,
		Bounds: dtmprofile.BoundingBox{MinX: 0, MinY: 0, MaxX: 0.01, MaxY: 0.01},
	})
	assert.NoError(t, err)
	return grid
}

func TestMinMaxInRadius_BracketsCenterElevation(t *testing.T) {
	sampler := dtmprofile.NewSampler(gradientGrid(t), nil)
	lon, lat := 0.005, 0.005

	elevation := sampler.Sample(t.Context(), lon, lat)
	assert.False(t, math.IsNaN(elevation))

	minElev, maxElev, ok := sampler.MinMaxInRadius(t.Context(), lon, lat, 50)
	assert.True(t, ok)
	assert.True(t, minElev <= elevation)
	assert.True(t, elevation <= maxElev)
	assert.True(t, minElev < maxElev)
}

func TestMinMaxInRadius_CenterProbeGuarantee(t *testing.T) {
	// Everything no-data except the query pixel: the fixed center probe
	// must still find it, whatever the stride does.
	noData := -9999.0
	const n = 50
	pixels := make([]float64, n*n)
	for i := range pixels {
		pixels[i] = noData
	}
	pixels[25*n+25] = 123.5
	grid, err := dtmprofile.NewRasterGrid(dtmprofile.RasterGridParams{
		Width:       n,
		Height:      n,
		Pixels:      pixels,
		NoDataValue: &noData,
		Bounds:      dtmprofile.BoundingBox{MinX: 0, MinY: 0, MaxX: 0.01, MaxY: 0.01},
	})
	assert.NoError(t, err)
	sampler := dtmprofile.NewSampler(grid, nil)

	minElev, maxElev, ok := sampler.MinMaxInRadius(t.Context(), 0.005, 0.005, 1)
	assert.True(t, ok)
	assert.Equal(t, 123.5, minElev)
	assert.Equal(t, 123.5, maxElev)
}

func TestMinMaxInRadius_AllNoData(t *testing.T) {
	noData := -9999.0
	pixels := make([]float64, 16)
	for i := range pixels {
		pixels[i] = noData
	}
	grid, err := dtmprofile.NewRasterGrid(dtmprofile.RasterGridParams{
		Width:       4,
		Height:      4,
		Pixels:      pixels,
		NoDataValue: &noData,
		Bounds:      dtmprofile.BoundingBox{MinX: 0, MinY: 0, MaxX: 4, MaxY: 4},
	})
	assert.NoError(t, err)
	sampler := dtmprofile.NewSampler(grid, nil)

	_, _, ok := sampler.MinMaxInRadius(t.Context(), 2, 2, 100)
	assert.False(t, ok)
}

func TestMinMaxInRadius_MonotonicWidening(t *testing.T) {
	sampler := dtmprofile.NewSampler(gradientGrid(t), nil)
	lon, lat := 0.005, 0.005

	minNarrow, maxNarrow, ok := sampler.MinMaxInRadius(t.Context(), lon, lat, 50)
	assert.True(t, ok)
	minWide, maxWide, ok := sampler.MinMaxInRadius(t.Context(), lon, lat, 200)
	assert.True(t, ok)

	assert.True(t, minWide <= minNarrow)
	assert.True(t, maxWide >= maxNarrow)
}

func TestMinMaxInRadius_ReprojectionFailure(t *testing.T) {
	sampler := dtmprofile.NewSampler(projectedGrid(t), failingReprojector{})
	_, _, ok := sampler.MinMaxInRadius(t.Context(), 2, 2, 50)
	assert.False(t, ok)
}
