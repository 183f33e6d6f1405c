package dtmprofile

import (
	"context"
	"math"
)

// A Sampler answers nearest-pixel elevation queries against one RasterGrid,
// reprojecting WGS84 queries into the grid's native CRS when needed.
type Sampler struct {
	grid      *RasterGrid
	reproj    Reprojector
	nativeCRS string
}

// NewSampler returns a Sampler over grid. If the grid is projected and
// carries no CRS identifier, DefaultProjectedCRS is assumed.
func NewSampler(grid *RasterGrid, reproj Reprojector) *Sampler {
	nativeCRS := grid.CRS()
	if grid.IsProjected() && nativeCRS == "" {
		nativeCRS = DefaultProjectedCRS
	}
	return &Sampler{
		grid:      grid,
		reproj:    reproj,
		nativeCRS: nativeCRS,
	}
}

// Grid returns the sampler's grid.
func (s *Sampler) Grid() *RasterGrid {
	return s.grid
}

// GeoToPixel maps a WGS84 coordinate to the nearest pixel. Out-of-extent
// coordinates clamp to the nearest edge pixel; only a reprojection failure
// reports not-ok.
func (s *Sampler) GeoToPixel(ctx context.Context, lon, lat float64) (PixelCoord, bool) {
	x, y := lon, lat
	if s.grid.IsProjected() {
		var err error
		x, y, err = s.reproj.Transform(ctx, lon, lat, WGS84CRS, s.nativeCRS)
		if err != nil {
			return PixelCoord{}, false
		}
	}

	var pc PixelCoord
	if a, ok := s.grid.Affine(); ok {
		pc.X = int(math.Round((x-a.TieGeoX)/a.ScaleX + a.TiePixelI))
		pc.Y = int(math.Round((a.TieGeoY-y)/a.ScaleY + a.TiePixelJ))
	} else {
		b := s.grid.Bounds()
		pc.X = int(math.Round((x - b.MinX) / (b.MaxX - b.MinX) * float64(s.grid.Width())))
		pc.Y = int(math.Round((b.MaxY - y) / (b.MaxY - b.MinY) * float64(s.grid.Height())))
	}
	return s.grid.Clamp(pc), true
}

// PixelToGeo recovers the WGS84 coordinate of a pixel, inverting the affine
// or bounding-box mapping and reprojecting out of a projected native CRS.
func (s *Sampler) PixelToGeo(ctx context.Context, pc PixelCoord) (lon, lat float64, ok bool) {
	var x, y float64
	if a, ok := s.grid.Affine(); ok {
		x = (float64(pc.X)-a.TiePixelI)*a.ScaleX + a.TieGeoX
		y = a.TieGeoY - (float64(pc.Y)-a.TiePixelJ)*a.ScaleY
	} else {
		b := s.grid.Bounds()
		x = b.MinX + float64(pc.X)/float64(s.grid.Width())*(b.MaxX-b.MinX)
		y = b.MaxY - float64(pc.Y)/float64(s.grid.Height())*(b.MaxY-b.MinY)
	}
	if s.grid.IsProjected() {
		var err error
		x, y, err = s.reproj.Transform(ctx, x, y, s.nativeCRS, WGS84CRS)
		if err != nil {
			return 0, 0, false
		}
	}
	return x, y, true
}

// Sample returns the elevation at the pixel nearest to (lon, lat), or NaN
// if the coordinate cannot be resolved or the pixel holds no data.
func (s *Sampler) Sample(ctx context.Context, lon, lat float64) float64 {
	pc, ok := s.GeoToPixel(ctx, lon, lat)
	if !ok {
		return math.NaN()
	}
	return s.grid.At(pc)
}
