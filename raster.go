package dtmprofile

import (
	"fmt"
	"math"
)

// RasterGridParams holds the decoded fields of a DTM. The decoder in this
// package produces them from GeoTIFF bytes; callers with other formats can
// fill them directly.
type RasterGridParams struct {
	Width       int
	Height      int
	Pixels      []float64 // row-major, top-to-bottom
	NoDataValue *float64
	Bounds      BoundingBox
	Affine      *AffineTransform
	CRS         string
}

// A RasterGrid is one immutable decoded DTM. All reads are non-mutating, so
// a single grid may serve any number of concurrent profile builds.
type RasterGrid struct {
	width     int
	height    int
	pixels    []float64
	noData    float64
	hasNoData bool
	bounds    BoundingBox
	affine    AffineTransform
	hasAffine bool
	projected bool
	crs       string
}

// NewRasterGrid validates p and returns an immutable grid. The pixel data
// must be non-empty and match width*height, and all four bounds must be
// finite; violations return ErrInvalidBounds.
func NewRasterGrid(p RasterGridParams) (*RasterGrid, error) {
	if len(p.Pixels) == 0 {
		return nil, fmt.Errorf("%w: empty pixel data", ErrInvalidBounds)
	}
	if p.Width <= 0 || p.Height <= 0 || len(p.Pixels) != p.Width*p.Height {
		return nil, fmt.Errorf("%w: %d pixels for %dx%d grid", ErrInvalidBounds, len(p.Pixels), p.Width, p.Height)
	}
	for _, v := range []float64{p.Bounds.MinX, p.Bounds.MinY, p.Bounds.MaxX, p.Bounds.MaxY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite bound %v", ErrInvalidBounds, v)
		}
	}

	g := &RasterGrid{
		width:     p.Width,
		height:    p.Height,
		pixels:    p.Pixels,
		bounds:    p.Bounds,
		projected: classifyProjected(p.Bounds),
		crs:       p.CRS,
	}
	if p.NoDataValue != nil {
		g.noData = *p.NoDataValue
		g.hasNoData = true
	}
	if p.Affine != nil {
		g.affine = *p.Affine
		g.hasAffine = true
	}
	return g, nil
}

// classifyProjected assumes geographic rasters have bounds within plain
// lon/lat magnitudes and anything larger is in projected native units.
func classifyProjected(b BoundingBox) bool {
	return math.Abs(b.MinX) > 180 || math.Abs(b.MinY) > 90 ||
		math.Abs(b.MaxX) > 180 || math.Abs(b.MaxY) > 90
}

func (g *RasterGrid) Width() int          { return g.width }
func (g *RasterGrid) Height() int         { return g.height }
func (g *RasterGrid) Bounds() BoundingBox { return g.bounds }
func (g *RasterGrid) IsProjected() bool   { return g.projected }
func (g *RasterGrid) CRS() string         { return g.crs }

// NoData returns the no-data sentinel, if any.
func (g *RasterGrid) NoData() (float64, bool) {
	return g.noData, g.hasNoData
}

// Affine returns the tie-point transform, if any.
func (g *RasterGrid) Affine() (AffineTransform, bool) {
	return g.affine, g.hasAffine
}

// Clamp forces pc into the valid pixel range.
func (g *RasterGrid) Clamp(pc PixelCoord) PixelCoord {
	return PixelCoord{
		X: min(max(pc.X, 0), g.width-1),
		Y: min(max(pc.Y, 0), g.height-1),
	}
}

// At returns the elevation at pc. The no-data sentinel and non-finite
// values are returned as NaN. pc must be in range.
func (g *RasterGrid) At(pc PixelCoord) float64 {
	v := g.pixels[pc.Y*g.width+pc.X]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return math.NaN()
	}
	if g.hasNoData && v == g.noData {
		return math.NaN()
	}
	return v
}
