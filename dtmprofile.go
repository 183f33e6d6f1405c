// Package dtmprofile computes elevation profiles along geographic paths
// over decoded digital terrain model rasters.
package dtmprofile

import "errors"

const (
	// WGS84CRS is the CRS of all GeoPoint values.
	WGS84CRS = "epsg:4326"

	// DefaultProjectedCRS is assumed for projected rasters whose metadata
	// carries no recoverable CRS. This is a heuristic guess, not a
	// correctness guarantee: declare the CRS explicitly where possible.
	DefaultProjectedCRS = "epsg:32635"

	DefaultRadiusMeters           = 50.0
	DefaultSamplingIntervalMeters = 5.0
)

// Engine errors. Raster-load failures (ErrInvalidBounds, ErrRasterDecode)
// are fatal for the load; ErrReprojection degrades individual samples during
// a profile build instead of aborting it.
var (
	ErrInvalidBounds = errors.New("invalid raster bounds")
	ErrRasterDecode  = errors.New("raster decode failed")
	ErrReprojection  = errors.New("reprojection failed")
	ErrInvalidPath   = errors.New("path needs at least two vertices")
)

// A GeoPoint is a WGS84 coordinate in degrees.
type GeoPoint struct {
	Lon float64
	Lat float64
}

// A PixelCoord addresses a single raster pixel.
type PixelCoord struct {
	X int
	Y int
}

// A BoundingBox is a raster extent in native units.
type BoundingBox struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
}

// An AffineTransform maps pixel indices to native coordinates via a tie
// point and per-axis scales. Native Y increases upward, pixel Y downward.
type AffineTransform struct {
	TiePixelI float64
	TiePixelJ float64
	TieGeoX   float64
	TieGeoY   float64
	ScaleX    float64
	ScaleY    float64
}
