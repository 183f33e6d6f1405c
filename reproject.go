package dtmprofile

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/maypok86/otter/v2"
	"github.com/twpayne/go-proj/v10"
)

// defaultReprojector is shared by profile builds that do not supply their
// own Reprojector, so the compiled-transformation cache survives across
// builds.
var defaultReprojector = sync.OnceValues(NewProjReprojector)

// A Reprojector transforms a coordinate between two CRSs. Callers always
// pass and receive (x, y) as (lon, lat) for geographic CRSs, whatever axis
// order the underlying projection library mandates. Implementations must be
// safe for concurrent use.
type Reprojector interface {
	Transform(ctx context.Context, x, y float64, sourceCRS, targetCRS string) (float64, float64, error)
}

type crsPair struct {
	source string
	target string
}

// A ProjReprojector reprojects coordinates with PROJ, caching the compiled
// transformation per CRS pair.
type ProjReprojector struct {
	transforms *otter.Cache[crsPair, *proj.PJ]
}

// NewProjReprojector returns a new ProjReprojector.
func NewProjReprojector() (*ProjReprojector, error) {
	transforms, err := otter.New(&otter.Options[crsPair, *proj.PJ]{
		MaximumSize: 64,
	})
	if err != nil {
		return nil, err
	}
	return &ProjReprojector{
		transforms: transforms,
	}, nil
}

// Transform implements Reprojector. An unknown or unsupported CRS pair
// returns an error wrapping ErrReprojection.
func (r *ProjReprojector) Transform(ctx context.Context, x, y float64, sourceCRS, targetCRS string) (float64, float64, error) {
	pj, err := r.transforms.Get(ctx, crsPair{source: sourceCRS, target: targetCRS}, otter.LoaderFunc[crsPair, *proj.PJ](newPJ))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %s to %s: %v", ErrReprojection, sourceCRS, targetCRS, err)
	}

	// PROJ honors authority axis order, which for EPSG:4326 is (lat, lon).
	if crsIsLatLon(sourceCRS) {
		x, y = y, x
	}
	coord, err := pj.Forward(proj.NewCoord(x, y, 0, 0))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %s to %s: %v", ErrReprojection, sourceCRS, targetCRS, err)
	}
	outX, outY := coord.X(), coord.Y()
	if crsIsLatLon(targetCRS) {
		outX, outY = outY, outX
	}
	return outX, outY, nil
}

func newPJ(ctx context.Context, pair crsPair) (*proj.PJ, error) {
	return proj.NewCRSToCRS(pair.source, pair.target, nil)
}

func crsIsLatLon(crs string) bool {
	return strings.EqualFold(crs, WGS84CRS)
}
