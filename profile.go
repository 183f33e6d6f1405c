package dtmprofile

import (
	"context"
	"math"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	profileBuildsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dtmprofile_profile_builds_total",
		Help: "The total number of completed profile builds",
	})
	profileSamplesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dtmprofile_profile_samples_total",
		Help: "The total number of emitted profile samples",
	})
)

// An ElevationSample is one point of a profile. Elevation and the radius
// min/max are NaN where no valid value could be resolved.
type ElevationSample struct {
	DistanceFromStart    float64
	Lon                  float64
	Lat                  float64
	Elevation            float64
	MinElevationInRadius float64
	MaxElevationInRadius float64
}

// A Profile is an ordered elevation profile. Profiles are ephemeral:
// recompute when the path, raster, or radius changes.
type Profile []ElevationSample

type profileConfig struct {
	radiusMeters   float64
	intervalMeters float64
	reproj         Reprojector
}

// A ProfileOption sets an option on a profile build.
type ProfileOption func(*profileConfig)

// WithRadius sets the min/max search radius in meters.
func WithRadius(radiusMeters float64) ProfileOption {
	return func(c *profileConfig) {
		c.radiusMeters = radiusMeters
	}
}

// WithSamplingInterval sets the path densification interval in meters.
func WithSamplingInterval(intervalMeters float64) ProfileOption {
	return func(c *profileConfig) {
		c.intervalMeters = intervalMeters
	}
}

// WithReprojector substitutes the reprojector used for projected rasters.
func WithReprojector(reproj Reprojector) ProfileOption {
	return func(c *profileConfig) {
		c.reproj = reproj
	}
}

// BuildProfile densifies vertices and samples grid at each densified point,
// returning the ordered profile. Fewer than two vertices return
// ErrInvalidPath before any raster access. A reprojection or sampling
// failure at an individual point leaves that sample's elevation fields NaN
// and the build continues, preserving sample count and order.
func BuildProfile(ctx context.Context, grid *RasterGrid, vertices []GeoPoint, options ...ProfileOption) (Profile, error) {
	if len(vertices) < 2 {
		return nil, ErrInvalidPath
	}

	config := profileConfig{
		radiusMeters:   DefaultRadiusMeters,
		intervalMeters: DefaultSamplingIntervalMeters,
	}
	for _, option := range options {
		option(&config)
	}
	if config.reproj == nil && grid.IsProjected() {
		reproj, err := defaultReprojector()
		if err != nil {
			return nil, err
		}
		config.reproj = reproj
	}

	sampler := NewSampler(grid, config.reproj)
	points := Densify(vertices, config.intervalMeters)
	profile := make(Profile, 0, len(points))
	distance := 0.0
	for i, point := range points {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if i > 0 {
			distance += haversineMeters(points[i-1], point)
		}
		elevation := sampler.Sample(ctx, point.Lon, point.Lat)
		minElev, maxElev, ok := sampler.MinMaxInRadius(ctx, point.Lon, point.Lat, config.radiusMeters)
		if !ok {
			minElev = math.NaN()
			maxElev = math.NaN()
		}
		profile = append(profile, ElevationSample{
			DistanceFromStart:    distance,
			Lon:                  point.Lon,
			Lat:                  point.Lat,
			Elevation:            elevation,
			MinElevationInRadius: minElev,
			MaxElevationInRadius: maxElev,
		})
	}

	profileBuildsTotal.Inc()
	profileSamplesTotal.Add(float64(len(profile)))
	return profile, nil
}
