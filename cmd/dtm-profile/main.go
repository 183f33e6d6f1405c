package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	dtmprofile "github.com/levenhar/go-dtmprofile"
)

func run() error {
	dtmPath := flag.String("dtm", os.Getenv("DTM_PATH"), "path to the DTM GeoTIFF")
	radius := flag.Float64("radius", dtmprofile.DefaultRadiusMeters, "min/max search radius in meters")
	interval := flag.Float64("interval", dtmprofile.DefaultSamplingIntervalMeters, "sampling interval in meters")
	flag.Parse()

	if flag.NArg() < 2 {
		return errors.New("syntax: dtm-profile lon,lat lon,lat [lon,lat...]")
	}
	vertices := make([]dtmprofile.GeoPoint, flag.NArg())
	for i, arg := range flag.Args() {
		lonStr, latStr, ok := strings.Cut(arg, ",")
		if !ok {
			return fmt.Errorf("invalid vertex %q", arg)
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return err
		}
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return err
		}
		vertices[i] = dtmprofile.GeoPoint{Lon: lon, Lat: lat}
	}

	file, err := os.Open(*dtmPath)
	if err != nil {
		return err
	}
	defer file.Close()
	grid, err := dtmprofile.DecodeGeoTIFF(file)
	if err != nil {
		return err
	}

	profile, err := dtmprofile.BuildProfile(context.Background(), grid, vertices,
		dtmprofile.WithRadius(*radius),
		dtmprofile.WithSamplingInterval(*interval),
	)
	if err != nil {
		return err
	}

	fmt.Println("distance_m,lon,lat,elevation_m,min_elevation_m,max_elevation_m")
	for _, sample := range profile {
		fmt.Printf("%.1f,%.6f,%.6f,%s,%s,%s\n",
			sample.DistanceFromStart,
			sample.Lon,
			sample.Lat,
			formatElevation(sample.Elevation),
			formatElevation(sample.MinElevationInRadius),
			formatElevation(sample.MaxElevationInRadius),
		)
	}
	return nil
}

// formatElevation renders missing values as empty CSV fields.
func formatElevation(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func main() {
	if err := run(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
