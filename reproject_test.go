package dtmprofile_test

import (
	"math"
	"testing"

	"github.com/alecthomas/assert/v2"

	dtmprofile "github.com/levenhar/go-dtmprofile"
)

func TestProjReprojector_RoundTrip(t *testing.T) {
	reproj, err := dtmprofile.NewProjReprojector()
	assert.NoError(t, err)

	// UTM zone 35N covers 24E-30E.
	lon, lat := 27.5, 49.0
	x, y, err := reproj.Transform(t.Context(), lon, lat, dtmprofile.WGS84CRS, "epsg:32635")
	if err != nil {
		t.Skip(err) // PROJ unavailable.
	}
	// Eastings sit around the 500km false easting, northings are meters
	// from the equator.
	assert.True(t, 400000 < x && x < 600000)
	assert.True(t, 5300000 < y && y < 5600000)

	backLon, backLat, err := reproj.Transform(t.Context(), x, y, "epsg:32635", dtmprofile.WGS84CRS)
	assert.NoError(t, err)
	assert.True(t, math.Abs(backLon-lon) < 1e-6)
	assert.True(t, math.Abs(backLat-lat) < 1e-6)
}

func TestProjReprojector_UnknownCRS(t *testing.T) {
	reproj, err := dtmprofile.NewProjReprojector()
	assert.NoError(t, err)

	_, _, err = reproj.Transform(t.Context(), 1, 2, dtmprofile.WGS84CRS, "epsg:0")
	if err == nil {
		t.Skip("PROJ accepted epsg:0")
	}
	assert.IsError(t, err, dtmprofile.ErrReprojection)
}
