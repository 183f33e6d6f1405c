package dtmprofile

import (
	"errors"
	"fmt"
)

var errGeoKeyParse = errors.New("geokey parse error")

type geoKey uint16

// The subset of GeoTIFF keys the decoder consumes.
const (
	geoKeyGTModelType  geoKey = 1024
	geoKeyGeodeticCRS  geoKey = 2048
	geoKeyProjectedCRS geoKey = 3072
)

const (
	modelTypeProjected  = 1
	modelTypeGeographic = 2

	// EPSG code range; 32767 marks a user-defined CRS.
	epsgCodeMin = 1024
	epsgCodeMax = 32766
)

type parsedGeoKeys struct {
	params       map[geoKey]int
	doubleParams map[geoKey]float64
	asciiParams  map[geoKey]string
}

func parseGeoKeys(directory []uint16, doubleParams []float64, asciiParams string) (*parsedGeoKeys, error) {
	if len(directory) < 4 {
		return nil, errGeoKeyParse
	}
	if keyDirectoryVersion := int(directory[0]); keyDirectoryVersion != 1 {
		return nil, errGeoKeyParse
	}
	if keyRevision := int(directory[1]); keyRevision != 1 {
		return nil, errGeoKeyParse
	}
	if minorRevision := int(directory[2]); minorRevision != 0 && minorRevision != 1 {
		return nil, errGeoKeyParse
	}
	numberOfKeys := int(directory[3])
	if len(directory) != 4+4*numberOfKeys {
		return nil, errGeoKeyParse
	}

	keys := &parsedGeoKeys{
		params:       make(map[geoKey]int),
		doubleParams: make(map[geoKey]float64),
		asciiParams:  make(map[geoKey]string),
	}
	for i := range numberOfKeys {
		keyValues := directory[4+4*i : 4+4*(i+1)]
		key := geoKey(keyValues[0])
		tiffTagLocation := int(keyValues[1])
		numberOfValues := int(keyValues[2])
		index := int(keyValues[3])
		switch tiffTagLocation {
		case 0:
			if numberOfValues != 1 {
				return nil, errGeoKeyParse
			}
			keys.params[key] = index
		case 34736: // GeoDoubleParamsTag
			if numberOfValues != 1 || index >= len(doubleParams) {
				return nil, errGeoKeyParse
			}
			keys.doubleParams[key] = doubleParams[index]
		case 34737: // GeoASCIIParamsTag
			if index+numberOfValues > len(asciiParams) {
				return nil, errGeoKeyParse
			}
			keys.asciiParams[key] = asciiParams[index : index+numberOfValues]
		default:
			return nil, errors.ErrUnsupported
		}
	}
	return keys, nil
}

// crsIdentifier recovers an epsg:NNNN identifier from the parsed keys. A
// projected CRS wins over a geodetic one; user-defined and out-of-range
// codes yield an empty identifier, left for the default-CRS fallback.
// GTModelType, when present, pins which key is authoritative: a geodetic
// code does not identify the native CRS of a projected raster, and vice
// versa.
func (k *parsedGeoKeys) crsIdentifier() string {
	candidates := []geoKey{geoKeyProjectedCRS, geoKeyGeodeticCRS}
	switch k.params[geoKeyGTModelType] {
	case modelTypeProjected:
		candidates = []geoKey{geoKeyProjectedCRS}
	case modelTypeGeographic:
		candidates = []geoKey{geoKeyGeodeticCRS}
	}
	for _, key := range candidates {
		if code, ok := k.params[key]; ok && epsgCodeMin <= code && code <= epsgCodeMax {
			return fmt.Sprintf("epsg:%d", code)
		}
	}
	return ""
}
