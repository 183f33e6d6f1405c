package dtmprofile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/google/tiff"
	_ "github.com/google/tiff/bigtiff"
	_ "github.com/google/tiff/geotiff"
	"golang.org/x/image/tiff/lzw"
)

const (
	compressionNone = 1
	compressionLZW  = 5
)

// A geoTIFFIFD is a struct into which github.com/google/tiff can unmarshal
// an IFD.
type geoTIFFIFD struct {
	ImageWidth          uint16    `tiff:"field,tag=256"`
	ImageLength         uint16    `tiff:"field,tag=257"`
	BitsPerSample       uint16    `tiff:"field,tag=258"`
	Compression         uint16    `tiff:"field,tag=259"`
	StripOffsets        []uint64  `tiff:"field,tag=273"`
	SamplesPerPixel     uint16    `tiff:"field,tag=277"`
	RowsPerStrip        uint16    `tiff:"field,tag=278"`
	StripByteCounts     []uint64  `tiff:"field,tag=279"`
	PlanarConfiguration uint16    `tiff:"field,tag=284"`
	Predictor           uint16    `tiff:"field,tag=317"`
	TileWidth           uint16    `tiff:"field,tag=322"`
	TileLength          uint16    `tiff:"field,tag=323"`
	TileOffsets         []uint64  `tiff:"field,tag=324"`
	TileByteCounts      []uint64  `tiff:"field,tag=325"`
	SampleFormat        uint16    `tiff:"field,tag=339"`
	ModelPixelScaleTag  []float64 `tiff:"field,tag=33550"`
	ModelTiepointTag    []float64 `tiff:"field,tag=33922"`
	GeoKeyDirectoryTag  []uint16  `tiff:"field,tag=34735"`
	GeoDoubleParamsTag  []float64 `tiff:"field,tag=34736"`
	GeoASCIIParamsTag   string    `tiff:"field,tag=34737"`
	GDALNoData          string    `tiff:"field,tag=42113"`
}

// DecodeGeoTIFF decodes a single-band float32 GeoTIFF into a RasterGrid.
// Strip and tile layouts are supported, uncompressed or LZW, in either byte
// order. The whole band is decoded into memory; decode once per DTM and
// reuse the grid (see RasterCache).
func DecodeGeoTIFF(r io.ReadSeeker) (*RasterGrid, error) {
	rars := tiff.NewReadAtReadSeeker(r)

	var header [2]byte
	if _, err := rars.ReadAt(header[:], 0); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRasterDecode, err)
	}
	var byteOrder binary.ByteOrder = binary.LittleEndian
	if header[0] == 'M' && header[1] == 'M' {
		byteOrder = binary.BigEndian
	}

	t, err := tiff.Parse(rars, tiff.GetTagSpace("GeoTIFF"), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRasterDecode, err)
	}
	if n := len(t.IFDs()); n != 1 {
		return nil, fmt.Errorf("%w: found %d IFDs, expected 1", ErrRasterDecode, n)
	}
	var ifd geoTIFFIFD
	if err := tiff.UnmarshalIFD(t.IFDs()[0], &ifd); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRasterDecode, err)
	}

	if ifd.BitsPerSample != 32 ||
		ifd.SampleFormat != 3 ||
		(ifd.SamplesPerPixel != 0 && ifd.SamplesPerPixel != 1) ||
		(ifd.PlanarConfiguration != 0 && ifd.PlanarConfiguration != 1) ||
		(ifd.Predictor != 0 && ifd.Predictor != 1) {
		return nil, fmt.Errorf("%w: not a single-band float32 raster", ErrRasterDecode)
	}
	if ifd.Compression != compressionNone && ifd.Compression != compressionLZW {
		return nil, fmt.Errorf("%w: unsupported compression %d", ErrRasterDecode, ifd.Compression)
	}

	width := int(ifd.ImageWidth)
	height := int(ifd.ImageLength)
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: zero-sized image", ErrRasterDecode)
	}

	pixels := make([]float64, width*height)
	if len(ifd.TileOffsets) > 0 {
		err = decodeTiles(rars, &ifd, byteOrder, pixels, width, height)
	} else {
		err = decodeStrips(rars, &ifd, byteOrder, pixels, width, height)
	}
	if err != nil {
		return nil, err
	}

	if len(ifd.ModelPixelScaleTag) < 2 || len(ifd.ModelTiepointTag) < 6 {
		return nil, fmt.Errorf("%w: missing georeferencing tags", ErrRasterDecode)
	}
	affine := AffineTransform{
		TiePixelI: ifd.ModelTiepointTag[0],
		TiePixelJ: ifd.ModelTiepointTag[1],
		TieGeoX:   ifd.ModelTiepointTag[3],
		TieGeoY:   ifd.ModelTiepointTag[4],
		ScaleX:    ifd.ModelPixelScaleTag[0],
		ScaleY:    ifd.ModelPixelScaleTag[1],
	}
	if affine.ScaleX <= 0 || affine.ScaleY <= 0 {
		return nil, fmt.Errorf("%w: non-positive pixel scale", ErrRasterDecode)
	}
	minX := affine.TieGeoX - affine.TiePixelI*affine.ScaleX
	maxY := affine.TieGeoY + affine.TiePixelJ*affine.ScaleY
	bounds := BoundingBox{
		MinX: minX,
		MinY: maxY - float64(height)*affine.ScaleY,
		MaxX: minX + float64(width)*affine.ScaleX,
		MaxY: maxY,
	}

	params := RasterGridParams{
		Width:  width,
		Height: height,
		Pixels: pixels,
		Bounds: bounds,
		Affine: &affine,
	}
	if s := strings.Trim(ifd.GDALNoData, "\x00 \t\r\n"); s != "" {
		if noData, err := strconv.ParseFloat(s, 64); err == nil {
			params.NoDataValue = &noData
		}
	}
	// A malformed geokey directory leaves the CRS empty; classification
	// then falls back to DefaultProjectedCRS.
	if len(ifd.GeoKeyDirectoryTag) > 0 {
		if keys, err := parseGeoKeys(ifd.GeoKeyDirectoryTag, ifd.GeoDoubleParamsTag, ifd.GeoASCIIParamsTag); err == nil {
			params.CRS = keys.crsIdentifier()
		}
	}

	return NewRasterGrid(params)
}

func decodeStrips(r io.ReaderAt, ifd *geoTIFFIFD, byteOrder binary.ByteOrder, pixels []float64, width, height int) error {
	rowsPerStrip := int(ifd.RowsPerStrip)
	if rowsPerStrip == 0 {
		rowsPerStrip = height
	}
	stripsPerImage := (height + rowsPerStrip - 1) / rowsPerStrip
	if len(ifd.StripOffsets) != stripsPerImage || len(ifd.StripByteCounts) != stripsPerImage {
		return fmt.Errorf("%w: incorrect number of strip byte counts or offsets", ErrRasterDecode)
	}
	for i := range stripsPerImage {
		rows := min(rowsPerStrip, height-i*rowsPerStrip)
		data, err := readChunk(r, ifd.Compression, ifd.StripOffsets[i], ifd.StripByteCounts[i], rows*width*4)
		if err != nil {
			return err
		}
		base := i * rowsPerStrip * width
		for j := range rows * width {
			pixels[base+j] = float64(math.Float32frombits(byteOrder.Uint32(data[4*j : 4*j+4])))
		}
	}
	return nil
}

func decodeTiles(r io.ReaderAt, ifd *geoTIFFIFD, byteOrder binary.ByteOrder, pixels []float64, width, height int) error {
	tileWidth := int(ifd.TileWidth)
	tileLength := int(ifd.TileLength)
	if tileWidth == 0 || tileLength == 0 {
		return fmt.Errorf("%w: zero-sized tiles", ErrRasterDecode)
	}
	tilesAcross := (width + tileWidth - 1) / tileWidth
	tilesDown := (height + tileLength - 1) / tileLength
	tilesPerImage := tilesAcross * tilesDown
	if len(ifd.TileOffsets) != tilesPerImage || len(ifd.TileByteCounts) != tilesPerImage {
		return fmt.Errorf("%w: incorrect number of tile byte counts or offsets", ErrRasterDecode)
	}
	for tileY := range tilesDown {
		for tileX := range tilesAcross {
			tileIndex := tileY*tilesAcross + tileX
			data, err := readChunk(r, ifd.Compression, ifd.TileOffsets[tileIndex], ifd.TileByteCounts[tileIndex], tileWidth*tileLength*4)
			if err != nil {
				return err
			}
			// Edge tiles are full-sized in the file; clip to the image.
			rows := min(tileLength, height-tileY*tileLength)
			cols := min(tileWidth, width-tileX*tileWidth)
			for row := range rows {
				srcBase := row * tileWidth
				dstBase := (tileY*tileLength+row)*width + tileX*tileWidth
				for col := range cols {
					b := byteOrder.Uint32(data[4*(srcBase+col) : 4*(srcBase+col)+4])
					pixels[dstBase+col] = float64(math.Float32frombits(b))
				}
			}
		}
	}
	return nil
}

func readChunk(r io.ReaderAt, compression uint16, offset, byteCount uint64, uncompressedSize int) ([]byte, error) {
	compressed := make([]byte, byteCount)
	switch n, err := r.ReadAt(compressed, int64(offset)); {
	case err != nil && err != io.EOF:
		return nil, fmt.Errorf("%w: %v", ErrRasterDecode, err)
	case n != int(byteCount):
		return nil, fmt.Errorf("%w: short read", ErrRasterDecode)
	}
	if compression == compressionNone {
		if len(compressed) < uncompressedSize {
			return nil, fmt.Errorf("%w: short chunk", ErrRasterDecode)
		}
		return compressed, nil
	}
	data := make([]byte, uncompressedSize)
	lzwReader := lzw.NewReader(bytes.NewReader(compressed), lzw.MSB, 8)
	for bytesRead := 0; bytesRead < uncompressedSize; {
		n, err := lzwReader.Read(data[bytesRead:])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRasterDecode, err)
		}
		bytesRead += n
	}
	return data, nil
}
