package export

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/tiff"
)

const (
	tiffTagXResolution    = 282
	tiffTagYResolution    = 283
	tiffTagResolutionUnit = 296

	tiffTypeShort    = 3
	tiffTypeRational = 5

	tiffUnitInch = 2
	tiffEntryLen = 12
)

// EncodeTIFF encodes img as Deflate-compressed TIFF and records dpi in its resolution tags.
// x/image/tiff always writes 72 DPI, so the tags are rewritten after encoding.
func EncodeTIFF(img image.Image, dpi int) ([]byte, error) {
	var buf bytes.Buffer
	if err := tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
		return nil, fmt.Errorf("failed to encode TIFF: %v", err)
	}
	return StampTIFFDensity(buf.Bytes(), dpi)
}

// StampTIFFDensity rewrites the first IFD's resolution to dpi pixels per inch.
// Both resolution tags and the unit tag must already be present.
func StampTIFFDensity(data []byte, dpi int) ([]byte, error) {
	if dpi <= 0 {
		return nil, fmt.Errorf("invalid TIFF density %d", dpi)
	}

	order, entries, err := tiffEntries(data)
	if err != nil {
		return nil, err
	}

	out := append([]byte(nil), data...)
	found := 0
	for _, e := range entries {
		typ := order.Uint16(out[e+2:])
		switch order.Uint16(out[e:]) {
		case tiffTagXResolution, tiffTagYResolution:
			if typ != tiffTypeRational {
				return nil, fmt.Errorf("resolution tag has type %d, want RATIONAL", typ)
			}
			off := int(order.Uint32(out[e+8:]))
			if off < 0 || off+8 > len(out) {
				return nil, errors.New("resolution value outside TIFF stream")
			}
			order.PutUint32(out[off:], uint32(dpi))
			order.PutUint32(out[off+4:], 1)
			found++
		case tiffTagResolutionUnit:
			if typ != tiffTypeShort {
				return nil, fmt.Errorf("resolution unit tag has type %d, want SHORT", typ)
			}
			order.PutUint16(out[e+8:], tiffUnitInch)
			found++
		}
	}
	if found != 3 {
		return nil, errors.New("TIFF stream lacks resolution tags")
	}
	return out, nil
}

// TIFFDensity reports the horizontal resolution in pixels per inch, rounded down
func TIFFDensity(data []byte) (int, error) {
	order, entries, err := tiffEntries(data)
	if err != nil {
		return 0, err
	}

	num, den, unit := uint32(0), uint32(0), uint16(tiffUnitInch)
	for _, e := range entries {
		switch order.Uint16(data[e:]) {
		case tiffTagXResolution:
			off := int(order.Uint32(data[e+8:]))
			if off < 0 || off+8 > len(data) {
				return 0, errors.New("resolution value outside TIFF stream")
			}
			num, den = order.Uint32(data[off:]), order.Uint32(data[off+4:])
		case tiffTagResolutionUnit:
			unit = order.Uint16(data[e+8:])
		}
	}
	if den == 0 {
		return 0, errors.New("TIFF stream has no horizontal resolution")
	}
	if unit != tiffUnitInch {
		return 0, fmt.Errorf("TIFF resolution unit %d is not inches", unit)
	}
	return int(num / den), nil
}

// tiffEntries returns the byte order and the offsets of every entry in the first IFD
func tiffEntries(data []byte) (binary.ByteOrder, []int, error) {
	if len(data) < 8 {
		return nil, nil, errors.New("truncated TIFF header")
	}

	var order binary.ByteOrder
	switch string(data[:4]) {
	case "II\x2A\x00":
		order = binary.LittleEndian
	case "MM\x00\x2A":
		order = binary.BigEndian
	default:
		return nil, nil, errors.New("not a TIFF stream")
	}

	ifd := int(order.Uint32(data[4:]))
	if ifd < 8 || ifd+2 > len(data) {
		return nil, nil, errors.New("IFD offset outside TIFF stream")
	}
	n := int(order.Uint16(data[ifd:]))
	if ifd+2+n*tiffEntryLen > len(data) {
		return nil, nil, errors.New("truncated TIFF IFD")
	}

	entries := make([]int, n)
	for i := range entries {
		entries[i] = ifd + 2 + i*tiffEntryLen
	}
	return order, entries, nil
}
