package export

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"

	"gocv.io/x/gocv"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

const (
	chunkHeaderLen = 8 // length + type
	chunkCRCLen    = 4
	physDataLen    = 9
	unitMeter      = 1
)

// EncodePNG encodes a canvas as PNG and records dotsPerMeter in a pHYs chunk,
// so the file prints at its intended physical size.
func EncodePNG(img gocv.Mat, dotsPerMeter int) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.PNGFileExt, img)
	if err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %v", err)
	}
	defer buf.Close()

	encoded := buf.GetBytes()
	if len(encoded) == 0 {
		return nil, errors.New("failed to encode PNG: empty output")
	}
	return StampPNGDensity(encoded, dotsPerMeter)
}

// StampPNGDensity returns a copy of data with any pHYs chunk replaced by one
// declaring dotsPerMeter on both axes. The chunk goes right after IHDR.
func StampPNGDensity(data []byte, dotsPerMeter int) ([]byte, error) {
	if !bytes.HasPrefix(data, pngSignature) {
		return nil, errors.New("not a PNG stream")
	}

	pos := len(pngSignature)
	ihdrLen, ihdrType, err := chunkAt(data, pos)
	if err != nil {
		return nil, err
	}
	if ihdrType != "IHDR" {
		return nil, fmt.Errorf("first chunk is %s, want IHDR", ihdrType)
	}
	afterIHDR := pos + chunkHeaderLen + ihdrLen + chunkCRCLen

	out := make([]byte, 0, len(data)+chunkHeaderLen+physDataLen+chunkCRCLen)
	out = append(out, data[:afterIHDR]...)
	out = appendPhys(out, uint32(dotsPerMeter))

	for pos = afterIHDR; pos < len(data); {
		n, typ, err := chunkAt(data, pos)
		if err != nil {
			return nil, err
		}
		end := pos + chunkHeaderLen + n + chunkCRCLen
		if typ != "pHYs" {
			out = append(out, data[pos:end]...)
		}
		pos = end
	}
	return out, nil
}

// PNGDensity reads the pHYs chunk and returns dots per meter, or 0 if the file has none
func PNGDensity(data []byte) (int, error) {
	if !bytes.HasPrefix(data, pngSignature) {
		return 0, errors.New("not a PNG stream")
	}
	for pos := len(pngSignature); pos < len(data); {
		n, typ, err := chunkAt(data, pos)
		if err != nil {
			return 0, err
		}
		if typ == "pHYs" && n == physDataLen {
			body := data[pos+chunkHeaderLen:]
			if body[8] != unitMeter {
				return 0, nil
			}
			return int(binary.BigEndian.Uint32(body[0:4])), nil
		}
		pos += chunkHeaderLen + n + chunkCRCLen
	}
	return 0, nil
}

func chunkAt(data []byte, pos int) (int, string, error) {
	if pos+chunkHeaderLen > len(data) {
		return 0, "", fmt.Errorf("truncated PNG chunk header at offset %d", pos)
	}
	n := int(binary.BigEndian.Uint32(data[pos : pos+4]))
	typ := string(data[pos+4 : pos+8])
	if pos+chunkHeaderLen+n+chunkCRCLen > len(data) {
		return 0, "", fmt.Errorf("truncated PNG %s chunk at offset %d", typ, pos)
	}
	return n, typ, nil
}

func appendPhys(out []byte, dpm uint32) []byte {
	var chunk [chunkHeaderLen + physDataLen + chunkCRCLen]byte
	binary.BigEndian.PutUint32(chunk[0:4], physDataLen)
	copy(chunk[4:8], "pHYs")
	binary.BigEndian.PutUint32(chunk[8:12], dpm)
	binary.BigEndian.PutUint32(chunk[12:16], dpm)
	chunk[16] = unitMeter
	binary.BigEndian.PutUint32(chunk[17:21], crc32.ChecksumIEEE(chunk[4:17]))
	return append(out, chunk[:]...)
}
