package pattern

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gocv.io/x/gocv"
)

// ErrMarkerOutOfRange is returned when an identifier is not part of the dictionary
var ErrMarkerOutOfRange = errors.New("marker id out of dictionary range")

// MarkerSource produces square monochrome marker bitmaps by identifier
type MarkerSource interface {
	// Marker returns a sizePx x sizePx CV_8UC1 bitmap. The caller must Close it.
	Marker(id, sizePx int) (gocv.Mat, error)

	// Size is the exclusive upper bound on identifiers
	Size() int

	// Name is the short label printed in tile captions, e.g. "6X6"
	Name() string
}

// Dictionary describes one of the predefined ArUco dictionaries
type Dictionary struct {
	Key   string
	Label string
	Code  gocv.ArucoDictionaryCode
	Size  int
}

var dictionaries = map[string]Dictionary{
	"4x4_50":   {"4x4_50", "4X4", gocv.ArucoDict4x4_50, 50},
	"4x4_100":  {"4x4_100", "4X4", gocv.ArucoDict4x4_100, 100},
	"4x4_250":  {"4x4_250", "4X4", gocv.ArucoDict4x4_250, 250},
	"4x4_1000": {"4x4_1000", "4X4", gocv.ArucoDict4x4_1000, 1000},
	"5x5_50":   {"5x5_50", "5X5", gocv.ArucoDict5x5_50, 50},
	"5x5_100":  {"5x5_100", "5X5", gocv.ArucoDict5x5_100, 100},
	"5x5_250":  {"5x5_250", "5X5", gocv.ArucoDict5x5_250, 250},
	"5x5_1000": {"5x5_1000", "5X5", gocv.ArucoDict5x5_1000, 1000},
	"6x6_50":   {"6x6_50", "6X6", gocv.ArucoDict6x6_50, 50},
	"6x6_100":  {"6x6_100", "6X6", gocv.ArucoDict6x6_100, 100},
	"6x6_250":  {"6x6_250", "6X6", gocv.ArucoDict6x6_250, 250},
	"6x6_1000": {"6x6_1000", "6X6", gocv.ArucoDict6x6_1000, 1000},
	"7x7_50":   {"7x7_50", "7X7", gocv.ArucoDict7x7_50, 50},
	"7x7_100":  {"7x7_100", "7X7", gocv.ArucoDict7x7_100, 100},
	"7x7_250":  {"7x7_250", "7X7", gocv.ArucoDict7x7_250, 250},
	"7x7_1000": {"7x7_1000", "7X7", gocv.ArucoDict7x7_1000, 1000},
	"original": {"original", "ARUCO", gocv.ArucoDictArucoOriginal, 1024},
}

// DefaultDictionary is the 6x6 bit, 250 symbol dictionary
const DefaultDictionary = "6x6_250"

// LookupDictionary finds a predefined dictionary by key, case-insensitively
func LookupDictionary(key string) (Dictionary, error) {
	d, ok := dictionaries[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return Dictionary{}, fmt.Errorf("unknown dictionary %q (available: %s)", key, strings.Join(DictionaryKeys(), ", "))
	}
	return d, nil
}

// DictionaryKeys lists the supported dictionary keys in sorted order
func DictionaryKeys() []string {
	keys := make([]string, 0, len(dictionaries))
	for k := range dictionaries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ArucoSource generates markers with OpenCV's ArUco module
type ArucoSource struct {
	dict       Dictionary
	borderBits int
}

// NewArucoSource creates a marker source for the named predefined dictionary
func NewArucoSource(key string) (*ArucoSource, error) {
	d, err := LookupDictionary(key)
	if err != nil {
		return nil, err
	}
	return &ArucoSource{dict: d, borderBits: 1}, nil
}

// Marker implements MarkerSource
func (a *ArucoSource) Marker(id, sizePx int) (gocv.Mat, error) {
	if id < 0 || id >= a.dict.Size {
		return gocv.NewMat(), fmt.Errorf("%w: %d not in [0,%d) for %s", ErrMarkerOutOfRange, id, a.dict.Size, a.dict.Key)
	}
	if sizePx <= 0 {
		return gocv.NewMat(), fmt.Errorf("invalid marker size %dpx", sizePx)
	}

	marker := gocv.NewMat()
	gocv.ArucoGenerateImageMarker(a.dict.Code, id, sizePx, marker, a.borderBits)
	if marker.Empty() {
		marker.Close()
		return gocv.NewMat(), fmt.Errorf("failed to generate marker %d from %s", id, a.dict.Key)
	}
	return marker, nil
}

// Size implements MarkerSource
func (a *ArucoSource) Size() int {
	return a.dict.Size
}

// Name implements MarkerSource
func (a *ArucoSource) Name() string {
	return a.dict.Label
}

// Dictionary returns the dictionary this source draws from
func (a *ArucoSource) Dictionary() Dictionary {
	return a.dict
}
