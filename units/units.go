package units

import "math"

const (
	// DPI is the print resolution every layout is computed for
	DPI = 300.0

	// MMPerInch converts between the physical units
	MMPerInch = 25.4

	inchesPerMeter = 1000.0 / MMPerInch
)

// MMToPx converts a physical length to whole pixels at DPI, rounding half away from zero.
// Negative lengths are allowed and map to positions left of or above an origin.
func MMToPx(mm float64) int {
	return int(math.Round(mm / MMPerInch * DPI))
}

// PxToMM converts a pixel count back to millimeters at DPI
func PxToMM(px int) float64 {
	return float64(px) / DPI * MMPerInch
}

// PixelsPerMM returns the unrounded scale factor
func PixelsPerMM() float64 {
	return DPI / MMPerInch
}

// DotsPerMeter returns the resolution in the unit PNG's pHYs chunk expects
func DotsPerMeter() int {
	return int(math.Round(DPI * inchesPerMeter))
}
