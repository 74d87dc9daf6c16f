package overlay

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// captionGap is the distance between the caption's descent and the tile's bottom edge
const captionGap = 10

// CenterOffset returns where an inner extent starts when centered in an outer one.
// Truncating division biases odd differences toward the top-left.
func CenterOffset(outer, inner int) int {
	return (outer - inner) / 2
}

// Paste copies src into dst with its top-left corner at at, clipped to dst.
func Paste(dst *gocv.Mat, src gocv.Mat, at image.Point) {
	if src.Empty() {
		return
	}

	target := image.Rect(at.X, at.Y, at.X+src.Cols(), at.Y+src.Rows())
	clipped := target.Intersect(image.Rect(0, 0, dst.Cols(), dst.Rows()))
	if clipped.Empty() {
		return
	}
	if clipped != target {
		debugMsg("OVERLAY", fmt.Sprintf("⚠️ pattern %v clipped to %v", target, clipped))
	}

	srcROI := src.Region(clipped.Sub(at))
	defer srcROI.Close()
	dstROI := dst.Region(clipped)
	defer dstROI.Close()

	srcROI.CopyTo(&dstROI)
}

// MakeTile builds a white tileSizePx square with the pattern centered in it,
// a caption near the bottom edge and a 1px frame. The caller must Close the result.
func MakeTile(pattern gocv.Mat, caption string, tileSizePx int) gocv.Mat {
	tile := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 255), tileSizePx, tileSizePx, gocv.MatTypeCV8UC1)

	at := image.Point{
		X: CenterOffset(tileSizePx, pattern.Cols()),
		Y: CenterOffset(tileSizePx, pattern.Rows()),
	}
	Paste(&tile, pattern, at)

	if caption != "" {
		CaptionStyle.PutCenteredBottom(&tile, caption, tileSizePx, tileSizePx, captionGap)
	}

	gocv.Rectangle(&tile, image.Rect(0, 0, tileSizePx, tileSizePx), ink, 1)
	return tile
}
