package pattern

import (
	"image"
	"image/color"

	"targetgen/units"

	"gocv.io/x/gocv"
)

// ink fills dark squares. gocv maps color.RGBA to a BGRA scalar, so a single channel Mat reads B.
var ink = color.RGBA{0, 0, 0, 255}

// ChessboardSize returns the pixel size NewChessboard produces for the given geometry.
// rows and cols count interior corners, so the board has one more square on each axis.
func ChessboardSize(rows, cols int, squareMM, marginMM float64) image.Point {
	boardRows, boardCols := boardDims(rows, cols)
	squarePx := units.MMToPx(squareMM)
	marginPx := units.MMToPx(marginMM)

	return image.Point{
		X: boardCols*squarePx + 2*marginPx,
		Y: boardRows*squarePx + 2*marginPx,
	}
}

// NewChessboard renders a white-backed checkerboard with black squares where (r+c) is odd.
// The caller owns the returned Mat and must Close it.
func NewChessboard(rows, cols int, squareMM, marginMM float64) gocv.Mat {
	boardRows, boardCols := boardDims(rows, cols)
	squarePx := units.MMToPx(squareMM)
	marginPx := units.MMToPx(marginMM)
	size := ChessboardSize(rows, cols, squareMM, marginMM)

	if size.X <= 0 || size.Y <= 0 {
		return gocv.NewMat()
	}

	board := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 255), size.Y, size.X, gocv.MatTypeCV8UC1)
	if squarePx <= 0 {
		return board
	}

	for r := 0; r < boardRows; r++ {
		for c := 0; c < boardCols; c++ {
			if !IsDarkSquare(r, c) {
				continue
			}

			x := marginPx + c*squarePx
			y := marginPx + r*squarePx
			gocv.Rectangle(&board, image.Rect(x, y, x+squarePx, y+squarePx), ink, -1)
		}
	}

	return board
}

// IsDarkSquare reports the checkerboard parity used by NewChessboard; (0,0) is always light
func IsDarkSquare(r, c int) bool {
	return (r+c)%2 == 1
}

func boardDims(rows, cols int) (int, int) {
	if rows < 0 {
		rows = -1
	}
	if cols < 0 {
		cols = -1
	}
	return rows + 1, cols + 1
}
