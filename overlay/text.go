package overlay

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

var ink = color.RGBA{0, 0, 0, 255}

// debugMsgFunc is set by the main package to use unified logging
var debugMsgFunc func(component, message string)

// SetDebugFunction allows main package to provide the debug logger
func SetDebugFunction(fn func(component, message string)) {
	debugMsgFunc = fn
}

func debugMsg(component, message string) {
	if debugMsgFunc != nil {
		debugMsgFunc(component, message)
	}
}

// TextStyle is a Hershey font configuration for printed labels
type TextStyle struct {
	Font      gocv.HersheyFont
	Scale     float64
	Thickness int
}

var (
	// CaptionStyle labels individual tiles
	CaptionStyle = TextStyle{Font: gocv.FontHersheySimplex, Scale: 0.6, Thickness: 1}

	// SheetCaptionStyle labels a full page chessboard
	SheetCaptionStyle = TextStyle{Font: gocv.FontHersheySimplex, Scale: 1.5, Thickness: 2}

	// RulerLabelStyle is used for the millimeter numbers on a ruler
	RulerLabelStyle = TextStyle{Font: gocv.FontHersheySimplex, Scale: 0.5, Thickness: 1}
)

// Measure returns the text extent and the baseline offset below it
func (s TextStyle) Measure(text string) (image.Point, int) {
	return gocv.GetTextSizeWithBaseline(text, s.Font, s.Scale, s.Thickness)
}

// Put draws text with its bottom-left corner at org
func (s TextStyle) Put(img *gocv.Mat, text string, org image.Point) {
	gocv.PutTextWithParams(img, text, org, s.Font, s.Scale, ink, s.Thickness, gocv.LineAA, false)
}

// PutCenteredBottom draws text horizontally centered in a span of the given width,
// with the baseline sitting gap pixels plus the font descent above bottom.
// It returns the origin the text was drawn at.
func (s TextStyle) PutCenteredBottom(img *gocv.Mat, text string, width, bottom, gap int) image.Point {
	size, baseline := s.Measure(text)
	org := image.Point{
		X: (width - size.X) / 2,
		Y: bottom - baseline - gap,
	}
	if size.X > width {
		debugMsg("OVERLAY", fmt.Sprintf("⚠️ caption %q is %dpx wide, wider than its %dpx span", text, size.X, width))
	}
	s.Put(img, text, org)
	return org
}
