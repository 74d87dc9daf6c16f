package layout

import (
	"image"

	"gocv.io/x/gocv"
)

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

// Placement records one pattern composited onto the page
type Placement struct {
	Index   int             // order of placement, from 0
	ID      int             // marker identifier, 0 for chessboards
	Rect    image.Rectangle // pixel bounds on the canvas
	Caption string
}

// Strategy renders one kind of target onto a blank page canvas
type Strategy interface {
	// Name is the pattern mode label used in logs
	Name() string

	// OutputName is the default file name without extension
	OutputName() string

	// Render draws onto canvas and reports what it placed
	Render(canvas *gocv.Mat) ([]Placement, error)
}
