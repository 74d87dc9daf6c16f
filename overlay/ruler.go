package overlay

import (
	"image"
	"math"
	"strconv"

	"targetgen/units"

	"gocv.io/x/gocv"
)

const (
	baselineThickness = 2
	labelDrop         = 25 // label baseline below the ruler baseline
	unitLabelGap      = 10
	unitLabelDrop     = 5
)

// Tick describes one graduation of a ruler
type Tick struct {
	MM        int
	X         int // absolute x position in pixels
	Height    int
	Thickness int
	Labeled   bool
}

// RulerTick returns the tier for millimeter m: every 10mm is a full labeled tick,
// every 5mm is 60% high, everything else 30% high and thin.
func RulerTick(m, majorTickPx int) Tick {
	switch {
	case m%10 == 0:
		return Tick{MM: m, Height: majorTickPx, Thickness: 2, Labeled: true}
	case m%5 == 0:
		return Tick{MM: m, Height: int(float64(majorTickPx) * 0.6), Thickness: 2}
	default:
		return Tick{MM: m, Height: int(float64(majorTickPx) * 0.3), Thickness: 1}
	}
}

// RulerTicks lists every tick of a ruler starting at originX.
// Each position is converted from its own millimeter value so rounding never accumulates.
func RulerTicks(originX int, lengthMM float64, majorTickPx int) []Tick {
	if lengthMM < 0 || math.IsNaN(lengthMM) || math.IsInf(lengthMM, 0) {
		return nil
	}

	last := int(math.Floor(lengthMM))
	ticks := make([]Tick, 0, last+1)
	for m := 0; m <= last; m++ {
		t := RulerTick(m, majorTickPx)
		t.X = originX + units.MMToPx(float64(m))
		ticks = append(ticks, t)
	}
	return ticks
}

// DrawRuler draws a millimeter ruler whose baseline starts at origin and runs right.
// Ticks point up from the baseline; labels sit below it.
func DrawRuler(img *gocv.Mat, origin image.Point, lengthMM float64, majorTickPx int) {
	ticks := RulerTicks(origin.X, lengthMM, majorTickPx)
	if ticks == nil {
		return
	}

	lengthPx := units.MMToPx(lengthMM)
	gocv.Line(img, origin, image.Point{origin.X + lengthPx, origin.Y}, ink, baselineThickness)

	for _, t := range ticks {
		gocv.Line(img,
			image.Point{t.X, origin.Y},
			image.Point{t.X, origin.Y - t.Height},
			ink, t.Thickness)

		if t.Labeled {
			label := strconv.Itoa(t.MM)
			size, _ := RulerLabelStyle.Measure(label)
			RulerLabelStyle.Put(img, label, image.Point{t.X - size.X/2, origin.Y + labelDrop})
		}
	}

	RulerLabelStyle.Put(img, "mm", image.Point{origin.X + lengthPx + unitLabelGap, origin.Y + unitLabelDrop})
}
