package layout

import (
	"fmt"
	"time"

	"targetgen/pattern"

	"gocv.io/x/gocv"
)

// Sheet is the finished page. The caller must Close it once it has been written.
type Sheet struct {
	Mode       Mode
	Canvas     gocv.Mat
	Placements []Placement
	OutputName string
}

// Close releases the canvas
func (s *Sheet) Close() error {
	return s.Canvas.Close()
}

// Engine renders one page in one pattern mode
type Engine struct {
	cfg      Config
	mode     Mode
	strategy Strategy
}

// New validates cfg for mode and selects the matching layout strategy.
// markers may be nil for the chessboard modes.
func New(cfg Config, mode Mode, markers pattern.MarkerSource) (*Engine, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, fmt.Errorf("invalid %v layout: %v", mode, err)
	}

	var strategy Strategy
	switch mode {
	case ModeChessboardSheet:
		strategy = NewSheetStrategy(cfg)
	default:
		ts, err := NewTileStrategy(cfg, mode, markers)
		if err != nil {
			return nil, err
		}
		strategy = ts
	}

	return &Engine{cfg: cfg, mode: mode, strategy: strategy}, nil
}

// Strategy returns the layout the engine renders with
func (e *Engine) Strategy() Strategy {
	return e.strategy
}

// Render allocates a white page canvas and draws the target onto it
func (e *Engine) Render() (*Sheet, error) {
	start := time.Now()
	width, height := e.cfg.PageSizePx()
	canvas := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 255), height, width, gocv.MatTypeCV8UC1)

	debugMsg("LAYOUT", fmt.Sprintf("📄 page %.0fx%.0fmm -> %dx%dpx, mode %s",
		e.cfg.PageWidthMM, e.cfg.PageHeightMM, width, height, e.strategy.Name()))

	placements, err := e.strategy.Render(&canvas)
	if err != nil {
		canvas.Close()
		return nil, fmt.Errorf("failed to render %s: %v", e.strategy.Name(), err)
	}

	debugMsg("LAYOUT", fmt.Sprintf("⏱️ rendered in %v", time.Since(start).Round(time.Millisecond)))

	return &Sheet{
		Mode:       e.mode,
		Canvas:     canvas,
		Placements: placements,
		OutputName: e.strategy.OutputName(),
	}, nil
}
