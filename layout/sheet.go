package layout

import (
	"fmt"
	"image"

	"targetgen/overlay"
	"targetgen/pattern"
	"targetgen/units"

	"gocv.io/x/gocv"
)

// SheetStrategy places a single large chessboard in the middle of the page
type SheetStrategy struct {
	cfg Config
}

// NewSheetStrategy creates the full page chessboard layout
func NewSheetStrategy(cfg Config) *SheetStrategy {
	return &SheetStrategy{cfg: cfg}
}

// Name implements Strategy
func (s *SheetStrategy) Name() string {
	return ModeChessboardSheet.String()
}

// OutputName implements Strategy
func (s *SheetStrategy) OutputName() string {
	return "Chessboard_A4_print"
}

// Caption is the line printed along the bottom of the page
func (s *SheetStrategy) Caption() string {
	b := s.cfg.SheetBoard
	text := fmt.Sprintf("Chessboard | %dx%d | square size : %.1fmm", b.Rows, b.Cols, b.SquareMM)
	if s.cfg.SheetAttribution != "" {
		text += " | " + s.cfg.SheetAttribution
	}
	return text
}

// Render implements Strategy
func (s *SheetStrategy) Render(canvas *gocv.Mat) ([]Placement, error) {
	b := s.cfg.SheetBoard
	board := pattern.NewChessboard(b.Rows, b.Cols, b.SquareMM, b.MarginMM)
	defer board.Close()

	at := image.Point{
		X: overlay.CenterOffset(canvas.Cols(), board.Cols()),
		Y: overlay.CenterOffset(canvas.Rows(), board.Rows()),
	}
	overlay.Paste(canvas, board, at)

	caption := s.Caption()
	overlay.SheetCaptionStyle.PutCenteredBottom(canvas, caption, canvas.Cols(), canvas.Rows(), units.MMToPx(s.cfg.SheetCaptionGapMM))

	r := s.cfg.SheetRuler
	origin := image.Point{X: units.MMToPx(r.XMM), Y: units.MMToPx(r.YMM)}
	overlay.DrawRuler(canvas, origin, r.LengthMM, units.MMToPx(r.MajorTick))

	debugMsg("LAYOUT", fmt.Sprintf("♟️ chessboard %dx%d (%dx%dpx) placed at (%d,%d)",
		b.Rows, b.Cols, board.Cols(), board.Rows(), at.X, at.Y))

	return []Placement{{
		Index:   0,
		Rect:    image.Rect(at.X, at.Y, at.X+board.Cols(), at.Y+board.Rows()),
		Caption: caption,
	}}, nil
}
