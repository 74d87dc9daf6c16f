package layout

import (
	"fmt"
	"image"

	"targetgen/overlay"
	"targetgen/pattern"
	"targetgen/units"

	"gocv.io/x/gocv"
)

// TileStrategy packs captioned square tiles left-to-right, top-to-bottom.
// Each tile holds either an ArUco marker or a small chessboard.
type TileStrategy struct {
	cfg     Config
	mode    Mode
	markers pattern.MarkerSource
}

// NewTileStrategy creates a tile grid layout. markers is only used in ModeArucoMarker.
func NewTileStrategy(cfg Config, mode Mode, markers pattern.MarkerSource) (*TileStrategy, error) {
	if mode != ModeArucoMarker && mode != ModeChessboardTile {
		return nil, fmt.Errorf("tile layout does not support mode %v", mode)
	}
	if mode == ModeArucoMarker && markers == nil {
		return nil, fmt.Errorf("marker mode requires a marker source")
	}
	return &TileStrategy{cfg: cfg, mode: mode, markers: markers}, nil
}

// Name implements Strategy
func (s *TileStrategy) Name() string {
	return s.mode.String()
}

// OutputName implements Strategy
func (s *TileStrategy) OutputName() string {
	if s.mode == ModeChessboardTile {
		return "Chessboard_Tile_A4_print"
	}
	return "ArUco_A4_print"
}

// exhausted reports whether the identifier counter reached the dictionary bound
func (s *TileStrategy) exhausted(nextID int) bool {
	return s.mode == ModeArucoMarker && nextID >= s.markers.Size()
}

// Render implements Strategy. Identifiers restart at 1 on every call.
func (s *TileStrategy) Render(canvas *gocv.Mat) ([]Placement, error) {
	tilePx := units.MMToPx(s.cfg.TileSizeMM)
	step := tilePx + units.MMToPx(s.cfg.SpacingMM)

	rows := GridOrigins(units.MMToPx(s.cfg.OriginYMM), step, tilePx, canvas.Rows())
	cols := GridOrigins(units.MMToPx(s.cfg.OriginXMM), step, tilePx, canvas.Cols())
	debugMsg("LAYOUT", fmt.Sprintf("🔲 %s grid: %d rows x %d cols of %dpx tiles", s.Name(), len(rows), len(cols), tilePx))

	var placements []Placement
	nextID := 1

grid:
	for _, y := range rows {
		for _, x := range cols {
			if s.exhausted(nextID) {
				break grid
			}

			content, caption, id, err := s.cellContent(nextID)
			if err != nil {
				content.Close()
				return placements, err
			}

			tile := overlay.MakeTile(content, caption, tilePx)
			content.Close()
			overlay.Paste(canvas, tile, image.Point{x, y})
			tile.Close()

			placements = append(placements, Placement{
				Index:   len(placements),
				ID:      id,
				Rect:    image.Rect(x, y, x+tilePx, y+tilePx),
				Caption: caption,
			})
			if id > 0 {
				nextID++
			}

			if s.exhausted(nextID) {
				debugMsg("LAYOUT", fmt.Sprintf("🛑 dictionary exhausted at ID %d, leaving remaining cells blank", nextID))
				break grid
			}
		}
	}

	r := s.cfg.TileRuler
	origin := image.Point{X: units.MMToPx(r.XMM), Y: canvas.Rows() - units.MMToPx(r.YMM)}
	overlay.DrawRuler(canvas, origin, r.LengthMM, units.MMToPx(r.MajorTick))

	debugMsg("LAYOUT", fmt.Sprintf("✅ placed %d tiles", len(placements)))
	return placements, nil
}

// cellContent produces the pattern, caption and identifier for a grid cell;
// id is only consumed in marker mode. The returned Mat is owned by the caller.
func (s *TileStrategy) cellContent(id int) (gocv.Mat, string, int, error) {
	if s.mode == ModeChessboardTile {
		b := s.cfg.TileBoard
		board := pattern.NewChessboard(b.Rows-1, b.Cols-1, b.SquareMM, 0)
		caption := fmt.Sprintf("Chessboard | size:%.1fmm | %dx%d", b.SquareMM, b.Rows, b.Cols)
		return board, s.attribute(caption), 0, nil
	}

	marker, err := s.markers.Marker(id, units.MMToPx(s.cfg.MarkerSizeMM))
	if err != nil {
		return marker, "", id, fmt.Errorf("failed to generate marker %d: %v", id, err)
	}
	caption := fmt.Sprintf("%s | %.1fmm | ID:%d", s.markers.Name(), s.cfg.MarkerSizeMM, id)
	return marker, s.attribute(caption), id, nil
}

func (s *TileStrategy) attribute(caption string) string {
	if s.cfg.Attribution == "" {
		return caption
	}
	return caption + " | " + s.cfg.Attribution
}
