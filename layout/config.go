package layout

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"targetgen/pattern"
	"targetgen/units"
)

// ChessboardSpec is a chessboard geometry in interior corners and millimeters
type ChessboardSpec struct {
	Rows     int     `json:"rows"`
	Cols     int     `json:"cols"`
	SquareMM float64 `json:"square_mm"`
	MarginMM float64 `json:"margin_mm"`
}

// RulerSpec places a ruler relative to the page
type RulerSpec struct {
	// X is measured from the left page edge
	XMM float64 `json:"x_mm"`
	// Y is measured from the top edge for sheets and from the bottom edge for tile grids
	YMM       float64 `json:"y_mm"`
	LengthMM  float64 `json:"length_mm"`
	MajorTick float64 `json:"major_tick_mm"`
}

// Config holds every physical parameter of a printed target, in millimeters
type Config struct {
	PageWidthMM  float64 `json:"page_width_mm"`
	PageHeightMM float64 `json:"page_height_mm"`

	// Tile grid
	TileSizeMM   float64 `json:"tile_size_mm"`
	MarkerSizeMM float64 `json:"marker_size_mm"`
	SpacingMM    float64 `json:"spacing_mm"`
	OriginXMM    float64 `json:"origin_x_mm"`
	OriginYMM    float64 `json:"origin_y_mm"`
	Dictionary   string  `json:"dictionary"`

	// TileBoard counts squares, not interior corners
	TileBoard ChessboardSpec `json:"tile_board"`

	// SheetBoard counts interior corners
	SheetBoard ChessboardSpec `json:"sheet_board"`

	SheetRuler RulerSpec `json:"sheet_ruler"`
	TileRuler  RulerSpec `json:"tile_ruler"`

	SheetCaptionGapMM float64 `json:"sheet_caption_gap_mm"`
	Attribution       string  `json:"attribution"`
	SheetAttribution  string  `json:"sheet_attribution"`
}

// DefaultConfig returns the layout of the reference print: a 280x200mm page with
// 50mm tiles holding 40mm 6x6 markers, or a single 7x11 chessboard of 20mm squares.
func DefaultConfig() Config {
	return Config{
		PageWidthMM:  280,
		PageHeightMM: 200,

		TileSizeMM:   50,
		MarkerSizeMM: 40,
		SpacingMM:    2,
		OriginXMM:    15,
		OriginYMM:    10,
		Dictionary:   pattern.DefaultDictionary,

		TileBoard:  ChessboardSpec{Rows: 8, Cols: 11, SquareMM: 4},
		SheetBoard: ChessboardSpec{Rows: 7, Cols: 11, SquareMM: 20},

		SheetRuler: RulerSpec{XMM: 20, YMM: 10, LengthMM: 100, MajorTick: 3},
		TileRuler:  RulerSpec{XMM: 20, YMM: 20, LengthMM: 100, MajorTick: 8},

		SheetCaptionGapMM: 2,
		Attribution:       "HBUT L-Create",
		SheetAttribution:  "HBUT L-Create | RoboMaster",
	}
}

// LoadConfig overlays the JSON file at path onto base
func LoadConfig(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("failed to read config file: %v", err)
	}

	cfg := base
	if err := json.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("failed to parse config file %s: %v", path, err)
	}
	return cfg, nil
}

// PageSizePx returns the canvas size in pixels
func (c Config) PageSizePx() (width, height int) {
	return units.MMToPx(c.PageWidthMM), units.MMToPx(c.PageHeightMM)
}

type namedLength struct {
	name string
	mm   float64
}

// Validate checks the geometry needed by mode before anything is drawn
func (c Config) Validate(mode Mode) error {
	if c.PageWidthMM <= 0 || c.PageHeightMM <= 0 {
		return fmt.Errorf("page size %.1fx%.1fmm must be positive", c.PageWidthMM, c.PageHeightMM)
	}

	var lengths []namedLength
	switch mode {
	case ModeChessboardSheet:
		lengths = []namedLength{
			{"sheet_board.square_mm", c.SheetBoard.SquareMM},
			{"sheet_board.margin_mm", c.SheetBoard.MarginMM},
			{"sheet_ruler.length_mm", c.SheetRuler.LengthMM},
			{"sheet_ruler.x_mm", c.SheetRuler.XMM},
			{"sheet_ruler.y_mm", c.SheetRuler.YMM},
			{"sheet_ruler.major_tick_mm", c.SheetRuler.MajorTick},
		}
	case ModeArucoMarker, ModeChessboardTile:
		lengths = []namedLength{
			{"tile_size_mm", c.TileSizeMM},
			{"marker_size_mm", c.MarkerSizeMM},
			{"spacing_mm", c.SpacingMM},
			{"origin_x_mm", c.OriginXMM},
			{"origin_y_mm", c.OriginYMM},
			{"tile_board.square_mm", c.TileBoard.SquareMM},
			{"tile_ruler.length_mm", c.TileRuler.LengthMM},
			{"tile_ruler.x_mm", c.TileRuler.XMM},
			{"tile_ruler.y_mm", c.TileRuler.YMM},
			{"tile_ruler.major_tick_mm", c.TileRuler.MajorTick},
		}
	default:
		return fmt.Errorf("unknown pattern mode %d", mode)
	}

	for _, l := range lengths {
		if l.mm < 0 || math.IsNaN(l.mm) || math.IsInf(l.mm, 0) {
			return fmt.Errorf("%s must be a finite non-negative length, got %v", l.name, l.mm)
		}
	}

	pageW, pageH := c.PageSizePx()

	switch mode {
	case ModeChessboardSheet:
		size := pattern.ChessboardSize(c.SheetBoard.Rows, c.SheetBoard.Cols, c.SheetBoard.SquareMM, c.SheetBoard.MarginMM)
		if size.X > pageW || size.Y > pageH {
			return fmt.Errorf("chessboard %dx%dpx does not fit on a %dx%dpx page", size.X, size.Y, pageW, pageH)
		}
		return nil

	case ModeArucoMarker:
		if units.MMToPx(c.MarkerSizeMM) <= 0 {
			return fmt.Errorf("marker_size_mm must be positive")
		}
		if units.MMToPx(c.MarkerSizeMM) > units.MMToPx(c.TileSizeMM) {
			return fmt.Errorf("marker %.1fmm is larger than its %.1fmm tile", c.MarkerSizeMM, c.TileSizeMM)
		}
		if _, err := pattern.LookupDictionary(c.Dictionary); err != nil {
			return err
		}

	case ModeChessboardTile:
		size := pattern.ChessboardSize(c.TileBoard.Rows-1, c.TileBoard.Cols-1, c.TileBoard.SquareMM, 0)
		tile := units.MMToPx(c.TileSizeMM)
		if size.X > tile || size.Y > tile {
			return fmt.Errorf("tile chessboard %dx%dpx does not fit in a %dpx tile", size.X, size.Y, tile)
		}
	}

	if units.MMToPx(c.TileSizeMM) <= 0 {
		return fmt.Errorf("tile_size_mm must be positive")
	}
	return nil
}
