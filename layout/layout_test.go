package layout

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"targetgen/units"

	"github.com/google/go-cmp/cmp"
	"gocv.io/x/gocv"
)

// fakeMarkers hands out solid black squares and records every request
type fakeMarkers struct {
	size      int
	requested []int
}

func (f *fakeMarkers) Marker(id, sizePx int) (gocv.Mat, error) {
	if id < 0 || id >= f.size {
		return gocv.NewMat(), fmt.Errorf("id %d out of range", id)
	}
	f.requested = append(f.requested, id)
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), sizePx, sizePx, gocv.MatTypeCV8UC1), nil
}

func (f *fakeMarkers) Size() int    { return f.size }
func (f *fakeMarkers) Name() string { return "FAKE" }

func render(t *testing.T, cfg Config, mode Mode, markers *fakeMarkers) *Sheet {
	t.Helper()
	var e *Engine
	var err error
	if markers == nil {
		e, err = New(cfg, mode, nil)
	} else {
		e, err = New(cfg, mode, markers)
	}
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sheet, err := e.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return sheet
}

func TestGridOriginsFivePerRow(t *testing.T) {
	got := GridOrigins(177, 591+24, 591, 3307)
	want := []int{177, 792, 1407, 2022, 2637}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GridOrigins mismatch (-want +got):\n%s", diff)
	}
}

func TestGridOriginsDropsPartialAndExactFit(t *testing.T) {
	// a cell ending exactly on the bound is dropped too
	if got := GridOrigins(0, 10, 10, 30); !cmp.Equal(got, []int{0, 10}) {
		t.Errorf("exact fit: got %v, want [0 10]", got)
	}
	if got := GridOrigins(5, 10, 10, 14); got != nil {
		t.Errorf("partial cell: got %v, want none", got)
	}
	if got := GridOrigins(0, 0, 0, 100); got != nil {
		t.Errorf("zero size: got %v, want none", got)
	}
}

func TestMarkerGridDefaultPage(t *testing.T) {
	markers := &fakeMarkers{size: 250}
	sheet := render(t, DefaultConfig(), ModeArucoMarker, markers)
	defer sheet.Close()

	if sheet.Canvas.Cols() != 3307 || sheet.Canvas.Rows() != 2362 {
		t.Fatalf("canvas = %dx%d, want 3307x2362", sheet.Canvas.Cols(), sheet.Canvas.Rows())
	}
	if sheet.Canvas.Type() != gocv.MatTypeCV8UC1 {
		t.Errorf("canvas type = %v, want CV8UC1", sheet.Canvas.Type())
	}
	if sheet.OutputName != "ArUco_A4_print" {
		t.Errorf("OutputName = %q", sheet.OutputName)
	}

	if len(sheet.Placements) != 15 {
		t.Fatalf("placed %d tiles, want 15 (5 columns x 3 rows)", len(sheet.Placements))
	}
	for i, p := range sheet.Placements {
		if p.ID != i+1 || p.Index != i {
			t.Errorf("placement %d has index %d id %d", i, p.Index, p.ID)
		}
		if p.Rect.Max.X >= sheet.Canvas.Cols() || p.Rect.Max.Y >= sheet.Canvas.Rows() {
			t.Errorf("placement %d at %v exceeds the canvas", i, p.Rect)
		}
		want := fmt.Sprintf("FAKE | 40.0mm | ID:%d | HBUT L-Create", i+1)
		if p.Caption != want {
			t.Errorf("caption %q, want %q", p.Caption, want)
		}
	}
	if !cmp.Equal(markers.requested, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}) {
		t.Errorf("requested ids %v", markers.requested)
	}

	first := sheet.Placements[0].Rect
	if first != image.Rect(177, 118, 177+591, 118+591) {
		t.Errorf("first tile at %v", first)
	}

	c := sheet.Canvas
	// frame corner, marker interior, spacing gap
	if v := c.GetUCharAt(first.Min.Y, first.Min.X); v != 0 {
		t.Errorf("tile frame pixel = %d, want 0", v)
	}
	delta := (591 - 472) / 2
	if v := c.GetUCharAt(first.Min.Y+delta, first.Min.X+delta); v != 0 {
		t.Errorf("marker top-left pixel = %d, want 0", v)
	}
	if v := c.GetUCharAt(first.Min.Y+delta-1, first.Min.X+delta+10); v != 255 {
		t.Errorf("pixel above marker = %d, want 255", v)
	}
	if v := c.GetUCharAt(first.Min.Y+100, first.Max.X+10); v != 255 {
		t.Errorf("spacing gap pixel = %d, want 255", v)
	}
}

func TestMarkerGridHaltsAtDictionaryBound(t *testing.T) {
	markers := &fakeMarkers{size: 5}
	sheet := render(t, DefaultConfig(), ModeArucoMarker, markers)
	defer sheet.Close()

	var ids []int
	for _, p := range sheet.Placements {
		ids = append(ids, p.ID)
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4}, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
	if !cmp.Equal(markers.requested, []int{1, 2, 3, 4}) {
		t.Errorf("requested ids %v", markers.requested)
	}

	// the fifth cell of the first row stays blank
	x := 177 + 4*(591+24)
	if v := sheet.Canvas.GetUCharAt(118, x); v != 255 {
		t.Errorf("cell after halt was drawn: pixel = %d", v)
	}
}

func TestMarkerGridSingleSymbolDictionary(t *testing.T) {
	markers := &fakeMarkers{size: 1}
	sheet := render(t, DefaultConfig(), ModeArucoMarker, markers)
	defer sheet.Close()

	if len(sheet.Placements) != 0 || len(markers.requested) != 0 {
		t.Errorf("placed %d tiles from a dictionary without a usable id", len(sheet.Placements))
	}
}

func TestEngineRenderTwiceRestartsIDs(t *testing.T) {
	for _, size := range []int{250, 5} {
		t.Run(fmt.Sprintf("dictionary of %d", size), func(t *testing.T) {
			markers := &fakeMarkers{size: size}
			e, err := New(DefaultConfig(), ModeArucoMarker, markers)
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			var runs [][]int
			for i := 0; i < 2; i++ {
				sheet, err := e.Render()
				if err != nil {
					t.Fatalf("Render #%d: %v", i+1, err)
				}
				var ids []int
				for _, p := range sheet.Placements {
					ids = append(ids, p.ID)
				}
				sheet.Close()
				runs = append(runs, ids)
			}

			if len(runs[0]) == 0 || runs[0][0] != 1 {
				t.Fatalf("first sheet ids %v, want to start at 1", runs[0])
			}
			if diff := cmp.Diff(runs[0], runs[1]); diff != "" {
				t.Errorf("second sheet ids differ (-first +second):\n%s", diff)
			}
		})
	}
}

func TestChessboardTileGrid(t *testing.T) {
	sheet := render(t, DefaultConfig(), ModeChessboardTile, nil)
	defer sheet.Close()

	if sheet.OutputName != "Chessboard_Tile_A4_print" {
		t.Errorf("OutputName = %q", sheet.OutputName)
	}
	if len(sheet.Placements) != 15 {
		t.Fatalf("placed %d tiles, want 15", len(sheet.Placements))
	}
	for _, p := range sheet.Placements {
		if p.ID != 0 {
			t.Errorf("chessboard tile has id %d", p.ID)
		}
		if p.Caption != "Chessboard | size:4.0mm | 8x11 | HBUT L-Create" {
			t.Errorf("caption %q", p.Caption)
		}
	}

	// 11x8 squares of 47px centered in a 591px tile
	sq := units.MMToPx(4)
	offX := (591 - 11*sq) / 2
	offY := (591 - 8*sq) / 2
	r := sheet.Placements[0].Rect
	c := sheet.Canvas
	if v := c.GetUCharAt(r.Min.Y+offY+sq/2, r.Min.X+offX+sq/2); v != 255 {
		t.Errorf("square (0,0) = %d, want light", v)
	}
	if v := c.GetUCharAt(r.Min.Y+offY+sq/2, r.Min.X+offX+sq+sq/2); v != 0 {
		t.Errorf("square (0,1) = %d, want dark", v)
	}
}

func TestChessboardSheet(t *testing.T) {
	sheet := render(t, DefaultConfig(), ModeChessboardSheet, nil)
	defer sheet.Close()

	if sheet.OutputName != "Chessboard_A4_print" {
		t.Errorf("OutputName = %q", sheet.OutputName)
	}
	want := []Placement{{
		Index:   0,
		Rect:    image.Rect(236, 236, 236+2835, 236+1890),
		Caption: "Chessboard | 7x11 | square size : 20.0mm | HBUT L-Create | RoboMaster",
	}}
	if diff := cmp.Diff(want, sheet.Placements); diff != "" {
		t.Errorf("placements mismatch (-want +got):\n%s", diff)
	}

	c := sheet.Canvas
	sq := units.MMToPx(20)
	if v := c.GetUCharAt(236+sq/2, 236+sq+sq/2); v != 0 {
		t.Errorf("square (0,1) = %d, want dark", v)
	}
	if v := c.GetUCharAt(236+sq/2, 236+sq/2); v != 255 {
		t.Errorf("square (0,0) = %d, want light", v)
	}
	// ruler baseline at (20mm, 10mm)
	if v := c.GetUCharAt(units.MMToPx(10), units.MMToPx(20)+units.MMToPx(50)); v != 0 {
		t.Errorf("ruler baseline pixel = %d, want 0", v)
	}
}

func TestTileRulerNearBottomLeft(t *testing.T) {
	sheet := render(t, DefaultConfig(), ModeChessboardTile, nil)
	defer sheet.Close()

	y := sheet.Canvas.Rows() - units.MMToPx(20)
	x := units.MMToPx(20) + units.MMToPx(55)
	if v := sheet.Canvas.GetUCharAt(y, x); v != 0 {
		t.Errorf("ruler baseline pixel = %d, want 0", v)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mode   Mode
		mutate func(*Config)
	}{
		{"marker larger than tile", ModeArucoMarker, func(c *Config) { c.MarkerSizeMM = 60 }},
		{"unknown dictionary", ModeArucoMarker, func(c *Config) { c.Dictionary = "3x3_9" }},
		{"negative spacing", ModeChessboardTile, func(c *Config) { c.SpacingMM = -1 }},
		{"tile board too large", ModeChessboardTile, func(c *Config) { c.TileBoard.SquareMM = 10 }},
		{"sheet board too large", ModeChessboardSheet, func(c *Config) { c.SheetBoard.SquareMM = 30 }},
		{"empty page", ModeChessboardSheet, func(c *Config) { c.PageWidthMM = 0 }},
		{"downward sheet ruler ticks", ModeChessboardSheet, func(c *Config) { c.SheetRuler.MajorTick = -3 }},
		{"sheet ruler off page", ModeChessboardSheet, func(c *Config) { c.SheetRuler.XMM = -5 }},
		{"downward tile ruler ticks", ModeArucoMarker, func(c *Config) { c.TileRuler.MajorTick = -8 }},
		{"tile ruler below page", ModeChessboardTile, func(c *Config) { c.TileRuler.YMM = -1 }},
		{"unknown mode", Mode(42), func(c *Config) {}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if _, err := New(cfg, tc.mode, &fakeMarkers{size: 250}); err == nil {
				t.Error("expected an error")
			}
		})
	}

	if _, err := New(DefaultConfig(), ModeArucoMarker, nil); err == nil {
		t.Error("marker mode without a marker source should fail")
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ModeArucoMarker, ModeChessboardTile, ModeChessboardSheet} {
		got, err := ParseMode(strings.ToUpper(m.String()))
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMode("qr"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.json")
	data := `{"page_width_mm": 297, "spacing_mm": 3, "sheet_board": {"rows": 5, "cols": 8, "square_mm": 25}}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path, DefaultConfig())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	want := DefaultConfig()
	want.PageWidthMM = 297
	want.SpacingMM = 3
	want.SheetBoard = ChessboardSpec{Rows: 5, Cols: 8, SquareMM: 25}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"), DefaultConfig()); err == nil {
		t.Error("expected error for missing file")
	}
}
