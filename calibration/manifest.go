package calibration

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"targetgen/layout"
	"targetgen/units"
)

// Manifest describes a printed target so detections can be mapped back to
// physical positions on the page.
type Manifest struct {
	CalibrationType string            `json:"calibration_type"`
	Timestamp       time.Time         `json:"timestamp"`
	DPI             float64           `json:"dpi"`
	Mode            string            `json:"mode"`
	Dictionary      string            `json:"dictionary,omitempty"`
	Output          string            `json:"output"`
	Page            PageDimensions    `json:"page"`
	Placements      []PlacementRecord `json:"placements"`
}

// PageDimensions stores the page in both physical and pixel units
type PageDimensions struct {
	WidthMM  float64 `json:"width_mm"`
	HeightMM float64 `json:"height_mm"`
	WidthPx  int     `json:"width_px"`
	HeightPx int     `json:"height_px"`
}

// PlacementRecord is one placed pattern; MM values are derived from pixel bounds
type PlacementRecord struct {
	Index   int     `json:"index"`
	ID      int     `json:"id,omitempty"`
	Caption string  `json:"caption"`
	XPx     int     `json:"x_px"`
	YPx     int     `json:"y_px"`
	SizeXPx int     `json:"width_px"`
	SizeYPx int     `json:"height_px"`
	XMM     float64 `json:"x_mm"`
	YMM     float64 `json:"y_mm"`
	SizeXMM float64 `json:"width_mm"`
	SizeYMM float64 `json:"height_mm"`
}

// NewManifest summarizes a rendered sheet
func NewManifest(sheet *layout.Sheet, cfg layout.Config, output string) *Manifest {
	m := &Manifest{
		CalibrationType: "printed_target",
		Timestamp:       time.Now(),
		DPI:             units.DPI,
		Mode:            sheet.Mode.String(),
		Output:          output,
		Page: PageDimensions{
			WidthMM:  cfg.PageWidthMM,
			HeightMM: cfg.PageHeightMM,
			WidthPx:  sheet.Canvas.Cols(),
			HeightPx: sheet.Canvas.Rows(),
		},
		Placements: make([]PlacementRecord, 0, len(sheet.Placements)),
	}
	if sheet.Mode == layout.ModeArucoMarker {
		m.Dictionary = cfg.Dictionary
	}

	for _, p := range sheet.Placements {
		m.Placements = append(m.Placements, PlacementRecord{
			Index:   p.Index,
			ID:      p.ID,
			Caption: p.Caption,
			XPx:     p.Rect.Min.X,
			YPx:     p.Rect.Min.Y,
			SizeXPx: p.Rect.Dx(),
			SizeYPx: p.Rect.Dy(),
			XMM:     units.PxToMM(p.Rect.Min.X),
			YMM:     units.PxToMM(p.Rect.Min.Y),
			SizeXMM: units.PxToMM(p.Rect.Dx()),
			SizeYMM: units.PxToMM(p.Rect.Dy()),
		})
	}
	return m
}

// SaveManifest writes the manifest as indented JSON
func SaveManifest(path string, m *Manifest) error {
	jsonData, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %v", err)
	}
	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to save manifest: %v", err)
	}
	return nil
}

// LoadManifest reads a manifest written by SaveManifest
func LoadManifest(path string) (*Manifest, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("manifest not found: %s", path)
	}

	jsonData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %v", err)
	}

	var m Manifest
	if err := json.Unmarshal(jsonData, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest JSON: %v", err)
	}
	return &m, nil
}

// MarkerIDs lists the identifiers on the page in placement order
func (m *Manifest) MarkerIDs() []int {
	var ids []int
	for _, p := range m.Placements {
		if p.ID > 0 {
			ids = append(ids, p.ID)
		}
	}
	return ids
}
