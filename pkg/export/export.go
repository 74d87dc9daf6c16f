package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"targetgen/units"

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

// Format is a lossless raster file format
type Format string

const (
	FormatPNG  Format = "png"
	FormatTIFF Format = "tiff"
)

// FormatFor picks the output format from a file extension
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".tif", ".tiff":
		return FormatTIFF, nil
	default:
		return "", fmt.Errorf("unsupported output extension %q (use .png, .tif or .tiff)", filepath.Ext(path))
	}
}

// Write saves img to path in the format implied by its extension
func Write(path string, img gocv.Mat) error {
	if img.Empty() {
		return fmt.Errorf("refusing to write empty image to %s", path)
	}

	format, err := FormatFor(path)
	if err != nil {
		return err
	}

	switch format {
	case FormatTIFF:
		err = writeTIFF(path, img)
	default:
		err = writePNG(path, img)
	}
	if err != nil {
		return err
	}

	debugMsg("EXPORT", fmt.Sprintf("💾 saved %dx%dpx %s to %s (%.0f DPI)", img.Cols(), img.Rows(), format, path, units.DPI))
	return nil
}

func writePNG(path string, img gocv.Mat) error {
	data, err := EncodePNG(img, units.DotsPerMeter())
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to save %s: %v", path, err)
	}
	return nil
}

func writeTIFF(path string, img gocv.Mat) error {
	goImg, err := img.ToImage()
	if err != nil {
		return fmt.Errorf("failed to convert canvas: %v", err)
	}

	data, err := EncodeTIFF(goImg, int(units.DPI))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to save %s: %v", path, err)
	}
	return nil
}
