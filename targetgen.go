package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"targetgen/calibration"
	"targetgen/layout"
	"targetgen/overlay"
	"targetgen/pattern"
	"targetgen/pkg/export"
	"targetgen/units"
)

var (
	// Command-line flags
	patternFlag  = flag.String("pattern", "aruco", "Target to generate: aruco, chessboard-tile or chessboard")
	outputPath   = flag.String("out", "", "Output image path (.png, .tif or .tiff)\n\t\tDefault: ArUco_A4_print.png, Chessboard_Tile_A4_print.png or Chessboard_A4_print.png")
	configPath   = flag.String("config", "", "JSON file overriding layout parameters (millimeters)\n\t\tExample: -config=a3-markers.json")
	dictFlag     = flag.String("dict", "", "ArUco dictionary for -pattern=aruco (default 6x6_250)\n\t\tAvailable: "+strings.Join(pattern.DictionaryKeys(), ", "))
	manifestFlag = flag.Bool("manifest", false, "Also write <out>.json describing every placed pattern")
	debugMode    = flag.Bool("debug", false, "Enable debug mode with a log file under /tmp/targetgen")

	globalDebugLogger *DebugLogger
)

// DebugLogger prints tagged, timestamped messages and mirrors them to a log file in debug mode
type DebugLogger struct {
	mu      sync.Mutex
	enabled bool
	file    *os.File
}

// NewDebugLogger creates the unified logger; the file is only opened when enabled
func NewDebugLogger(enabled bool) *DebugLogger {
	dl := &DebugLogger{enabled: enabled}
	if !enabled {
		return dl
	}

	baseDir := "/tmp/targetgen"
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		fmt.Printf("[DEBUG_LOGGER] Failed to create debug directory: %v\n", err)
		dl.enabled = false
		return dl
	}

	logPath := filepath.Join(baseDir, fmt.Sprintf("run_%s.log", time.Now().Format("2006-01-02_15-04-05")))
	f, err := os.Create(logPath)
	if err != nil {
		fmt.Printf("[DEBUG_LOGGER] Failed to create log file: %v\n", err)
		dl.enabled = false
		return dl
	}
	dl.file = f
	return dl
}

func (dl *DebugLogger) debugMsg(component, message string) {
	line := fmt.Sprintf("[%s][%s] %s", time.Now().Format("15:04:05.000"), component, message)
	fmt.Println(line)

	dl.mu.Lock()
	defer dl.mu.Unlock()
	if dl.enabled && dl.file != nil {
		fmt.Fprintln(dl.file, line)
	}
}

// Close flushes and closes the log file
func (dl *DebugLogger) Close() {
	dl.mu.Lock()
	defer dl.mu.Unlock()
	if dl.file != nil {
		dl.file.Close()
		dl.file = nil
	}
}

// debugMsg is the global convenience function for unified debug logging
func debugMsg(component, message string) {
	if globalDebugLogger != nil {
		globalDebugLogger.debugMsg(component, message)
	} else {
		fmt.Printf("[%s][%s] %s\n", time.Now().Format("15:04:05.000"), component, message)
	}
}

// debugMsgVerbose only outputs in debug mode
func debugMsgVerbose(component, message string) {
	if !*debugMode {
		return
	}
	debugMsg(component, message)
}

func main() {
	flag.Parse()

	globalDebugLogger = NewDebugLogger(*debugMode)
	defer globalDebugLogger.Close()

	layout.SetDebugFunction(debugMsgVerbose)
	overlay.SetDebugFunction(debugMsg)
	export.SetDebugFunction(debugMsg)

	mode, err := layout.ParseMode(*patternFlag)
	if err != nil {
		fmt.Printf("❌ %v\n\n", err)
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := buildConfig()
	if err != nil {
		fatal("CONFIG", err)
	}

	if err := run(mode, cfg); err != nil {
		fatal("MAIN", err)
	}
}

// fatal logs err and terminates; nothing has been persisted that needs cleanup
func fatal(component string, err error) {
	debugMsg(component, fmt.Sprintf("❌ %v", err))
	globalDebugLogger.Close()
	os.Exit(1)
}

// buildConfig layers defaults, the optional config file and flags
func buildConfig() (layout.Config, error) {
	cfg := layout.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = layout.LoadConfig(*configPath, cfg)
		if err != nil {
			return cfg, err
		}
		debugMsg("CONFIG", fmt.Sprintf("📋 loaded layout overrides from %s", *configPath))
	}
	if *dictFlag != "" {
		cfg.Dictionary = *dictFlag
	}
	return cfg, nil
}

func run(mode layout.Mode, cfg layout.Config) error {
	var markers pattern.MarkerSource
	if mode == layout.ModeArucoMarker {
		src, err := pattern.NewArucoSource(cfg.Dictionary)
		if err != nil {
			return err
		}
		markers = src
	}

	engine, err := layout.New(cfg, mode, markers)
	if err != nil {
		return err
	}

	out := *outputPath
	if out == "" {
		out = engine.Strategy().OutputName() + ".png"
	}
	if _, err := export.FormatFor(out); err != nil {
		return err
	}

	widthPx, heightPx := cfg.PageSizePx()
	debugMsg("MAIN", fmt.Sprintf("🎯 generating %s target on %.0fx%.0fmm (%dx%dpx @ %.0f DPI)",
		mode, cfg.PageWidthMM, cfg.PageHeightMM, widthPx, heightPx, units.DPI))

	sheet, err := engine.Render()
	if err != nil {
		return err
	}
	defer sheet.Close()

	if err := export.Write(out, sheet.Canvas); err != nil {
		return fmt.Errorf("failed to write %s: %v", out, err)
	}
	debugMsg("MAIN", fmt.Sprintf("✅ %d pattern(s) written to %s", len(sheet.Placements), out))

	if *manifestFlag {
		manifestPath := out + ".json"
		if err := calibration.SaveManifest(manifestPath, calibration.NewManifest(sheet, cfg, out)); err != nil {
			return err
		}
		debugMsg("MAIN", fmt.Sprintf("📋 manifest saved to %s", manifestPath))
	}
	return nil
}
