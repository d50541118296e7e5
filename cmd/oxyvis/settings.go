package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Carmen-Shannon/oxy-vis/engine/camera"
	"github.com/Carmen-Shannon/oxy-vis/engine/controller"
	"github.com/Carmen-Shannon/oxy-vis/engine/data"
	"github.com/Carmen-Shannon/oxy-vis/engine/theme"
)

const (
	backendGL   = "gl"
	backendWGPU = "wgpu"
)

// options holds the raw command line flags.
type options struct {
	chart        string
	theme        string
	themeFile    string
	xlsx         string
	sheet        string
	headerRow    bool
	headerColumn bool
	backend      string
	software     bool
	constrained  bool
	vsync        bool
	shadow       string
	camera       string
	measureFps   bool
	autoRotate   bool
	profile      bool
	frameLimit   float64
	width        int
	height       int
	verbose      bool
}

// settings are the validated options.
type settings struct {
	kind    chartKind
	theme   theme.Theme
	shadow  controller.ShadowQuality
	camera  camera.Preset
	profile controller.Profile
	backend string
}

// parseSettings validates the flags before any window is opened.
func parseSettings(o *options) (settings, error) {
	var s settings
	var err error
	if s.kind, err = parseChartKind(o.chart); err != nil {
		return s, err
	}

	if o.themeFile != "" {
		if s.theme, err = theme.LoadFile(o.themeFile); err != nil {
			return s, err
		}
	} else {
		preset, err := theme.ParsePreset(o.theme)
		if err != nil {
			return s, err
		}
		s.theme = theme.FromPreset(preset)
	}

	if s.shadow, err = controller.ParseShadowQuality(o.shadow); err != nil {
		return s, err
	}
	if s.camera, err = camera.ParsePreset(o.camera); err != nil {
		return s, err
	}

	switch o.backend {
	case backendGL, backendWGPU:
		s.backend = o.backend
	default:
		return s, fmt.Errorf("invalid backend %q (must be gl or wgpu)", o.backend)
	}

	if o.constrained {
		s.profile = controller.ProfileConstrained
		s.shadow = controller.ShadowQualityNone
	}
	return s, nil
}

// openModel reads the workbook named by the flags, or generates sample data for kind.
// The returned spreadsheet is nil for sample data.
func openModel(o *options, kind chartKind) (data.ItemModel, *data.SpreadsheetModel, error) {
	if o.xlsx == "" {
		return sampleModel(kind), nil, nil
	}
	var headers []data.SpreadsheetOption
	if o.headerRow {
		headers = append(headers, data.WithHeaderRow())
	}
	if o.headerColumn {
		headers = append(headers, data.WithHeaderColumn())
	}
	sheet, err := data.OpenSpreadsheet(o.xlsx, o.sheet, headers...)
	if err != nil {
		return nil, nil, err
	}
	return sheet, sheet, nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
