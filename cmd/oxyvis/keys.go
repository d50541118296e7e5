package main

import (
	"log/slog"
	"slices"

	"github.com/Carmen-Shannon/oxy-vis/engine/camera"
	"github.com/Carmen-Shannon/oxy-vis/engine/controller"
	"github.com/Carmen-Shannon/oxy-vis/engine/data"
	"github.com/Carmen-Shannon/oxy-vis/engine/input"
	"github.com/Carmen-Shannon/oxy-vis/engine/theme"
)

// orbitSpeed is the auto-rotate speed in degrees per second.
const orbitSpeed = 20

// demo holds the interactive state of the viewer. Both handleKey and tick run with the graph's
// frame mutex held, so they change the controller directly.
type demo struct {
	logger     *slog.Logger
	controller controller.Controller
	sheet      *data.SpreadsheetModel

	autoRotate bool
	themes     []theme.Preset
	theme      int
	cameras    []camera.Preset
	camera     int
	shadow     controller.ShadowQuality

	lastElement controller.ElementType
	lastBar     controller.Position
}

func newDemo(c controller.Controller, sheet *data.SpreadsheetModel, s settings, autoRotate bool, logger *slog.Logger) *demo {
	d := &demo{
		logger:      logger,
		controller:  c,
		sheet:       sheet,
		autoRotate:  autoRotate,
		themes:      theme.Presets(),
		cameras:     camera.Presets(),
		shadow:      s.shadow,
		lastElement: controller.ElementNone,
		lastBar:     controller.NoSelection,
	}
	d.camera = max(slices.Index(d.cameras, s.camera), 0)
	if p, err := theme.ParsePreset(s.theme.Name); err == nil {
		d.theme = int(p)
	}
	return d
}

// handleKey binds:
//
//	R  toggle the camera orbit
//	T  next theme preset
//	C  next camera preset
//	S  next shadow quality
//	F  toggle frame rate measurement
//	O  reload the workbook
func (d *demo) handleKey(e input.Event) {
	if e.Kind != input.KindKeyDown {
		return
	}
	c := d.controller
	switch e.Key {
	case input.KeyR:
		d.autoRotate = !d.autoRotate
	case input.KeyT:
		d.theme = (d.theme + 1) % len(d.themes)
		c.SetTheme(theme.FromPreset(d.themes[d.theme]))
		d.logger.Info("theme", "preset", d.themes[d.theme])
	case input.KeyC:
		d.camera = (d.camera + 1) % len(d.cameras)
		if err := c.SetCameraPreset(d.cameras[d.camera]); err != nil {
			d.logger.Warn("camera preset rejected", "error", err)
			return
		}
		d.logger.Info("camera", "preset", d.cameras[d.camera])
	case input.KeyS:
		next := (d.shadow + 1) % (controller.ShadowQualitySoftHigh + 1)
		if err := c.SetShadowQuality(next); err != nil {
			d.logger.Warn("shadow quality rejected", "quality", next, "error", err)
			return
		}
		d.shadow = next
		d.logger.Info("shadows", "quality", next)
	case input.KeyF:
		enabled := !c.MeasureFps()
		c.SetMeasureFps(enabled)
		if !enabled {
			d.logger.Info("frame rate", "fps", c.CurrentFps())
		}
	case input.KeyO:
		if d.sheet == nil {
			return
		}
		if err := d.sheet.Reload(); err != nil {
			d.logger.Error("workbook reload failed", "error", err)
			return
		}
		d.logger.Info("workbook reloaded", "sheet", d.sheet.Sheet(), "rows", d.sheet.RowCount())
	}
}

// tick orbits the camera and reports selection changes.
func (d *demo) tick(c controller.Controller, deltaTime float32) {
	if d.autoRotate {
		state := c.Camera()
		c.SetCameraRotation(state.XRotation+orbitSpeed*deltaTime, state.YRotation)
	}

	element := c.SelectedElement()
	bar := controller.NoSelection
	if bars, ok := c.(controller.BarsController); ok {
		bar = bars.SelectedBar()
	}
	if element == d.lastElement && bar == d.lastBar {
		return
	}
	d.lastElement, d.lastBar = element, bar
	if bar != controller.NoSelection {
		d.logger.Info("selected", "element", element, "row", bar.Row, "column", bar.Column)
		return
	}
	d.logger.Info("selected", "element", element)
}
