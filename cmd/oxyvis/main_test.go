package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/engine/camera"
	"github.com/Carmen-Shannon/oxy-vis/engine/controller"
	"github.com/Carmen-Shannon/oxy-vis/engine/data"
	"github.com/Carmen-Shannon/oxy-vis/engine/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-vis/engine/input"
	"github.com/Carmen-Shannon/oxy-vis/engine/shader"
	"github.com/Carmen-Shannon/oxy-vis/engine/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.DiscardHandler)

func parseFlags(t *testing.T, args ...string) *options {
	t.Helper()
	o := &options{}
	require.NoError(t, newRootCommand(o).ParseFlags(args))
	return o
}

func TestDefaultFlagsParse(t *testing.T) {
	s, err := parseSettings(parseFlags(t))
	require.NoError(t, err)
	assert.Equal(t, chartBars, s.kind)
	assert.Equal(t, "Qt", s.theme.Name)
	assert.Equal(t, controller.ShadowQualityMedium, s.shadow)
	assert.Equal(t, camera.PresetIsometricRight, s.camera)
	assert.Equal(t, controller.ProfileDesktop, s.profile)
	assert.Equal(t, backendGL, s.backend)
}

func TestInvalidFlagsAreRejected(t *testing.T) {
	for _, args := range [][]string{
		{"--chart", "pie"},
		{"--theme", "nope"},
		{"--shadows", "ultra"},
		{"--camera", "Sideways"},
		{"--backend", "vulkan"},
		{"--theme-file", filepath.Join(t.TempDir(), "missing.yaml")},
	} {
		_, err := parseSettings(parseFlags(t, args...))
		assert.Error(t, err, args)
	}
}

func TestConstrainedDisablesShadows(t *testing.T) {
	s, err := parseSettings(parseFlags(t, "--constrained", "--shadows", "softhigh"))
	require.NoError(t, err)
	assert.Equal(t, controller.ProfileConstrained, s.profile)
	assert.Equal(t, controller.ShadowQualityNone, s.shadow)
}

func TestThemeFileOverridesPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "night.yaml")
	require.NoError(t, os.WriteFile(path, []byte("preset: Ebony\nname: night\n"), 0o644))

	s, err := parseSettings(parseFlags(t, "--theme", "Qt", "--theme-file", path))
	require.NoError(t, err)
	assert.Equal(t, "night", s.theme.Name)
}

func TestSampleModels(t *testing.T) {
	bars := sampleModel(chartBars)
	assert.Equal(t, 4, bars.RowCount())
	assert.Equal(t, 12, bars.ColumnCount())
	assert.Equal(t, "Jan", bars.HeaderData(0, data.Horizontal, data.RoleDisplay))

	surface := sampleModel(chartSurface)
	assert.Equal(t, surfaceSteps, surface.RowCount())
	assert.Equal(t, surfaceSteps, surface.ColumnCount())
	assert.Equal(t, "-3.00", surface.HeaderData(0, data.Horizontal, data.RoleDisplay))
	assert.Equal(t, "3.00", surface.HeaderData(surfaceSteps-1, data.Vertical, data.RoleDisplay))

	scatter := sampleModel(chartScatter)
	assert.Equal(t, scatterPoints, scatter.RowCount())
	assert.Equal(t, 3, scatter.ColumnCount())
}

func TestSampleWorkbookReadsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.xlsx")
	require.NoError(t, writeSample(path, chartBars))

	o := parseFlags(t, "--xlsx", path, "--header-row", "--header-column")
	model, sheet, err := openModel(o, chartBars)
	require.NoError(t, err)
	require.NotNil(t, sheet)
	assert.Equal(t, "bars", sheet.Sheet())

	want := sampleModel(chartBars)
	require.Equal(t, want.RowCount(), model.RowCount())
	require.Equal(t, want.ColumnCount(), model.ColumnCount())
	assert.Equal(t, "Mar", model.HeaderData(2, data.Horizontal, data.RoleDisplay))
	assert.Equal(t, "2024", model.HeaderData(2, data.Vertical, data.RoleDisplay))
	assert.InDelta(t, want.Data(1, 5, data.RoleEdit), model.Data(1, 5, data.RoleEdit), 1e-4)
}

func TestEveryChartRendersSampleData(t *testing.T) {
	for _, kind := range []chartKind{chartBars, chartScatter, chartSurface} {
		t.Run(string(kind), func(t *testing.T) {
			s, err := parseSettings(parseFlags(t, "--chart", string(kind)))
			require.NoError(t, err)

			dev := gputest.NewRecorder()
			ch := buildChart(s, dev, shader.LanguageGLSL, sampleModel(kind), true, discard)
			t.Cleanup(func() {
				ch.renderer.Release()
				ch.Close()
				ch.controller.Close()
			})

			require.NoError(t, ch.controller.HandleResize(common.Rect{Width: 800, Height: 600}))
			require.NoError(t, ch.renderer.Synchronize(ch.controller))
			require.NoError(t, ch.renderer.Draw())
			assert.Empty(t, ch.controller.Pending())
			assert.NotEmpty(t, dev.Draws)
		})
	}
}

func newTestDemo(t *testing.T) (*demo, controller.Controller) {
	t.Helper()
	s, err := parseSettings(parseFlags(t))
	require.NoError(t, err)
	ch := buildChart(s, gputest.NewRecorder(), shader.LanguageGLSL, sampleModel(chartBars), true, discard)
	t.Cleanup(func() {
		ch.Close()
		ch.controller.Close()
	})
	return newDemo(ch.controller, nil, s, false, discard), ch.controller
}

func TestDemoKeys(t *testing.T) {
	d, c := newTestDemo(t)

	d.handleKey(input.KeyDown(input.KeyT, time.Now()))
	assert.Equal(t, theme.PresetPrimaryColors.String(), c.Theme().Name)

	d.handleKey(input.KeyDown(input.KeyS, time.Now()))
	assert.Equal(t, controller.ShadowQualityHigh, c.ShadowQuality())

	d.handleKey(input.KeyDown(input.KeyF, time.Now()))
	assert.True(t, c.MeasureFps())
	d.handleKey(input.KeyUp(input.KeyF, time.Now()))
	assert.True(t, c.MeasureFps())

	d.handleKey(input.KeyDown(input.KeyC, time.Now()))
	assert.Equal(t, camera.PresetIsometricRightHigh, c.Camera().Preset)

	// Without a workbook reload is ignored.
	d.handleKey(input.KeyDown(input.KeyO, time.Now()))
}

func TestDemoTickOrbits(t *testing.T) {
	d, c := newTestDemo(t)
	start := c.Camera()

	d.tick(c, 0.5)
	assert.Equal(t, start.XRotation, c.Camera().XRotation)

	d.handleKey(input.KeyDown(input.KeyR, time.Now()))
	d.tick(c, 0.5)
	assert.InDelta(t, start.XRotation+10, c.Camera().XRotation, 1e-4)
	assert.Equal(t, start.YRotation, c.Camera().YRotation)
}
