// Command oxyvis opens an interactive 3D bar, scatter or surface chart of generated sample data or
// of a sheet from an .xlsx workbook.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Carmen-Shannon/oxy-vis/engine"
	"github.com/Carmen-Shannon/oxy-vis/engine/controller"
	"github.com/Carmen-Shannon/oxy-vis/engine/gpu"
	"github.com/Carmen-Shannon/oxy-vis/engine/input"
	"github.com/Carmen-Shannon/oxy-vis/engine/shader"
	"github.com/Carmen-Shannon/oxy-vis/engine/theme"
	"github.com/Carmen-Shannon/oxy-vis/engine/window"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand(&options{}).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(o *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "oxyvis",
		Short: "Interactive 3D data visualization",
		Long: `oxyvis renders a bar, scatter or surface chart of sample data or of a sheet from an
.xlsx workbook. Right drag orbits, the wheel zooms, a left click selects.
Keys: R orbit, T theme, C camera, S shadows, F frame rate, O reload workbook, Esc quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(o)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&o.chart, "chart", "c", string(chartBars), "Chart type: bars, scatter, surface")
	flags.StringVar(&o.theme, "theme", "Qt", "Theme preset name")
	flags.StringVar(&o.themeFile, "theme-file", "", "YAML or TOML theme file, reloaded on change (overrides --theme)")
	flags.StringVar(&o.xlsx, "xlsx", "", "Workbook to chart instead of sample data")
	flags.StringVar(&o.sheet, "sheet", "", "Sheet to read (default: first sheet)")
	flags.BoolVar(&o.headerRow, "header-row", false, "First row holds column labels")
	flags.BoolVar(&o.headerColumn, "header-column", false, "First column holds row labels")
	flags.StringVar(&o.backend, "backend", backendGL, "Graphics backend: gl, wgpu")
	flags.BoolVar(&o.software, "software", false, "Force a software WebGPU adapter")
	flags.BoolVar(&o.constrained, "constrained", false, "Render without depth textures or shadows")
	flags.BoolVar(&o.vsync, "vsync", true, "Wait for vertical blank when presenting (wgpu)")
	flags.StringVar(&o.shadow, "shadows", controller.ShadowQualityMedium.String(), "Shadow quality: none, low, medium, high, softlow, softmedium, softhigh")
	flags.StringVar(&o.camera, "camera", "IsometricRight", "Camera preset name")
	flags.BoolVar(&o.measureFps, "fps", false, "Measure the frame rate")
	flags.BoolVar(&o.autoRotate, "rotate", false, "Orbit the camera")
	flags.BoolVar(&o.profile, "profile", false, "Log frame timings")
	flags.Float64Var(&o.frameLimit, "frame-limit", 0, "Render frame rate cap (0 = uncapped)")
	flags.IntVar(&o.width, "width", 1280, "Window width")
	flags.IntVar(&o.height, "height", 720, "Window height")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(newSampleCommand())
	return rootCmd
}

func newSampleCommand() *cobra.Command {
	var chart string
	cmd := &cobra.Command{
		Use:   "sample [output.xlsx]",
		Short: "Write the sample data of a chart type to a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseChartKind(chart)
			if err != nil {
				return err
			}
			return writeSample(args[0], kind)
		},
	}
	cmd.Flags().StringVarP(&chart, "chart", "c", string(chartBars), "Chart type: bars, scatter, surface")
	return cmd
}

func run(o *options) error {
	logger := newLogger(o.verbose)
	slog.SetDefault(logger)

	s, err := parseSettings(o)
	if err != nil {
		return err
	}
	model, sheet, err := openModel(o, s.kind)
	if err != nil {
		return err
	}

	api, language := window.ClientAPIOpenGL, shader.LanguageGLSL
	if s.backend == backendWGPU {
		api, language = window.ClientAPINone, shader.LanguageWGSL
	}
	win := window.NewWindow(
		window.WithLogger(logger),
		window.WithTitle(fmt.Sprintf("oxyvis - %s", s.kind)),
		window.WithClientAPI(api),
		window.WithWidth(o.width),
		window.WithHeight(o.height),
	)

	dev, err := newDevice(o, s, win, logger)
	if err != nil {
		_ = win.Close()
		return err
	}

	// Surface vertices sit at their header values when the workbook labels both axes.
	headerPositions := o.xlsx == "" || (o.headerRow && o.headerColumn)
	ch := buildChart(s, dev, language, model, headerPositions, logger)
	ch.controller.SetMeasureFps(o.measureFps)

	d := newDemo(ch.controller, sheet, s, o.autoRotate, logger)
	g := engine.NewGraph(ch.controller, ch.renderer,
		engine.WithLogger(logger),
		engine.WithWindow(win),
		engine.WithInputHandler(input.NewHandler(input.WithLogger(logger), input.WithKeyCallback(d.handleKey))),
		engine.WithProfiling(o.profile),
		engine.WithRenderFrameLimit(o.frameLimit),
	)
	g.SetTickCallback(d.tick)

	if o.themeFile != "" {
		w, err := theme.Watch(o.themeFile, func(th theme.Theme) {
			g.Mutate(func(c controller.Controller) { c.SetTheme(th) })
		}, theme.WithWatcherLogger(logger))
		if err != nil {
			logger.Warn("theme file is not watched", "error", err)
		} else {
			defer w.Close()
		}
	}

	err = g.Run()

	// The render loop has released the renderer and detached the context.
	win.MakeContextCurrent()
	dev.Release()
	ch.Close()
	g.Close()
	return err
}

func newDevice(o *options, s settings, win window.Window, logger *slog.Logger) (gpu.Device, error) {
	deviceOptions := []gpu.DeviceBuilderOption{gpu.WithLogger(logger)}
	if s.profile == controller.ProfileConstrained {
		deviceOptions = append(deviceOptions, gpu.WithConstrained())
	}
	if o.vsync {
		deviceOptions = append(deviceOptions, gpu.WithPresentMode(gpu.PresentModeVSync))
	} else {
		deviceOptions = append(deviceOptions, gpu.WithPresentMode(gpu.PresentModeUncapped))
	}

	if s.backend == backendWGPU {
		return gpu.NewWGPUDevice(append(deviceOptions,
			gpu.WithSurfaceDescriptor(win.SurfaceDescriptor()),
			gpu.WithSurfaceSize(win.Width(), win.Height()),
			gpu.WithForceSoftwareAdapter(o.software),
		)...)
	}
	return gpu.NewGLDevice(append(deviceOptions, gpu.WithSwapFunc(win.SwapBuffers))...)
}
