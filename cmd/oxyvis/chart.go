package main

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/Carmen-Shannon/oxy-vis/engine/controller"
	"github.com/Carmen-Shannon/oxy-vis/engine/data"
	"github.com/Carmen-Shannon/oxy-vis/engine/gpu"
	"github.com/Carmen-Shannon/oxy-vis/engine/renderer"
	"github.com/Carmen-Shannon/oxy-vis/engine/shader"
	"github.com/chewxy/math32"
)

type chartKind string

const (
	chartBars    chartKind = "bars"
	chartScatter chartKind = "scatter"
	chartSurface chartKind = "surface"
)

func parseChartKind(s string) (chartKind, error) {
	switch k := chartKind(s); k {
	case chartBars, chartScatter, chartSurface:
		return k, nil
	}
	return "", fmt.Errorf("invalid chart type %q (must be bars, scatter or surface)", s)
}

var months = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

const (
	surfaceSteps  = 24
	surfaceExtent = 3
	scatterPoints = 400
)

// sampleModel generates the data shown when no workbook is given. Bars are monthly values per
// year, the surface is a sampled sin(x)*cos(z) field on numeric headers and the scatter set is a
// rising helix.
func sampleModel(kind chartKind) *data.TableModel {
	switch kind {
	case chartScatter:
		m := data.NewTableModel("x", "y", "z")
		for i := range scatterPoints {
			t := float32(i) * 0.05
			radius := 1 + 0.25*math32.Sin(t*3)
			_ = m.AppendRow(strconv.Itoa(i), radius*math32.Cos(t), t/4, radius*math32.Sin(t))
		}
		return m
	case chartSurface:
		step := 2 * float32(surfaceExtent) / float32(surfaceSteps-1)
		headers := make([]string, surfaceSteps)
		for i := range headers {
			headers[i] = strconv.FormatFloat(float64(-surfaceExtent+float32(i)*step), 'f', 2, 32)
		}
		m := data.NewTableModel(headers...)
		for r := range surfaceSteps {
			z := -surfaceExtent + float32(r)*step
			row := make([]any, surfaceSteps)
			for c := range row {
				x := -surfaceExtent + float32(c)*step
				row[c] = math32.Sin(x) * math32.Cos(z)
			}
			_ = m.AppendRow(headers[r], row...)
		}
		return m
	default:
		m := data.NewTableModel(months...)
		for y, year := range []string{"2022", "2023", "2024", "2025"} {
			row := make([]any, len(months))
			for i := range row {
				season := math32.Sin(float32(i)*math32.Pi/6 + float32(y))
				row[i] = 20 + 10*season + 3*float32(y)
			}
			_ = m.AppendRow(year, row...)
		}
		return m
	}
}

// binding is the part of an item model proxy the demo needs to release it.
type binding interface {
	Close()
}

// chart pairs the controller and renderer of one chart type with its data binding.
type chart struct {
	controller controller.Controller
	renderer   renderer.ChartRenderer
	binding    binding
}

// Close detaches the proxy from its model.
func (c chart) Close() {
	c.binding.Close()
}

// buildChart creates the renderer, the item model proxy and the controller for s.kind.
//
// Parameters:
//   - s: the parsed settings
//   - dev: the device to render with
//   - language: the shader language of dev
//   - model: the data source
//   - headerPositions: place surface vertices at their numeric header values
//   - logger: the logger handed to every component
//
// Returns:
//   - chart: the wired chart
func buildChart(s settings, dev gpu.Device, language shader.Language, model data.ItemModel, headerPositions bool, logger *slog.Logger) chart {
	rendererOptions := []renderer.RendererBuilderOption{
		renderer.WithLogger(logger),
		renderer.WithLibrary(shader.NewLibrary(language)),
		renderer.WithTheme(s.theme),
		renderer.WithProfile(s.profile),
	}
	controllerOptions := []controller.ControllerBuilderOption{
		controller.WithLogger(logger),
		controller.WithTheme(s.theme),
		controller.WithProfile(s.profile),
		controller.WithCameraPreset(s.camera),
		controller.WithShadowQuality(s.shadow),
	}
	proxyOptions := []data.HandlerOption{data.WithHandlerLogger(logger)}

	switch s.kind {
	case chartScatter:
		r := renderer.NewScatterRenderer(dev, rendererOptions...)
		proxy := data.NewItemModelScatterDataProxy(model, nil, proxyOptions...)
		return chart{
			controller: controller.NewScatterController(r, proxy, controllerOptions...),
			renderer:   r,
			binding:    proxy,
		}
	case chartSurface:
		mapping := data.DefaultSurfaceMapping()
		mapping.UseHeaderPositions = headerPositions
		r := renderer.NewSurfaceRenderer(dev, rendererOptions...)
		proxy := data.NewItemModelSurfaceDataProxy(model, data.NewMapping("surface", mapping), proxyOptions...)
		return chart{
			controller: controller.NewSurfaceController(r, proxy, controllerOptions...),
			renderer:   r,
			binding:    proxy,
		}
	default:
		r := renderer.NewBarsRenderer(dev, rendererOptions...)
		proxy := data.NewItemModelBarDataProxy(model, nil, proxyOptions...)
		return chart{
			controller: controller.NewBarsController(r, proxy, append(controllerOptions,
				controller.WithSelectionMode(controller.SelectionItem|controller.SelectionRow))...),
			renderer: r,
			binding:  proxy,
		}
	}
}
