package theme

import "github.com/Carmen-Shannon/oxy-vis/common"

// Option overrides one property of a Theme.
type Option func(*Theme)

// WithName renames the theme.
func WithName(name string) Option {
	return func(t *Theme) { t.Name = name }
}

// WithBaseColor sets the uniform object color and the bottom of the height gradient.
func WithBaseColor(c common.Color) Option {
	return func(t *Theme) { t.BaseColor = c }
}

// WithHeightColor sets the top of the height gradient.
func WithHeightColor(c common.Color) Option {
	return func(t *Theme) { t.HeightColor = c }
}

// WithDepthColor sets the depth tint.
func WithDepthColor(c common.Color) Option {
	return func(t *Theme) { t.DepthColor = c }
}

// WithUniformColoring toggles between uniform and gradient coloring.
func WithUniformColoring(uniform bool) Option {
	return func(t *Theme) { t.UniformColoring = uniform }
}

// WithBackgroundColor sets the chart background color.
func WithBackgroundColor(c common.Color) Option {
	return func(t *Theme) { t.BackgroundColor = c }
}

// WithWindowColor sets the color the surface is cleared to.
func WithWindowColor(c common.Color) Option {
	return func(t *Theme) { t.WindowColor = c }
}

// WithGridLineColor sets the grid line color.
func WithGridLineColor(c common.Color) Option {
	return func(t *Theme) { t.GridLineColor = c }
}

// WithLabelTextColor sets the label text color.
func WithLabelTextColor(c common.Color) Option {
	return func(t *Theme) { t.LabelTextColor = c }
}

// WithLabelBackgroundColor sets the label background color.
func WithLabelBackgroundColor(c common.Color) Option {
	return func(t *Theme) { t.LabelBackgroundColor = c }
}

// WithHighlightColors sets the single and multi selection highlight colors.
func WithHighlightColors(single, multi common.Color) Option {
	return func(t *Theme) {
		t.SingleHighlightColor = single
		t.MultiHighlightColor = multi
	}
}

// WithFont sets the label font.
func WithFont(f Font) Option {
	return func(t *Theme) { t.Font = f }
}

// WithLabelTransparency sets how label backgrounds are filled.
func WithLabelTransparency(mode LabelTransparency) Option {
	return func(t *Theme) { t.LabelTransparency = mode }
}

// WithLightStrength sets the diffuse, ambient and highlight light strengths.
func WithLightStrength(light, ambient, highlight float32) Option {
	return func(t *Theme) {
		t.LightStrength = light
		t.AmbientLightStrength = ambient
		t.HighlightLightStrength = highlight
	}
}

// WithBackgroundEnabled toggles the background box.
func WithBackgroundEnabled(enabled bool) Option {
	return func(t *Theme) { t.BackgroundEnabled = enabled }
}

// WithGridEnabled toggles grid lines.
func WithGridEnabled(enabled bool) Option {
	return func(t *Theme) { t.GridEnabled = enabled }
}

// WithLabelBorderEnabled toggles the border drawn around labels.
func WithLabelBorderEnabled(enabled bool) Option {
	return func(t *Theme) { t.LabelBorderEnabled = enabled }
}
