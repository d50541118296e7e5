package theme

import (
	"fmt"
	"strings"
)

// Preset names a built-in theme.
type Preset int

const (
	PresetQt Preset = iota
	PresetPrimaryColors
	PresetDigia
	PresetStoneMoss
	PresetArmyBlue
	PresetRetro
	PresetEbony
	PresetIsabelle
)

var presetNames = [...]string{
	PresetQt:            "Qt",
	PresetPrimaryColors: "PrimaryColors",
	PresetDigia:         "Digia",
	PresetStoneMoss:     "StoneMoss",
	PresetArmyBlue:      "ArmyBlue",
	PresetRetro:         "Retro",
	PresetEbony:         "Ebony",
	PresetIsabelle:      "Isabelle",
}

func (p Preset) String() string {
	if p < 0 || int(p) >= len(presetNames) {
		return fmt.Sprintf("Preset(%d)", int(p))
	}
	return presetNames[p]
}

// Presets returns every built-in preset.
func Presets() []Preset {
	out := make([]Preset, len(presetNames))
	for i := range out {
		out[i] = Preset(i)
	}
	return out
}

// ParsePreset looks up a preset by name, ignoring case.
func ParsePreset(name string) (Preset, error) {
	for i, n := range presetNames {
		if strings.EqualFold(n, name) {
			return Preset(i), nil
		}
	}
	return 0, fmt.Errorf("unknown theme preset %q", name)
}

type palette struct {
	window, background, base, height, depth, grid, text, textBackground, single, multi string
	light, ambient, highlight                                                          float32
	labelBorder                                                                        bool
}

var palettes = [...]palette{
	PresetQt: {
		window: "#ffffff", background: "#ffffff", base: "#80c342", height: "#cde8b2", depth: "#35322f",
		grid: "#d7d6d5", text: "#35322f", textBackground: "#ffffff",
		single: "#14aaff", multi: "#6d5fd5",
		light: 5, ambient: 0.5, highlight: 5, labelBorder: true,
	},
	PresetPrimaryColors: {
		window: "#ffffff", background: "#ffffff", base: "#f1dc00", height: "#ffff8a", depth: "#000000",
		grid: "#d7d6d5", text: "#000000", textBackground: "#ffffff",
		single: "#27beee", multi: "#ee1414",
		light: 5, ambient: 0.5, highlight: 5, labelBorder: false,
	},
	PresetDigia: {
		window: "#ffffff", background: "#ffffff", base: "#cccccc", height: "#f0f0f0", depth: "#000000",
		grid: "#7f7f7f", text: "#000000", textBackground: "#ffffff",
		single: "#fa0000", multi: "#555555",
		light: 5, ambient: 0.5, highlight: 5, labelBorder: false,
	},
	PresetStoneMoss: {
		window: "#4d4d4f", background: "#4d4d4f", base: "#bebb32", height: "#eeeb9a", depth: "#000000",
		grid: "#3e3e40", text: "#ffffff", textBackground: "#4d4d4f",
		single: "#fbf6d6", multi: "#442f20",
		light: 5, ambient: 0.5, highlight: 5, labelBorder: true,
	},
	PresetArmyBlue: {
		window: "#d5dbe2", background: "#d5dbe2", base: "#495f76", height: "#b5c3d3", depth: "#000000",
		grid: "#81878d", text: "#000000", textBackground: "#d5dbe2",
		single: "#2aa2f9", multi: "#103753",
		light: 5, ambient: 0.5, highlight: 5, labelBorder: false,
	},
	PresetRetro: {
		window: "#e9e2ce", background: "#e9e2ce", base: "#533b23", height: "#b89d7d", depth: "#000000",
		grid: "#d0c0b0", text: "#000000", textBackground: "#e9e2ce",
		single: "#8ea317", multi: "#c25708",
		light: 5, ambient: 0.5, highlight: 5, labelBorder: false,
	},
	PresetEbony: {
		window: "#000000", background: "#000000", base: "#ffffff", height: "#aeadac", depth: "#ffffff",
		grid: "#35322f", text: "#aeadac", textBackground: "#000000",
		single: "#f5dc0d", multi: "#d72222",
		light: 5, ambient: 0.5, highlight: 5, labelBorder: false,
	},
	PresetIsabelle: {
		window: "#000000", background: "#000000", base: "#f9d900", height: "#fff7cc", depth: "#ffffff",
		grid: "#35322f", text: "#aeadac", textBackground: "#000000",
		single: "#fff7cc", multi: "#de0a0a",
		light: 5, ambient: 0.5, highlight: 5, labelBorder: false,
	},
}

// FromPreset returns the theme for a preset. Unknown presets return the Qt theme.
func FromPreset(p Preset) Theme {
	if p < 0 || int(p) >= len(palettes) {
		p = PresetQt
	}
	pl := palettes[p]
	return Theme{
		Name:                   p.String(),
		BaseColor:              mustColor(pl.base),
		HeightColor:            mustColor(pl.height),
		DepthColor:             mustColor(pl.depth),
		UniformColoring:        true,
		BackgroundColor:        mustColor(pl.background),
		WindowColor:            mustColor(pl.window),
		GridLineColor:          mustColor(pl.grid),
		LabelTextColor:         mustColor(pl.text),
		LabelBackgroundColor:   mustColor(pl.textBackground).WithAlpha(0.9),
		SingleHighlightColor:   mustColor(pl.single),
		MultiHighlightColor:    mustColor(pl.multi),
		Font:                   Font{Face: FaceRegular, Size: 30},
		LabelTransparency:      TransparencyFromTheme,
		LightStrength:          pl.light,
		AmbientLightStrength:   pl.ambient,
		HighlightLightStrength: pl.highlight,
		BackgroundEnabled:      true,
		GridEnabled:            true,
		LabelBorderEnabled:     pl.labelBorder,
	}
}
