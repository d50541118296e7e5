package theme

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for theme files that are neither YAML nor TOML.
var ErrUnsupportedFormat = errors.New("unsupported theme file format")

// themeFile is the on-disk form of a theme. Unset fields keep the preset's value.
type themeFile struct {
	Preset               string   `yaml:"preset" toml:"preset"`
	Name                 *string  `yaml:"name" toml:"name"`
	BaseColor            *string  `yaml:"baseColor" toml:"baseColor"`
	HeightColor          *string  `yaml:"heightColor" toml:"heightColor"`
	DepthColor           *string  `yaml:"depthColor" toml:"depthColor"`
	UniformColoring      *bool    `yaml:"uniformColoring" toml:"uniformColoring"`
	BackgroundColor      *string  `yaml:"backgroundColor" toml:"backgroundColor"`
	WindowColor          *string  `yaml:"windowColor" toml:"windowColor"`
	GridLineColor        *string  `yaml:"gridLineColor" toml:"gridLineColor"`
	LabelTextColor       *string  `yaml:"labelTextColor" toml:"labelTextColor"`
	LabelBackgroundColor *string  `yaml:"labelBackgroundColor" toml:"labelBackgroundColor"`
	SingleHighlightColor *string  `yaml:"singleHighlightColor" toml:"singleHighlightColor"`
	MultiHighlightColor  *string  `yaml:"multiHighlightColor" toml:"multiHighlightColor"`
	FontFace             *string  `yaml:"fontFace" toml:"fontFace"`
	FontSize             *float64 `yaml:"fontSize" toml:"fontSize"`
	LabelTransparency    *string  `yaml:"labelTransparency" toml:"labelTransparency"`
	LightStrength        *float32 `yaml:"lightStrength" toml:"lightStrength"`
	AmbientLightStrength *float32 `yaml:"ambientLightStrength" toml:"ambientLightStrength"`
	HighlightStrength    *float32 `yaml:"highlightLightStrength" toml:"highlightLightStrength"`
	BackgroundEnabled    *bool    `yaml:"backgroundEnabled" toml:"backgroundEnabled"`
	GridEnabled          *bool    `yaml:"gridEnabled" toml:"gridEnabled"`
	LabelBorderEnabled   *bool    `yaml:"labelBorderEnabled" toml:"labelBorderEnabled"`
}

// LoadFile reads a theme from a .yaml, .yml or .toml file.
//
// Parameters:
//   - path: the theme file path
//
// Returns:
//   - Theme: the decoded theme
//   - error: if the file cannot be read or decoded
func LoadFile(path string) (Theme, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, fmt.Errorf("failed to read theme %s: %w", path, err)
	}
	t, err := Decode(raw, filepath.Ext(path))
	if err != nil {
		return Theme{}, fmt.Errorf("failed to decode theme %s: %w", path, err)
	}
	return t, nil
}

// Decode parses theme bytes in the format named by ext (".yaml", ".yml" or ".toml").
func Decode(raw []byte, ext string) (Theme, error) {
	var f themeFile
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return Theme{}, err
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return Theme{}, err
		}
	default:
		return Theme{}, fmt.Errorf("%q: %w", ext, ErrUnsupportedFormat)
	}
	return f.theme()
}

func (f themeFile) theme() (Theme, error) {
	preset := PresetQt
	if f.Preset != "" {
		p, err := ParsePreset(f.Preset)
		if err != nil {
			return Theme{}, err
		}
		preset = p
	}
	t := FromPreset(preset)

	colors := []struct {
		src *string
		dst *common.Color
	}{
		{f.BaseColor, &t.BaseColor},
		{f.HeightColor, &t.HeightColor},
		{f.DepthColor, &t.DepthColor},
		{f.BackgroundColor, &t.BackgroundColor},
		{f.WindowColor, &t.WindowColor},
		{f.GridLineColor, &t.GridLineColor},
		{f.LabelTextColor, &t.LabelTextColor},
		{f.LabelBackgroundColor, &t.LabelBackgroundColor},
		{f.SingleHighlightColor, &t.SingleHighlightColor},
		{f.MultiHighlightColor, &t.MultiHighlightColor},
	}
	for _, c := range colors {
		if c.src == nil {
			continue
		}
		parsed, err := ParseColor(*c.src)
		if err != nil {
			return Theme{}, err
		}
		*c.dst = parsed
	}

	if f.Name != nil {
		t.Name = *f.Name
	}
	if f.FontFace != nil {
		switch face := FontFace(strings.ToLower(*f.FontFace)); face {
		case FaceRegular, FaceBold, FaceMono:
			t.Font.Face = face
		default:
			return Theme{}, fmt.Errorf("unknown font face %q", *f.FontFace)
		}
	}
	if f.FontSize != nil {
		if *f.FontSize <= 0 {
			return Theme{}, fmt.Errorf("font size %v must be positive", *f.FontSize)
		}
		t.Font.Size = *f.FontSize
	}
	if f.LabelTransparency != nil {
		mode, err := ParseLabelTransparency(*f.LabelTransparency)
		if err != nil {
			return Theme{}, err
		}
		t.LabelTransparency = mode
	}
	setIf(&t.UniformColoring, f.UniformColoring)
	setIf(&t.LightStrength, f.LightStrength)
	setIf(&t.AmbientLightStrength, f.AmbientLightStrength)
	setIf(&t.HighlightLightStrength, f.HighlightStrength)
	setIf(&t.BackgroundEnabled, f.BackgroundEnabled)
	setIf(&t.GridEnabled, f.GridEnabled)
	setIf(&t.LabelBorderEnabled, f.LabelBorderEnabled)
	return t, nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
