package camera

import "fmt"

// Preset is a named camera placement around the chart.
type Preset int

const (
	PresetNone Preset = iota
	PresetFrontLow
	PresetFront
	PresetFrontHigh
	PresetLeftLow
	PresetLeft
	PresetLeftHigh
	PresetRightLow
	PresetRight
	PresetRightHigh
	PresetBehindLow
	PresetBehind
	PresetBehindHigh
	PresetIsometricLeft
	PresetIsometricLeftHigh
	PresetIsometricRight
	PresetIsometricRightHigh
	PresetDirectlyAbove
	PresetDirectlyAboveCW45
	PresetDirectlyAboveCCW45
)

var presetNames = [...]string{
	"None", "FrontLow", "Front", "FrontHigh", "LeftLow", "Left", "LeftHigh", "RightLow", "Right",
	"RightHigh", "BehindLow", "Behind", "BehindHigh", "IsometricLeft", "IsometricLeftHigh",
	"IsometricRight", "IsometricRightHigh", "DirectlyAbove", "DirectlyAboveCW45",
	"DirectlyAboveCCW45",
}

// presetAngles holds the horizontal and vertical rotation in degrees for each preset.
var presetAngles = [...][2]float32{
	PresetFrontLow:           {0, 0},
	PresetFront:              {0, 22.5},
	PresetFrontHigh:          {0, 45},
	PresetLeftLow:            {90, 0},
	PresetLeft:               {90, 22.5},
	PresetLeftHigh:           {90, 45},
	PresetRightLow:           {-90, 0},
	PresetRight:              {-90, 22.5},
	PresetRightHigh:          {-90, 45},
	PresetBehindLow:          {180, 0},
	PresetBehind:             {180, 22.5},
	PresetBehindHigh:         {180, 45},
	PresetIsometricLeft:      {45, 22.5},
	PresetIsometricLeftHigh:  {45, 45},
	PresetIsometricRight:     {-45, 22.5},
	PresetIsometricRightHigh: {-45, 45},
	PresetDirectlyAbove:      {0, 90},
	PresetDirectlyAboveCW45:  {-45, 90},
	PresetDirectlyAboveCCW45: {45, 90},
}

func (p Preset) String() string {
	if p < 0 || int(p) >= len(presetNames) {
		return fmt.Sprintf("Preset(%d)", int(p))
	}
	return presetNames[p]
}

// Valid reports whether p is a known preset.
func (p Preset) Valid() bool {
	return p >= PresetNone && int(p) < len(presetNames)
}

// Angles returns the horizontal and vertical rotation of the preset in degrees.
// PresetNone and unknown presets return ok false.
//
// Returns:
//   - horizontal: rotation around the Y axis
//   - vertical: elevation above the XZ plane
//   - ok: whether p names a placement
func (p Preset) Angles() (horizontal, vertical float32, ok bool) {
	if p <= PresetNone || int(p) >= len(presetAngles) {
		return 0, 0, false
	}
	a := presetAngles[p]
	return a[0], a[1], true
}

// ParsePreset looks up a preset by name.
func ParsePreset(name string) (Preset, error) {
	for i, n := range presetNames {
		if n == name {
			return Preset(i), nil
		}
	}
	return PresetNone, fmt.Errorf("unknown camera preset %q", name)
}

// Presets returns every placement preset in declaration order, excluding PresetNone.
func Presets() []Preset {
	out := make([]Preset, 0, len(presetNames)-1)
	for p := PresetFrontLow; int(p) < len(presetNames); p++ {
		out = append(out, p)
	}
	return out
}
