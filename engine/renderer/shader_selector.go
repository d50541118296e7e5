package renderer

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-vis/engine/controller"
	"github.com/Carmen-Shannon/oxy-vis/engine/gpu"
	"github.com/Carmen-Shannon/oxy-vis/engine/shader"
)

// shaderSelector owns the programs whose source depends on the theme, the shadow quality and the
// profile. Requests only record the wanted variant; commit compiles it once.
type shaderSelector struct {
	device  gpu.Device
	library shader.Library
	logger  *slog.Logger

	current shader.Variant
	wanted  shader.Variant
	dirty   bool

	object     gpu.Program
	background gpu.Program
	item       gpu.Program
}

func newShaderSelector(device gpu.Device, library shader.Library, logger *slog.Logger, constrained bool) *shaderSelector {
	v := shader.Variant{Constrained: constrained}
	return &shaderSelector{device: device, library: library, logger: logger, current: v, wanted: v, dirty: true}
}

// shadowFor maps a shadow quality to the sampling compiled into the programs.
func shadowFor(q controller.ShadowQuality) shader.Shadow {
	switch {
	case q == controller.ShadowQualityNone:
		return shader.ShadowNone
	case q.Soft():
		return shader.ShadowSoft
	default:
		return shader.ShadowHard
	}
}

func (s *shaderSelector) setShadowQuality(q controller.ShadowQuality) {
	s.wanted.Shadow = shadowFor(q)
	s.dirty = true
}

func (s *shaderSelector) setGradient(gradient bool) {
	if gradient == s.wanted.Gradient {
		return
	}
	s.wanted.Gradient = gradient
	s.dirty = true
}

// markDirty forces a recompile on the next commit, as a theme change does.
func (s *shaderSelector) markDirty() { s.dirty = true }

// variant returns the variant the current programs were compiled with.
func (s *shaderSelector) variant() shader.Variant { return s.current }

// commit compiles the wanted variant if anything was requested since the last commit. On
// failure the previous programs stay in use and the request is dropped.
//
// Returns:
//   - error: gpu.ErrContextLost, or the compile error when no previous program exists
func (s *shaderSelector) commit() error {
	if !s.dirty {
		return nil
	}
	s.dirty = false
	v := s.wanted.Normalize()

	var object, background, item gpu.Program
	err := s.build(&object, s.library.Object, v)
	if err == nil {
		err = s.build(&background, s.library.Background, v)
	}
	if err == nil {
		err = s.build(&item, s.library.Item, v)
	}
	if err != nil {
		object.Release()
		background.Release()
		item.Release()
		if errors.Is(err, gpu.ErrContextLost) || !s.object.Valid() {
			return err
		}
		s.logger.Error("shader compile failed, keeping previous programs", "variant", v, "error", err)
		s.wanted = s.current
		return nil
	}

	s.object.Release()
	s.background.Release()
	s.item.Release()
	s.object, s.background, s.item = object, background, item
	s.current = v
	s.logger.Debug("programs compiled", "variant", v)
	return nil
}

func (s *shaderSelector) build(dst *gpu.Program, source func(shader.Variant) (gpu.ProgramSource, error), v shader.Variant) error {
	src, err := source(v)
	if err != nil {
		return err
	}
	p, err := s.device.CreateProgram(src)
	if err != nil {
		return fmt.Errorf("compile %s: %w", src.Label, err)
	}
	*dst = p
	return nil
}

func (s *shaderSelector) release() {
	s.object.Release()
	s.background.Release()
	s.item.Release()
	s.dirty = true
}

// forget drops the programs of a lost context without releasing them.
func (s *shaderSelector) forget() {
	s.object, s.background, s.item = gpu.Program{}, gpu.Program{}, gpu.Program{}
	s.dirty = true
}
