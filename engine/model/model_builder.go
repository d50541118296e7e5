package model

import "github.com/Carmen-Shannon/oxy-vis/engine/gpu"

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that overrides the mesh name.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithPrimitive sets the topology of the index buffer. The default is gpu.PrimitiveTriangles.
//
// Parameters:
//   - mode: the topology
//
// Returns:
//   - ModelBuilderOption: a function that applies the primitive option to a model
func WithPrimitive(mode gpu.Primitive) ModelBuilderOption {
	return func(m *model) {
		m.mode = mode
	}
}
