// Package loader imports mesh and texture assets for custom items. Meshes are read from
// Wavefront OBJ files, uploaded through a gpu.Device and cached by path.
package loader

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-vis/engine/gpu"
	"github.com/Carmen-Shannon/oxy-vis/engine/model"
)

// ErrNoDevice is returned when a model is loaded by a Loader built without a device.
var ErrNoDevice = errors.New("loader has no gpu device")

// ErrUnsupportedFormat is returned for file extensions no backend reads.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeOBJ selects the Wavefront OBJ loader backend.
	BackendTypeOBJ LoaderBackendType = iota
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	device gpu.Device
	logger *slog.Logger

	modelCache map[string]model.Model

	backend loaderBackend
}

// Loader defines the public-facing interface for loading and caching meshes.
// It abstracts the file format behind a backend and owns every model it caches: the models
// stay valid until Release or Invalidate.
type Loader interface {
	// Load imports a mesh file, uploads it and caches the result.
	// If the model is already cached (by file path), the cached version is returned.
	//
	// Parameters:
	//   - path: the file path to the mesh file
	//
	// Returns:
	//   - model.Model: the loaded and cached model
	//   - error: ErrUnsupportedFormat, ErrNoDevice, a parse error wrapping ErrSyntax, or the
	//     device's allocation error
	Load(path string) (model.Model, error)

	// LoadReader imports a mesh from a reader stream and caches it by the given name.
	//
	// Parameters:
	//   - name: the cache key for the loaded model
	//   - r: the reader providing OBJ data
	//
	// Returns:
	//   - model.Model: the loaded model
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader) (model.Model, error)

	// LoadMesh reads a mesh file without uploading or caching it.
	//
	// Parameters:
	//   - path: the file path to the mesh file
	//
	// Returns:
	//   - *model.Mesh: the CPU-side mesh
	//   - error: error if loading fails
	LoadMesh(path string) (*model.Mesh, error)

	// Get retrieves a cached model by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - model.Model: the cached model or nil
	Get(name string) model.Model

	// Models returns a copy of the model cache.
	//
	// Returns:
	//   - map[string]model.Model: all cached models keyed by name
	Models() map[string]model.Model

	// Invalidate drops every cached model without releasing it. Used after a context loss,
	// when the device has already destroyed the buffers.
	Invalidate()

	// Release frees every cached model and empties the cache.
	Release()
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeOBJ)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:         sync.RWMutex{},
		modelCache: make(map[string]model.Model),
		logger:     slog.Default().With("component", "loader"),
	}

	switch backendType {
	case BackendTypeOBJ:
		l.backend = newOBJLoaderBackend()
	}

	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) Load(path string) (model.Model, error) {
	l.mu.RLock()
	if cached, ok := l.modelCache[path]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}
	if l.device == nil {
		return nil, ErrNoDevice
	}

	mesh, err := backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return l.upload(path, mesh)
}

func (l *loader) LoadReader(name string, r io.Reader) (model.Model, error) {
	l.mu.RLock()
	if cached, ok := l.modelCache[name]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	if l.device == nil {
		return nil, ErrNoDevice
	}
	mesh, err := l.backend.LoadReader(name, r)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}
	return l.upload(name, mesh)
}

func (l *loader) LoadMesh(path string) (*model.Mesh, error) {
	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}
	mesh, err := backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return mesh, nil
}

// upload turns a parsed mesh into a cached model. A concurrent load of the same key that
// finished first wins and the duplicate upload is released.
func (l *loader) upload(key string, mesh *model.Mesh) (model.Model, error) {
	m, err := model.NewModel(l.device, *mesh)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", key, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if cached, ok := l.modelCache[key]; ok {
		m.Release()
		return cached, nil
	}
	l.modelCache[key] = m
	l.logger.Debug("mesh loaded", "key", key, "indices", m.IndexCount())
	return m, nil
}

func (l *loader) Get(name string) model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.modelCache[name]
}

func (l *loader) Models() map[string]model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return maps.Clone(l.modelCache)
}

func (l *loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.modelCache)
}

func (l *loader) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.modelCache {
		m.Release()
	}
	clear(l.modelCache)
}

// resolveBackend selects an appropriate loader backend based on the file extension.
// Currently only OBJ is supported.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".obj":
		return l.backend, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
