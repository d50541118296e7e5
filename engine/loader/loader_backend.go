package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-vis/engine/model"
)

// loaderBackend defines the generic interface for reading meshes from files or streams.
// Concrete implementations (e.g., objLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Load reads a mesh from the given file path.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *model.Mesh: the CPU-side mesh
	//   - error: error if reading or parsing fails
	Load(path string) (*model.Mesh, error)

	// LoadReader reads a mesh from a stream.
	//
	// Parameters:
	//   - name: the mesh name used in errors
	//   - r: the reader providing mesh data
	//
	// Returns:
	//   - *model.Mesh: the CPU-side mesh
	//   - error: error if parsing fails
	LoadReader(name string, r io.Reader) (*model.Mesh, error)
}
