package loader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-vis/engine/model"
)

// objLoaderBackend is a loaderBackend for Wavefront OBJ files.
type objLoaderBackend struct{}

var _ loaderBackend = objLoaderBackend{}

func newOBJLoaderBackend() loaderBackend {
	return objLoaderBackend{}
}

func (b objLoaderBackend) Load(path string) (*model.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return b.LoadReader(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), f)
}

func (b objLoaderBackend) LoadReader(name string, r io.Reader) (*model.Mesh, error) {
	p := newOBJParser()
	if err := p.Parse(r); err != nil {
		return nil, err
	}
	mesh := p.Mesh()
	mesh.Name = name
	return mesh, nil
}
