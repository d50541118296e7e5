package loader

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-vis/engine/gpu"
	"github.com/Carmen-Shannon/oxy-vis/engine/gpu/gputest"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quadOBJ = `# unit quad
o quad
v -1 -1 0
v 1 -1 0
v 1 1 0
v -1 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
s off
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestParseQuadFan(t *testing.T) {
	mesh, err := newOBJLoaderBackend().LoadReader("quad", strings.NewReader(quadOBJ))
	require.NoError(t, err)
	require.NoError(t, mesh.Validate())

	assert.Equal(t, "quad", mesh.Name)
	assert.Len(t, mesh.Positions, 4)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, mesh.Indices)
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, mesh.Normals[2])
	// v is flipped so the top of the image maps to the top of the quad.
	assert.Equal(t, mgl32.Vec2{1, 0}, mesh.UVs[2])
	assert.Equal(t, mgl32.Vec2{0, 1}, mesh.UVs[0])
}

func TestParseNegativeIndicesAndMissingNormals(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 0 -1
f -3 -2 -1
`
	mesh, err := newOBJLoaderBackend().LoadReader("tri", strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2}, mesh.Indices)
	assert.Empty(t, mesh.UVs)
	require.Len(t, mesh.Normals, 3)
	assert.InDelta(t, 1, mesh.Normals[0].Y(), 1e-6)
}

func TestParseSharedVerticesAreWelded(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3
f 1 3 4
`
	mesh, err := newOBJLoaderBackend().LoadReader("quad", strings.NewReader(src))
	require.NoError(t, err)
	assert.Len(t, mesh.Positions, 4)
	assert.Len(t, mesh.Indices, 6)
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"bad float":    "v 0 x 0\n",
		"short vertex": "v 0 0\n",
		"short face":   "v 0 0 0\nv 1 0 0\nf 1 2\n",
		"index range":  "v 0 0 0\nv 1 0 0\nv 1 1 0\nf 1 2 4\n",
		"zero index":   "v 0 0 0\nv 1 0 0\nv 1 1 0\nf 0 1 2\n",
		"bad ref":      "v 0 0 0\nv 1 0 0\nv 1 1 0\nf 1/1/1/1 2 3\n",
		"no faces":     "v 0 0 0\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := newOBJLoaderBackend().LoadReader(name, strings.NewReader(src))
			assert.ErrorIs(t, err, ErrSyntax)
		})
	}
}

func TestLoadCachesByPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quad.obj")
	require.NoError(t, os.WriteFile(path, []byte(quadOBJ), 0o644))

	dev := gputest.NewRecorder()
	l := NewLoader(BackendTypeOBJ, WithDevice(dev))
	first, err := l.Load(path)
	require.NoError(t, err)
	second, err := l.Load(path)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 4, dev.Live(gpu.ObjectBuffer))
	assert.Equal(t, first, l.Get(path))
	assert.Len(t, l.Models(), 1)

	l.Release()
	assert.Zero(t, dev.Live(gpu.ObjectBuffer))
	assert.Nil(t, l.Get(path))
}

func TestLoadErrors(t *testing.T) {
	l := NewLoader(BackendTypeOBJ)
	_, err := l.Load("mesh.fbx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = l.Load("mesh.obj")
	assert.ErrorIs(t, err, ErrNoDevice)

	l = NewLoader(BackendTypeOBJ, WithDevice(gputest.NewRecorder()))
	_, err = l.Load(filepath.Join(t.TempDir(), "missing.obj"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	mesh, err := l.LoadMesh(filepath.Join(t.TempDir(), "missing.obj"))
	assert.Error(t, err)
	assert.Nil(t, mesh)
}

func TestInvalidateKeepsBuffers(t *testing.T) {
	dev := gputest.NewRecorder()
	l := NewLoader(BackendTypeOBJ, WithDevice(dev))
	_, err := l.LoadReader("quad", strings.NewReader(quadOBJ))
	require.NoError(t, err)

	dev.Lose()
	l.Invalidate()
	assert.Empty(t, l.Models())
	assert.Zero(t, dev.Calls["ReleaseBuffer"])
}

func TestDecodeImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.Set(1, 1, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	decoded, err := DecodeImage(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), decoded.Bounds())

	_, err = DecodeImage(strings.NewReader("not an image"))
	assert.Error(t, err)

	_, err = LoadImage(filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
