package model

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// marshalVec3 serializes positions or normals as tightly packed little-endian float32 triples,
// the layout of a gpu.AttributePosition or gpu.AttributeNormal buffer.
//
// Parameters:
//   - v: the vectors
//
// Returns:
//   - []byte: 12 bytes per vector
func marshalVec3(v []mgl32.Vec3) []byte {
	buf := make([]byte, 12*len(v))
	for i, p := range v {
		o := i * 12
		binary.LittleEndian.PutUint32(buf[o:o+4], math.Float32bits(p[0]))
		binary.LittleEndian.PutUint32(buf[o+4:o+8], math.Float32bits(p[1]))
		binary.LittleEndian.PutUint32(buf[o+8:o+12], math.Float32bits(p[2]))
	}
	return buf
}

// marshalVec2 serializes texture coordinates as tightly packed little-endian float32 pairs.
func marshalVec2(v []mgl32.Vec2) []byte {
	buf := make([]byte, 8*len(v))
	for i, p := range v {
		o := i * 8
		binary.LittleEndian.PutUint32(buf[o:o+4], math.Float32bits(p[0]))
		binary.LittleEndian.PutUint32(buf[o+4:o+8], math.Float32bits(p[1]))
	}
	return buf
}

func marshalIndices(indices []uint32) []byte {
	buf := make([]byte, 4*len(indices))
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], idx)
	}
	return buf
}
