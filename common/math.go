package common

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// ModelMatrix composes a translation, rotation and scale into a single column-major model matrix.
// Result: T * R * S
//
// Parameters:
//   - position: translation in world space
//   - rotation: orientation quaternion (normalized before use; a zero quaternion is treated as identity)
//   - scale: per-axis scale factors
//
// Returns:
//   - mgl32.Mat4: the composed model matrix
func ModelMatrix(position mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) mgl32.Mat4 {
	r := mgl32.Ident4()
	if rotation.Len() > 0 {
		r = rotation.Normalize().Mat4()
	}
	t := mgl32.Translate3D(position.X(), position.Y(), position.Z())
	s := mgl32.Scale3D(scale.X(), scale.Y(), scale.Z())
	return t.Mul4(r).Mul4(s)
}

// NormalMatrix returns the inverse transpose of the model matrix, used to transform normals
// under non-uniform scale.
//
// Parameters:
//   - model: the model matrix
//
// Returns:
//   - mgl32.Mat4: the normal matrix, or identity if the model matrix is singular
func NormalMatrix(model mgl32.Mat4) mgl32.Mat4 {
	if model.Det() == 0 {
		return mgl32.Ident4()
	}
	return model.Inv().Transpose()
}

// ScreenRay unprojects a window position into a world-space ray.
// Window coordinates have their origin at the top-left corner, as delivered by the windowing layer.
//
// Parameters:
//   - x, y: window position in pixels
//   - width, height: viewport size in pixels
//   - view: camera view matrix
//   - projection: camera projection matrix
//
// Returns:
//   - origin: world-space point on the near plane
//   - dir: normalized world-space direction
//   - ok: false if the matrices could not be inverted or the viewport is empty
func ScreenRay(x, y float32, width, height int, view, projection mgl32.Mat4) (origin, dir mgl32.Vec3, ok bool) {
	if width <= 0 || height <= 0 {
		return origin, dir, false
	}
	wy := float32(height) - y
	near, err := mgl32.UnProject(mgl32.Vec3{x, wy, 0}, view, projection, 0, 0, width, height)
	if err != nil {
		return origin, dir, false
	}
	far, err := mgl32.UnProject(mgl32.Vec3{x, wy, 1}, view, projection, 0, 0, width, height)
	if err != nil {
		return origin, dir, false
	}
	d := far.Sub(near)
	if d.Len() == 0 {
		return origin, dir, false
	}
	return near, d.Normalize(), true
}

// RayBoxIntersect performs a slab test of a ray against an axis-aligned box.
//
// Parameters:
//   - origin: ray origin
//   - dir: ray direction (need not be normalized)
//   - minB, maxB: box corners
//
// Returns:
//   - float32: distance along the ray to the entry point
//   - bool: true if the ray hits the box in front of the origin
func RayBoxIntersect(origin, dir, minB, maxB mgl32.Vec3) (float32, bool) {
	tMin := float32(-1e30)
	tMax := float32(1e30)
	for i := 0; i < 3; i++ {
		if dir[i] == 0 {
			if origin[i] < minB[i] || origin[i] > maxB[i] {
				return 0, false
			}
			continue
		}
		inv := 1 / dir[i]
		t0 := (minB[i] - origin[i]) * inv
		t1 := (maxB[i] - origin[i]) * inv
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMin > tMax {
			return 0, false
		}
	}
	if tMax < 0 {
		return 0, false
	}
	if tMin < 0 {
		return 0, true
	}
	return tMin, true
}
