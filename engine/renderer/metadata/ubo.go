package metadata

import (
	"unsafe"

	"github.com/spaghettifunk/nucleo/engine/math"
)

// StandardUBO is the per-draw uniform block every builtin pipeline reads:
// binding 0, std140. Plain float32 fields only, so its in-memory layout is
// exactly the 208 bytes the shader expects.
type StandardUBO struct {
	Model      math.Mat4
	View       math.Mat4
	Projection math.Mat4
	Color      math.Vec4
}

/** @brief The byte size of StandardUBO as laid out for the shader. */
const StandardUBOSize uint64 = uint64(unsafe.Sizeof(StandardUBO{}))

// Bytes exposes the UBO's storage for copying into mapped device memory.
func (u *StandardUBO) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(u)), StandardUBOSize)
}

// AlignUniformStride rounds size up to the device's minimum uniform-buffer
// offset alignment. Each draw's slot in the per-frame ring starts on such a
// boundary so it can be addressed with a dynamic offset. An alignment of
// zero leaves the size untouched.
func AlignUniformStride(size, minAlignment uint64) uint64 {
	if minAlignment == 0 {
		return size
	}
	return (size + minAlignment - 1) &^ (minAlignment - 1)
}
