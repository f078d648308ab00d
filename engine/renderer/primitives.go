package renderer

import (
	"github.com/spaghettifunk/nucleo/engine/math"
	"github.com/spaghettifunk/nucleo/engine/renderer/metadata"
)

// Canonical unit cube, interleaved position+color. Each face carries its
// own four vertices so the colors stay flat: front red, back green, top
// blue, bottom yellow, right magenta, left cyan.
var cubeVertices = []float32{
	// front
	-0.5, -0.5, 0.5, 1.0, 0.3, 0.3,
	0.5, -0.5, 0.5, 1.0, 0.3, 0.3,
	0.5, 0.5, 0.5, 1.0, 0.3, 0.3,
	-0.5, 0.5, 0.5, 1.0, 0.3, 0.3,
	// back
	-0.5, -0.5, -0.5, 0.3, 1.0, 0.3,
	0.5, -0.5, -0.5, 0.3, 1.0, 0.3,
	0.5, 0.5, -0.5, 0.3, 1.0, 0.3,
	-0.5, 0.5, -0.5, 0.3, 1.0, 0.3,
	// top
	-0.5, 0.5, -0.5, 0.3, 0.3, 1.0,
	0.5, 0.5, -0.5, 0.3, 0.3, 1.0,
	0.5, 0.5, 0.5, 0.3, 0.3, 1.0,
	-0.5, 0.5, 0.5, 0.3, 0.3, 1.0,
	// bottom
	-0.5, -0.5, -0.5, 1.0, 1.0, 0.3,
	0.5, -0.5, -0.5, 1.0, 1.0, 0.3,
	0.5, -0.5, 0.5, 1.0, 1.0, 0.3,
	-0.5, -0.5, 0.5, 1.0, 1.0, 0.3,
	// right
	0.5, -0.5, -0.5, 1.0, 0.3, 1.0,
	0.5, 0.5, -0.5, 1.0, 0.3, 1.0,
	0.5, 0.5, 0.5, 1.0, 0.3, 1.0,
	0.5, -0.5, 0.5, 1.0, 0.3, 1.0,
	// left
	-0.5, -0.5, -0.5, 0.3, 1.0, 1.0,
	-0.5, 0.5, -0.5, 0.3, 1.0, 1.0,
	-0.5, 0.5, 0.5, 0.3, 1.0, 1.0,
	-0.5, -0.5, 0.5, 0.3, 1.0, 1.0,
}

// Winding keeps every face counter-clockwise when seen from outside.
var cubeIndices = []uint32{
	0, 1, 2, 2, 3, 0, // front
	4, 6, 5, 6, 4, 7, // back
	8, 9, 10, 10, 11, 8, // top
	12, 14, 13, 14, 12, 15, // bottom
	16, 17, 18, 18, 19, 16, // right
	20, 22, 21, 22, 20, 23, // left
}

// NewCubeData builds a cube mesh payload. Positions are scaled by size,
// face colors are tinted componentwise by color (pass white to keep the
// canonical palette).
func NewCubeData(size float32, color math.Vec3) *metadata.MeshData {
	stride := int(metadata.VertexFormatPositionColor.FloatsPerVertex())
	vertices := make([]float32, len(cubeVertices))
	for i := 0; i < len(cubeVertices); i += stride {
		vertices[i+0] = cubeVertices[i+0] * size
		vertices[i+1] = cubeVertices[i+1] * size
		vertices[i+2] = cubeVertices[i+2] * size
		vertices[i+3] = cubeVertices[i+3] * color.X
		vertices[i+4] = cubeVertices[i+4] * color.Y
		vertices[i+5] = cubeVertices[i+5] * color.Z
	}
	indices := make([]uint32, len(cubeIndices))
	copy(indices, cubeIndices)
	return &metadata.MeshData{
		Vertices:    vertices,
		Indices:     indices,
		Format:      metadata.VertexFormatPositionColor,
		VertexCount: uint32(len(vertices) / stride),
		IndexCount:  uint32(len(indices)),
	}
}

// CreateCube is the one-call path to a drawable cube.
func (r *Renderer) CreateCube(size float32, color math.Vec3) metadata.MeshHandle {
	return r.CreateMesh(NewCubeData(size, color))
}
