package metadata

// MeshData is the interleaved payload handed to mesh creation. Vertices
// follow the declared format's layout; indices are 32-bit.
type MeshData struct {
	Vertices    []float32
	Indices     []uint32
	Format      VertexFormat
	VertexCount uint32
	IndexCount  uint32
}

// MeshResource composes two buffer handles with an index count. It holds no
// native objects itself, so mesh bookkeeping stays device-free.
type MeshResource struct {
	VertexBuffer BufferHandle
	IndexBuffer  BufferHandle
	IndexCount   uint32
	Format       VertexFormat
}
