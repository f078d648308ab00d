package metadata

/** @brief The identifier reserved for invalid handles. */
const InvalidID uint32 = 4294967295

// Handle identifies a pooled GPU resource. The generation is bumped every
// time the underlying slot is vacated, so a handle held across a
// destroy-and-reuse cycle stops resolving instead of aliasing the newer
// resource.
type Handle struct {
	ID         uint32
	Generation uint32
}

func (h Handle) IsValid() bool {
	return h.ID != InvalidID
}

// Distinct handle types per pool so a buffer handle cannot be passed where
// a texture handle is expected.
type (
	PipelineHandle struct{ Handle }
	BufferHandle   struct{ Handle }
	TextureHandle  struct{ Handle }
	MeshHandle     struct{ Handle }
)

func NewPipelineHandle(id, generation uint32) PipelineHandle {
	return PipelineHandle{Handle{ID: id, Generation: generation}}
}

func NewBufferHandle(id, generation uint32) BufferHandle {
	return BufferHandle{Handle{ID: id, Generation: generation}}
}

func NewTextureHandle(id, generation uint32) TextureHandle {
	return TextureHandle{Handle{ID: id, Generation: generation}}
}

func NewMeshHandle(id, generation uint32) MeshHandle {
	return MeshHandle{Handle{ID: id, Generation: generation}}
}

var (
	InvalidPipeline = PipelineHandle{Handle{ID: InvalidID}}
	InvalidBuffer   = BufferHandle{Handle{ID: InvalidID}}
	InvalidTexture  = TextureHandle{Handle{ID: InvalidID}}
	InvalidMesh     = MeshHandle{Handle{ID: InvalidID}}
)
