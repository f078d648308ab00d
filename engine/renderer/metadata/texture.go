package metadata

const (
	/** @brief The default texture name. */
	DEFAULT_TEXTURE_NAME string = "default"
)

// TextureInfo is the handle-level view of a live texture. Native view and
// sampler objects stay inside the backend; subsystems that record their own
// commands fetch those from the concrete backend instead.
type TextureInfo struct {
	Width      uint32
	Height     uint32
	Generation uint32
	// Linear is set for textures created through the linear (non-SRGB)
	// path, displacement data rather than color.
	Linear bool
}

// TextureReference tracks a named texture in the acquire/release registry.
type TextureReference struct {
	Handle         TextureHandle
	ReferenceCount uint64
	AutoRelease    bool
}
