package renderer

import (
	"image"

	"github.com/google/uuid"

	"github.com/spaghettifunk/nucleo/engine/assets/loaders"
	"github.com/spaghettifunk/nucleo/engine/core"
	"github.com/spaghettifunk/nucleo/engine/renderer/metadata"
)

// The texture registry maps user-facing names to backend handles with
// reference counts. Acquire loads on first use; Release destroys at zero
// only when the entry was acquired with autoRelease.

// AcquireTexture returns the handle for a named texture, loading it through
// the asset manager on first acquisition. Failures fall back to the default
// texture so callers always get something drawable.
func (r *Renderer) AcquireTexture(name string, autoRelease bool) metadata.TextureHandle {
	if name == metadata.DEFAULT_TEXTURE_NAME {
		core.LogWarn("AcquireTexture called for the default texture, use DefaultTexture instead")
		return r.backend.DefaultTexture()
	}

	if ref, ok := r.registry.Get(name); ok {
		ref.ReferenceCount++
		return ref.Handle
	}

	handle := r.LoadTexture(name)
	if !handle.IsValid() {
		core.LogWarn("texture '%s' failed to load, substituting default", name)
		return r.backend.DefaultTexture()
	}
	r.registry.Put(name, &metadata.TextureReference{
		Handle:         handle,
		ReferenceCount: 1,
		AutoRelease:    autoRelease,
	})
	return handle
}

// ReleaseTexture drops one reference to a named texture. The backing GPU
// object is destroyed when the count reaches zero and the texture was
// acquired with autoRelease.
func (r *Renderer) ReleaseTexture(name string) {
	if name == metadata.DEFAULT_TEXTURE_NAME {
		core.LogWarn("ReleaseTexture called for the default texture, ignoring")
		return
	}
	ref, ok := r.registry.Get(name)
	if !ok {
		core.LogWarn("ReleaseTexture called for unknown texture '%s'", name)
		return
	}
	if ref.ReferenceCount > 0 {
		ref.ReferenceCount--
	}
	if ref.ReferenceCount == 0 && ref.AutoRelease {
		r.registry.Delete(name)
		r.backend.DestroyTexture(ref.Handle)
	}
}

// LoadTexture decodes an image asset to RGBA and uploads it. The handle is
// caller-owned: it is not registered and must be destroyed explicitly.
func (r *Renderer) LoadTexture(name string) metadata.TextureHandle {
	resource, err := r.assets.LoadAsset(name, metadata.ResourceTypeImage, loaders.TextureLoadParams{
		MaxDimension: r.backend.MaxTextureDimension(),
	})
	if err != nil {
		core.LogError("failed to load texture '%s': %s", name, err.Error())
		return metadata.InvalidTexture
	}
	img, ok := resource.Data.(*image.RGBA)
	if !ok {
		core.LogError("texture '%s' decoded to unexpected type", name)
		return metadata.InvalidTexture
	}
	bounds := img.Bounds()
	return r.backend.CreateTexture(img.Pix, uint32(bounds.Dx()), uint32(bounds.Dy()), 4)
}

// CreateTexture uploads raw pixels and registers them under a generated
// debug name so they show up in stats alongside named textures.
func (r *Renderer) CreateTexture(pixels []uint8, width, height, channels uint32) metadata.TextureHandle {
	handle := r.backend.CreateTexture(pixels, width, height, channels)
	r.registerRaw(handle)
	return handle
}

// CreateTextureLinear is CreateTexture without SRGB conversion, for data
// textures such as normal or height maps.
func (r *Renderer) CreateTextureLinear(pixels []uint8, width, height, channels uint32) metadata.TextureHandle {
	handle := r.backend.CreateTextureLinear(pixels, width, height, channels)
	r.registerRaw(handle)
	return handle
}

func (r *Renderer) registerRaw(handle metadata.TextureHandle) {
	if !handle.IsValid() {
		return
	}
	name := "raw-" + uuid.New().String()
	r.registry.Put(name, &metadata.TextureReference{
		Handle:         handle,
		ReferenceCount: 1,
		AutoRelease:    false,
	})
}

// DestroyTexture removes any registry entry pointing at the handle, then
// destroys the GPU object. Named entries die here regardless of their
// reference count; prefer ReleaseTexture for acquired textures.
func (r *Renderer) DestroyTexture(handle metadata.TextureHandle) {
	var owner string
	var found bool
	r.registry.Iter(func(name string, ref *metadata.TextureReference) bool {
		if ref.Handle == handle {
			owner = name
			found = true
			return true
		}
		return false
	})
	if found {
		r.registry.Delete(owner)
	}
	r.backend.DestroyTexture(handle)
}

func (r *Renderer) BindTexture(handle metadata.TextureHandle) {
	r.backend.BindTexture(handle)
}

func (r *Renderer) DefaultTexture() metadata.TextureHandle {
	return r.backend.DefaultTexture()
}

func (r *Renderer) GetTextureInfo(handle metadata.TextureHandle) (metadata.TextureInfo, bool) {
	return r.backend.GetTextureInfo(handle)
}
