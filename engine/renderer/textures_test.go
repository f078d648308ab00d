package renderer

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/nucleo/engine/assets"
	"github.com/spaghettifunk/nucleo/engine/renderer/metadata"
)

// newTestRendererWithAssets backs the renderer with a real asset manager
// over a temp directory holding one PNG, so the acquire path exercises the
// actual decode.
func newTestRendererWithAssets(t *testing.T) (*Renderer, *fakeBackend) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "textures"), 0o755))

	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	f, err := os.Create(filepath.Join(dir, "textures", "checker.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	am, err := assets.NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, am.Initialize(dir, false))
	t.Cleanup(am.Shutdown)

	fb := newFakeBackend()
	r := newRenderer(fb, am)
	require.NoError(t, r.Initialize())
	return r, fb
}

func TestAcquireTextureLoadsOnceAndRefCounts(t *testing.T) {
	r, fb := newTestRendererWithAssets(t)

	first := r.AcquireTexture("checker.png", true)
	require.True(t, first.IsValid())
	require.NotEqual(t, fb.defaultTexture, first)

	second := r.AcquireTexture("checker.png", true)
	require.Equal(t, first, second)

	// Default plus one loaded texture, not two.
	require.Len(t, fb.liveTextures, 2)
	require.Equal(t, 1, r.registry.Count())
}

func TestReleaseTextureDestroysAtZeroWithAutoRelease(t *testing.T) {
	r, fb := newTestRendererWithAssets(t)

	handle := r.AcquireTexture("checker.png", true)
	r.AcquireTexture("checker.png", true)

	r.ReleaseTexture("checker.png")
	require.Empty(t, fb.destroyedTextures)

	r.ReleaseTexture("checker.png")
	require.Equal(t, []metadata.TextureHandle{handle}, fb.destroyedTextures)
	require.Equal(t, 0, r.registry.Count())

	// A fresh acquire reloads rather than resurrecting the old handle.
	again := r.AcquireTexture("checker.png", true)
	require.True(t, again.IsValid())
	require.NotEqual(t, handle, again)
}

func TestReleaseTextureWithoutAutoReleaseKeepsTexture(t *testing.T) {
	r, fb := newTestRendererWithAssets(t)

	handle := r.AcquireTexture("checker.png", false)
	r.ReleaseTexture("checker.png")
	require.Empty(t, fb.destroyedTextures)

	// The entry survives at zero references and hands back the same
	// handle on the next acquire.
	require.Equal(t, handle, r.AcquireTexture("checker.png", false))
}

func TestAcquireDefaultTextureNameReturnsDefault(t *testing.T) {
	r, fb := newTestRendererWithAssets(t)

	require.Equal(t, fb.defaultTexture, r.AcquireTexture(metadata.DEFAULT_TEXTURE_NAME, true))
	require.Equal(t, 0, r.registry.Count())

	r.ReleaseTexture(metadata.DEFAULT_TEXTURE_NAME)
	require.Empty(t, fb.destroyedTextures)
}

func TestAcquireMissingTextureFallsBackToDefault(t *testing.T) {
	r, fb := newTestRendererWithAssets(t)

	require.Equal(t, fb.defaultTexture, r.AcquireTexture("missing.png", true))
	require.Equal(t, 0, r.registry.Count())
}

func TestReleaseUnknownTextureIsNoop(t *testing.T) {
	r, fb := newTestRendererWithAssets(t)

	r.ReleaseTexture("ghost.png")
	require.Empty(t, fb.destroyedTextures)
}

func TestLoadTextureIsCallerOwned(t *testing.T) {
	r, _ := newTestRendererWithAssets(t)

	handle := r.LoadTexture("checker.png")
	require.True(t, handle.IsValid())
	require.Equal(t, 0, r.registry.Count())
}

func TestCreateTextureRegistersDebugName(t *testing.T) {
	r, fb := newTestRenderer(t)

	handle := r.CreateTexture([]uint8{255, 255, 255, 255}, 1, 1, 4)
	require.True(t, handle.IsValid())
	require.Equal(t, 1, r.registry.Count())

	r.DestroyTexture(handle)
	require.Equal(t, 0, r.registry.Count())
	require.Equal(t, []metadata.TextureHandle{handle}, fb.destroyedTextures)
}

func TestCreateTextureInvalidPixelsNotRegistered(t *testing.T) {
	r, _ := newTestRenderer(t)

	require.False(t, r.CreateTexture(nil, 0, 0, 4).IsValid())
	require.Equal(t, 0, r.registry.Count())
}
