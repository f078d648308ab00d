package loaders

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/nucleo/engine/renderer/metadata"
)

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestTextureLoaderDecodesToRGBA(t *testing.T) {
	dir := t.TempDir()

	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	src.Set(1, 2, color.NRGBA{R: 255, G: 0, B: 0, A: 255})
	path := filepath.Join(dir, "red-dot.png")
	writePNG(t, path, src)

	loader := &TextureLoader{}
	res, err := loader.Load(path, metadata.ResourceTypeImage, nil)
	require.NoError(t, err)

	rgba, ok := res.Data.(*image.RGBA)
	require.True(t, ok, "loader must hand back tightly packed RGBA")
	require.Equal(t, 4, rgba.Bounds().Dx())
	require.Equal(t, 4, rgba.Bounds().Dy())
	require.Equal(t, uint64(len(rgba.Pix)), res.DataSize)

	r, _, _, a := rgba.At(1, 2).RGBA()
	require.Equal(t, uint32(0xffff), r)
	require.Equal(t, uint32(0xffff), a)
}

func TestTextureLoaderClampsLargeImages(t *testing.T) {
	dir := t.TempDir()

	tests := map[string]struct {
		srcW, srcH int
		max        uint32
		wantW      int
		wantH      int
	}{
		"wide image scales on width": {
			srcW: 8, srcH: 4, max: 4, wantW: 4, wantH: 2,
		},
		"tall image scales on height": {
			srcW: 4, srcH: 8, max: 4, wantW: 2, wantH: 4,
		},
		"small image untouched": {
			srcW: 4, srcH: 4, max: 16, wantW: 4, wantH: 4,
		},
		"no limit": {
			srcW: 8, srcH: 8, max: 0, wantW: 8, wantH: 8,
		},
	}

	loader := &TextureLoader{}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, "img.png")
			writePNG(t, path, image.NewNRGBA(image.Rect(0, 0, tc.srcW, tc.srcH)))

			res, err := loader.Load(path, metadata.ResourceTypeImage, TextureLoadParams{MaxDimension: tc.max})
			require.NoError(t, err)

			rgba := res.Data.(*image.RGBA)
			require.Equal(t, tc.wantW, rgba.Bounds().Dx())
			require.Equal(t, tc.wantH, rgba.Bounds().Dy())
		})
	}
}

func TestTextureLoaderRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "not-an-image.png")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a png"), 0o644))

	loader := &TextureLoader{}
	_, err := loader.Load(path, metadata.ResourceTypeImage, nil)
	require.Error(t, err)
}
