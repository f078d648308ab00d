package assets

import (
	"encoding/binary"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/nucleo/engine/renderer/metadata"
)

func seedAssetDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "shaders"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "textures"), 0o755))

	spv := make([]byte, 5*4)
	binary.LittleEndian.PutUint32(spv, 0x07230203)
	require.NoError(t, os.WriteFile(filepath.Join(root, "shaders", "builtin.vert.spv"), spv, 0o644))

	f, err := os.Create(filepath.Join(root, "textures", "grid.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewNRGBA(image.Rect(0, 0, 2, 2))))
	require.NoError(t, f.Close())

	// unrecognized extensions stay out of the index
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("hi"), 0o644))

	return root
}

func TestAssetManagerIndexesOnInitialize(t *testing.T) {
	am, err := NewAssetManager()
	require.NoError(t, err)
	defer am.Shutdown()

	root := seedAssetDir(t)
	require.NoError(t, am.Initialize(root, false))

	shader, err := am.LoadAsset("builtin.vert", metadata.ResourceTypeShaderBinary, nil)
	require.NoError(t, err)
	require.Equal(t, []uint32{0x07230203, 0, 0, 0, 0}, shader.Data.([]uint32))

	img, err := am.LoadAsset("grid.png", metadata.ResourceTypeImage, nil)
	require.NoError(t, err)
	require.IsType(t, &image.RGBA{}, img.Data)
}

func TestAssetManagerLoadFailures(t *testing.T) {
	am, err := NewAssetManager()
	require.NoError(t, err)
	defer am.Shutdown()

	root := seedAssetDir(t)
	require.NoError(t, am.Initialize(root, false))

	tests := map[string]struct {
		filename     string
		resourceType metadata.ResourceType
	}{
		"unknown resource type": {
			filename:     "builtin.vert",
			resourceType: metadata.ResourceTypeNone,
		},
		"shader not on disk": {
			filename:     "missing.frag",
			resourceType: metadata.ResourceTypeShaderBinary,
		},
		"unindexed extension": {
			filename:     "../notes.txt",
			resourceType: metadata.ResourceTypeImage,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := am.LoadAsset(tc.filename, tc.resourceType, nil)
			require.Error(t, err)
		})
	}
}

func TestDetermineAssetType(t *testing.T) {
	tests := map[string]struct {
		path string
		want metadata.ResourceType
	}{
		"png":     {path: "textures/a.png", want: metadata.ResourceTypeImage},
		"jpg":     {path: "textures/b.jpg", want: metadata.ResourceTypeImage},
		"jpeg":    {path: "textures/c.jpeg", want: metadata.ResourceTypeImage},
		"spirv":   {path: "shaders/d.spv", want: metadata.ResourceTypeShaderBinary},
		"unknown": {path: "readme.md", want: metadata.ResourceTypeNone},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tc.want, determineAssetType(tc.path))
		})
	}
}
