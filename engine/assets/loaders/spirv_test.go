package loaders

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/nucleo/engine/renderer/metadata"
)

func writeWords(t *testing.T, path string, words []uint32) {
	t.Helper()
	raw := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(raw[i*4:], w)
	}
	require.NoError(t, os.WriteFile(path, raw, 0o644))
}

func TestShaderBinaryLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	loader := &ShaderBinaryLoader{}

	path := filepath.Join(dir, "builtin.vert.spv")
	words := []uint32{spirvMagic, 0x00010300, 0, 4, 0}
	writeWords(t, path, words)

	res, err := loader.Load(path, metadata.ResourceTypeShaderBinary, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(len(words)*4), res.DataSize)
	require.Equal(t, words, res.Data.([]uint32))
}

func TestShaderBinaryLoaderRejects(t *testing.T) {
	dir := t.TempDir()
	loader := &ShaderBinaryLoader{}

	tests := map[string]struct {
		raw []byte
	}{
		"empty file": {
			raw: []byte{},
		},
		"not word aligned": {
			raw: []byte{0x03, 0x02, 0x23},
		},
		"bad magic": {
			raw: []byte{0xde, 0xad, 0xbe, 0xef},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, "bad.spv")
			require.NoError(t, os.WriteFile(path, tc.raw, 0o644))

			_, err := loader.Load(path, metadata.ResourceTypeShaderBinary, nil)
			require.Error(t, err)
		})
	}
}

func TestShaderBinaryLoaderMissingFile(t *testing.T) {
	loader := &ShaderBinaryLoader{}
	_, err := loader.Load(filepath.Join(t.TempDir(), "nope.spv"), metadata.ResourceTypeShaderBinary, nil)
	require.Error(t, err)
}
