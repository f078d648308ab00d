package loaders

import (
	"encoding/binary"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/spaghettifunk/nucleo/engine/renderer/metadata"
)

// spirvMagic is the first word of every valid SPIR-V module.
const spirvMagic uint32 = 0x07230203

type ShaderBinaryLoader struct{}

// Load reads a compiled .spv file and returns its words. Pipeline
// creation rejects bytecode the driver would refuse, so the checks
// here only cover what can be validated without a device: the file
// must be non-empty, word aligned and start with the SPIR-V magic.
func (sl *ShaderBinaryLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.Newf("shader binary %s is empty", path)
	}
	if len(raw)%4 != 0 {
		return nil, errors.Newf("shader binary %s is %d bytes, not word aligned", path, len(raw))
	}

	words := make([]uint32, len(raw)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	if words[0] != spirvMagic {
		return nil, errors.Newf("shader binary %s has bad magic 0x%08x", path, words[0])
	}

	return &metadata.Resource{
		Name:     path,
		FullPath: path,
		DataSize: uint64(len(raw)),
		Data:     words,
	}, nil
}

func (sl *ShaderBinaryLoader) Unload(*metadata.Resource) error {
	return nil
}
