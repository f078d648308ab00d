package vulkan

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

/**
 * @brief A single shader stage of a pipeline, wrapping the module and
 * its pipeline stage description.
 */
type VulkanShaderStage struct {
	Handle                vk.ShaderModule
	ShaderStageCreateInfo vk.PipelineShaderStageCreateInfo
}

// NewShaderStage builds a shader module from SPIR-V words. words comes
// straight from the shader binary loader, which has already validated
// the magic number and word alignment.
func NewShaderStage(context *VulkanContext, words []uint32, shaderStageFlag vk.ShaderStageFlagBits) (*VulkanShaderStage, error) {
	if len(words) == 0 {
		return nil, errors.New("cannot create shader module from empty bytecode")
	}

	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(words)) * 4,
		PCode:    words,
	}
	createInfo.Deref()

	var pModule vk.ShaderModule
	if res := vk.CreateShaderModule(context.Device.LogicalDevice, &createInfo, context.Allocator, &pModule); res != vk.Success {
		return nil, errors.Newf("failed to create shader module with %s", VulkanResultString(res))
	}

	stage := &VulkanShaderStage{
		Handle: pModule,
		ShaderStageCreateInfo: vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  shaderStageFlag,
			Module: pModule,
			PName:  VulkanSafeString("main"),
		},
	}
	return stage, nil
}

func (vs *VulkanShaderStage) Destroy(context *VulkanContext) {
	if vs.Handle != nil {
		vk.DestroyShaderModule(context.Device.LogicalDevice, vs.Handle, context.Allocator)
		vs.Handle = nil
	}
}
