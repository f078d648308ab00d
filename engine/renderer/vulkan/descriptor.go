package vulkan

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

/**
 * @brief Owns the descriptor pool and the single descriptor set layout
 * every pipeline links against: binding 0 is the dynamic uniform ring,
 * binding 1 a combined image sampler. Each texture allocates one set
 * out of this pool at creation.
 */
type VulkanDescriptorPool struct {
	Handle vk.DescriptorPool
	Layout vk.DescriptorSetLayout
}

func NewDescriptorPool(context *VulkanContext, maxSets uint32) (*VulkanDescriptorPool, error) {
	bindings := []vk.DescriptorSetLayoutBinding{
		{
			Binding:         0,
			DescriptorType:  vk.DescriptorTypeUniformBufferDynamic,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit) | vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		},
		{
			Binding:         1,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		},
	}

	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}
	layoutInfo.Deref()

	var pLayout vk.DescriptorSetLayout
	if res := vk.CreateDescriptorSetLayout(context.Device.LogicalDevice, &layoutInfo, context.Allocator, &pLayout); res != vk.Success {
		return nil, errors.Newf("failed to create descriptor set layout with %s", VulkanResultString(res))
	}

	poolSizes := []vk.DescriptorPoolSize{
		{
			Type:            vk.DescriptorTypeUniformBufferDynamic,
			DescriptorCount: maxSets,
		},
		{
			Type:            vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: maxSets,
		},
	}

	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
		MaxSets:       maxSets,
		// Sets are returned to the pool when their texture is destroyed.
		Flags: vk.DescriptorPoolCreateFlags(vk.DescriptorPoolCreateFreeDescriptorSetBit),
	}
	poolInfo.Deref()

	var pPool vk.DescriptorPool
	if res := vk.CreateDescriptorPool(context.Device.LogicalDevice, &poolInfo, context.Allocator, &pPool); res != vk.Success {
		vk.DestroyDescriptorSetLayout(context.Device.LogicalDevice, pLayout, context.Allocator)
		return nil, errors.Newf("failed to create descriptor pool with %s", VulkanResultString(res))
	}

	return &VulkanDescriptorPool{
		Handle: pPool,
		Layout: pLayout,
	}, nil
}

func (dp *VulkanDescriptorPool) AllocateSet(context *VulkanContext) (vk.DescriptorSet, error) {
	allocInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     dp.Handle,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{dp.Layout},
	}
	allocInfo.Deref()

	var set vk.DescriptorSet
	if res := vk.AllocateDescriptorSets(context.Device.LogicalDevice, &allocInfo, &set); res != vk.Success {
		return nil, errors.Newf("failed to allocate descriptor set with %s", VulkanResultString(res))
	}
	return set, nil
}

// WriteSet points binding 0 at a segment of the uniform ring and
// binding 1 at the texture. uboRange is the per-draw size, not the
// whole ring; the dynamic offset selects the segment at bind time.
func (dp *VulkanDescriptorPool) WriteSet(context *VulkanContext, set vk.DescriptorSet, uboBuffer vk.Buffer, uboRange uint64, view vk.ImageView, sampler vk.Sampler) {
	bufferInfo := vk.DescriptorBufferInfo{
		Buffer: uboBuffer,
		Offset: 0,
		Range:  vk.DeviceSize(uboRange),
	}
	imageInfo := vk.DescriptorImageInfo{
		ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
		ImageView:   view,
		Sampler:     sampler,
	}

	descriptorWrites := []vk.WriteDescriptorSet{
		{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      0,
			DstArrayElement: 0,
			DescriptorType:  vk.DescriptorTypeUniformBufferDynamic,
			DescriptorCount: 1,
			PBufferInfo:     []vk.DescriptorBufferInfo{bufferInfo},
		},
		{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      1,
			DstArrayElement: 0,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			PImageInfo:      []vk.DescriptorImageInfo{imageInfo},
		},
	}

	vk.UpdateDescriptorSets(context.Device.LogicalDevice, uint32(len(descriptorWrites)), descriptorWrites, 0, nil)
}

func (dp *VulkanDescriptorPool) FreeSet(context *VulkanContext, set vk.DescriptorSet) {
	if set == nil {
		return
	}
	vk.FreeDescriptorSets(context.Device.LogicalDevice, dp.Handle, 1, &set)
}

func (dp *VulkanDescriptorPool) Destroy(context *VulkanContext) {
	if dp.Handle != nil {
		vk.DestroyDescriptorPool(context.Device.LogicalDevice, dp.Handle, context.Allocator)
		dp.Handle = nil
	}
	if dp.Layout != nil {
		vk.DestroyDescriptorSetLayout(context.Device.LogicalDevice, dp.Layout, context.Allocator)
		dp.Layout = nil
	}
}
