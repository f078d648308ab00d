package vulkan

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/nucleo/engine/renderer/metadata"
)

/**
 * @brief A sampled 2D texture: image, sampler and the descriptor set
 * that binds it together with the uniform ring. The set is written once
 * at creation and freed with the texture.
 */
type VulkanTexture struct {
	Image         *VulkanImage
	Sampler       vk.Sampler
	DescriptorSet vk.DescriptorSet
	Format        vk.Format
	Info          metadata.TextureInfo
}

// TextureCreate uploads pixels synchronously: staging buffer, one-shot
// transfer commands (transition, copy, transition), fence wait, then
// staging teardown. pixels must be tightly packed RGBA.
func TextureCreate(context *VulkanContext, transfer *VulkanTransfer, descriptorPool *VulkanDescriptorPool,
	uboBuffer vk.Buffer, uboRange uint64, pixels []uint8, width, height, channels uint32, linear bool) (*VulkanTexture, error) {

	if channels != 4 {
		return nil, errors.Newf("texture upload requires 4 channels, got %d", channels)
	}
	if width == 0 || height == 0 {
		return nil, errors.Newf("texture dimensions must be non-zero, got %dx%d", width, height)
	}
	imageSize := uint64(width) * uint64(height) * uint64(channels)
	if uint64(len(pixels)) < imageSize {
		return nil, errors.Newf("texture pixel payload holds %d bytes, need %d", len(pixels), imageSize)
	}

	// Displacement-style data stays linear; color data gets SRGB.
	format := vk.FormatR8g8b8a8Srgb
	if linear {
		format = vk.FormatR8g8b8a8Unorm
	}

	staging, err := NewVulkanBuffer(context, imageSize,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)|vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create texture staging buffer")
	}
	defer staging.Destroy(context)

	if err := staging.LoadData(context, 0, imageSize, pixels[:imageSize]); err != nil {
		return nil, err
	}

	image, err := ImageCreate(
		context,
		vk.ImageType2d,
		width,
		height,
		format,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageTransferDstBit)|vk.ImageUsageFlags(vk.ImageUsageSampledBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		true,
		vk.ImageAspectFlags(vk.ImageAspectColorBit),
		uint32(context.Device.GraphicsQueueIndex),
		uint32(context.Device.TransferQueueIndex))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create texture image")
	}

	err = transfer.Run(context, func(commandBuffer *VulkanCommandBuffer) error {
		if err := image.ImageTransitionLayout(context, commandBuffer, vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal); err != nil {
			return err
		}
		image.ImageCopyFromBuffer(context, staging.Handle, commandBuffer)
		return image.ImageTransitionLayout(context, commandBuffer, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal)
	})
	if err != nil {
		image.ImageDestroy(context)
		return nil, errors.Wrapf(err, "failed to upload texture")
	}

	sampler, err := samplerCreate(context)
	if err != nil {
		image.ImageDestroy(context)
		return nil, err
	}

	set, err := descriptorPool.AllocateSet(context)
	if err != nil {
		vk.DestroySampler(context.Device.LogicalDevice, sampler, context.Allocator)
		image.ImageDestroy(context)
		return nil, err
	}
	descriptorPool.WriteSet(context, set, uboBuffer, uboRange, image.View, sampler)

	return &VulkanTexture{
		Image:         image,
		Sampler:       sampler,
		DescriptorSet: set,
		Format:        format,
		Info: metadata.TextureInfo{
			Width:      width,
			Height:     height,
			Generation: 0,
			Linear:     linear,
		},
	}, nil
}

func samplerCreate(context *VulkanContext) (vk.Sampler, error) {
	samplerCreateInfo := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		AddressModeU:            vk.SamplerAddressModeRepeat,
		AddressModeV:            vk.SamplerAddressModeRepeat,
		AddressModeW:            vk.SamplerAddressModeRepeat,
		AnisotropyEnable:        vk.True,
		MaxAnisotropy:           16,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MipmapMode:              vk.SamplerMipmapModeLinear,
		MipLodBias:              0,
		MinLod:                  0,
		MaxLod:                  0,
	}
	samplerCreateInfo.Deref()

	var sampler vk.Sampler
	if res := vk.CreateSampler(context.Device.LogicalDevice, &samplerCreateInfo, context.Allocator, &sampler); res != vk.Success {
		return nil, errors.Newf("failed to create texture sampler with %s", VulkanResultString(res))
	}
	return sampler, nil
}

func (vt *VulkanTexture) Destroy(context *VulkanContext, descriptorPool *VulkanDescriptorPool) {
	if vt.DescriptorSet != nil {
		descriptorPool.FreeSet(context, vt.DescriptorSet)
		vt.DescriptorSet = nil
	}
	if vt.Sampler != nil {
		vk.DestroySampler(context.Device.LogicalDevice, vt.Sampler, context.Allocator)
		vt.Sampler = nil
	}
	if vt.Image != nil {
		vt.Image.ImageDestroy(context)
		vt.Image = nil
	}
}
