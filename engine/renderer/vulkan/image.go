package vulkan

import (
	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

type VulkanImage struct {
	Handle vk.Image
	Memory vk.DeviceMemory
	View   vk.ImageView
	Width  uint32
	Height uint32
}

// ImageCreate builds an image plus its backing memory and, when asked,
// a view. Passing more than one distinct queue family makes the image
// concurrently shared between them, which the texture upload path uses
// when the transfer queue lives in its own family.
func ImageCreate(context *VulkanContext, imageType vk.ImageType, width, height uint32, format vk.Format,
	tiling vk.ImageTiling, usage vk.ImageUsageFlags, memoryFlags vk.MemoryPropertyFlags,
	createView bool, viewAspectFlags vk.ImageAspectFlags, sharedQueueFamilies ...uint32) (*VulkanImage, error) {

	outImage := &VulkanImage{
		Width:  width,
		Height: height,
	}

	imageCreateInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		ImageType: imageType,
		Extent: vk.Extent3D{
			Width:  width,
			Height: height,
			Depth:  1, // TODO: support configurable depth.
		},
		MipLevels:     1, // TODO: support mip mapping.
		ArrayLayers:   1,
		Format:        format,
		Tiling:        tiling,
		InitialLayout: vk.ImageLayoutUndefined,
		Usage:         usage,
		Samples:       vk.SampleCount1Bit,
		SharingMode:   vk.SharingModeExclusive,
	}

	uniqueFamilies := make([]uint32, 0, len(sharedQueueFamilies))
	for _, family := range sharedQueueFamilies {
		seen := false
		for _, existing := range uniqueFamilies {
			if existing == family {
				seen = true
				break
			}
		}
		if !seen {
			uniqueFamilies = append(uniqueFamilies, family)
		}
	}
	if len(uniqueFamilies) > 1 {
		imageCreateInfo.SharingMode = vk.SharingModeConcurrent
		imageCreateInfo.QueueFamilyIndexCount = uint32(len(uniqueFamilies))
		imageCreateInfo.PQueueFamilyIndices = uniqueFamilies
	}
	imageCreateInfo.Deref()

	var pImage vk.Image
	if res := vk.CreateImage(context.Device.LogicalDevice, &imageCreateInfo, context.Allocator, &pImage); res != vk.Success {
		return nil, errors.Newf("failed to create image with %s", VulkanResultString(res))
	}
	outImage.Handle = pImage

	// Query memory requirements.
	var memoryRequirements vk.MemoryRequirements
	vk.GetImageMemoryRequirements(context.Device.LogicalDevice, outImage.Handle, &memoryRequirements)
	memoryRequirements.Deref()

	memoryType := context.FindMemoryIndex(memoryRequirements.MemoryTypeBits, memoryFlags)
	if memoryType == -1 {
		vk.DestroyImage(context.Device.LogicalDevice, outImage.Handle, context.Allocator)
		return nil, errors.New("required memory type not found for image")
	}

	// Allocate memory
	memoryAllocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memoryRequirements.Size,
		MemoryTypeIndex: uint32(memoryType),
	}
	var pMemory vk.DeviceMemory
	if res := vk.AllocateMemory(context.Device.LogicalDevice, &memoryAllocateInfo, context.Allocator, &pMemory); res != vk.Success {
		vk.DestroyImage(context.Device.LogicalDevice, outImage.Handle, context.Allocator)
		return nil, errors.Newf("failed to allocate image memory with %s", VulkanResultString(res))
	}
	outImage.Memory = pMemory

	// Bind the memory
	if res := vk.BindImageMemory(context.Device.LogicalDevice, outImage.Handle, outImage.Memory, 0); res != vk.Success {
		outImage.ImageDestroy(context)
		return nil, errors.Newf("failed to bind image memory with %s", VulkanResultString(res))
	}

	// Create view
	if createView {
		if err := outImage.ImageViewCreate(context, format, viewAspectFlags); err != nil {
			outImage.ImageDestroy(context)
			return nil, err
		}
	}

	return outImage, nil
}

func (vi *VulkanImage) ImageViewCreate(context *VulkanContext, format vk.Format, aspectFlags vk.ImageAspectFlags) error {
	viewCreateInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    vi.Handle,
		ViewType: vk.ImageViewType2d, // TODO: make configurable.
		Format:   format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: aspectFlags,
			// TODO: make configurable
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}
	viewCreateInfo.Deref()

	var pView vk.ImageView
	if res := vk.CreateImageView(context.Device.LogicalDevice, &viewCreateInfo, context.Allocator, &pView); res != vk.Success {
		return errors.Newf("failed to create image view with %s", VulkanResultString(res))
	}
	vi.View = pView
	return nil
}

/**
 * Records a layout transition on commandBuffer. Only the two transitions
 * the texture upload path needs are supported: undefined to transfer
 * destination, and transfer destination to shader read.
 */
func (vi *VulkanImage) ImageTransitionLayout(context *VulkanContext, commandBuffer *VulkanCommandBuffer, oldLayout, newLayout vk.ImageLayout) error {
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		OldLayout:           oldLayout,
		NewLayout:           newLayout,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               vi.Handle,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			BaseMipLevel:   0,
			LevelCount:     1,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	}

	var sourceStage, destinationStage vk.PipelineStageFlags

	switch {
	case oldLayout == vk.ImageLayoutUndefined && newLayout == vk.ImageLayoutTransferDstOptimal:
		// Don't care what stage the pipeline is in at the start.
		barrier.SrcAccessMask = 0
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		sourceStage = vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
		destinationStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	case oldLayout == vk.ImageLayoutTransferDstOptimal && newLayout == vk.ImageLayoutShaderReadOnlyOptimal:
		// Transition from a transfer destination layout to a shader-readonly layout.
		barrier.SrcAccessMask = vk.AccessFlags(vk.AccessTransferWriteBit)
		barrier.DstAccessMask = vk.AccessFlags(vk.AccessShaderReadBit)
		sourceStage = vk.PipelineStageFlags(vk.PipelineStageTransferBit)
		destinationStage = vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)
	default:
		return errors.Newf("unsupported layout transition from %d to %d", oldLayout, newLayout)
	}
	barrier.Deref()

	vk.CmdPipelineBarrier(commandBuffer.Handle, sourceStage, destinationStage,
		0,
		0, nil,
		0, nil,
		1, []vk.ImageMemoryBarrier{barrier})

	return nil
}

/**
 * Records a copy of the whole buffer into the image. The image must be
 * in the transfer destination layout.
 */
func (vi *VulkanImage) ImageCopyFromBuffer(context *VulkanContext, buffer vk.Buffer, commandBuffer *VulkanCommandBuffer) {
	region := vk.BufferImageCopy{
		BufferOffset:      0,
		BufferRowLength:   0,
		BufferImageHeight: 0,
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
			MipLevel:       0,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
		ImageExtent: vk.Extent3D{
			Width:  vi.Width,
			Height: vi.Height,
			Depth:  1,
		},
	}
	region.Deref()

	vk.CmdCopyBufferToImage(commandBuffer.Handle, buffer, vi.Handle, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{region})
}

func (vi *VulkanImage) ImageDestroy(context *VulkanContext) {
	if vi.View != nil {
		vk.DestroyImageView(context.Device.LogicalDevice, vi.View, context.Allocator)
		vi.View = nil
	}
	if vi.Memory != nil {
		vk.FreeMemory(context.Device.LogicalDevice, vi.Memory, context.Allocator)
		vi.Memory = nil
	}
	if vi.Handle != nil {
		vk.DestroyImage(context.Device.LogicalDevice, vi.Handle, context.Allocator)
		vi.Handle = nil
	}
}
