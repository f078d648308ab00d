package vulkan

import (
	gomath "math"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/nucleo/engine/core"
	"github.com/spaghettifunk/nucleo/engine/math"
)

/**
 * @brief Lifecycle state of the swapchain. Surface loss or resize moves
 * a ready swapchain to out-of-date; recreation brings it back.
 */
type SwapchainState int

const (
	SwapchainStateUninitialized SwapchainState = iota
	SwapchainStateReady
	SwapchainStateOutOfDate
	SwapchainStateRecreating
)

func (s SwapchainState) String() string {
	switch s {
	case SwapchainStateUninitialized:
		return "uninitialized"
	case SwapchainStateReady:
		return "ready"
	case SwapchainStateOutOfDate:
		return "out-of-date"
	case SwapchainStateRecreating:
		return "recreating"
	}
	return "unknown"
}

func validSwapchainTransition(from, to SwapchainState) bool {
	switch from {
	case SwapchainStateUninitialized:
		return to == SwapchainStateReady
	case SwapchainStateReady:
		return to == SwapchainStateOutOfDate
	case SwapchainStateOutOfDate:
		return to == SwapchainStateRecreating
	case SwapchainStateRecreating:
		return to == SwapchainStateReady
	}
	return false
}

type VulkanSwapchain struct {
	ImageFormat       vk.SurfaceFormat
	MaxFramesInFlight uint8
	Handle            vk.Swapchain
	ImageCount        uint32
	Images            []vk.Image
	Views             []vk.ImageView
	Extent            vk.Extent2D
	State             SwapchainState

	DepthAttachment *VulkanImage

	// framebuffers used for on-screen rendering.
	Framebuffers []*VulkanFramebuffer
}

type VulkanSwapchainSupportInfo struct {
	Capabilities     vk.SurfaceCapabilities
	FormatCount      uint32
	Formats          []vk.SurfaceFormat
	PresentModeCount uint32
	PresentModes     []vk.PresentMode
}

func (vs *VulkanSwapchain) TransitionTo(next SwapchainState) error {
	if !validSwapchainTransition(vs.State, next) {
		return errors.Newf("invalid swapchain state transition from %s to %s", vs.State, next)
	}
	vs.State = next
	return nil
}

func SwapchainCreate(context *VulkanContext, width uint32, height uint32) (*VulkanSwapchain, error) {
	return createSwapchain(context, width, height)
}

// SwapchainRecreate tears down the resize-dependent objects and builds
// replacements in place. The caller is responsible for the surrounding
// state transitions and for regenerating framebuffers.
func (vs *VulkanSwapchain) SwapchainRecreate(context *VulkanContext, width uint32, height uint32) error {
	vs.destroySwapchain(context)
	fresh, err := createSwapchain(context, width, height)
	if err != nil {
		return err
	}
	fresh.State = vs.State
	*vs = *fresh
	return nil
}

func (vs *VulkanSwapchain) SwapchainDestroy(context *VulkanContext) {
	vs.destroySwapchain(context)
}

// SwapchainAcquireNextImageIndex asks the presentation engine for the
// next image, signaling imageAvailableSemaphore once it is usable. A
// rebuild status means the caller must recreate the swapchain and skip
// the frame.
func (vs *VulkanSwapchain) SwapchainAcquireNextImageIndex(context *VulkanContext, timeoutNS uint64, imageAvailableSemaphore vk.Semaphore, fence vk.Fence) (uint32, frameStatus) {
	var imageIndex uint32
	result := vk.AcquireNextImage(context.Device.LogicalDevice, vs.Handle, timeoutNS, imageAvailableSemaphore, fence, &imageIndex)
	status := swapchainResultStatus(result)
	if status == frameStatusFatal {
		core.LogError("failed to acquire swapchain image with %s", VulkanResultString(result))
	}
	return imageIndex, status
}

// SwapchainPresent returns the image to the presentation engine once
// renderCompleteSemaphore signals. A rebuild status here is deferred:
// the presented frame is fine, the caller flags recreation for the
// next frame.
func (vs *VulkanSwapchain) SwapchainPresent(context *VulkanContext, presentQueue vk.Queue, renderCompleteSemaphore vk.Semaphore, presentImageIndex uint32) frameStatus {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{renderCompleteSemaphore},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{vs.Handle},
		PImageIndices:      []uint32{presentImageIndex},
		PResults:           nil,
	}

	var result vk.Result
	context.lockPool.SafeQueueCall(uint32(context.Device.PresentQueueIndex), func() error {
		result = vk.QueuePresent(presentQueue, &presentInfo)
		return nil
	})

	status := swapchainResultStatus(result)
	if status == frameStatusFatal {
		core.LogError("failed to present swapchain image with %s", VulkanResultString(result))
	}
	return status
}

// chooseSurfaceFormat prefers BGRA8 SRGB with a non-linear SRGB color
// space, falling back to whatever the surface lists first.
func chooseSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, format := range formats {
		if format.Format == vk.FormatB8g8r8a8Srgb && format.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return format
		}
	}
	return formats[0]
}

// choosePresentMode returns FIFO when vsync is requested, which every
// conformant device supports. Without vsync, mailbox is preferred and
// FIFO remains the fallback.
func choosePresentMode(modes []vk.PresentMode, vsync bool) vk.PresentMode {
	if vsync {
		return vk.PresentModeFifo
	}
	for _, mode := range modes {
		if mode == vk.PresentModeMailbox {
			return mode
		}
	}
	return vk.PresentModeFifo
}

// chooseSwapExtent honors the surface's fixed extent when it reports
// one, otherwise clamps the framebuffer size into the supported range.
func chooseSwapExtent(capabilities vk.SurfaceCapabilities, width, height uint32) vk.Extent2D {
	if capabilities.CurrentExtent.Width != gomath.MaxUint32 {
		return capabilities.CurrentExtent
	}
	return vk.Extent2D{
		Width:  math.Clamp(width, capabilities.MinImageExtent.Width, capabilities.MaxImageExtent.Width),
		Height: math.Clamp(height, capabilities.MinImageExtent.Height, capabilities.MaxImageExtent.Height),
	}
}

func createSwapchain(context *VulkanContext, width, height uint32) (*VulkanSwapchain, error) {
	// Surface capabilities go stale across resizes, so requery rather
	// than trusting the values captured at device selection.
	support, err := DeviceQuerySwapchainSupport(context.Device.PhysicalDevice, context.Surface)
	if err != nil {
		return nil, err
	}
	context.Device.SwapchainSupport = support

	if support.FormatCount == 0 || support.PresentModeCount == 0 {
		return nil, errors.New("surface no longer reports formats or present modes")
	}

	swapchain := &VulkanSwapchain{
		MaxFramesInFlight: VULKAN_MAX_FRAMES_IN_FLIGHT,
		State:             SwapchainStateUninitialized,
	}

	swapchain.ImageFormat = chooseSurfaceFormat(support.Formats)
	presentMode := choosePresentMode(support.PresentModes, context.Vsync)
	swapchainExtent := chooseSwapExtent(support.Capabilities, width, height)
	swapchain.Extent = swapchainExtent

	imageCount := support.Capabilities.MinImageCount + 1
	if support.Capabilities.MaxImageCount > 0 && imageCount > support.Capabilities.MaxImageCount {
		imageCount = support.Capabilities.MaxImageCount
	}

	swapchainCreateInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          context.Surface,
		MinImageCount:    imageCount,
		ImageFormat:      swapchain.ImageFormat.Format,
		ImageColorSpace:  swapchain.ImageFormat.ColorSpace,
		ImageExtent:      swapchainExtent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
	}

	// Setup the queue family indices
	if context.Device.GraphicsQueueIndex != context.Device.PresentQueueIndex {
		queueFamilyIndices := []uint32{
			uint32(context.Device.GraphicsQueueIndex),
			uint32(context.Device.PresentQueueIndex),
		}
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeConcurrent
		swapchainCreateInfo.QueueFamilyIndexCount = 2
		swapchainCreateInfo.PQueueFamilyIndices = queueFamilyIndices
	} else {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeExclusive
		swapchainCreateInfo.QueueFamilyIndexCount = 0
		swapchainCreateInfo.PQueueFamilyIndices = nil
	}

	swapchainCreateInfo.PreTransform = support.Capabilities.CurrentTransform
	swapchainCreateInfo.CompositeAlpha = vk.CompositeAlphaOpaqueBit
	swapchainCreateInfo.PresentMode = presentMode
	swapchainCreateInfo.Clipped = vk.True
	swapchainCreateInfo.OldSwapchain = nil
	swapchainCreateInfo.Deref()

	var swapchainHandle vk.Swapchain
	if res := vk.CreateSwapchain(context.Device.LogicalDevice, &swapchainCreateInfo, context.Allocator, &swapchainHandle); res != vk.Success {
		return nil, errors.Newf("failed to create swapchain with %s", VulkanResultString(res))
	}
	swapchain.Handle = swapchainHandle

	// Start with a zero frame index.
	context.CurrentFrame = 0

	// Images
	swapchain.ImageCount = 0
	if res := vk.GetSwapchainImages(context.Device.LogicalDevice, swapchain.Handle, &swapchain.ImageCount, nil); res != vk.Success {
		return nil, errors.Newf("failed to count swapchain images with %s", VulkanResultString(res))
	}
	swapchain.Images = make([]vk.Image, swapchain.ImageCount)
	swapchain.Views = make([]vk.ImageView, swapchain.ImageCount)
	if res := vk.GetSwapchainImages(context.Device.LogicalDevice, swapchain.Handle, &swapchain.ImageCount, swapchain.Images); res != vk.Success {
		return nil, errors.Newf("failed to get swapchain images with %s", VulkanResultString(res))
	}

	// Views
	for i := 0; i < int(swapchain.ImageCount); i++ {
		viewInfo := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    swapchain.Images[i],
			ViewType: vk.ImageViewType2d,
			Format:   swapchain.ImageFormat.Format,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		}
		viewInfo.Deref()

		if res := vk.CreateImageView(context.Device.LogicalDevice, &viewInfo, context.Allocator, &swapchain.Views[i]); res != vk.Success {
			return nil, errors.Newf("failed to create swapchain image view with %s", VulkanResultString(res))
		}
	}

	// Depth resources
	if !DeviceDetectDepthFormat(context.Device) {
		context.Device.DepthFormat = vk.FormatUndefined
		return nil, errors.New("failed to find a supported depth format")
	}

	// Create depth image and its view.
	depthAttachment, err := ImageCreate(
		context,
		vk.ImageType2d,
		swapchainExtent.Width,
		swapchainExtent.Height,
		context.Device.DepthFormat,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		true,
		vk.ImageAspectFlags(vk.ImageAspectDepthBit))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create depth attachment")
	}
	swapchain.DepthAttachment = depthAttachment

	core.LogInfo("swapchain created at %dx%d with %d images", swapchainExtent.Width, swapchainExtent.Height, swapchain.ImageCount)

	return swapchain, nil
}

func (vs *VulkanSwapchain) destroySwapchain(context *VulkanContext) {
	vk.DeviceWaitIdle(context.Device.LogicalDevice)

	for _, framebuffer := range vs.Framebuffers {
		framebuffer.Destroy(context)
	}
	vs.Framebuffers = nil

	if vs.DepthAttachment != nil {
		vs.DepthAttachment.ImageDestroy(context)
		vs.DepthAttachment = nil
	}

	// Only destroy the views, not the images, since those are owned by the swapchain and are thus
	// destroyed when it is.
	for i := 0; i < int(vs.ImageCount); i++ {
		vk.DestroyImageView(context.Device.LogicalDevice, vs.Views[i], context.Allocator)
	}

	if vs.Handle != nil {
		vk.DestroySwapchain(context.Device.LogicalDevice, vs.Handle, context.Allocator)
		vs.Handle = nil
	}
}
