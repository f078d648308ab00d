package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/nucleo/engine/core"
)

// VulkanContext is the per-renderer bag of native state shared by the
// package. One context per renderer instance; nothing in here is global.
type VulkanContext struct {
	// The framebuffer's current width.
	FramebufferWidth uint32
	// The framebuffer's current height.
	FramebufferHeight uint32
	// Current generation of framebuffer size. If it does not match
	// FramebufferSizeLastGeneration, the swapchain must be rebuilt.
	FramebufferSizeGeneration uint64
	// The generation of the framebuffer when the swapchain was last
	// (re)built. Synced to FramebufferSizeGeneration after a rebuild.
	FramebufferSizeLastGeneration uint64

	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks
	Surface   vk.Surface

	debugMessenger vk.DebugReportCallback

	Device *VulkanDevice

	Swapchain      *VulkanSwapchain
	MainRenderpass *VulkanRenderpass

	// One command buffer per frame slot, indexed by CurrentFrame.
	GraphicsCommandBuffers []*VulkanCommandBuffer

	// Sync objects, one per frame slot.
	ImageAvailableSemaphores []vk.Semaphore
	QueueCompleteSemaphores  []vk.Semaphore
	InFlightFences           []*VulkanFence

	// The swapchain image acquired for the frame being recorded.
	ImageIndex uint32
	// The frame slot being recorded, in [0, MaxFramesInFlight).
	CurrentFrame uint32

	RecreatingSwapchain bool

	// Present-mode policy; fixed at initialization.
	Vsync bool

	// Serializes create/destroy sections and queue submissions.
	lockPool *VulkanLockPool
}

// FindMemoryIndex returns the index of a memory type matching typeFilter
// and carrying every flag in propertyFlags, or -1 when the device has
// none. Callers fail their allocation cleanly on -1.
func (vc *VulkanContext) FindMemoryIndex(typeFilter uint32, propertyFlags vk.MemoryPropertyFlags) int32 {
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(vc.Device.PhysicalDevice, &memoryProperties)
	memoryProperties.Deref()

	for i := uint32(0); i < memoryProperties.MemoryTypeCount; i++ {
		memoryProperties.MemoryTypes[i].Deref()
		if (typeFilter&(1<<i)) != 0 && (memoryProperties.MemoryTypes[i].PropertyFlags&propertyFlags) == propertyFlags {
			return int32(i)
		}
	}
	core.LogWarn("unable to find suitable memory type")
	return -1
}
