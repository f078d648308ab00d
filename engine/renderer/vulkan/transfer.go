package vulkan

import (
	"sync"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

/**
 * @brief The dedicated transfer path for synchronous uploads. It owns
 * its own command pool, queue and fence so texture and buffer staging
 * never touches the frame-pacing sync objects, and completion is a
 * fence wait rather than a queue idle.
 */
type VulkanTransfer struct {
	Queue            vk.Queue
	QueueFamilyIndex uint32
	Fence            *VulkanFence

	pool vk.CommandPool
	// One upload at a time; the fence is shared across Run calls.
	mu sync.Mutex
}

func NewVulkanTransfer(context *VulkanContext) (*VulkanTransfer, error) {
	poolCreateInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: uint32(context.Device.TransferQueueIndex),
		// Every buffer allocated here is one-shot.
		Flags: vk.CommandPoolCreateFlags(vk.CommandPoolCreateTransientBit),
	}
	poolCreateInfo.Deref()

	var pool vk.CommandPool
	if res := vk.CreateCommandPool(context.Device.LogicalDevice, &poolCreateInfo, context.Allocator, &pool); res != vk.Success {
		return nil, errors.Newf("failed to create transfer command pool with %s", VulkanResultString(res))
	}

	fence, err := NewFence(context, false)
	if err != nil {
		vk.DestroyCommandPool(context.Device.LogicalDevice, pool, context.Allocator)
		return nil, errors.Wrapf(err, "failed to create transfer fence")
	}

	return &VulkanTransfer{
		Queue:            context.Device.TransferQueue,
		QueueFamilyIndex: uint32(context.Device.TransferQueueIndex),
		Fence:            fence,
		pool:             pool,
	}, nil
}

// Run records transfer commands through record into a one-shot command
// buffer, submits it and blocks until the transfer fence signals.
func (vt *VulkanTransfer) Run(context *VulkanContext, record func(commandBuffer *VulkanCommandBuffer) error) error {
	vt.mu.Lock()
	defer vt.mu.Unlock()

	commandBuffer, err := AllocateAndBeginSingleUse(context, vt.pool)
	if err != nil {
		return err
	}
	if err := record(commandBuffer); err != nil {
		commandBuffer.Free(context, vt.pool)
		return err
	}
	return commandBuffer.EndSingleUse(context, vt.pool, vt.Queue, vt.QueueFamilyIndex, vt.Fence, VULKAN_TRANSFER_TIMEOUT_NS)
}

func (vt *VulkanTransfer) Destroy(context *VulkanContext) {
	if vt.Fence != nil {
		vt.Fence.FenceDestroy(context)
		vt.Fence = nil
	}
	if vt.pool != nil {
		vk.DestroyCommandPool(context.Device.LogicalDevice, vt.pool, context.Allocator)
		vt.pool = nil
	}
}
