package vulkan

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	vk "github.com/goki/vulkan"
)

type VulkanBuffer struct {
	Handle              vk.Buffer
	Memory              vk.DeviceMemory
	TotalSize           uint64
	Usage               vk.BufferUsageFlags
	MemoryPropertyFlags vk.MemoryPropertyFlags
	// Non-nil while persistently mapped.
	Mapped unsafe.Pointer
}

func NewVulkanBuffer(context *VulkanContext, size uint64, usage vk.BufferUsageFlags, memoryPropertyFlags vk.MemoryPropertyFlags) (*VulkanBuffer, error) {
	if size == 0 {
		return nil, errors.New("buffer size must be greater than zero")
	}

	outBuffer := &VulkanBuffer{
		TotalSize:           size,
		Usage:               usage,
		MemoryPropertyFlags: memoryPropertyFlags,
	}

	bufferCreateInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive, // Only used in one queue.
	}
	bufferCreateInfo.Deref()

	var pBuffer vk.Buffer
	if res := vk.CreateBuffer(context.Device.LogicalDevice, &bufferCreateInfo, context.Allocator, &pBuffer); res != vk.Success {
		return nil, errors.Newf("failed to create buffer with %s", VulkanResultString(res))
	}
	outBuffer.Handle = pBuffer

	var memoryRequirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(context.Device.LogicalDevice, outBuffer.Handle, &memoryRequirements)
	memoryRequirements.Deref()

	memoryIndex := context.FindMemoryIndex(memoryRequirements.MemoryTypeBits, memoryPropertyFlags)
	if memoryIndex == -1 {
		vk.DestroyBuffer(context.Device.LogicalDevice, outBuffer.Handle, context.Allocator)
		return nil, errors.New("required memory type not found for buffer")
	}

	memoryAllocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memoryRequirements.Size,
		MemoryTypeIndex: uint32(memoryIndex),
	}
	var pMemory vk.DeviceMemory
	if res := vk.AllocateMemory(context.Device.LogicalDevice, &memoryAllocateInfo, context.Allocator, &pMemory); res != vk.Success {
		vk.DestroyBuffer(context.Device.LogicalDevice, outBuffer.Handle, context.Allocator)
		return nil, errors.Newf("failed to allocate buffer memory with %s", VulkanResultString(res))
	}
	outBuffer.Memory = pMemory

	if res := vk.BindBufferMemory(context.Device.LogicalDevice, outBuffer.Handle, outBuffer.Memory, 0); res != vk.Success {
		outBuffer.Destroy(context)
		return nil, errors.Newf("failed to bind buffer memory with %s", VulkanResultString(res))
	}

	return outBuffer, nil
}

// LoadData copies data into the buffer through a transient mapping. The
// memory must be host visible.
func (vb *VulkanBuffer) LoadData(context *VulkanContext, offset, size uint64, data []byte) error {
	if offset+size > vb.TotalSize {
		return errors.Newf("buffer write of %d bytes at offset %d exceeds size %d", size, offset, vb.TotalSize)
	}
	var pData unsafe.Pointer
	if res := vk.MapMemory(context.Device.LogicalDevice, vb.Memory, vk.DeviceSize(offset), vk.DeviceSize(size), 0, &pData); res != vk.Success {
		return errors.Newf("failed to map buffer memory with %s", VulkanResultString(res))
	}
	vk.Memcopy(pData, data[:size])
	vk.UnmapMemory(context.Device.LogicalDevice, vb.Memory)
	return nil
}

// ReadData copies size bytes out of the buffer at offset. The memory
// must be host visible.
func (vb *VulkanBuffer) ReadData(context *VulkanContext, offset, size uint64) ([]byte, error) {
	if offset+size > vb.TotalSize {
		return nil, errors.Newf("buffer read of %d bytes at offset %d exceeds size %d", size, offset, vb.TotalSize)
	}
	var pData unsafe.Pointer
	if res := vk.MapMemory(context.Device.LogicalDevice, vb.Memory, vk.DeviceSize(offset), vk.DeviceSize(size), 0, &pData); res != vk.Success {
		return nil, errors.Newf("failed to map buffer memory with %s", VulkanResultString(res))
	}
	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(pData), size))
	vk.UnmapMemory(context.Device.LogicalDevice, vb.Memory)
	return out, nil
}

// Map maps the whole buffer and keeps it mapped until Unmap. Used for
// the uniform ring, which stays mapped for its entire lifetime.
func (vb *VulkanBuffer) Map(context *VulkanContext) (unsafe.Pointer, error) {
	if vb.Mapped != nil {
		return vb.Mapped, nil
	}
	var pData unsafe.Pointer
	if res := vk.MapMemory(context.Device.LogicalDevice, vb.Memory, 0, vk.DeviceSize(vb.TotalSize), 0, &pData); res != vk.Success {
		return nil, errors.Newf("failed to map buffer memory with %s", VulkanResultString(res))
	}
	vb.Mapped = pData
	return pData, nil
}

func (vb *VulkanBuffer) Unmap(context *VulkanContext) {
	if vb.Mapped == nil {
		return
	}
	vk.UnmapMemory(context.Device.LogicalDevice, vb.Memory)
	vb.Mapped = nil
}

func (vb *VulkanBuffer) Destroy(context *VulkanContext) {
	vb.Unmap(context)
	if vb.Memory != nil {
		vk.FreeMemory(context.Device.LogicalDevice, vb.Memory, context.Allocator)
		vb.Memory = nil
	}
	if vb.Handle != nil {
		vk.DestroyBuffer(context.Device.LogicalDevice, vb.Handle, context.Allocator)
		vb.Handle = nil
	}
	vb.TotalSize = 0
}

func floatBytes(data []float32) []byte {
	if len(data) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*4)
}

func uint32Bytes(data []uint32) []byte {
	if len(data) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*4)
}
