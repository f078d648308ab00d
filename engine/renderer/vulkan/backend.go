package vulkan

import (
	"runtime"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/nucleo/engine/assets"
	"github.com/spaghettifunk/nucleo/engine/containers"
	"github.com/spaghettifunk/nucleo/engine/core"
	"github.com/spaghettifunk/nucleo/engine/math"
	"github.com/spaghettifunk/nucleo/engine/platform"
	"github.com/spaghettifunk/nucleo/engine/renderer/metadata"
)

// VulkanRenderer owns the native device state and every pooled GPU
// resource. One instance per window; all state hangs off the instance, so
// two renderers never share anything but the loader.
type VulkanRenderer struct {
	platform *platform.Platform
	assets   *assets.AssetManager
	config   *metadata.RendererBackendConfig

	context *VulkanContext

	// Pending framebuffer size from the last resize event, consumed by
	// the next swapchain recreation.
	cachedFramebufferWidth  uint32
	cachedFramebufferHeight uint32

	descriptorPool *VulkanDescriptorPool
	transfer       *VulkanTransfer

	// Per-draw uniform ring: maxDrawsPerFrame slots per frame slot,
	// persistently mapped, addressed with dynamic offsets. A frame's
	// region is only rewritten once its fence has signaled.
	uboRing          *VulkanBuffer
	uboStride        uint64
	maxDrawsPerFrame uint32
	drawCursor       uint32
	drawsDropped     uint64

	buffers   *containers.Pool[*VulkanBuffer]
	textures  *containers.Pool[*VulkanTexture]
	pipelines *containers.Pool[*VulkanPipeline]

	frameStarted    bool
	frameNumber     uint64
	currentPipeline metadata.PipelineHandle
	currentTexture  metadata.TextureHandle
	defaultTexture  metadata.TextureHandle

	viewMatrix       math.Mat4
	projectionMatrix math.Mat4

	debug bool
}

func New(p *platform.Platform, assetManager *assets.AssetManager, config *metadata.RendererBackendConfig) *VulkanRenderer {
	return &VulkanRenderer{
		platform: p,
		assets:   assetManager,
		config:   config,
		context: &VulkanContext{
			FramebufferWidth:  0,
			FramebufferHeight: 0,
			Allocator:         nil,
			Vsync:             config.Vsync,
			lockPool:          NewVulkanLockPool(),
		},
		maxDrawsPerFrame: config.MaxDrawsPerFrame,
		currentPipeline:  metadata.InvalidPipeline,
		currentTexture:   metadata.InvalidTexture,
		defaultTexture:   metadata.InvalidTexture,
		viewMatrix:       math.NewMat4Identity(),
		projectionMatrix: math.NewMat4Identity(),
		debug:            config.EnableValidation,
	}
}

func (vr *VulkanRenderer) Initialize() error {
	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		return errors.New("GetInstanceProcAddress is nil")
	}
	vk.SetGetInstanceProcAddr(procAddr)

	if err := vk.Init(); err != nil {
		return errors.Wrapf(err, "failed to initialize the Vulkan loader")
	}

	// TODO: custom allocator.
	vr.context.Allocator = nil

	vr.context.FramebufferWidth = vr.config.Width
	vr.context.FramebufferHeight = vr.config.Height
	if vr.context.FramebufferWidth == 0 {
		vr.context.FramebufferWidth = metadata.DefaultWidth
	}
	if vr.context.FramebufferHeight == 0 {
		vr.context.FramebufferHeight = metadata.DefaultHeight
	}
	if vr.maxDrawsPerFrame == 0 {
		vr.maxDrawsPerFrame = metadata.DefaultMaxDrawsPerFrame
	}

	if err := vr.createInstance(); err != nil {
		return err
	}

	if vr.debug {
		if err := vr.createDebugger(); err != nil {
			return err
		}
	}

	core.LogDebug("creating Vulkan surface")
	if err := CreateVulkanSurface(vr.platform, vr.context); err != nil {
		return err
	}

	vr.context.Device = &VulkanDevice{
		GraphicsQueueIndex: -1,
		PresentQueueIndex:  -1,
		TransferQueueIndex: -1,
	}
	if err := DeviceCreate(vr.context); err != nil {
		return errors.Wrapf(err, "failed to create device")
	}

	sc, err := SwapchainCreate(vr.context, vr.context.FramebufferWidth, vr.context.FramebufferHeight)
	if err != nil {
		return errors.Wrapf(err, "failed to create swapchain")
	}
	vr.context.Swapchain = sc
	if err := vr.context.Swapchain.TransitionTo(SwapchainStateReady); err != nil {
		return err
	}

	cc := vr.config.ClearColor
	rp, err := RenderpassCreate(
		vr.context,
		0, 0, float32(vr.context.FramebufferWidth), float32(vr.context.FramebufferHeight),
		cc[0], cc[1], cc[2], cc[3],
		1.0,
		0)
	if err != nil {
		return errors.Wrapf(err, "failed to create the main renderpass")
	}
	vr.context.MainRenderpass = rp

	vr.context.Swapchain.Framebuffers = make([]*VulkanFramebuffer, vr.context.Swapchain.ImageCount)
	if err := vr.regenerateFramebuffers(); err != nil {
		return err
	}

	if err := vr.createCommandBuffers(); err != nil {
		return err
	}

	if err := vr.createSyncObjects(); err != nil {
		return err
	}

	vr.descriptorPool, err = NewDescriptorPool(vr.context, VULKAN_MAX_TEXTURE_COUNT)
	if err != nil {
		return errors.Wrapf(err, "failed to create descriptor pool")
	}

	vr.transfer, err = NewVulkanTransfer(vr.context)
	if err != nil {
		return errors.Wrapf(err, "failed to create transfer path")
	}

	if err := vr.createUniformRing(); err != nil {
		return err
	}

	vr.buffers = containers.NewPool[*VulkanBuffer](false)
	vr.pipelines = containers.NewPool[*VulkanPipeline](false)
	// Textures churn; reuse vacated slots so the id space stays bounded.
	vr.textures = containers.NewPool[*VulkanTexture](true)

	if err := vr.createDefaultTexture(); err != nil {
		return err
	}

	core.LogInfo("Vulkan renderer initialized")
	return nil
}

func (vr *VulkanRenderer) createInstance() error {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(vr.config.ApplicationName),
		PEngineName:        VulkanSafeString("Nucleo Engine"),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	requiredExtensions := []string{"VK_KHR_surface"}
	requiredExtensions = append(requiredExtensions, vr.platform.RequiredVulkanExtensions()...)

	if runtime.GOOS == "darwin" {
		requiredExtensions = append(requiredExtensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
	}

	if vr.debug {
		requiredExtensions = append(requiredExtensions, vk.ExtDebugUtilsExtensionName, vk.ExtDebugReportExtensionName)
		for i := range requiredExtensions {
			core.LogDebug("required extension: %s", requiredExtensions[i])
		}
	}

	createInfo.EnabledExtensionCount = uint32(len(requiredExtensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(requiredExtensions)

	// Validation layers should only be enabled on non-release builds.
	requiredValidationLayers := []string{}
	if vr.debug {
		core.LogInfo("validation layers enabled, enumerating")
		requiredValidationLayers = []string{"VK_LAYER_KHRONOS_validation"}

		if runtime.GOOS == "darwin" {
			createInfo.Flags |= 1
		}

		var availableLayerCount uint32
		if res := vk.EnumerateInstanceLayerProperties(&availableLayerCount, nil); res != vk.Success {
			return errors.Newf("failed to count instance layers with %s", VulkanResultString(res))
		}
		availableLayers := make([]vk.LayerProperties, availableLayerCount)
		if res := vk.EnumerateInstanceLayerProperties(&availableLayerCount, availableLayers); res != vk.Success {
			return errors.Newf("failed to enumerate instance layers with %s", VulkanResultString(res))
		}

		for i := range requiredValidationLayers {
			found := false
			for j := range availableLayers {
				availableLayers[j].Deref()
				end := FindFirstZeroInByteArray(availableLayers[j].LayerName[:])
				if requiredValidationLayers[i] == vk.ToString(availableLayers[j].LayerName[:end+1]) {
					found = true
					break
				}
			}
			if !found {
				return errors.Newf("required validation layer is missing: %s", requiredValidationLayers[i])
			}
		}
		core.LogInfo("all required validation layers are present")
	}

	createInfo.EnabledLayerCount = uint32(len(requiredValidationLayers))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(requiredValidationLayers)

	if res := vk.CreateInstance(&createInfo, vr.context.Allocator, &vr.context.Instance); res != vk.Success {
		return errors.Newf("failed to create the Vulkan instance with %s", VulkanResultString(res))
	}
	if err := vk.InitInstance(vr.context.Instance); err != nil {
		return errors.Wrapf(err, "failed to initialize instance-level procedures")
	}

	core.LogInfo("Vulkan instance created")
	return nil
}

func (vr *VulkanRenderer) createDebugger() error {
	debugCreateInfo := vk.DebugReportCallbackCreateInfo{
		SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
		PfnCallback: dbgCallbackFunc,
		PNext:       nil,
	}

	var dbg vk.DebugReportCallback
	if res := vk.CreateDebugReportCallback(vr.context.Instance, &debugCreateInfo, nil, &dbg); res != vk.Success {
		return errors.Newf("failed to create debug callback with %s", VulkanResultString(res))
	}
	vr.context.debugMessenger = dbg
	core.LogDebug("Vulkan debugger created")
	return nil
}

func (vr *VulkanRenderer) createSyncObjects() error {
	framesInFlight := int(vr.context.Swapchain.MaxFramesInFlight)
	vr.context.ImageAvailableSemaphores = make([]vk.Semaphore, framesInFlight)
	vr.context.QueueCompleteSemaphores = make([]vk.Semaphore, framesInFlight)
	vr.context.InFlightFences = make([]*VulkanFence, framesInFlight)

	for i := 0; i < framesInFlight; i++ {
		semaphoreCreateInfo := vk.SemaphoreCreateInfo{
			SType: vk.StructureTypeSemaphoreCreateInfo,
		}
		if res := vk.CreateSemaphore(vr.context.Device.LogicalDevice, &semaphoreCreateInfo, vr.context.Allocator, &vr.context.ImageAvailableSemaphores[i]); res != vk.Success {
			return errors.Newf("failed to create image-available semaphore with %s", VulkanResultString(res))
		}
		if res := vk.CreateSemaphore(vr.context.Device.LogicalDevice, &semaphoreCreateInfo, vr.context.Allocator, &vr.context.QueueCompleteSemaphores[i]); res != vk.Success {
			return errors.Newf("failed to create queue-complete semaphore with %s", VulkanResultString(res))
		}

		// The fence starts signaled so the first BeginFrame on this slot
		// does not wait for work that was never submitted.
		f, err := NewFence(vr.context, true)
		if err != nil {
			return err
		}
		vr.context.InFlightFences[i] = f
	}
	return nil
}

// createUniformRing sizes the per-draw uniform buffer: one aligned slot
// per draw, maxDrawsPerFrame draws per frame, one region per frame slot.
// The ring stays mapped for its entire lifetime.
func (vr *VulkanRenderer) createUniformRing() error {
	minAlignment := uint64(vr.context.Device.Properties.Limits.MinUniformBufferOffsetAlignment)
	vr.uboStride = metadata.AlignUniformStride(metadata.StandardUBOSize, minAlignment)

	totalSize := vr.uboStride * uint64(vr.maxDrawsPerFrame) * uint64(vr.context.Swapchain.MaxFramesInFlight)
	ring, err := NewVulkanBuffer(vr.context, totalSize,
		vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)|vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return errors.Wrapf(err, "failed to create the uniform ring")
	}
	if _, err := ring.Map(vr.context); err != nil {
		ring.Destroy(vr.context)
		return errors.Wrapf(err, "failed to map the uniform ring")
	}
	vr.uboRing = ring

	core.LogDebug("uniform ring created: %d slots of %d bytes", vr.maxDrawsPerFrame*uint32(vr.context.Swapchain.MaxFramesInFlight), vr.uboStride)
	return nil
}

// createDefaultTexture uploads the 1x1 white pixel every invalid texture
// bind falls back to. It lives for the renderer's lifetime and refuses
// destruction through the public API.
func (vr *VulkanRenderer) createDefaultTexture() error {
	white := []uint8{255, 255, 255, 255}
	texture, err := TextureCreate(vr.context, vr.transfer, vr.descriptorPool,
		vr.uboRing.Handle, metadata.StandardUBOSize, white, 1, 1, 4, false)
	if err != nil {
		return errors.Wrapf(err, "failed to create the default texture")
	}
	id, generation := vr.textures.Add(texture)
	vr.defaultTexture = metadata.NewTextureHandle(id, generation)
	vr.currentTexture = vr.defaultTexture
	return nil
}

func (vr *VulkanRenderer) Shutdow() error {
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)

	// Destroy in the opposite order of creation.

	vr.pipelines.Each(func(id uint32, pipeline **VulkanPipeline) bool {
		if err := (*pipeline).Destroy(vr.context); err != nil {
			core.LogWarn("pipeline %d teardown: %v", id, err)
		}
		return true
	})
	vr.textures.Each(func(id uint32, texture **VulkanTexture) bool {
		(*texture).Destroy(vr.context, vr.descriptorPool)
		return true
	})
	vr.buffers.Each(func(id uint32, buffer **VulkanBuffer) bool {
		(*buffer).Destroy(vr.context)
		return true
	})

	if vr.uboRing != nil {
		vr.uboRing.Destroy(vr.context)
		vr.uboRing = nil
	}
	if vr.transfer != nil {
		vr.transfer.Destroy(vr.context)
		vr.transfer = nil
	}
	if vr.descriptorPool != nil {
		vr.descriptorPool.Destroy(vr.context)
		vr.descriptorPool = nil
	}

	for i := 0; i < int(vr.context.Swapchain.MaxFramesInFlight); i++ {
		if vr.context.ImageAvailableSemaphores[i] != vk.NullSemaphore {
			vk.DestroySemaphore(vr.context.Device.LogicalDevice, vr.context.ImageAvailableSemaphores[i], vr.context.Allocator)
			vr.context.ImageAvailableSemaphores[i] = vk.NullSemaphore
		}
		if vr.context.QueueCompleteSemaphores[i] != vk.NullSemaphore {
			vk.DestroySemaphore(vr.context.Device.LogicalDevice, vr.context.QueueCompleteSemaphores[i], vr.context.Allocator)
			vr.context.QueueCompleteSemaphores[i] = vk.NullSemaphore
		}
		vr.context.InFlightFences[i].FenceDestroy(vr.context)
	}
	vr.context.ImageAvailableSemaphores = nil
	vr.context.QueueCompleteSemaphores = nil
	vr.context.InFlightFences = nil

	for i := range vr.context.GraphicsCommandBuffers {
		if vr.context.GraphicsCommandBuffers[i].Handle != nil {
			vr.context.GraphicsCommandBuffers[i].Free(vr.context, vr.context.Device.GraphicsCommandPool)
		}
	}
	vr.context.GraphicsCommandBuffers = nil

	vr.context.MainRenderpass.RenderpassDestroy(vr.context)

	// Framebuffers, depth attachment and views go down with the swapchain.
	vr.context.Swapchain.SwapchainDestroy(vr.context)

	core.LogDebug("destroying Vulkan device")
	DeviceDestroy(vr.context)

	core.LogDebug("destroying Vulkan surface")
	if vr.context.Surface != vk.NullSurface {
		vk.DestroySurface(vr.context.Instance, vr.context.Surface, vr.context.Allocator)
		vr.context.Surface = vk.NullSurface
	}

	if vr.debug && vr.context.debugMessenger != vk.NullDebugReportCallback {
		core.LogDebug("destroying Vulkan debugger")
		vk.DestroyDebugReportCallback(vr.context.Instance, vr.context.debugMessenger, vr.context.Allocator)
	}

	core.LogDebug("destroying Vulkan instance")
	vk.DestroyInstance(vr.context.Instance, vr.context.Allocator)

	return nil
}

// Resized records the new framebuffer size and bumps the size generation.
// The swapchain is rebuilt lazily at the next BeginFrame, never mid-frame.
func (vr *VulkanRenderer) Resized(width, height uint16) error {
	vr.cachedFramebufferWidth = uint32(width)
	vr.cachedFramebufferHeight = uint32(height)
	vr.context.FramebufferSizeGeneration++

	core.LogInfo("renderer resized: w/h/gen %d/%d/%d", width, height, vr.context.FramebufferSizeGeneration)
	return nil
}

// BeginFrame gates the CPU on the slot's fence, acquires a swapchain
// image and opens the frame's command buffer and render pass. It returns
// core.ErrSwapchainBooting when the frame must be skipped for a swapchain
// rebuild; the caller retries on the next tick.
func (vr *VulkanRenderer) BeginFrame(deltaTime float64) error {
	device := vr.context.Device

	if vr.context.RecreatingSwapchain {
		if res := vk.DeviceWaitIdle(device.LogicalDevice); !VulkanResultIsSuccess(res) {
			return errors.Newf("BeginFrame device wait idle failed with %s", VulkanResultString(res))
		}
		core.LogInfo("recreating swapchain, booting")
		return core.ErrSwapchainBooting
	}

	// A resize happened since the swapchain was last built. Rebuild it
	// before touching this frame.
	if vr.context.FramebufferSizeGeneration != vr.context.FramebufferSizeLastGeneration {
		if res := vk.DeviceWaitIdle(device.LogicalDevice); !VulkanResultIsSuccess(res) {
			return errors.Newf("BeginFrame device wait idle failed with %s", VulkanResultString(res))
		}
		if err := vr.recreateSwapchain(); err != nil {
			return err
		}
		core.LogInfo("resized, booting")
		return core.ErrSwapchainBooting
	}

	// Backpressure: the CPU cannot record into this slot until the GPU
	// has retired the slot's previous frame.
	if !vr.context.InFlightFences[vr.context.CurrentFrame].FenceWait(vr.context, VULKAN_WAIT_INDEFINITELY) {
		return errors.New("in-flight fence wait failure")
	}

	imageIndex, status := vr.context.Swapchain.SwapchainAcquireNextImageIndex(
		vr.context,
		VULKAN_WAIT_INDEFINITELY,
		vr.context.ImageAvailableSemaphores[vr.context.CurrentFrame],
		vk.NullFence)
	switch status {
	case frameStatusRebuild:
		if err := vr.recreateSwapchain(); err != nil {
			return err
		}
		return core.ErrSwapchainBooting
	case frameStatusFatal:
		return errors.New("failed to acquire the next swapchain image")
	}
	vr.context.ImageIndex = imageIndex

	// Only reset the fence once work for this slot is certain to be
	// submitted; resetting before a skipped frame would deadlock the
	// next wait.
	if err := vr.context.InFlightFences[vr.context.CurrentFrame].FenceReset(vr.context); err != nil {
		return err
	}

	commandBuffer := vr.context.GraphicsCommandBuffers[vr.context.CurrentFrame]
	commandBuffer.Reset()
	if err := commandBuffer.Begin(false, false, false); err != nil {
		return err
	}

	viewport := vk.Viewport{
		X:        0.0,
		Y:        0.0,
		Width:    float32(vr.context.FramebufferWidth),
		Height:   float32(vr.context.FramebufferHeight),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{
			Width:  vr.context.FramebufferWidth,
			Height: vr.context.FramebufferHeight,
		},
	}
	vk.CmdSetViewport(commandBuffer.Handle, 0, 1, []vk.Viewport{viewport})
	vk.CmdSetScissor(commandBuffer.Handle, 0, 1, []vk.Rect2D{scissor})

	vr.context.MainRenderpass.SetRenderArea(0, 0, float32(vr.context.FramebufferWidth), float32(vr.context.FramebufferHeight))
	vr.context.MainRenderpass.RenderpassBegin(commandBuffer, vr.context.Swapchain.Framebuffers[vr.context.ImageIndex].Handle)

	vr.drawCursor = 0
	vr.frameStarted = true
	return nil
}

// EndFrame closes the pass, submits the slot's command buffer and
// presents. The frame slot advances unconditionally; a rebuild reported
// by presentation is deferred to the next BeginFrame so it never lands
// mid-submission.
func (vr *VulkanRenderer) EndFrame() error {
	if !vr.frameStarted {
		return core.ErrNoFrameInProgress
	}

	commandBuffer := vr.context.GraphicsCommandBuffers[vr.context.CurrentFrame]

	vr.context.MainRenderpass.RenderpassEnd(commandBuffer)
	if err := commandBuffer.End(); err != nil {
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{commandBuffer.Handle},
		// Color writes hold until the acquired image is actually
		// available; everything earlier in the pipe may overlap.
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{vr.context.ImageAvailableSemaphores[vr.context.CurrentFrame]},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{vr.context.QueueCompleteSemaphores[vr.context.CurrentFrame]},
	}

	var submitResult vk.Result
	vr.context.lockPool.SafeQueueCall(uint32(vr.context.Device.GraphicsQueueIndex), func() error {
		submitResult = vk.QueueSubmit(
			vr.context.Device.GraphicsQueue,
			1,
			[]vk.SubmitInfo{submitInfo},
			vr.context.InFlightFences[vr.context.CurrentFrame].Handle)
		return nil
	})
	if submitResult != vk.Success {
		return errors.Newf("queue submit failed with %s", VulkanResultString(submitResult))
	}
	commandBuffer.UpdateSubmitted()

	status := vr.context.Swapchain.SwapchainPresent(
		vr.context,
		vr.context.Device.PresentQueue,
		vr.context.QueueCompleteSemaphores[vr.context.CurrentFrame],
		vr.context.ImageIndex)

	vr.frameStarted = false
	vr.context.CurrentFrame = nextFrameSlot(vr.context.CurrentFrame, vr.context.Swapchain.MaxFramesInFlight)
	vr.frameNumber++

	switch status {
	case frameStatusRebuild:
		// The presented frame is fine; pick up the rebuild next frame.
		vr.context.FramebufferSizeGeneration++
	case frameStatusFatal:
		return errors.New("failed to present the swapchain image")
	}
	return nil
}

// --- buffers ---

func hostVisibleCoherent() vk.MemoryPropertyFlags {
	return vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit) | vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit)
}

func (vr *VulkanRenderer) CreateVertexBuffer(data []float32) metadata.BufferHandle {
	if len(data) == 0 {
		core.LogWarn("refusing to create an empty vertex buffer")
		return metadata.InvalidBuffer
	}
	size := uint64(len(data)) * 4
	buffer, err := NewVulkanBuffer(vr.context, size, vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit), hostVisibleCoherent())
	if err != nil {
		core.LogError("vertex buffer creation failed: %v", err)
		return metadata.InvalidBuffer
	}
	if err := buffer.LoadData(vr.context, 0, size, floatBytes(data)); err != nil {
		core.LogError("vertex buffer upload failed: %v", err)
		buffer.Destroy(vr.context)
		return metadata.InvalidBuffer
	}
	id, generation := vr.buffers.Add(buffer)
	return metadata.NewBufferHandle(id, generation)
}

func (vr *VulkanRenderer) CreateIndexBuffer(data []uint32) metadata.BufferHandle {
	if len(data) == 0 {
		core.LogWarn("refusing to create an empty index buffer")
		return metadata.InvalidBuffer
	}
	size := uint64(len(data)) * 4
	buffer, err := NewVulkanBuffer(vr.context, size, vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit), hostVisibleCoherent())
	if err != nil {
		core.LogError("index buffer creation failed: %v", err)
		return metadata.InvalidBuffer
	}
	if err := buffer.LoadData(vr.context, 0, size, uint32Bytes(data)); err != nil {
		core.LogError("index buffer upload failed: %v", err)
		buffer.Destroy(vr.context)
		return metadata.InvalidBuffer
	}
	id, generation := vr.buffers.Add(buffer)
	return metadata.NewBufferHandle(id, generation)
}

func (vr *VulkanRenderer) CreateUniformBuffer(size uint64) metadata.BufferHandle {
	buffer, err := NewVulkanBuffer(vr.context, size, vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit), hostVisibleCoherent())
	if err != nil {
		core.LogError("uniform buffer creation failed: %v", err)
		return metadata.InvalidBuffer
	}
	id, generation := vr.buffers.Add(buffer)
	return metadata.NewBufferHandle(id, generation)
}

func (vr *VulkanRenderer) UpdateUniformBuffer(handle metadata.BufferHandle, data []byte) error {
	buffer, ok := vr.buffers.Get(handle.ID, handle.Generation)
	if !ok {
		return errors.Newf("stale or invalid buffer handle %d", handle.ID)
	}
	return (*buffer).LoadData(vr.context, 0, uint64(len(data)), data)
}

// ReadBuffer copies the full host-visible contents back out, mostly for
// round-trip verification.
func (vr *VulkanRenderer) ReadBuffer(handle metadata.BufferHandle) ([]byte, error) {
	buffer, ok := vr.buffers.Get(handle.ID, handle.Generation)
	if !ok {
		return nil, errors.Newf("stale or invalid buffer handle %d", handle.ID)
	}
	return (*buffer).ReadData(vr.context, 0, (*buffer).TotalSize)
}

func (vr *VulkanRenderer) DestroyBuffer(handle metadata.BufferHandle) {
	buffer, ok := vr.buffers.Remove(handle.ID, handle.Generation)
	if !ok {
		core.LogDebug("destroy of stale buffer handle %d ignored", handle.ID)
		return
	}
	buffer.Destroy(vr.context)
}

func (vr *VulkanRenderer) HasBuffer(handle metadata.BufferHandle) bool {
	_, ok := vr.buffers.Get(handle.ID, handle.Generation)
	return ok
}

// --- textures ---

func (vr *VulkanRenderer) CreateTexture(pixels []uint8, width, height, channels uint32) metadata.TextureHandle {
	return vr.createTexture(pixels, width, height, channels, false)
}

// CreateTextureLinear keeps the data in UNORM, for displacement maps and
// anything else that is not color.
func (vr *VulkanRenderer) CreateTextureLinear(pixels []uint8, width, height, channels uint32) metadata.TextureHandle {
	return vr.createTexture(pixels, width, height, channels, true)
}

func (vr *VulkanRenderer) createTexture(pixels []uint8, width, height, channels uint32, linear bool) metadata.TextureHandle {
	texture, err := TextureCreate(vr.context, vr.transfer, vr.descriptorPool,
		vr.uboRing.Handle, metadata.StandardUBOSize, pixels, width, height, channels, linear)
	if err != nil {
		core.LogError("texture creation failed: %v", err)
		return metadata.InvalidTexture
	}
	id, generation := vr.textures.Add(texture)
	texture.Info.Generation = generation
	return metadata.NewTextureHandle(id, generation)
}

func (vr *VulkanRenderer) DestroyTexture(handle metadata.TextureHandle) {
	if handle == vr.defaultTexture {
		core.LogWarn("the default texture cannot be destroyed")
		return
	}
	texture, ok := vr.textures.Remove(handle.ID, handle.Generation)
	if !ok {
		core.LogDebug("destroy of stale texture handle %d ignored", handle.ID)
		return
	}
	// Draws recorded this frame may still sample it.
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)
	texture.Destroy(vr.context, vr.descriptorPool)
	if vr.currentTexture == handle {
		vr.currentTexture = vr.defaultTexture
	}
}

// BindTexture selects the texture sampled by subsequent draws. A stale or
// invalid handle falls back to the default texture; re-binding the current
// texture is a no-op.
func (vr *VulkanRenderer) BindTexture(handle metadata.TextureHandle) {
	if handle == vr.currentTexture {
		return
	}
	if _, ok := vr.textures.Get(handle.ID, handle.Generation); !ok {
		if handle.IsValid() {
			core.LogWarn("bind of stale texture handle %d, using default", handle.ID)
		}
		vr.currentTexture = vr.defaultTexture
		return
	}
	vr.currentTexture = handle
}

func (vr *VulkanRenderer) DefaultTexture() metadata.TextureHandle {
	return vr.defaultTexture
}

func (vr *VulkanRenderer) GetTextureInfo(handle metadata.TextureHandle) (metadata.TextureInfo, bool) {
	texture, ok := vr.textures.Get(handle.ID, handle.Generation)
	if !ok {
		return metadata.TextureInfo{}, false
	}
	return (*texture).Info, true
}

// GetTextureNative exposes the view and sampler for callers composing
// their own descriptor sets. Concrete-backend only.
func (vr *VulkanRenderer) GetTextureNative(handle metadata.TextureHandle) (vk.ImageView, vk.Sampler, bool) {
	texture, ok := vr.textures.Get(handle.ID, handle.Generation)
	if !ok {
		return nil, vk.NullSampler, false
	}
	return (*texture).Image.View, (*texture).Sampler, true
}

// resolveBoundTexture falls back to the default texture when the bound
// handle went stale between BindTexture and the draw. The default is
// created at initialization and cannot be destroyed, so this always
// resolves.
func (vr *VulkanRenderer) resolveBoundTexture() *VulkanTexture {
	if texture, ok := vr.textures.Get(vr.currentTexture.ID, vr.currentTexture.Generation); ok {
		return *texture
	}
	texture, _ := vr.textures.Get(vr.defaultTexture.ID, vr.defaultTexture.Generation)
	return *texture
}

// --- pipelines ---

// CreatePipeline reads both SPIR-V binaries fresh from disk, builds the
// shader modules and compiles the pipeline against the shared descriptor
// set layout. Failure at any step tears down whatever was created and
// returns the invalid handle.
func (vr *VulkanRenderer) CreatePipeline(config *metadata.PipelineConfig) metadata.PipelineHandle {
	if config == nil {
		core.LogWarn("refusing to create a pipeline from a nil config")
		return metadata.InvalidPipeline
	}

	vertWords, err := vr.loadShaderWords(config.VertexShaderPath)
	if err != nil {
		core.LogError("vertex shader load failed: %v", err)
		return metadata.InvalidPipeline
	}
	fragWords, err := vr.loadShaderWords(config.FragmentShaderPath)
	if err != nil {
		core.LogError("fragment shader load failed: %v", err)
		return metadata.InvalidPipeline
	}

	vertStage, err := NewShaderStage(vr.context, vertWords, vk.ShaderStageVertexBit)
	if err != nil {
		core.LogError("vertex shader module creation failed: %v", err)
		return metadata.InvalidPipeline
	}
	// Modules are only needed during pipeline construction.
	defer vertStage.Destroy(vr.context)

	fragStage, err := NewShaderStage(vr.context, fragWords, vk.ShaderStageFragmentBit)
	if err != nil {
		core.LogError("fragment shader module creation failed: %v", err)
		return metadata.InvalidPipeline
	}
	defer fragStage.Destroy(vr.context)

	viewport := vk.Viewport{
		X:        0.0,
		Y:        0.0,
		Width:    float32(vr.context.FramebufferWidth),
		Height:   float32(vr.context.FramebufferHeight),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{Width: vr.context.FramebufferWidth, Height: vr.context.FramebufferHeight},
	}

	pipeline, err := NewGraphicsPipeline(
		vr.context,
		config,
		[]vk.PipelineShaderStageCreateInfo{vertStage.ShaderStageCreateInfo, fragStage.ShaderStageCreateInfo},
		[]vk.DescriptorSetLayout{vr.descriptorPool.Layout},
		vr.context.MainRenderpass,
		viewport,
		scissor)
	if err != nil {
		core.LogError("pipeline creation failed: %v", err)
		return metadata.InvalidPipeline
	}

	id, generation := vr.pipelines.Add(pipeline)
	core.LogInfo("pipeline created from %s / %s", config.VertexShaderPath, config.FragmentShaderPath)
	return metadata.NewPipelineHandle(id, generation)
}

func (vr *VulkanRenderer) loadShaderWords(name string) ([]uint32, error) {
	resource, err := vr.assets.LoadAsset(name, metadata.ResourceTypeShaderBinary, nil)
	if err != nil {
		return nil, err
	}
	words, ok := resource.Data.([]uint32)
	if !ok || len(words) == 0 {
		return nil, errors.Newf("shader %s holds no bytecode", name)
	}
	return words, nil
}

func (vr *VulkanRenderer) DestroyPipeline(handle metadata.PipelineHandle) {
	pipeline, ok := vr.pipelines.Remove(handle.ID, handle.Generation)
	if !ok {
		core.LogDebug("destroy of stale pipeline handle %d ignored", handle.ID)
		return
	}
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)
	if err := pipeline.Destroy(vr.context); err != nil {
		core.LogWarn("pipeline teardown: %v", err)
	}
	if vr.currentPipeline == handle {
		vr.currentPipeline = metadata.InvalidPipeline
	}
}

// BindPipeline makes handle the current pipeline and, when a frame is
// being recorded, records the bind into it. Binds do not persist across
// frames; callers re-bind after every BeginFrame.
func (vr *VulkanRenderer) BindPipeline(handle metadata.PipelineHandle) {
	pipeline, ok := vr.pipelines.Get(handle.ID, handle.Generation)
	if !ok {
		core.LogWarn("bind of stale pipeline handle %d ignored", handle.ID)
		return
	}
	vr.currentPipeline = handle
	if !vr.frameStarted {
		return
	}
	commandBuffer := vr.context.GraphicsCommandBuffers[vr.context.CurrentFrame]
	if err := (*pipeline).Bind(vr.context, commandBuffer, vk.PipelineBindPointGraphics); err != nil {
		core.LogError("pipeline bind failed: %v", err)
	}
}

// --- drawing ---

// DrawMeshBuffers records one indexed draw: the transform and color go
// into the frame's next uniform-ring slot, and the bound texture's
// descriptor set is attached with the slot's dynamic offset. Draws beyond
// the per-frame budget are dropped with a warning.
func (vr *VulkanRenderer) DrawMeshBuffers(vertex, index metadata.BufferHandle, indexCount uint32, model math.Mat4, color math.Vec4) {
	if !vr.frameStarted {
		return
	}
	pipeline, ok := vr.pipelines.Get(vr.currentPipeline.ID, vr.currentPipeline.Generation)
	if !ok {
		return
	}
	vertexBuffer, okVertex := vr.buffers.Get(vertex.ID, vertex.Generation)
	indexBuffer, okIndex := vr.buffers.Get(index.ID, index.Generation)
	if !okVertex || !okIndex {
		return
	}
	if vr.drawCursor >= vr.maxDrawsPerFrame {
		vr.drawsDropped++
		core.LogWarn("draw budget of %d exhausted, dropping draw", vr.maxDrawsPerFrame)
		return
	}

	ubo := metadata.StandardUBO{
		Model:      model,
		View:       vr.viewMatrix,
		Projection: vr.projectionMatrix,
		Color:      color,
	}
	slot := uint64(vr.context.CurrentFrame)*uint64(vr.maxDrawsPerFrame) + uint64(vr.drawCursor)
	offset := slot * vr.uboStride
	vk.Memcopy(unsafe.Add(vr.uboRing.Mapped, int(offset)), ubo.Bytes())

	texture := vr.resolveBoundTexture()
	commandBuffer := vr.context.GraphicsCommandBuffers[vr.context.CurrentFrame]

	vk.CmdBindDescriptorSets(
		commandBuffer.Handle,
		vk.PipelineBindPointGraphics,
		(*pipeline).PipelineLayout,
		0, 1,
		[]vk.DescriptorSet{texture.DescriptorSet},
		1, []uint32{uint32(offset)})

	vk.CmdBindVertexBuffers(commandBuffer.Handle, 0, 1, []vk.Buffer{(*vertexBuffer).Handle}, []vk.DeviceSize{0})
	vk.CmdBindIndexBuffer(commandBuffer.Handle, (*indexBuffer).Handle, 0, vk.IndexTypeUint32)
	vk.CmdDrawIndexed(commandBuffer.Handle, indexCount, 1, 0, 0, 0)

	vr.drawCursor++
}

// DrawVertices records a raw non-indexed draw. No uniforms are written;
// the pipeline's last bound state applies.
func (vr *VulkanRenderer) DrawVertices(buffer metadata.BufferHandle, vertexCount uint32) {
	if !vr.frameStarted {
		return
	}
	vertexBuffer, ok := vr.buffers.Get(buffer.ID, buffer.Generation)
	if !ok {
		return
	}
	commandBuffer := vr.context.GraphicsCommandBuffers[vr.context.CurrentFrame]
	vk.CmdBindVertexBuffers(commandBuffer.Handle, 0, 1, []vk.Buffer{(*vertexBuffer).Handle}, []vk.DeviceSize{0})
	vk.CmdDraw(commandBuffer.Handle, vertexCount, 1, 0, 0)
}

func (vr *VulkanRenderer) DrawIndexed(vertex, index metadata.BufferHandle, indexCount uint32) {
	if !vr.frameStarted {
		return
	}
	vertexBuffer, okVertex := vr.buffers.Get(vertex.ID, vertex.Generation)
	indexBuffer, okIndex := vr.buffers.Get(index.ID, index.Generation)
	if !okVertex || !okIndex {
		return
	}
	commandBuffer := vr.context.GraphicsCommandBuffers[vr.context.CurrentFrame]
	vk.CmdBindVertexBuffers(commandBuffer.Handle, 0, 1, []vk.Buffer{(*vertexBuffer).Handle}, []vk.DeviceSize{0})
	vk.CmdBindIndexBuffer(commandBuffer.Handle, (*indexBuffer).Handle, 0, vk.IndexTypeUint32)
	vk.CmdDrawIndexed(commandBuffer.Handle, indexCount, 1, 0, 0, 0)
}

// --- camera and clear ---

func (vr *VulkanRenderer) SetViewMatrix(view math.Mat4) {
	vr.viewMatrix = view
}

func (vr *VulkanRenderer) SetProjectionMatrix(projection math.Mat4) {
	vr.projectionMatrix = projection
}

func (vr *VulkanRenderer) SetClearColor(r, g, b, a float32) {
	vr.context.MainRenderpass.SetClearColor(r, g, b, a)
}

// --- accessors ---

func (vr *VulkanRenderer) Width() uint32 {
	return vr.context.FramebufferWidth
}

func (vr *VulkanRenderer) Height() uint32 {
	return vr.context.FramebufferHeight
}

func (vr *VulkanRenderer) AspectRatio() float32 {
	if vr.context.FramebufferHeight == 0 {
		return 1.0
	}
	return float32(vr.context.FramebufferWidth) / float32(vr.context.FramebufferHeight)
}

func (vr *VulkanRenderer) FrameNumber() uint64 {
	return vr.frameNumber
}

// MaxTextureDimension reports the device's 2D image size limit, used to
// clamp decoded images before upload. Falls back to a conservative 4096
// when queried before device selection.
func (vr *VulkanRenderer) MaxTextureDimension() uint32 {
	limit := vr.context.Device.Properties.Limits.MaxImageDimension2D
	if limit == 0 {
		return 4096
	}
	return limit
}

func (vr *VulkanRenderer) Stats() metadata.BackendStats {
	return metadata.BackendStats{
		FrameNumber:    vr.frameNumber,
		DrawsDropped:   vr.drawsDropped,
		BuffersLive:    vr.buffers.Live(),
		BuffersTotal:   vr.buffers.Len(),
		TexturesLive:   vr.textures.Live(),
		TexturesTotal:  vr.textures.Len(),
		PipelinesLive:  vr.pipelines.Live(),
		PipelinesTotal: vr.pipelines.Len(),
	}
}

// RenderPass exposes the main pass for callers building compatible
// pipelines outside the pool. Concrete-backend only.
func (vr *VulkanRenderer) RenderPass() *VulkanRenderpass {
	return vr.context.MainRenderpass
}

func (vr *VulkanRenderer) DescriptorSetLayout() vk.DescriptorSetLayout {
	return vr.descriptorPool.Layout
}

// CurrentCommandBuffer is the buffer being recorded, or nil outside a
// frame. Concrete-backend only.
func (vr *VulkanRenderer) CurrentCommandBuffer() *VulkanCommandBuffer {
	if !vr.frameStarted {
		return nil
	}
	return vr.context.GraphicsCommandBuffers[vr.context.CurrentFrame]
}

// --- swapchain recreation ---

func (vr *VulkanRenderer) createCommandBuffers() error {
	framesInFlight := int(vr.context.Swapchain.MaxFramesInFlight)
	vr.context.GraphicsCommandBuffers = make([]*VulkanCommandBuffer, framesInFlight)
	for i := 0; i < framesInFlight; i++ {
		commandBuffer, err := NewVulkanCommandBuffer(vr.context, vr.context.Device.GraphicsCommandPool, true)
		if err != nil {
			return err
		}
		vr.context.GraphicsCommandBuffers[i] = commandBuffer
	}
	core.LogDebug("graphics command buffers created")
	return nil
}

func (vr *VulkanRenderer) regenerateFramebuffers() error {
	swapchain := vr.context.Swapchain
	for i := 0; i < int(swapchain.ImageCount); i++ {
		attachments := []vk.ImageView{
			swapchain.Views[i],
			swapchain.DepthAttachment.View,
		}
		framebuffer, err := FramebufferCreate(vr.context, vr.context.MainRenderpass, swapchain.Extent.Width, swapchain.Extent.Height, attachments)
		if err != nil {
			return errors.Wrapf(err, "failed to create framebuffer %d", i)
		}
		swapchain.Framebuffers[i] = framebuffer
	}
	return nil
}

// recreateSwapchain walks the lifecycle Ready -> OutOfDate -> Recreating
// -> Ready, rebuilding only what depends on the surface size. While the
// framebuffer reports a zero dimension the window is minimized and the
// call blocks on the platform event pump until it isn't.
func (vr *VulkanRenderer) recreateSwapchain() error {
	if vr.context.RecreatingSwapchain {
		core.LogDebug("recreate called while already recreating, booting")
		return nil
	}

	swapchain := vr.context.Swapchain
	if swapchain.State == SwapchainStateReady {
		if err := swapchain.TransitionTo(SwapchainStateOutOfDate); err != nil {
			return err
		}
	}

	width, height := vr.cachedFramebufferWidth, vr.cachedFramebufferHeight
	if width == 0 || height == 0 {
		width, height = vr.platform.FramebufferSize()
	}
	for width == 0 || height == 0 {
		vr.platform.WaitMessages()
		width, height = vr.platform.FramebufferSize()
	}

	vr.context.RecreatingSwapchain = true
	if err := swapchain.TransitionTo(SwapchainStateRecreating); err != nil {
		vr.context.RecreatingSwapchain = false
		return err
	}

	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)

	if err := swapchain.SwapchainRecreate(vr.context, width, height); err != nil {
		vr.context.RecreatingSwapchain = false
		return errors.Wrapf(err, "failed to recreate swapchain")
	}

	vr.context.FramebufferWidth = swapchain.Extent.Width
	vr.context.FramebufferHeight = swapchain.Extent.Height
	vr.context.MainRenderpass.SetRenderArea(0, 0, float32(vr.context.FramebufferWidth), float32(vr.context.FramebufferHeight))
	vr.cachedFramebufferWidth = 0
	vr.cachedFramebufferHeight = 0

	// The resize that triggered this rebuild is now consumed.
	vr.context.FramebufferSizeLastGeneration = vr.context.FramebufferSizeGeneration

	swapchain.Framebuffers = make([]*VulkanFramebuffer, swapchain.ImageCount)
	if err := vr.regenerateFramebuffers(); err != nil {
		vr.context.RecreatingSwapchain = false
		return err
	}

	if err := swapchain.TransitionTo(SwapchainStateReady); err != nil {
		vr.context.RecreatingSwapchain = false
		return err
	}
	vr.context.RecreatingSwapchain = false

	core.LogInfo("swapchain recreated at %dx%d", vr.context.FramebufferWidth, vr.context.FramebufferHeight)
	return nil
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("performance: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogInfo("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
