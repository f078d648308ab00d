package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

// vkResultNames carries the canonical names of every result code the
// renderer inspects, for logs and error messages.
var vkResultNames = map[vk.Result]string{
	vk.Success:                    "VK_SUCCESS",
	vk.NotReady:                   "VK_NOT_READY",
	vk.Timeout:                    "VK_TIMEOUT",
	vk.EventSet:                   "VK_EVENT_SET",
	vk.EventReset:                 "VK_EVENT_RESET",
	vk.Incomplete:                 "VK_INCOMPLETE",
	vk.Suboptimal:                 "VK_SUBOPTIMAL_KHR",
	vk.ErrorOutOfHostMemory:       "VK_ERROR_OUT_OF_HOST_MEMORY",
	vk.ErrorOutOfDeviceMemory:     "VK_ERROR_OUT_OF_DEVICE_MEMORY",
	vk.ErrorInitializationFailed:  "VK_ERROR_INITIALIZATION_FAILED",
	vk.ErrorDeviceLost:            "VK_ERROR_DEVICE_LOST",
	vk.ErrorMemoryMapFailed:       "VK_ERROR_MEMORY_MAP_FAILED",
	vk.ErrorLayerNotPresent:       "VK_ERROR_LAYER_NOT_PRESENT",
	vk.ErrorExtensionNotPresent:   "VK_ERROR_EXTENSION_NOT_PRESENT",
	vk.ErrorFeatureNotPresent:     "VK_ERROR_FEATURE_NOT_PRESENT",
	vk.ErrorIncompatibleDriver:    "VK_ERROR_INCOMPATIBLE_DRIVER",
	vk.ErrorTooManyObjects:        "VK_ERROR_TOO_MANY_OBJECTS",
	vk.ErrorFormatNotSupported:    "VK_ERROR_FORMAT_NOT_SUPPORTED",
	vk.ErrorFragmentedPool:        "VK_ERROR_FRAGMENTED_POOL",
	vk.ErrorSurfaceLost:           "VK_ERROR_SURFACE_LOST_KHR",
	vk.ErrorNativeWindowInUse:     "VK_ERROR_NATIVE_WINDOW_IN_USE_KHR",
	vk.ErrorOutOfDate:             "VK_ERROR_OUT_OF_DATE_KHR",
	vk.ErrorIncompatibleDisplay:   "VK_ERROR_INCOMPATIBLE_DISPLAY_KHR",
	vk.ErrorOutOfPoolMemory:       "VK_ERROR_OUT_OF_POOL_MEMORY",
	vk.ErrorInvalidExternalHandle: "VK_ERROR_INVALID_EXTERNAL_HANDLE",
	vk.ErrorFragmentation:         "VK_ERROR_FRAGMENTATION",
	vk.ErrorUnknown:               "VK_ERROR_UNKNOWN",
}

func VulkanResultString(result vk.Result) string {
	if name, ok := vkResultNames[result]; ok {
		return name
	}
	return fmt.Sprintf("VK_RESULT(%d)", int32(result))
}

// VulkanResultIsSuccess reports whether result is a non-error code.
func VulkanResultIsSuccess(result vk.Result) bool {
	return result >= vk.Success
}

// frameStatus classifies an acquire or present result for the frame loop.
type frameStatus int

const (
	// The image is usable; keep going.
	frameStatusOK frameStatus = iota
	// The surface changed under the swapchain; rebuild it and skip
	// (acquire) or defer the rebuild to the next frame (present).
	frameStatusRebuild
	// Anything else. The frame loop surfaces these as errors.
	frameStatusFatal
)

func swapchainResultStatus(result vk.Result) frameStatus {
	switch result {
	case vk.Success:
		return frameStatusOK
	case vk.Suboptimal, vk.ErrorOutOfDate:
		return frameStatusRebuild
	default:
		return frameStatusFatal
	}
}

// nextFrameSlot advances the in-flight frame index. The slot always
// moves forward, even when the frame ended with a rebuild request, so
// fences and semaphores stay paired with their slot.
func nextFrameSlot(current uint32, framesInFlight uint8) uint32 {
	if framesInFlight == 0 {
		return 0
	}
	return (current + 1) % uint32(framesInFlight)
}

var end = "\x00"
var endChar byte = '\x00'

// VulkanSafeString null-terminates s the way the C ABI expects.
func VulkanSafeString(s string) string {
	if len(s) == 0 {
		return end
	}
	if s[len(s)-1] != endChar {
		return s + end
	}
	return s
}

func VulkanSafeStrings(list []string) []string {
	for i := range list {
		list[i] = VulkanSafeString(list[i])
	}
	return list
}

func FindFirstZeroInByteArray(arr []byte) int {
	end := 0
	for i, b := range arr {
		if b == 0 {
			end = i
			break
		}
	}
	return end
}
