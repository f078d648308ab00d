package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/require"
)

func TestSwapchainResultStatus(t *testing.T) {
	for testName, testCase := range map[string]struct {
		Result   vk.Result
		Expected frameStatus
	}{
		"TestSuccess":         {Result: vk.Success, Expected: frameStatusOK},
		"TestSuboptimal":      {Result: vk.Suboptimal, Expected: frameStatusRebuild},
		"TestOutOfDate":       {Result: vk.ErrorOutOfDate, Expected: frameStatusRebuild},
		"TestDeviceLost":      {Result: vk.ErrorDeviceLost, Expected: frameStatusFatal},
		"TestSurfaceLost":     {Result: vk.ErrorSurfaceLost, Expected: frameStatusFatal},
		"TestOutOfHostMemory": {Result: vk.ErrorOutOfHostMemory, Expected: frameStatusFatal},
	} {
		t.Run(testName, func(t *testing.T) {
			require.Equal(t, testCase.Expected, swapchainResultStatus(testCase.Result))
		})
	}
}

func TestNextFrameSlotWraps(t *testing.T) {
	require.Equal(t, uint32(1), nextFrameSlot(0, 2))
	require.Equal(t, uint32(0), nextFrameSlot(1, 2))
	require.Equal(t, uint32(0), nextFrameSlot(2, 3))

	// A full cycle through the configured slot count returns home.
	current := uint32(0)
	for i := 0; i < int(VULKAN_MAX_FRAMES_IN_FLIGHT); i++ {
		current = nextFrameSlot(current, VULKAN_MAX_FRAMES_IN_FLIGHT)
	}
	require.Equal(t, uint32(0), current)

	require.Equal(t, uint32(0), nextFrameSlot(5, 0))
}

func TestVulkanResultString(t *testing.T) {
	require.Equal(t, "VK_SUCCESS", VulkanResultString(vk.Success))
	require.Equal(t, "VK_ERROR_OUT_OF_DATE_KHR", VulkanResultString(vk.ErrorOutOfDate))
	require.Equal(t, "VK_RESULT(-424242)", VulkanResultString(vk.Result(-424242)))
}

func TestVulkanResultIsSuccess(t *testing.T) {
	require.True(t, VulkanResultIsSuccess(vk.Success))
	// Non-error status codes such as VK_TIMEOUT are positive.
	require.True(t, VulkanResultIsSuccess(vk.Timeout))
	require.False(t, VulkanResultIsSuccess(vk.ErrorDeviceLost))
	require.False(t, VulkanResultIsSuccess(vk.ErrorOutOfDate))
}

func TestVulkanSafeString(t *testing.T) {
	require.Equal(t, "\x00", VulkanSafeString(""))
	require.Equal(t, "VK_LAYER_KHRONOS_validation\x00", VulkanSafeString("VK_LAYER_KHRONOS_validation"))

	terminated := VulkanSafeString("already\x00")
	require.Equal(t, "already\x00", terminated)
	// Re-terminating must not stack terminators.
	require.Equal(t, terminated, VulkanSafeString(terminated))

	list := VulkanSafeStrings([]string{"a", "b\x00"})
	require.Equal(t, []string{"a\x00", "b\x00"}, list)
}

func TestFindFirstZeroInByteArray(t *testing.T) {
	require.Equal(t, 4, FindFirstZeroInByteArray([]byte{'g', 'p', 'u', '0', 0, 'x'}))
	require.Equal(t, 0, FindFirstZeroInByteArray([]byte{0, 'a'}))
	require.Equal(t, 0, FindFirstZeroInByteArray([]byte{'a', 'b'}))
}
