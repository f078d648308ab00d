package vulkan

import gomath "math"

/**
 * @brief Max number of simultaneously allocated textures, which also
 * bounds the descriptor pool.
 * @todo TODO: make configurable
 */
const VULKAN_MAX_TEXTURE_COUNT uint32 = 1024

/** @brief How many frames the CPU may record ahead of the GPU. */
const VULKAN_MAX_FRAMES_IN_FLIGHT uint8 = 2

/**
 * @brief Nanosecond budget for a synchronous transfer submission.
 * Uploads are small; a transfer that takes longer than this has lost
 * the device.
 */
const VULKAN_TRANSFER_TIMEOUT_NS uint64 = 10_000_000_000

/** @brief Indefinite wait for frame fences and image acquisition. */
const VULKAN_WAIT_INDEFINITELY uint64 = gomath.MaxUint64
