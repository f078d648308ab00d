package core

import (
	"errors"
)

var (
	// Returned by frame operations while the swapchain is being rebuilt after
	// a resize or an out-of-date surface. The caller skips the tick and retries.
	ErrSwapchainBooting = errors.New("swapchain resized or recreated, booting")

	// Returned by operations invoked before Initialize or after Shutdown.
	ErrNotInitialized = errors.New("renderer not initialized")

	// Returned by EndFrame when no frame is being recorded.
	ErrNoFrameInProgress = errors.New("no frame in progress")
)
