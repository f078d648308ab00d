package metadata

// RendererBackendConfig carries everything the backend needs at
// initialization. Values come from the application's TOML config with the
// defaults filled in.
type RendererBackendConfig struct {
	/** @brief The name of the application */
	ApplicationName string
	/** @brief Initial framebuffer size. */
	Width  uint32
	Height uint32
	/** @brief FIFO presentation when set, mailbox preferred otherwise. */
	Vsync bool
	/** @brief Loads the Khronos validation layer. */
	EnableValidation bool
	/** @brief Render pass clear color (RGBA). */
	ClearColor [4]float32
	/** @brief Capacity of the per-frame uniform ring; draws beyond it are dropped. */
	MaxDrawsPerFrame uint32
}

// Defaults mirroring the conventional boot config.
const (
	DefaultWidth            uint32 = 1280
	DefaultHeight           uint32 = 720
	DefaultMaxDrawsPerFrame uint32 = 1024
)

// DefaultClearColor is the dark blue-grey boot clear.
var DefaultClearColor = [4]float32{0.1, 0.1, 0.12, 1.0}

// BackendStats is a point-in-time snapshot of the backend's pools and
// frame counters. Total counts every slot ever allocated, live only the
// occupied ones; append-only pools never shrink the gap.
type BackendStats struct {
	FrameNumber  uint64
	DrawsDropped uint64

	BuffersLive    int
	BuffersTotal   int
	TexturesLive   int
	TexturesTotal  int
	PipelinesLive  int
	PipelinesTotal int
}
