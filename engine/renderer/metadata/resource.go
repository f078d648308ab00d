package metadata

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	/** @brief No resource type, used for unrecognized files. */
	ResourceTypeNone ResourceType = iota
	/** @brief Image resource type. */
	ResourceTypeImage
	/** @brief Compiled SPIR-V shader bytecode. */
	ResourceTypeShaderBinary
)

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The name of the resource. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief The size of the resource data in bytes. */
	DataSize uint64
	/** @brief The resource data. */
	Data interface{}
}
