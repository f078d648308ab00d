package metadata

type PrimitiveTopology int

const (
	PrimitiveTopologyTriangleList PrimitiveTopology = iota
	PrimitiveTopologyTriangleStrip
	PrimitiveTopologyLineList
	PrimitiveTopologyPointList
)

type PolygonMode int

const (
	PolygonModeFill PolygonMode = iota
	PolygonModeLine
)

type CullMode int

const (
	CullModeNone CullMode = iota
	CullModeFront
	CullModeBack
)

// PipelineConfig is the fixed-function + shader description compiled into a
// bindable pipeline. Shader paths point at SPIR-V bytecode read fresh on
// every creation.
type PipelineConfig struct {
	VertexShaderPath   string
	FragmentShaderPath string
	VertexFormat       VertexFormat
	Topology           PrimitiveTopology
	PolygonMode        PolygonMode
	CullMode           CullMode
	DepthTest          bool
	DepthWrite         bool
	AlphaBlend         bool
}

// NewPipelineConfig returns a config with the conventional defaults:
// triangle list, filled, backface culled, depth test and write on, no blend.
func NewPipelineConfig(vertexShaderPath, fragmentShaderPath string, format VertexFormat) *PipelineConfig {
	return &PipelineConfig{
		VertexShaderPath:   vertexShaderPath,
		FragmentShaderPath: fragmentShaderPath,
		VertexFormat:       format,
		Topology:           PrimitiveTopologyTriangleList,
		PolygonMode:        PolygonModeFill,
		CullMode:           CullModeBack,
		DepthTest:          true,
		DepthWrite:         true,
		AlphaBlend:         false,
	}
}
