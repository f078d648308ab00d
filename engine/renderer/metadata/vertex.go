package metadata

// VertexFormat names a fixed interleaved vertex layout. The set is closed:
// each format maps to one binding stride and one attribute table, compiled
// into the pipeline at creation.
type VertexFormat int

const (
	/** @brief position (3) + color (3) */
	VertexFormatPositionColor VertexFormat = iota
	/** @brief position (3) + normal (3) + uv (2) */
	VertexFormatPositionNormalUV
	/** @brief position (3) + normal (3) + uv (2) + color (3) */
	VertexFormatPositionNormalUVColor
	/** @brief position (3) + normal (3) + uv0 (2) + uv1 (2) */
	VertexFormatPositionNormalUV0UV1
)

// VertexAttribute describes one shader input location within a format.
// Components is the float count; the backend maps it to the matching
// native attribute format.
type VertexAttribute struct {
	Location   uint32
	Offset     uint32
	Components uint32
}

const floatSize uint32 = 4

// FloatsPerVertex returns the interleaved float count of one vertex.
func (vf VertexFormat) FloatsPerVertex() uint32 {
	switch vf {
	case VertexFormatPositionColor:
		return 6
	case VertexFormatPositionNormalUV:
		return 8
	case VertexFormatPositionNormalUVColor:
		return 11
	case VertexFormatPositionNormalUV0UV1:
		return 10
	}
	return 0
}

// Stride returns the byte stride of one vertex.
func (vf VertexFormat) Stride() uint32 {
	return vf.FloatsPerVertex() * floatSize
}

// Attributes returns the per-location layout table for the format.
func (vf VertexFormat) Attributes() []VertexAttribute {
	switch vf {
	case VertexFormatPositionColor:
		return []VertexAttribute{
			{Location: 0, Offset: 0, Components: 3},
			{Location: 1, Offset: 3 * floatSize, Components: 3},
		}
	case VertexFormatPositionNormalUV:
		return []VertexAttribute{
			{Location: 0, Offset: 0, Components: 3},
			{Location: 1, Offset: 3 * floatSize, Components: 3},
			{Location: 2, Offset: 6 * floatSize, Components: 2},
		}
	case VertexFormatPositionNormalUVColor:
		return []VertexAttribute{
			{Location: 0, Offset: 0, Components: 3},
			{Location: 1, Offset: 3 * floatSize, Components: 3},
			{Location: 2, Offset: 6 * floatSize, Components: 2},
			{Location: 3, Offset: 8 * floatSize, Components: 3},
		}
	case VertexFormatPositionNormalUV0UV1:
		return []VertexAttribute{
			{Location: 0, Offset: 0, Components: 3},
			{Location: 1, Offset: 3 * floatSize, Components: 3},
			{Location: 2, Offset: 6 * floatSize, Components: 2},
			{Location: 3, Offset: 8 * floatSize, Components: 2},
		}
	}
	return nil
}

func (vf VertexFormat) String() string {
	switch vf {
	case VertexFormatPositionColor:
		return "position_color"
	case VertexFormatPositionNormalUV:
		return "position_normal_uv"
	case VertexFormatPositionNormalUVColor:
		return "position_normal_uv_color"
	case VertexFormatPositionNormalUV0UV1:
		return "position_normal_uv0_uv1"
	}
	return "unknown"
}
