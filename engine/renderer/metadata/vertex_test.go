package metadata

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var vertexFormatTestCases = map[string]struct {
	Format          VertexFormat
	FloatsPerVertex uint32
	Stride          uint32
	AttributeCount  int
	LastOffset      uint32
}{
	"TestPositionColor": {
		Format:          VertexFormatPositionColor,
		FloatsPerVertex: 6,
		Stride:          24,
		AttributeCount:  2,
		LastOffset:      12,
	},
	"TestPositionNormalUV": {
		Format:          VertexFormatPositionNormalUV,
		FloatsPerVertex: 8,
		Stride:          32,
		AttributeCount:  3,
		LastOffset:      24,
	},
	"TestPositionNormalUVColor": {
		Format:          VertexFormatPositionNormalUVColor,
		FloatsPerVertex: 11,
		Stride:          44,
		AttributeCount:  4,
		LastOffset:      32,
	},
	"TestPositionNormalUV0UV1": {
		Format:          VertexFormatPositionNormalUV0UV1,
		FloatsPerVertex: 10,
		Stride:          40,
		AttributeCount:  4,
		LastOffset:      32,
	},
}

func TestVertexFormatLayout(t *testing.T) {
	for testName, testCase := range vertexFormatTestCases {
		t.Run(testName, func(t *testing.T) {
			require.Equal(t, testCase.FloatsPerVertex, testCase.Format.FloatsPerVertex())
			require.Equal(t, testCase.Stride, testCase.Format.Stride())

			attributes := testCase.Format.Attributes()
			require.Len(t, attributes, testCase.AttributeCount)
			require.Equal(t, testCase.LastOffset, attributes[len(attributes)-1].Offset)

			// Locations are dense from zero and offsets strictly increase
			// within the stride.
			var prevOffset uint32
			var totalComponents uint32
			for i, attribute := range attributes {
				require.Equal(t, uint32(i), attribute.Location)
				if i > 0 {
					require.Greater(t, attribute.Offset, prevOffset)
				}
				prevOffset = attribute.Offset
				totalComponents += attribute.Components
			}
			require.Equal(t, testCase.FloatsPerVertex, totalComponents)
		})
	}
}

func TestHandleValidity(t *testing.T) {
	require.False(t, InvalidPipeline.IsValid())
	require.False(t, InvalidBuffer.IsValid())
	require.False(t, InvalidTexture.IsValid())
	require.False(t, InvalidMesh.IsValid())

	h := NewMeshHandle(0, 0)
	require.True(t, h.IsValid())
}

func TestPipelineConfigDefaults(t *testing.T) {
	config := NewPipelineConfig("builtin.vert.spv", "builtin.frag.spv", VertexFormatPositionColor)
	require.Equal(t, PrimitiveTopologyTriangleList, config.Topology)
	require.Equal(t, PolygonModeFill, config.PolygonMode)
	require.Equal(t, CullModeBack, config.CullMode)
	require.True(t, config.DepthTest)
	require.True(t, config.DepthWrite)
	require.False(t, config.AlphaBlend)
}
