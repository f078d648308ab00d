package renderer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/nucleo/engine/math"
)

func TestStatsJSONShape(t *testing.T) {
	r, _ := newTestRenderer(t)

	mesh := r.CreateMesh(NewCubeData(1.0, math.NewVec3One()))
	require.True(t, mesh.IsValid())
	require.True(t, r.CreateTexture([]uint8{1, 2, 3, 4}, 1, 1, 4).IsValid())

	payload, err := r.StatsJSON()
	require.NoError(t, err)

	var stats struct {
		Frame        int     `json:"frame"`
		FPS          float64 `json:"fps"`
		FrameMSAvg   float64 `json:"frame_ms_avg"`
		DrawsDropped int     `json:"draws_dropped"`
		Pools        struct {
			Buffers struct {
				Live  int `json:"live"`
				Total int `json:"total"`
			} `json:"buffers"`
			Textures struct {
				Live  int `json:"live"`
				Total int `json:"total"`
				Named int `json:"named"`
			} `json:"textures"`
			Pipelines struct {
				Live  int `json:"live"`
				Total int `json:"total"`
			} `json:"pipelines"`
			Meshes struct {
				Live  int `json:"live"`
				Total int `json:"total"`
			} `json:"meshes"`
		} `json:"pools"`
	}
	require.NoError(t, json.Unmarshal(payload, &stats))

	// One cube: vertex + index buffer.
	require.Equal(t, 2, stats.Pools.Buffers.Live)
	require.Equal(t, 2, stats.Pools.Buffers.Total)
	// Default texture plus the raw upload, which is also the one
	// registry-named entry.
	require.Equal(t, 2, stats.Pools.Textures.Live)
	require.Equal(t, 1, stats.Pools.Textures.Named)
	require.Equal(t, 1, stats.Pools.Meshes.Live)
	require.Equal(t, 1, stats.Pools.Meshes.Total)
}

func TestStatsJSONTracksDestroys(t *testing.T) {
	r, _ := newTestRenderer(t)

	mesh := r.CreateMesh(NewCubeData(2.0, math.NewVec3One()))
	r.DestroyMesh(mesh)

	payload, err := r.StatsJSON()
	require.NoError(t, err)

	var stats struct {
		Pools struct {
			Meshes struct {
				Live  int `json:"live"`
				Total int `json:"total"`
			} `json:"meshes"`
		} `json:"pools"`
	}
	require.NoError(t, json.Unmarshal(payload, &stats))

	// The slot stays allocated, the occupancy drops.
	require.Equal(t, 0, stats.Pools.Meshes.Live)
	require.Equal(t, 1, stats.Pools.Meshes.Total)
}
