package renderer

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"

	"github.com/spaghettifunk/nucleo/engine/core"
	"github.com/spaghettifunk/nucleo/engine/renderer/metadata"
)

func (r *Renderer) Stats() metadata.BackendStats {
	return r.backend.Stats()
}

// StatsJSON serializes a snapshot of frame counters and pool occupancy for
// diagnostic dumps. Live counts occupied slots, total every slot ever
// allocated; the gap is destroyed resources whose slots stayed retired.
func (r *Renderer) StatsJSON() ([]byte, error) {
	stats := r.backend.Stats()
	fps, frameTime := core.MetricsFrame()

	w := jwriter.NewWriter()
	obj := w.Object()
	obj.Name("frame").Int(int(stats.FrameNumber))
	obj.Name("fps").Float64(fps)
	obj.Name("frame_ms_avg").Float64(frameTime)
	obj.Name("draws_dropped").Int(int(stats.DrawsDropped))

	pools := obj.Name("pools").Object()

	buffers := pools.Name("buffers").Object()
	buffers.Name("live").Int(stats.BuffersLive)
	buffers.Name("total").Int(stats.BuffersTotal)
	buffers.End()

	textures := pools.Name("textures").Object()
	textures.Name("live").Int(stats.TexturesLive)
	textures.Name("total").Int(stats.TexturesTotal)
	textures.Name("named").Int(r.registry.Count())
	textures.End()

	pipelines := pools.Name("pipelines").Object()
	pipelines.Name("live").Int(stats.PipelinesLive)
	pipelines.Name("total").Int(stats.PipelinesTotal)
	pipelines.End()

	meshes := pools.Name("meshes").Object()
	meshes.Name("live").Int(r.meshes.Live())
	meshes.Name("total").Int(r.meshes.Len())
	meshes.End()

	pools.End()
	obj.End()

	if err := w.Error(); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}
