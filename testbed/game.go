package testbed

import (
	"github.com/cockroachdb/errors"

	"github.com/spaghettifunk/nucleo/engine"
	"github.com/spaghettifunk/nucleo/engine/core"
	"github.com/spaghettifunk/nucleo/engine/math"
	"github.com/spaghettifunk/nucleo/engine/renderer/metadata"
)

// TestGame spins the canonical colored cube: the end-to-end exercise of
// the frame loop, resize handling and escape-to-quit. W/S dolly the
// camera in and out.
type TestGame struct {
	*engine.Game
}

type gameState struct {
	pipeline metadata.PipelineHandle
	cube     metadata.MeshHandle

	angle          float32
	cameraDistance float32
	statsTimer     float64
}

func New() *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			State: &gameState{},
		},
	}
	tg.Game.FnInitialize = tg.initialize
	tg.Game.FnUpdate = tg.update
	tg.Game.FnRender = tg.render
	tg.Game.FnOnResize = tg.onResize
	tg.Game.FnShutdown = tg.shutdown
	return tg
}

func (tg *TestGame) state() *gameState {
	return tg.Game.State.(*gameState)
}

func (tg *TestGame) initialize() error {
	r := tg.Game.Renderer
	state := tg.state()

	state.pipeline = r.CreatePipeline(metadata.NewPipelineConfig(
		"position_color.vert", "position_color.frag", metadata.VertexFormatPositionColor))
	if !state.pipeline.IsValid() {
		return errors.New("position_color pipeline creation failed")
	}

	state.cube = r.CreateCube(1.0, math.NewVec3One())
	if !state.cube.IsValid() {
		return errors.New("cube mesh creation failed")
	}

	state.cameraDistance = 5.0
	r.SetCamera(math.NewVec3(0, 2, state.cameraDistance), math.NewVec3Zero(), math.NewVec3Up())
	return nil
}

func (tg *TestGame) update(deltaTime float64) error {
	state := tg.state()
	state.angle += float32(deltaTime)

	moved := false
	if core.InputIsKeyDown(core.KEY_W) {
		state.cameraDistance = math.Clamp(state.cameraDistance-float32(deltaTime)*3.0, 1.5, 25.0)
		moved = true
	}
	if core.InputIsKeyDown(core.KEY_S) {
		state.cameraDistance = math.Clamp(state.cameraDistance+float32(deltaTime)*3.0, 1.5, 25.0)
		moved = true
	}
	if moved {
		tg.Game.Renderer.SetCamera(math.NewVec3(0, 2, state.cameraDistance), math.NewVec3Zero(), math.NewVec3Up())
	}

	state.statsTimer += deltaTime
	if state.statsTimer >= 5.0 {
		state.statsTimer = 0
		fps, frameMS := core.MetricsFrame()
		core.LogInfo("fps: %.1f, frame avg: %.2fms", fps, frameMS)
		if stats, err := tg.Game.Renderer.StatsJSON(); err == nil {
			core.LogDebug("renderer stats: %s", string(stats))
		}
	}
	return nil
}

func (tg *TestGame) render(deltaTime float64) error {
	r := tg.Game.Renderer
	state := tg.state()

	if err := r.BeginFrame(deltaTime); err != nil {
		if errors.Is(err, core.ErrSwapchainBooting) {
			// Swapchain is rebuilding, skip this tick.
			return nil
		}
		return err
	}

	r.BindPipeline(state.pipeline)
	model := math.NewMat4EulerY(state.angle).Mul(math.NewMat4EulerX(state.angle * 0.4))
	r.DrawMesh(state.cube, model, math.NewVec4One())

	return r.EndFrame()
}

func (tg *TestGame) onResize(width, height uint32) error {
	core.LogDebug("game resize: %dx%d", width, height)
	return nil
}

func (tg *TestGame) shutdown() error {
	r := tg.Game.Renderer
	state := tg.state()
	r.DestroyMesh(state.cube)
	r.DestroyPipeline(state.pipeline)
	return nil
}
