package engine

import (
	"github.com/spaghettifunk/nucleo/engine/renderer"
)

// Game is the application half of the engine contract: the engine owns the
// window, assets and renderer, the game fills in the callbacks. Renderer is
// wired by engine.New before FnInitialize runs; all callbacks execute on
// the render thread.
type Game struct {
	Renderer *renderer.Renderer
	State    interface{}

	FnInitialize Initialize
	FnUpdate     Update
	FnRender     Render
	FnOnResize   OnResize
	FnShutdown   Shutdown
}

type Initialize func() error
type Update func(deltaTime float64) error
type Render func(deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
