package engine

import (
	"github.com/spaghettifunk/nucleo/engine/core"
)

// Run drives the main loop until a quit event or window close. One
// iteration pumps window events, steps the game, renders, updates the
// frame metrics and finally copies the input state.
func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return core.ErrNotInitialized
	}
	e.currentStage = EngineStageRunning
	e.isRunning = true

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	for e.isRunning {
		e.platform.PumpMessages()
		if e.platform.ShouldClose() {
			e.isRunning = false
			break
		}

		if e.isSuspended {
			// Minimized: block until an event arrives instead of spinning.
			e.platform.WaitMessages()
			continue
		}

		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime

		if e.game.FnUpdate != nil {
			if err := e.game.FnUpdate(delta); err != nil {
				core.LogError("game update failed, shutting down: %s", err.Error())
				e.isRunning = false
				break
			}
		}
		if e.game.FnRender != nil {
			if err := e.game.FnRender(delta); err != nil {
				core.LogError("game render failed, shutting down: %s", err.Error())
				e.isRunning = false
				break
			}
		}

		e.clock.Update()
		core.MetricsUpdate(e.clock.Elapsed() - currentTime)

		// NOTE: Input update/state copying should always be handled after
		// any input has been recorded, as a safety it is the last thing
		// updated before the frame ends.
		core.InputUpdate(delta)

		e.lastTime = currentTime
	}

	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) onEvent(code core.SystemEventCode, sender, listener interface{}, data core.EventContext) bool {
	switch code {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("application quit event received, shutting down")
		e.isRunning = false
		return true
	}
	return false
}

func (e *Engine) onKey(code core.SystemEventCode, sender, listener interface{}, data core.EventContext) bool {
	keyCode := core.KeyCode(data.Data.U16[0])

	if code == core.EVENT_CODE_KEY_PRESSED {
		if keyCode == core.KEY_ESCAPE {
			// Fire rather than flip the flag directly so other listeners
			// see the quit too.
			core.EventFire(core.EVENT_CODE_APPLICATION_QUIT, e, core.EventContext{})
			return true
		}
		core.LogDebug("key pressed: 0x%X", uint16(keyCode))
	} else if code == core.EVENT_CODE_KEY_RELEASED {
		core.LogDebug("key released: 0x%X", uint16(keyCode))
	}
	return false
}

func (e *Engine) onResized(code core.SystemEventCode, sender, listener interface{}, data core.EventContext) bool {
	if code != core.EVENT_CODE_RESIZED {
		return false
	}

	width := data.Data.U32[0]
	height := data.Data.U32[1]
	if width == e.width && height == e.height {
		return false
	}
	e.width = width
	e.height = height
	core.LogDebug("window resize: %dx%d", width, height)

	// Minimization shows up as a zero-sized framebuffer.
	if width == 0 || height == 0 {
		core.LogInfo("window minimized, suspending application")
		e.isSuspended = true
		return true
	}
	if e.isSuspended {
		core.LogInfo("window restored, resuming application")
		e.isSuspended = false
	}

	if err := e.renderer.OnResized(uint16(width), uint16(height)); err != nil {
		core.LogError(err.Error())
	}
	if e.game.FnOnResize != nil {
		if err := e.game.FnOnResize(width, height); err != nil {
			core.LogError(err.Error())
		}
	}
	// Other listeners may care about resizes as well.
	return false
}
