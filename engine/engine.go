package engine

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/spaghettifunk/nucleo/engine/assets"
	"github.com/spaghettifunk/nucleo/engine/config"
	"github.com/spaghettifunk/nucleo/engine/core"
	"github.com/spaghettifunk/nucleo/engine/platform"
	"github.com/spaghettifunk/nucleo/engine/renderer"
	"github.com/spaghettifunk/nucleo/engine/renderer/metadata"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently booting up
	EngineStageBooting
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

type Engine struct {
	currentStage Stage
	game         *Game
	config       *config.Config

	isRunning   bool
	isSuspended bool

	platform     *platform.Platform
	assetManager *assets.AssetManager
	renderer     *renderer.Renderer

	width  uint32
	height uint32

	clock    *core.Clock
	lastTime float64
}

// New assembles the engine around a game instance. A nil cfg loads the
// defaults. The game's Renderer field is populated here so FnInitialize
// can create resources.
func New(g *Game, cfg *config.Config) (*Engine, error) {
	if g == nil {
		return nil, errors.New("engine requires a game instance")
	}
	if cfg == nil {
		cfg = config.Default()
	}
	core.LogVerbose(cfg.Log.Verbose)

	p, err := platform.New()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	am, err := assets.NewAssetManager()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	r := renderer.New(p, am, &metadata.RendererBackendConfig{
		ApplicationName:  cfg.AppName,
		Width:            cfg.Window.Width,
		Height:           cfg.Window.Height,
		Vsync:            cfg.Renderer.Vsync,
		EnableValidation: cfg.Renderer.Validation,
		ClearColor:       cfg.Renderer.ClearColor,
		MaxDrawsPerFrame: cfg.Renderer.MaxDrawsPerFrame,
	})
	g.Renderer = r

	return &Engine{
		currentStage: EngineStageUninitialized,
		game:         g,
		config:       cfg,
		clock:        core.NewClock(),
		platform:     p,
		assetManager: am,
		renderer:     r,
		width:        cfg.Window.Width,
		height:       cfg.Window.Height,
	}, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageBooting

	if err := core.InputInitialize(); err != nil {
		return err
	}
	if !core.EventInitialize() {
		return errors.New("failed to initialize the event system")
	}
	if err := core.MetricsInitialize(); err != nil {
		return err
	}

	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	core.EventRegister(core.EVENT_CODE_KEY_PRESSED, e, e.onKey)
	core.EventRegister(core.EVENT_CODE_KEY_RELEASED, e, e.onKey)
	core.EventRegister(core.EVENT_CODE_RESIZED, e, e.onResized)

	if err := e.platform.Startup(e.config.AppName, e.width, e.height); err != nil {
		return err
	}

	assetsDir := e.config.Assets.Dir
	if !filepath.IsAbs(assetsDir) {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		assetsDir = filepath.Join(wd, assetsDir)
	}
	if err := e.assetManager.Initialize(assetsDir, e.config.Assets.Watch); err != nil {
		return err
	}

	if err := e.renderer.Initialize(); err != nil {
		return err
	}

	if e.game.FnInitialize != nil {
		if err := e.game.FnInitialize(); err != nil {
			return err
		}
	}
	if e.game.FnOnResize != nil {
		if err := e.game.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	return nil
}

// Shutdown tears the stack down in reverse initialization order. The game
// goes first so it can release resources while the renderer is still alive.
func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageUninitialized {
		return nil
	}
	e.currentStage = EngineStageShuttingDown

	if e.game.FnShutdown != nil {
		if err := e.game.FnShutdown(); err != nil {
			core.LogError("game shutdown failed: %s", err.Error())
		}
	}
	if err := e.renderer.Shutdown(); err != nil {
		core.LogError("renderer shutdown failed: %s", err.Error())
	}
	e.assetManager.Shutdown()

	if err := core.EventShutdown(); err != nil {
		return err
	}
	if err := core.InputShutdown(); err != nil {
		return err
	}
	if err := e.platform.Shutdown(); err != nil {
		return err
	}

	e.currentStage = EngineStageUninitialized
	return nil
}

// GetFramebufferSize returns the width and height (in this order) of the
// application framebuffer.
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}
