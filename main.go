/*
Spinning-cube testbed application for the nucleo engine.
*/
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/nucleo/engine"
	"github.com/spaghettifunk/nucleo/engine/config"
	"github.com/spaghettifunk/nucleo/engine/core"
	"github.com/spaghettifunk/nucleo/testbed"
)

func main() {
	cfg, err := config.Load("nucleo.toml")
	if err != nil {
		core.LogFatal(err.Error())
	}

	game := testbed.New()

	app, err := engine.New(game.Game, cfg)
	if err != nil {
		core.LogFatal(err.Error())
	}
	if err := app.Initialize(); err != nil {
		core.LogFatal(err.Error())
	}

	// Translate SIGINT/SIGTERM into the quit event so the loop unwinds
	// cleanly instead of tearing the process down mid-frame.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	go func() {
		<-sigCh
		core.EventFire(core.EVENT_CODE_APPLICATION_QUIT, nil, core.EventContext{})
	}()

	if err := app.Run(); err != nil {
		core.LogError(err.Error())
	}
	if err := app.Shutdown(); err != nil {
		core.LogFatal(err.Error())
	}
}
