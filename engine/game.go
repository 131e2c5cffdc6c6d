package engine

import (
	"github.com/spaghettifunk/anima-ui/engine/systems"
	"github.com/spaghettifunk/anima-ui/engine/ui"
)

type Game struct {
	ApplicationConfig *ApplicationConfig
	// Set by New.
	SystemManager *systems.SystemManager
	State         interface{}
	FnInitialize  Initialize
	FnUpdate      Update
	FnRender      Render
	FnOnResize    OnResize
	FnShutdown    Shutdown
}

type Initialize func() error
type Update func(deltaTime float64) error
type Render func(frame ui.Frame, deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
