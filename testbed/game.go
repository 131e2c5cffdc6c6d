package testbed

import (
	"fmt"
	"image"
	"image/color"
	stdmath "math"

	"github.com/spaghettifunk/anima-ui/engine"
	"github.com/spaghettifunk/anima-ui/engine/assets/loaders"
	"github.com/spaghettifunk/anima-ui/engine/core"
	"github.com/spaghettifunk/anima-ui/engine/math"
	"github.com/spaghettifunk/anima-ui/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-ui/engine/ui"
)

const gradientSize = 64

type TestGame struct {
	*engine.Game
}

type gameState struct {
	elapsed float64
	width   uint32
	height  uint32

	// names of the acquired gallery textures
	gallery  []string
	gradient *metadata.Texture
	// set when the configured font is loaded
	fontName string
	missing  int
}

func NewTestGame(config *engine.ApplicationConfig) (*TestGame, error) {
	if config == nil {
		config = engine.DefaultApplicationConfig()
	}
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			State: &gameState{
				width:  config.StartWidth,
				height: config.StartHeight,
			},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg, nil
}

func (g *TestGame) Initialize() error {
	core.LogDebug("TestGame Initialize fn....")

	if g.SystemManager == nil {
		return fmt.Errorf("the engine is not yet initialized with all the system managers ")
	}
	state := g.State.(*gameState)
	ts := g.SystemManager.TextureSystem()

	if am := g.SystemManager.AssetManager(); am != nil {
		for _, a := range am.Assets(metadata.ResourceTypeImage) {
			name := loaders.TextureName(a.Path)
			if _, err := ts.Acquire(name, true); err != nil {
				core.LogWarn("gallery: %s", err)
				continue
			}
			state.gallery = append(state.gallery, name)
		}
	}

	gradient, err := ts.CreateWriteable(gradientSize, gradientSize)
	if err != nil {
		return err
	}
	if err := ts.WriteData(gradient.Name, 0, 0, makeGradient(gradientSize)); err != nil {
		return err
	}
	state.gradient = gradient

	if name := g.ApplicationConfig.FontName; name != "" {
		if _, err := g.SystemManager.FontSystem().Font(name); err == nil {
			state.fontName = name
		}
	}

	core.LogInfo("testbed ready: %d gallery textures", len(state.gallery))
	return nil
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.State.(*gameState)
	state.elapsed += deltaTime
	return nil
}

func (g *TestGame) Render(frame ui.Frame, deltaTime float64) error {
	state := g.State.(*gameState)
	ts := g.SystemManager.TextureSystem()
	white := math.Vec4One()

	// first row: the built-in textures
	checker := ts.DefaultTexture().ID
	ui.NewImage(checker, math.NewVec2(64, 64)).
		BorderCol(white).
		Build(frame)
	frame.SameLine(-1)
	ui.NewImage(checker, math.NewVec2(64, 64)).
		UV1(math.NewVec2(4, 4)).
		Build(frame)
	frame.SameLine(-1)
	pulse := float32(0.5 + 0.5*stdmath.Sin(state.elapsed*2))
	ui.NewImage(state.gradient.ID, math.NewVec2(64, 64)).
		TintCol(math.NewVec4(1, pulse, pulse, 1)).
		Build(frame)
	frame.SameLine(-1)
	ui.NewImage(ts.WhiteTexture().ID, math.NewVec2(64, 64)).
		TintCol(math.NewVec4(0.2, 0.6, 0.9, 1)).
		BorderCol(math.NewVec4(1, 1, 0, 1)).
		Build(frame)
	frame.NewLine()

	// second row: textures found in the assets directory
	for i, name := range state.gallery {
		id, err := ts.Resolve(name)
		if err := ui.NewDeferredImage(id, err, math.NewVec2(48, 48)).Build(frame); err != nil {
			core.LogDebug("gallery: %s", err)
		}
		if i < len(state.gallery)-1 {
			frame.SameLine(-1)
		}
	}

	// a texture nobody provides is reported instead of drawn
	id, err := ts.Resolve("missing")
	if err := ui.NewDeferredImage(id, err, math.NewVec2(48, 48)).Build(frame); err != nil {
		state.missing++
	}

	if state.fontName != "" {
		text := fmt.Sprintf("anima-ui %dx%d\nt=%.2fs", state.width, state.height, state.elapsed)
		if err := g.SystemManager.FontSystem().Text(frame, state.fontName, text, white); err != nil {
			return err
		}
	}
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.State.(*gameState)
	state.width = width
	state.height = height
	return nil
}

func (g *TestGame) Shutdown() error {
	state := g.State.(*gameState)
	ts := g.SystemManager.TextureSystem()
	for _, name := range state.gallery {
		if err := ts.Release(name); err != nil {
			core.LogWarn("gallery: %s", err)
		}
	}
	state.gallery = nil
	return nil
}

func makeGradient(size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / (size - 1)),
				G: uint8(y * 255 / (size - 1)),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}
