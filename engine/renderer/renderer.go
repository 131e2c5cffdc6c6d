package renderer

import (
	"fmt"
	"image"

	"github.com/spaghettifunk/anima-ui/engine/core"
	"github.com/spaghettifunk/anima-ui/engine/math"
	"github.com/spaghettifunk/anima-ui/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-ui/engine/renderer/software"
	"github.com/spaghettifunk/anima-ui/engine/ui"
	"github.com/spaghettifunk/anima-ui/engine/ui/texture"
)

type RendererType uint8

const (
	Software RendererType = iota
)

type RendererConfig struct {
	Type        RendererType
	ClearColor  math.Vec4
	ItemSpacing math.Vec2
	Padding     math.Vec2
	Repeat      metadata.TextureRepeat
}

// Renderer is the front end the engine systems talk to. It forwards to the
// selected backend.
type Renderer struct {
	backend RendererBackend
}

func New(config RendererConfig) (*Renderer, error) {
	var backend RendererBackend
	switch config.Type {
	case Software:
		backend = software.New(software.Options{
			ClearColor:  config.ClearColor,
			ItemSpacing: config.ItemSpacing,
			Padding:     config.Padding,
			Repeat:      config.Repeat,
		})
	default:
		return nil, fmt.Errorf("unsupported renderer type %d", config.Type)
	}
	return &Renderer{backend: backend}, nil
}

// NewWithBackend wraps an already constructed backend.
func NewWithBackend(backend RendererBackend) *Renderer {
	return &Renderer{backend: backend}
}

func (r *Renderer) Initialize(appName string, appWidth, appHeight uint32) error {
	return r.backend.Initialize(appName, appWidth, appHeight)
}

func (r *Renderer) Shutdown() error {
	return r.backend.Shutdown()
}

func (r *Renderer) OnResize(width, height uint32) error {
	return r.backend.Resized(width, height)
}

// DrawFrame runs a full frame: begin, the render callback against the
// frame's layout, end.
func (r *Renderer) DrawFrame(deltaTime float64, render func(frame ui.Frame) error) error {
	if err := r.backend.BeginFrame(deltaTime); err != nil {
		core.LogError("%s", err)
		return err
	}
	if render != nil {
		if err := render(r.backend); err != nil {
			if endErr := r.backend.EndFrame(deltaTime); endErr != nil {
				core.LogError("%s", endErr)
			}
			return err
		}
	}
	if err := r.backend.EndFrame(deltaTime); err != nil {
		core.LogError("RendererEndFrame failed. Application shutting down...")
		return err
	}
	return nil
}

func (r *Renderer) TextureCreate(img image.Image) (texture.ID, error) {
	return r.backend.TextureCreate(img)
}

func (r *Renderer) TextureReplace(id texture.ID, img image.Image) error {
	return r.backend.TextureReplace(id, img)
}

func (r *Renderer) TextureDestroy(id texture.ID) error {
	return r.backend.TextureDestroy(id)
}

func (r *Renderer) TextureCreateWriteable(width, height uint32) (texture.ID, error) {
	return r.backend.TextureCreateWriteable(width, height)
}

func (r *Renderer) TextureWriteData(id texture.ID, x, y int, img image.Image) error {
	return r.backend.TextureWriteData(id, x, y, img)
}

func (r *Renderer) Snapshot() image.Image {
	return r.backend.Snapshot()
}

func (r *Renderer) SavePNG(path string) error {
	return r.backend.SavePNG(path)
}
