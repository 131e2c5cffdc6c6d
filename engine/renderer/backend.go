package renderer

import (
	"image"

	"github.com/spaghettifunk/anima-ui/engine/ui"
	"github.com/spaghettifunk/anima-ui/engine/ui/texture"
)

type RendererBackend interface {
	ui.Frame

	Initialize(appName string, appWidth, appHeight uint32) error
	Shutdown() error
	Resized(width, height uint32) error
	BeginFrame(deltaTime float64) error
	EndFrame(deltaTime float64) error
	// TextureCreate uploads img and returns the handle the UI draws it with.
	TextureCreate(img image.Image) (texture.ID, error)
	// TextureReplace swaps the pixels behind an existing handle.
	TextureReplace(id texture.ID, img image.Image) error
	TextureDestroy(id texture.ID) error
	TextureCreateWriteable(width, height uint32) (texture.ID, error)
	TextureWriteData(id texture.ID, x, y int, img image.Image) error
	// Snapshot returns the last completed frame.
	Snapshot() image.Image
	// SavePNG writes the last completed frame to path.
	SavePNG(path string) error
}
