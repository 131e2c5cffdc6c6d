package software

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/gogpu/gg"

	"github.com/spaghettifunk/anima-ui/engine/ui/texture"
)

func (c *Canvas) TextureCreate(img image.Image) (texture.ID, error) {
	if img == nil {
		return 0, fmt.Errorf("texture create: nil image")
	}
	return c.textures.Insert(gg.ImageBufFromImage(toNRGBA(img)))
}

// TextureReplace keeps id stable while swapping its pixels, which is how
// reloaded assets stay valid for widgets holding the old id.
func (c *Canvas) TextureReplace(id texture.ID, img image.Image) error {
	if img == nil {
		return fmt.Errorf("texture replace %s: nil image", id)
	}
	if !c.textures.Contains(id) {
		return fmt.Errorf("texture replace: %w", texture.ErrTextureNotFound)
	}
	c.textures.Replace(id, gg.ImageBufFromImage(toNRGBA(img)))
	return nil
}

func (c *Canvas) TextureDestroy(id texture.ID) error {
	if _, ok := c.textures.Remove(id); !ok {
		return fmt.Errorf("texture destroy %s: %w", id, texture.ErrTextureNotFound)
	}
	return nil
}

// TextureCreateWriteable allocates a transparent texture the caller can
// draw into with TextureWriteData.
func (c *Canvas) TextureCreateWriteable(width, height uint32) (texture.ID, error) {
	buf, err := gg.NewImageBuf(int(width), int(height), gg.FormatRGBA8)
	if err != nil {
		return 0, err
	}
	return c.textures.Insert(buf)
}

// TextureWriteData copies img into the texture with its top-left corner at (x, y).
func (c *Canvas) TextureWriteData(id texture.ID, x, y int, img image.Image) error {
	if img == nil {
		return fmt.Errorf("texture write %s: nil image", id)
	}
	buf, ok := c.textures.Get(id)
	if !ok {
		return fmt.Errorf("texture write %s: %w", id, texture.ErrTextureNotFound)
	}
	w, h := buf.Bounds()
	src := toNRGBA(img)

	b := src.Bounds()
	for sy := 0; sy < b.Dy(); sy++ {
		for sx := 0; sx < b.Dx(); sx++ {
			dx, dy := x+sx, y+sy
			if dx < 0 || dy < 0 || dx >= w || dy >= h {
				continue
			}
			p := src.NRGBAAt(sx, sy)
			if err := buf.SetRGBA(dx, dy, p.R, p.G, p.B, p.A); err != nil {
				return err
			}
		}
	}
	return nil
}

// Texture returns the pixel buffer behind id.
func (c *Canvas) Texture(id texture.ID) (*gg.ImageBuf, bool) {
	return c.textures.Get(id)
}

// toNRGBA returns img as a zero-origin, non-premultiplied image.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	n := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(n, n.Bounds(), img, b.Min, draw.Src)
	return n
}
