// Package software is a headless renderer backend drawing into a CPU pixel
// buffer with gogpu/gg. Frames can be written out as PNG files.
package software

import (
	"errors"
	"fmt"
	"image"
	"io"
	stdmath "math"

	"github.com/gogpu/gg"

	"github.com/spaghettifunk/anima-ui/engine/core"
	"github.com/spaghettifunk/anima-ui/engine/math"
	"github.com/spaghettifunk/anima-ui/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-ui/engine/ui/texture"
)

var (
	ErrNotInitialized = errors.New("software canvas not initialized")
	ErrFrameActive    = errors.New("a frame is already in progress")
	ErrNoFrame        = errors.New("no frame in progress")
)

type Options struct {
	ClearColor math.Vec4
	// ItemSpacing is the gap left between two items, horizontally for
	// SameLine and vertically otherwise.
	ItemSpacing math.Vec2
	// Padding is where the cursor starts every frame.
	Padding math.Vec2
	Repeat  metadata.TextureRepeat
}

// Canvas implements the renderer backend and the UI draw primitive on top
// of a gg.Context.
type Canvas struct {
	opts     Options
	dc       *gg.Context
	textures *texture.Textures[*gg.ImageBuf]

	inFrame    bool
	frameCount uint64
	drawCount  int
	last       image.Image

	cursor       math.Vec2
	lastItemPos  math.Vec2
	lastItemSize math.Vec2
	lineHeight   float32
	sameLine     bool
}

func New(opts Options) *Canvas {
	if opts.Repeat == "" {
		opts.Repeat = metadata.TextureRepeatClampToEdge
	}
	return &Canvas{
		opts:     opts,
		textures: texture.NewTextures[*gg.ImageBuf](),
	}
}

func (c *Canvas) Initialize(appName string, appWidth, appHeight uint32) error {
	if appWidth == 0 || appHeight == 0 {
		return fmt.Errorf("invalid canvas size %dx%d", appWidth, appHeight)
	}
	gg.SetLogger(core.SlogLogger())
	c.dc = gg.NewContext(int(appWidth), int(appHeight))
	core.LogInfo("software canvas for '%s' initialized (%dx%d)", appName, appWidth, appHeight)
	return nil
}

func (c *Canvas) Shutdown() error {
	if c.dc == nil {
		return nil
	}
	for id := range c.textures.All() {
		c.textures.Remove(id)
	}
	err := c.dc.Close()
	c.dc = nil
	return err
}

func (c *Canvas) Resized(width, height uint32) error {
	if c.dc == nil {
		return ErrNotInitialized
	}
	return c.dc.Resize(int(width), int(height))
}

// BeginFrame clears the canvas and moves the cursor back to the padding origin.
func (c *Canvas) BeginFrame(deltaTime float64) error {
	if c.dc == nil {
		return ErrNotInitialized
	}
	if c.inFrame {
		return ErrFrameActive
	}
	bg := c.opts.ClearColor
	c.dc.ClearWithColor(gg.RGBA2(float64(bg.X), float64(bg.Y), float64(bg.Z), float64(bg.W)))
	c.inFrame = true
	c.drawCount = 0
	c.cursor = c.opts.Padding
	c.lastItemPos = c.opts.Padding
	c.lastItemSize = math.Vec2Zero()
	c.lineHeight = 0
	c.sameLine = false
	return nil
}

func (c *Canvas) EndFrame(deltaTime float64) error {
	if !c.inFrame {
		return ErrNoFrame
	}
	if err := c.dc.FlushGPU(); err != nil {
		return err
	}
	c.last = c.dc.Image()
	c.inFrame = false
	c.frameCount++
	core.LogDebug("frame %d ended with %d images", c.frameCount, c.drawCount)
	return nil
}

// Snapshot returns a copy of the last completed frame, or nil before the first one.
func (c *Canvas) Snapshot() image.Image {
	return c.last
}

// SavePNG writes the last completed frame to path.
func (c *Canvas) SavePNG(path string) error {
	if c.dc == nil {
		return ErrNotInitialized
	}
	return c.dc.SavePNG(path)
}

func (c *Canvas) EncodePNG(w io.Writer) error {
	if c.dc == nil {
		return ErrNotInitialized
	}
	return c.dc.EncodePNG(w)
}

func (c *Canvas) Cursor() math.Vec2 {
	return c.cursor
}

func (c *Canvas) SetCursor(pos math.Vec2) {
	c.cursor = pos
	c.sameLine = false
}

func (c *Canvas) SameLine(spacing float32) {
	if spacing < 0 {
		spacing = c.opts.ItemSpacing.X
	}
	c.cursor = math.Vec2{
		X: c.lastItemPos.X + c.lastItemSize.X + spacing,
		Y: c.lastItemPos.Y,
	}
	c.sameLine = true
}

// NewLine ends a SameLine run, or leaves an empty gap when the cursor is
// already at the start of a line.
func (c *Canvas) NewLine() {
	if c.sameLine {
		c.sameLine = false
		c.cursor = math.Vec2{
			X: c.opts.Padding.X,
			Y: c.lastItemPos.Y + c.lineHeight + c.opts.ItemSpacing.Y,
		}
		return
	}
	c.cursor = math.Vec2{X: c.opts.Padding.X, Y: c.cursor.Y + c.opts.ItemSpacing.Y}
}

// DrawImage samples the [uv0, uv1] rectangle of the texture into a size
// sized tile, multiplies it by tint and draws it at the cursor. A visible
// border adds a one pixel frame around the image. Unknown ids still take
// up layout space so the rest of the frame does not shift.
func (c *Canvas) DrawImage(id texture.ID, size, uv0, uv1 math.Vec2, tint, border math.Vec4) {
	pos := c.cursor
	itemSize := size
	imagePos := pos
	if border.Visible() {
		itemSize = math.Vec2{X: size.X + 2, Y: size.Y + 2}
		imagePos = math.Vec2{X: pos.X + 1, Y: pos.Y + 1}
	}

	if !c.inFrame {
		core.LogWarn("DrawImage called outside of a frame, %s ignored", id)
		return
	}

	src, ok := c.textures.Get(id)
	if !ok {
		core.LogWarn("DrawImage: %s is not a live texture", id)
	} else if tile, off := c.sample(src, imagePos, size, uv0, uv1, tint); tile != nil {
		c.dc.DrawImageEx(tile, gg.DrawImageOptions{
			X:         float64(imagePos.X) + float64(off.X),
			Y:         float64(imagePos.Y) + float64(off.Y),
			BlendMode: gg.BlendNormal,
		})
	}

	if border.Visible() {
		c.dc.SetRGBA(float64(border.X), float64(border.Y), float64(border.Z), float64(border.W))
		c.dc.SetLineWidth(1)
		c.dc.DrawRectangle(float64(pos.X)+0.5, float64(pos.Y)+0.5, float64(itemSize.X)-1, float64(itemSize.Y)-1)
		if err := c.dc.Stroke(); err != nil {
			core.LogError("DrawImage: border of %s: %s", id, err)
		}
	}

	c.advance(pos, itemSize)
	c.drawCount++
}

func (c *Canvas) advance(pos, itemSize math.Vec2) {
	if c.sameLine {
		c.lineHeight = max(c.lineHeight, itemSize.Y)
	} else {
		c.lineHeight = itemSize.Y
	}
	c.sameLine = false
	c.lastItemPos = pos
	c.lastItemSize = itemSize
	c.cursor = math.Vec2{
		X: c.opts.Padding.X,
		Y: pos.Y + c.lineHeight + c.opts.ItemSpacing.Y,
	}
}

// sample builds the tile drawn for one image. Sizes are truncated to whole
// pixels, anything smaller than a pixel draws nothing. Only the part of the
// image that lands on the canvas is sampled, off is where that part starts
// inside the full size image.
func (c *Canvas) sample(src *gg.ImageBuf, at, size, uv0, uv1 math.Vec2, tint math.Vec4) (*gg.ImageBuf, image.Point) {
	w, h := int(size.X), int(size.Y)
	if w <= 0 || h <= 0 {
		return nil, image.Point{}
	}
	srcW, srcH := src.Bounds()
	if srcW == 0 || srcH == 0 {
		return nil, image.Point{}
	}
	x0, x1 := visibleSpan(at.X, w, c.dc.Width())
	y0, y1 := visibleSpan(at.Y, h, c.dc.Height())
	if x0 >= x1 || y0 >= y1 {
		return nil, image.Point{}
	}
	tile, err := gg.NewImageBuf(x1-x0, y1-y0, gg.FormatRGBA8)
	if err != nil {
		core.LogError("DrawImage: %s", err)
		return nil, image.Point{}
	}

	for y := y0; y < y1; y++ {
		v := c.wrap(math.Lerp(uv0.Y, uv1.Y, (float32(y)+0.5)/float32(h)))
		sy := math.Clamp(int(v*float32(srcH)), 0, srcH-1)
		for x := x0; x < x1; x++ {
			u := c.wrap(math.Lerp(uv0.X, uv1.X, (float32(x)+0.5)/float32(w)))
			sx := math.Clamp(int(u*float32(srcW)), 0, srcW-1)
			r, g, b, a := src.GetRGBA(sx, sy)
			_ = tile.SetRGBA(x-x0, y-y0,
				tintChannel(r, tint.X),
				tintChannel(g, tint.Y),
				tintChannel(b, tint.Z),
				tintChannel(a, tint.W))
		}
	}
	return tile, image.Point{X: x0, Y: y0}
}

// visibleSpan returns the [lo, hi) pixels of an n pixel run starting at
// pos that fall inside [0, limit).
func visibleSpan(pos float32, n, limit int) (int, int) {
	lo := 0
	if pos < 0 {
		lo = min(int(stdmath.Floor(float64(-pos))), n)
	}
	hi := n
	if end := float64(limit) - float64(pos); end < float64(n) {
		hi = max(int(stdmath.Ceil(end)), 0)
	}
	return lo, hi
}

func (c *Canvas) wrap(f float32) float32 {
	if c.opts.Repeat == metadata.TextureRepeatRepeat {
		return math.Repeat(f)
	}
	return math.Clamp(f, 0, 1)
}

func tintChannel(v uint8, t float32) uint8 {
	return uint8(math.Clamp(float32(v)*t+0.5, 0, 255))
}
