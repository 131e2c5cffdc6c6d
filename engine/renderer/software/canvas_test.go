package software

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-ui/engine/math"
	"github.com/spaghettifunk/anima-ui/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-ui/engine/ui"
	"github.com/spaghettifunk/anima-ui/engine/ui/texture"
)

var (
	black = color.NRGBA{A: 255}
	red   = color.NRGBA{R: 255, A: 255}
	green = color.NRGBA{G: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

var _ ui.Frame = (*Canvas)(nil)

func newTestCanvas(t *testing.T, repeat metadata.TextureRepeat) *Canvas {
	t.Helper()
	c := New(Options{
		ClearColor:  math.Vec4{W: 1},
		ItemSpacing: math.NewVec2(4, 4),
		Padding:     math.NewVec2(2, 2),
		Repeat:      repeat,
	})
	require.NoError(t, c.Initialize("test", 64, 64))
	t.Cleanup(func() { _ = c.Shutdown() })
	return c
}

// stripes builds a texture whose columns cycle through the given colours.
func stripes(cols ...color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, len(cols), 1))
	for x, c := range cols {
		img.SetNRGBA(x, 0, c)
	}
	return img
}

func assertPixel(t *testing.T, img image.Image, x, y int, want color.NRGBA) {
	t.Helper()
	got := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	assert.InDelta(t, want.R, got.R, 2, "red at (%d,%d)", x, y)
	assert.InDelta(t, want.G, got.G, 2, "green at (%d,%d)", x, y)
	assert.InDelta(t, want.B, got.B, 2, "blue at (%d,%d)", x, y)
	assert.InDelta(t, want.A, got.A, 2, "alpha at (%d,%d)", x, y)
}

func TestDrawImageAtCursor(t *testing.T) {
	c := newTestCanvas(t, "")
	id, err := c.TextureCreate(metadata.CreateSolid(4, 4, red))
	require.NoError(t, err)
	assert.Equal(t, texture.ID(0), id)

	require.NoError(t, c.BeginFrame(0))
	ui.NewImage(id, math.NewVec2(8, 8)).Build(c)
	assert.Equal(t, math.NewVec2(2, 14), c.Cursor(), "cursor moves below the image plus spacing")
	require.NoError(t, c.EndFrame(0))

	frame := c.Snapshot()
	require.NotNil(t, frame)
	assertPixel(t, frame, 5, 5, red)
	assertPixel(t, frame, 0, 0, black)
	assertPixel(t, frame, 12, 5, black)
}

func TestDrawImageTintAndUV(t *testing.T) {
	c := newTestCanvas(t, "")
	id, err := c.TextureCreate(stripes(white, blue))
	require.NoError(t, err)

	require.NoError(t, c.BeginFrame(0))
	ui.NewImage(id, math.NewVec2(8, 8)).TintCol(math.NewVec4(0, 1, 0, 1)).Build(c)
	ui.NewImage(id, math.NewVec2(8, 8)).UV0(math.NewVec2(0.5, 0)).Build(c)
	require.NoError(t, c.EndFrame(0))

	frame := c.Snapshot()
	// left half of the first image is the tinted white stripe
	assertPixel(t, frame, 3, 5, green)
	// the second image only samples the blue stripe
	assertPixel(t, frame, 3, 17, blue)
	assertPixel(t, frame, 8, 17, blue)
}

func TestDrawImageRepeat(t *testing.T) {
	c := newTestCanvas(t, metadata.TextureRepeatRepeat)
	id, err := c.TextureCreate(stripes(red, blue))
	require.NoError(t, err)

	require.NoError(t, c.BeginFrame(0))
	ui.NewImage(id, math.NewVec2(8, 2)).UV1(math.NewVec2(2, 1)).Build(c)
	require.NoError(t, c.EndFrame(0))

	frame := c.Snapshot()
	// two texture repeats over eight pixels, two pixels per stripe
	assertPixel(t, frame, 3, 2, red)
	assertPixel(t, frame, 5, 2, blue)
	assertPixel(t, frame, 7, 2, red)
	assertPixel(t, frame, 9, 2, blue)
}

func TestDrawImageBorder(t *testing.T) {
	c := newTestCanvas(t, "")
	id, err := c.TextureCreate(metadata.CreateSolid(2, 2, red))
	require.NoError(t, err)

	require.NoError(t, c.BeginFrame(0))
	ui.NewImage(id, math.NewVec2(8, 8)).BorderCol(math.NewVec4(1, 1, 1, 1)).Build(c)
	assert.Equal(t, math.NewVec2(2, 16), c.Cursor(), "a border adds two pixels to the item")
	require.NoError(t, c.EndFrame(0))

	frame := c.Snapshot()
	assertPixel(t, frame, 6, 6, red)
	edge := color.NRGBAModel.Convert(frame.At(2, 6)).(color.NRGBA)
	assert.NotEqual(t, black, edge, "border is drawn on the left edge")
}

func TestDrawImageUnknownTextureKeepsLayout(t *testing.T) {
	c := newTestCanvas(t, "")

	require.NoError(t, c.BeginFrame(0))
	ui.NewImage(texture.ID(77), math.NewVec2(10, 10)).Build(c)
	assert.Equal(t, math.NewVec2(2, 16), c.Cursor())
	require.NoError(t, c.EndFrame(0))

	assertPixel(t, c.Snapshot(), 5, 5, black)
}

func TestSameLine(t *testing.T) {
	c := newTestCanvas(t, "")
	id, err := c.TextureCreate(metadata.CreateSolid(1, 1, green))
	require.NoError(t, err)

	require.NoError(t, c.BeginFrame(0))
	ui.NewImage(id, math.NewVec2(8, 8)).Build(c)
	c.SameLine(-1)
	assert.Equal(t, math.NewVec2(14, 2), c.Cursor())
	ui.NewImage(id, math.NewVec2(4, 12)).Build(c)
	assert.Equal(t, math.NewVec2(2, 18), c.Cursor(), "the line is as tall as its tallest item")

	c.SetCursor(math.NewVec2(40, 40))
	ui.NewImage(id, math.NewVec2(2, 2)).Build(c)
	require.NoError(t, c.EndFrame(0))

	frame := c.Snapshot()
	assertPixel(t, frame, 16, 10, green)
	assertPixel(t, frame, 41, 41, green)
}

func TestNewLine(t *testing.T) {
	c := newTestCanvas(t, "")
	id, err := c.TextureCreate(metadata.CreateSolid(1, 1, green))
	require.NoError(t, err)

	require.NoError(t, c.BeginFrame(0))
	ui.NewImage(id, math.NewVec2(8, 8)).Build(c)
	c.SameLine(-1)
	c.NewLine()
	assert.Equal(t, math.NewVec2(2, 14), c.Cursor(), "NewLine cancels SameLine")

	c.NewLine()
	assert.Equal(t, math.NewVec2(2, 18), c.Cursor(), "an empty line is one item spacing tall")
	require.NoError(t, c.EndFrame(0))
}

func TestFrameLifecycle(t *testing.T) {
	c := New(Options{})
	assert.ErrorIs(t, c.BeginFrame(0), ErrNotInitialized)

	require.NoError(t, c.Initialize("test", 16, 16))
	assert.ErrorIs(t, c.EndFrame(0), ErrNoFrame)
	require.NoError(t, c.BeginFrame(0))
	assert.ErrorIs(t, c.BeginFrame(0), ErrFrameActive)
	require.NoError(t, c.EndFrame(0))

	var buf bytes.Buffer
	require.NoError(t, c.EncodePNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 16), img.Bounds())

	assert.Error(t, c.Initialize("broken", 0, 10))
	require.NoError(t, c.Shutdown())
}

func TestTextureLifecycle(t *testing.T) {
	c := newTestCanvas(t, "")

	id, err := c.TextureCreate(metadata.CreateSolid(2, 2, red))
	require.NoError(t, err)
	require.NoError(t, c.TextureReplace(id, metadata.CreateSolid(2, 2, blue)))
	buf, ok := c.Texture(id)
	require.True(t, ok)
	r, g, b, a := buf.GetRGBA(0, 0)
	assert.Equal(t, [4]uint8{0, 0, 255, 255}, [4]uint8{r, g, b, a})

	require.NoError(t, c.TextureDestroy(id))
	assert.ErrorIs(t, c.TextureDestroy(id), texture.ErrTextureNotFound)
	assert.ErrorIs(t, c.TextureReplace(id, metadata.CreateSolid(1, 1, red)), texture.ErrTextureNotFound)

	next, err := c.TextureCreate(metadata.CreateSolid(1, 1, red))
	require.NoError(t, err)
	assert.Equal(t, id+1, next, "destroyed handles are not handed out again")
}

func TestTextureWriteable(t *testing.T) {
	c := newTestCanvas(t, "")

	id, err := c.TextureCreateWriteable(4, 4)
	require.NoError(t, err)
	require.NoError(t, c.TextureWriteData(id, 2, 2, metadata.CreateSolid(4, 4, green)))

	buf, ok := c.Texture(id)
	require.True(t, ok)
	_, _, _, a := buf.GetRGBA(0, 0)
	assert.Zero(t, a)
	r, g, b, a := buf.GetRGBA(3, 3)
	assert.Equal(t, [4]uint8{0, 255, 0, 255}, [4]uint8{r, g, b, a})

	assert.ErrorIs(t, c.TextureWriteData(texture.ID(99), 0, 0, metadata.CreateSolid(1, 1, red)), texture.ErrTextureNotFound)
}

func TestDrawImageLargerThanCanvas(t *testing.T) {
	c := newTestCanvas(t, "")
	id, err := c.TextureCreate(stripes(red, blue))
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, c.BeginFrame(0))
	ui.NewImage(id, math.NewVec2(10000, 10000)).Build(c)
	require.NoError(t, c.EndFrame(0))
	assertPixel(t, c.Snapshot(), 10, 10, red)
	assertPixel(t, c.Snapshot(), 63, 63, red)

	// only the last 20 columns of the image reach the canvas
	require.NoError(t, c.BeginFrame(0))
	c.SetCursor(math.NewVec2(-9980, 0))
	ui.NewImage(id, math.NewVec2(10000, 10000)).Build(c)
	require.NoError(t, c.EndFrame(0))
	assertPixel(t, c.Snapshot(), 5, 5, blue)
	assertPixel(t, c.Snapshot(), 30, 5, black)

	// entirely off the canvas
	require.NoError(t, c.BeginFrame(0))
	c.SetCursor(math.NewVec2(100, 100))
	ui.NewImage(id, math.NewVec2(10000, 10000)).Build(c)
	require.NoError(t, c.EndFrame(0))
	assertPixel(t, c.Snapshot(), 5, 5, black)

	assert.Less(t, time.Since(start), 2*time.Second, "only the visible pixels are sampled")
}
