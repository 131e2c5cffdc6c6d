package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-ui/engine/assets/loaders"
	"github.com/spaghettifunk/anima-ui/engine/math"
	"github.com/spaghettifunk/anima-ui/engine/renderer/metadata"
	"github.com/spaghettifunk/anima-ui/engine/ui/texture"
)

type glyphDraw struct {
	pos      math.Vec2
	id       texture.ID
	size     math.Vec2
	uv0, uv1 math.Vec2
	tint     math.Vec4
}

type spyFrame struct {
	cursor math.Vec2
	draws  []glyphDraw
}

func (s *spyFrame) DrawImage(id texture.ID, size, uv0, uv1 math.Vec2, tint, border math.Vec4) {
	s.draws = append(s.draws, glyphDraw{pos: s.cursor, id: id, size: size, uv0: uv0, uv1: uv1, tint: tint})
}

func (s *spyFrame) Cursor() math.Vec2 { return s.cursor }

func (s *spyFrame) SetCursor(pos math.Vec2) { s.cursor = pos }

func (s *spyFrame) SameLine(spacing float32) {}

func (s *spyFrame) NewLine() {}

func testFontData() *metadata.FontData {
	return &metadata.FontData{
		Face:       "test",
		Size:       10,
		LineHeight: 12,
		Baseline:   10,
		AtlasSizeX: 64,
		AtlasSizeY: 64,
		Glyphs: []*metadata.FontGlyph{
			{Codepoint: ' ', XAdvance: 4},
			{Codepoint: '?', X: 16, Width: 6, Height: 10, XAdvance: 7},
			{Codepoint: 'A', Width: 8, Height: 10, XOffset: 1, YOffset: 2, XAdvance: 9},
			{Codepoint: 'V', X: 8, Width: 8, Height: 10, YOffset: 2, XAdvance: 9},
		},
		Kernings: []*metadata.FontKerning{
			{Codepoint0: 'A', Codepoint1: 'V', Amount: -2},
		},
	}
}

func newTestFontSystem(t *testing.T) *FontSystem {
	t.Helper()
	fs, err := NewFontSystem(&FontSystemConfig{MaxBitmapFontCount: 2}, nil, nil)
	require.NoError(t, err)
	_, err = fs.RegisterBitmapFont("test", testFontData(), map[uint8]texture.ID{0: texture.FromInteger(7)})
	require.NoError(t, err)
	return fs
}

func TestFontSystemText(t *testing.T) {
	fs := newTestFontSystem(t)
	frame := &spyFrame{cursor: math.NewVec2(5, 5)}
	white := math.Vec4One()

	require.NoError(t, fs.Text(frame, "test", "AV A\nV", white))
	require.Len(t, frame.draws, 4, "the space has no pixels")

	a := frame.draws[0]
	assert.Equal(t, math.NewVec2(6, 7), a.pos)
	assert.Equal(t, texture.FromInteger(7), a.id)
	assert.Equal(t, math.NewVec2(8, 10), a.size)
	assert.Equal(t, math.NewVec2(0, 0), a.uv0)
	assert.Equal(t, math.NewVec2(0.125, 0.15625), a.uv1)
	assert.Equal(t, white, a.tint)

	v := frame.draws[1]
	assert.Equal(t, math.NewVec2(12, 7), v.pos, "kerning pulls V towards A")
	assert.Equal(t, math.NewVec2(0.125, 0), v.uv0)
	assert.Equal(t, math.NewVec2(0.25, 0.15625), v.uv1)

	assert.Equal(t, math.NewVec2(26, 7), frame.draws[2].pos)
	assert.Equal(t, math.NewVec2(5, 19), frame.draws[3].pos, "newline returns to the first column")

	assert.Equal(t, math.NewVec2(5, 29), frame.Cursor())
}

func TestFontSystemFallbackGlyph(t *testing.T) {
	fs := newTestFontSystem(t)
	frame := &spyFrame{}

	require.NoError(t, fs.Text(frame, "test", "Z", math.Vec4One()))
	require.Len(t, frame.draws, 1)
	assert.Equal(t, math.NewVec2(0.25, 0), frame.draws[0].uv0)
	assert.Equal(t, math.NewVec2(0.34375, 0.15625), frame.draws[0].uv1)
}

func TestFontSystemMissingPage(t *testing.T) {
	fs := newTestFontSystem(t)
	_, err := fs.RegisterBitmapFont("broken", testFontData(), map[uint8]texture.ID{})
	require.NoError(t, err)

	frame := &spyFrame{cursor: math.NewVec2(3, 3)}
	err = fs.Text(frame, "broken", "A", math.Vec4One())
	assert.ErrorIs(t, err, texture.ErrTextureNotFound)
	assert.Empty(t, frame.draws)
	assert.Equal(t, math.NewVec2(3, 3), frame.Cursor())
}

func TestFontSystemUnknownFont(t *testing.T) {
	fs := newTestFontSystem(t)
	frame := &spyFrame{}

	assert.ErrorIs(t, fs.Text(frame, "nope", "A", math.Vec4One()), loaders.ErrFontNotFound)
	_, err := fs.Measure("nope", "A")
	assert.ErrorIs(t, err, loaders.ErrFontNotFound)
}

func TestFontSystemMeasure(t *testing.T) {
	fs := newTestFontSystem(t)

	size, err := fs.Measure("test", "AV A\nV")
	require.NoError(t, err)
	assert.Equal(t, math.NewVec2(29, 24), size)

	size, err = fs.Measure("test", "")
	require.NoError(t, err)
	assert.Equal(t, math.NewVec2(0, 12), size)
}

func TestFontSystemLimits(t *testing.T) {
	fs := newTestFontSystem(t)

	_, err := fs.RegisterBitmapFont("test", testFontData(), nil)
	assert.Error(t, err, "names are unique")

	assert.Error(t, fs.LoadBitmapFont("ui"), "loading needs an asset manager")

	_, err = fs.RegisterBitmapFont("second", testFontData(), nil)
	require.NoError(t, err)
	_, err = fs.RegisterBitmapFont("third", testFontData(), nil)
	assert.Error(t, err)

	_, err = NewFontSystem(&FontSystemConfig{}, nil, nil)
	assert.Error(t, err)

	require.NoError(t, fs.Shutdown())
	_, err = fs.Font("test")
	assert.ErrorIs(t, err, loaders.ErrFontNotFound)
}

func TestFontSystemFallbackKerning(t *testing.T) {
	fs := newTestFontSystem(t)
	data := testFontData()
	data.Kernings = append(data.Kernings, &metadata.FontKerning{Codepoint0: 'A', Codepoint1: '?', Amount: -3})
	_, err := fs.RegisterBitmapFont("kerned", data, map[uint8]texture.ID{0: texture.FromInteger(7)})
	require.NoError(t, err)

	frame := &spyFrame{}
	require.NoError(t, fs.Text(frame, "kerned", "A~", math.Vec4One()))
	require.Len(t, frame.draws, 2)
	assert.Equal(t, math.NewVec2(6, 0), frame.draws[1].pos, "the missing rune is kerned as '?'")

	size, err := fs.Measure("kerned", "A~")
	require.NoError(t, err)
	assert.Equal(t, math.NewVec2(13, 12), size)
}
