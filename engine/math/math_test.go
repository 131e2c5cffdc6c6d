package math

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVectorConversions(t *testing.T) {
	assert.Equal(t, Vec2{X: 100, Y: 50}, NewVec2(100, 50))
	assert.Equal(t, Vec2{X: 1.5, Y: 2}, NewVec2(1.5, 2.0))
	assert.Equal(t, Vec2{X: 3, Y: 4}, Vec2FromArray([2]int{3, 4}))
	assert.Equal(t, Vec2{X: 7, Y: 9}, Vec2FromPoint(image.Pt(7, 9)))
	assert.Equal(t, Vec4{X: 1, Y: 0, Z: 0, W: 1}, NewVec4(1, 0, 0, 1))
	assert.Equal(t, Vec4{X: 0.5, Y: 0.25, Z: 0, W: 1}, Vec4FromArray([4]float64{0.5, 0.25, 0, 1}))
}

func TestVec4FromColor(t *testing.T) {
	v := Vec4FromColor(color.NRGBA{R: 255, G: 0, B: 255, A: 255})
	assert.Equal(t, Vec4{X: 1, Y: 0, Z: 1, W: 1}, v)

	transparent := Vec4FromColor(color.Transparent)
	assert.False(t, transparent.Visible())
}

func TestVec4NRGBAClamps(t *testing.T) {
	c := Vec4{X: 2, Y: -1, Z: 0.5, W: 1}.NRGBA()
	assert.Equal(t, color.NRGBA{R: 255, G: 0, B: 128, A: 255}, c)
}

func TestDefaults(t *testing.T) {
	assert.Equal(t, Vec2{}, Vec2Zero())
	assert.Equal(t, Vec2{X: 1, Y: 1}, Vec2One())
	assert.Equal(t, Vec4{X: 1, Y: 1, Z: 1, W: 1}, Vec4One())
	assert.Equal(t, Vec4{}, Vec4Zero())
}

func TestClampAndRepeat(t *testing.T) {
	assert.Equal(t, 0, Clamp(-3, 0, 10))
	assert.Equal(t, 10, Clamp(42, 0, 10))
	assert.Equal(t, float32(0.5), Clamp(float32(0.5), 0, 1))

	assert.InDelta(t, 0.25, Repeat(1.25), 1e-9)
	assert.InDelta(t, 0.25, Repeat(-0.75), 1e-9)
	assert.InDelta(t, 0.0, Repeat(2.0), 1e-9)
	assert.InDelta(t, 5.0, Lerp(0.0, 10.0, 0.5), 1e-9)
}
