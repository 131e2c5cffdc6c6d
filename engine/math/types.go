package math

import (
	"image"
	"image/color"

	"golang.org/x/exp/constraints"
)

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec4 represents a 4D vector. Colours use X, Y, Z, W as R, G, B, A in [0, 1].
type Vec4 struct {
	X, Y, Z, W float32
}

// Number is any type a vector component can be converted from.
type Number interface {
	constraints.Integer | constraints.Float
}

// NewVec2 converts two numbers of any numeric type into a Vec2.
func NewVec2[T Number](x, y T) Vec2 {
	return Vec2{X: float32(x), Y: float32(y)}
}

// Vec2FromArray converts a two element array into a Vec2.
func Vec2FromArray[T Number](a [2]T) Vec2 {
	return NewVec2(a[0], a[1])
}

// Vec2FromPoint converts an integer image point into a Vec2.
func Vec2FromPoint(p image.Point) Vec2 {
	return NewVec2(p.X, p.Y)
}

// Array returns the components as an array.
func (v Vec2) Array() [2]float32 {
	return [2]float32{v.X, v.Y}
}

/** @brief A zero vector. */
func Vec2Zero() Vec2 {
	return Vec2{}
}

/** @brief A vector with both components set to one. */
func Vec2One() Vec2 {
	return Vec2{X: 1, Y: 1}
}

// NewVec4 converts four numbers of any numeric type into a Vec4.
func NewVec4[T Number](x, y, z, w T) Vec4 {
	return Vec4{X: float32(x), Y: float32(y), Z: float32(z), W: float32(w)}
}

// Vec4FromArray converts a four element array into a Vec4.
func Vec4FromArray[T Number](a [4]T) Vec4 {
	return NewVec4(a[0], a[1], a[2], a[3])
}

// Vec4FromColor converts any colour into a non-premultiplied RGBA Vec4 in [0, 1].
func Vec4FromColor(c color.Color) Vec4 {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Vec4{
		X: float32(n.R) / 255,
		Y: float32(n.G) / 255,
		Z: float32(n.B) / 255,
		W: float32(n.A) / 255,
	}
}

// Array returns the components as an array.
func (v Vec4) Array() [4]float32 {
	return [4]float32{v.X, v.Y, v.Z, v.W}
}

// NRGBA converts the vector back to an 8-bit colour, clamping every channel to [0, 1].
func (v Vec4) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: channelToByte(v.X),
		G: channelToByte(v.Y),
		B: channelToByte(v.Z),
		A: channelToByte(v.W),
	}
}

// Visible reports whether the colour has a non-zero alpha.
func (v Vec4) Visible() bool {
	return v.W > 0
}

/** @brief Opaque white, the multiplicative identity for tinting. */
func Vec4One() Vec4 {
	return Vec4{X: 1, Y: 1, Z: 1, W: 1}
}

/** @brief Fully transparent black. */
func Vec4Zero() Vec4 {
	return Vec4{}
}

func channelToByte(c float32) uint8 {
	return uint8(Clamp(c, 0, 1)*255 + 0.5)
}
