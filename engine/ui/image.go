// Package ui holds the immediate-mode widgets of the engine. Widgets only
// describe what to draw; the actual drawing is done by an ImageDrawer
// provided by the renderer for the current frame.
package ui

import (
	"github.com/spaghettifunk/anima-ui/engine/math"
	"github.com/spaghettifunk/anima-ui/engine/ui/texture"
)

// ImageDrawer is the draw primitive of a renderer backend. DrawImage places
// the image at the backend's current layout cursor and advances it.
type ImageDrawer interface {
	DrawImage(id texture.ID, size, uv0, uv1 math.Vec2, tint, border math.Vec4)
}

type imageParams struct {
	size      math.Vec2
	uv0       math.Vec2
	uv1       math.Vec2
	tintCol   math.Vec4
	borderCol math.Vec4
}

func defaultImageParams(size math.Vec2) imageParams {
	return imageParams{
		size:      size,
		uv0:       math.Vec2Zero(),
		uv1:       math.Vec2One(),
		tintCol:   math.Vec4One(),
		borderCol: math.Vec4Zero(),
	}
}

func (p imageParams) draw(d ImageDrawer, id texture.ID) {
	d.DrawImage(id, p.size, p.uv0, p.uv1, p.tintCol, p.borderCol)
}

// Image draws a texture whose ID is known to be valid.
//
//	ui.NewImage(id, math.NewVec2(64, 64)).TintCol(red).Build(frame)
//
// An Image is meant to be built once; setters return modified copies.
type Image struct {
	id texture.ID
	imageParams
}

// NewImage starts an image of the given size showing the whole texture,
// untinted and without border.
func NewImage(id texture.ID, size math.Vec2) Image {
	return Image{id: id, imageParams: defaultImageParams(size)}
}

func (i Image) Size(size math.Vec2) Image {
	i.size = size
	return i
}

// UV0 sets the top-left texture coordinate.
func (i Image) UV0(uv0 math.Vec2) Image {
	i.uv0 = uv0
	return i
}

// UV1 sets the bottom-right texture coordinate.
func (i Image) UV1(uv1 math.Vec2) Image {
	i.uv1 = uv1
	return i
}

func (i Image) TintCol(tint math.Vec4) Image {
	i.tintCol = tint
	return i
}

func (i Image) BorderCol(border math.Vec4) Image {
	i.borderCol = border
	return i
}

// Build draws the image.
func (i Image) Build(d ImageDrawer) {
	i.draw(d, i.id)
}

// DeferredImage is an Image whose texture lookup may have failed. The
// failure is kept until Build so that the setter chain is never broken.
//
//	id, err := textureSystem.Resolve("logo")
//	err = ui.NewDeferredImage(id, err, size).Build(frame)
type DeferredImage struct {
	id  texture.ID
	err error
	imageParams
}

// NewDeferredImage stores the result of a texture lookup. When err is not
// nil id is ignored.
func NewDeferredImage(id texture.ID, err error, size math.Vec2) DeferredImage {
	return DeferredImage{id: id, err: err, imageParams: defaultImageParams(size)}
}

func (i DeferredImage) Size(size math.Vec2) DeferredImage {
	i.size = size
	return i
}

func (i DeferredImage) UV0(uv0 math.Vec2) DeferredImage {
	i.uv0 = uv0
	return i
}

func (i DeferredImage) UV1(uv1 math.Vec2) DeferredImage {
	i.uv1 = uv1
	return i
}

func (i DeferredImage) TintCol(tint math.Vec4) DeferredImage {
	i.tintCol = tint
	return i
}

func (i DeferredImage) BorderCol(border math.Vec4) DeferredImage {
	i.borderCol = border
	return i
}

// Build returns the stored lookup error unchanged without drawing, or draws
// the image and returns nil.
func (i DeferredImage) Build(d ImageDrawer) error {
	if i.err != nil {
		return i.err
	}
	i.draw(d, i.id)
	return nil
}
