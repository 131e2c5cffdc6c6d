package ui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/anima-ui/engine/math"
	"github.com/spaghettifunk/anima-ui/engine/ui/texture"
)

type drawCall struct {
	id     texture.ID
	size   math.Vec2
	uv0    math.Vec2
	uv1    math.Vec2
	tint   math.Vec4
	border math.Vec4
}

type spyDrawer struct {
	calls []drawCall
}

func (s *spyDrawer) DrawImage(id texture.ID, size, uv0, uv1 math.Vec2, tint, border math.Vec4) {
	s.calls = append(s.calls, drawCall{id: id, size: size, uv0: uv0, uv1: uv1, tint: tint, border: border})
}

func TestImageDefaults(t *testing.T) {
	spy := &spyDrawer{}
	NewImage(texture.FromInteger(42), math.NewVec2(100, 50)).Build(spy)

	require.Len(t, spy.calls, 1)
	assert.Equal(t, drawCall{
		id:     texture.ID(42),
		size:   math.Vec2{X: 100, Y: 50},
		uv0:    math.Vec2{X: 0, Y: 0},
		uv1:    math.Vec2{X: 1, Y: 1},
		tint:   math.Vec4{X: 1, Y: 1, Z: 1, W: 1},
		border: math.Vec4{X: 0, Y: 0, Z: 0, W: 0},
	}, spy.calls[0])
}

func TestImageLastWriteWins(t *testing.T) {
	spy := &spyDrawer{}
	NewImage(texture.ID(3), math.NewVec2(1, 1)).
		Size(math.NewVec2(10, 10)).
		UV0(math.NewVec2(0.1, 0.1)).
		TintCol(math.NewVec4(1, 0, 0, 1)).
		Size(math.NewVec2(32, 16)).
		UV0(math.NewVec2(0.25, 0.5)).
		UV1(math.NewVec2(2, 3)).
		TintCol(math.NewVec4(0, 1, 0, 0.5)).
		BorderCol(math.NewVec4(1, 1, 0, 1)).
		Build(spy)

	require.Len(t, spy.calls, 1)
	call := spy.calls[0]
	assert.Equal(t, math.Vec2{X: 32, Y: 16}, call.size)
	assert.Equal(t, math.Vec2{X: 0.25, Y: 0.5}, call.uv0)
	assert.Equal(t, math.Vec2{X: 2, Y: 3}, call.uv1, "values outside [0, 1] are passed through")
	assert.Equal(t, math.Vec4{X: 0, Y: 1, Z: 0, W: 0.5}, call.tint)
	assert.Equal(t, math.Vec4{X: 1, Y: 1, Z: 0, W: 1}, call.border)
}

func TestImageSettersReturnCopies(t *testing.T) {
	spy := &spyDrawer{}
	base := NewImage(texture.ID(1), math.NewVec2(8, 8))
	_ = base.TintCol(math.NewVec4(0, 0, 0, 1))
	base.Build(spy)

	require.Len(t, spy.calls, 1)
	assert.Equal(t, math.Vec4One(), spy.calls[0].tint)
}

func TestDeferredImageDraws(t *testing.T) {
	spy := &spyDrawer{}
	err := NewDeferredImage(texture.ID(42), nil, math.NewVec2(100, 50)).
		BorderCol(math.NewVec4(0, 0, 0, 1)).
		Build(spy)

	require.NoError(t, err)
	require.Len(t, spy.calls, 1)
	assert.Equal(t, texture.ID(42), spy.calls[0].id)
	assert.Equal(t, math.Vec2{X: 100, Y: 50}, spy.calls[0].size)
	assert.Equal(t, math.Vec2One(), spy.calls[0].uv1)
	assert.Equal(t, math.Vec4{W: 1}, spy.calls[0].border)
}

func TestDeferredImageKeepsError(t *testing.T) {
	lookupErr := errors.New("no texture named logo")
	spy := &spyDrawer{}

	err := NewDeferredImage(texture.ID(0), lookupErr, math.NewVec2(10, 10)).
		Size(math.NewVec2(20, 20)).
		UV0(math.NewVec2(0.5, 0.5)).
		UV1(math.NewVec2(1, 1)).
		TintCol(math.NewVec4(1, 0, 0, 1)).
		BorderCol(math.NewVec4(0, 0, 1, 1)).
		Build(spy)

	assert.Same(t, lookupErr, err)
	assert.Empty(t, spy.calls)
}

func TestDeferredImageFromRegistryLookup(t *testing.T) {
	textures := texture.NewTextures[string]()
	spy := &spyDrawer{}

	id, err := textures.Resolve(texture.ID(5))
	err = NewDeferredImage(id, err, math.NewVec2(4, 4)).Build(spy)
	assert.ErrorIs(t, err, texture.ErrTextureNotFound)
	assert.Empty(t, spy.calls)

	inserted, err := textures.Insert("logo")
	require.NoError(t, err)
	id, err = textures.Resolve(inserted)
	require.NoError(t, NewDeferredImage(id, err, math.NewVec2(4, 4)).Build(spy))
	require.Len(t, spy.calls, 1)
	assert.Equal(t, inserted, spy.calls[0].id)
}
