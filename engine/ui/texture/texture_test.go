package texture

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDConstruction(t *testing.T) {
	id := FromInteger(42)
	assert.Equal(t, uintptr(42), id.Value())
	assert.Equal(t, "texture#42", id.String())

	var pixel [4]byte
	p := unsafe.Pointer(&pixel)
	assert.Equal(t, uintptr(p), FromNativePointer(p).Value())
	assert.Equal(t, FromNativePointer(p), FromNativePointer(p))
}

func TestIDIsAMapKey(t *testing.T) {
	names := map[ID]string{FromInteger(1): "one"}
	assert.Equal(t, "one", names[ID(1)])
}

func TestInsertAllocatesSequentialIDs(t *testing.T) {
	textures := NewTextures[string]()

	first, err := textures.Insert("first")
	require.NoError(t, err)
	assert.Equal(t, ID(0), first)

	second, err := textures.Insert("second")
	require.NoError(t, err)
	assert.Equal(t, ID(1), second)

	_, ok := textures.Remove(first)
	require.True(t, ok)

	third, err := textures.Insert("third")
	require.NoError(t, err)
	assert.Equal(t, ID(2), third, "removed ids are not recycled")
}

func TestGetAndRemove(t *testing.T) {
	textures := NewTextures[string]()
	id, err := textures.Insert("grass")
	require.NoError(t, err)

	v, ok := textures.Get(id)
	require.True(t, ok)
	assert.Equal(t, "grass", v)

	removed, ok := textures.Remove(id)
	require.True(t, ok)
	assert.Equal(t, "grass", removed)

	_, ok = textures.Get(id)
	assert.False(t, ok)

	_, ok = textures.Remove(id)
	assert.False(t, ok)
}

func TestReplace(t *testing.T) {
	textures := NewTextures[string]()

	previous, existed := textures.Replace(ID(99), "new")
	assert.False(t, existed)
	assert.Empty(t, previous)
	v, ok := textures.Get(ID(99))
	require.True(t, ok)
	assert.Equal(t, "new", v)

	previous, existed = textures.Replace(ID(99), "newer")
	assert.True(t, existed)
	assert.Equal(t, "new", previous)
	v, _ = textures.Get(ID(99))
	assert.Equal(t, "newer", v)

	id, err := textures.Insert("inserted")
	require.NoError(t, err)
	assert.Equal(t, ID(0), id, "replace does not move the allocation counter")
}

func TestResolve(t *testing.T) {
	textures := NewTextures[int]()
	id, err := textures.Insert(7)
	require.NoError(t, err)

	resolved, err := textures.Resolve(id)
	require.NoError(t, err)
	assert.Equal(t, id, resolved)

	_, err = textures.Resolve(ID(12))
	assert.ErrorIs(t, err, ErrTextureNotFound)
}

func TestAllIsOrdered(t *testing.T) {
	textures := NewTextures[string]()
	textures.Replace(ID(10), "ten")
	_, _ = textures.Insert("zero")
	_, _ = textures.Insert("one")

	var ids []ID
	var values []string
	for id, v := range textures.All() {
		ids = append(ids, id)
		values = append(values, v)
	}
	assert.Equal(t, []ID{0, 1, 10}, ids)
	assert.Equal(t, []string{"zero", "one", "ten"}, values)
	assert.Equal(t, 3, textures.Len())
}

func TestInsertReportsExhaustion(t *testing.T) {
	textures := NewTextures[string]()
	textures.next = maxID

	last, err := textures.Insert("last")
	require.NoError(t, err)
	assert.Equal(t, ID(maxID), last)

	_, err = textures.Insert("overflow")
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, 1, textures.Len())
}
