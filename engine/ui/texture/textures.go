package texture

import (
	"errors"
	"fmt"
	"iter"
	"slices"
)

const maxID = ^uintptr(0)

var (
	ErrTextureNotFound  = errors.New("texture not found")
	ErrCapacityExceeded = errors.New("texture identifier space exhausted")
)

// Textures maps sequentially allocated IDs to renderer resources of type T.
//
// IDs handed out by Insert are never reused during the lifetime of the
// registry, removing an entry does not recycle its ID. Replace may store
// values under any ID and does not move the allocation counter.
//
// Textures is not safe for concurrent use.
type Textures[T any] struct {
	textures map[ID]T
	next     uintptr
	// set once the counter has handed out maxID
	exhausted bool
}

func NewTextures[T any]() *Textures[T] {
	return &Textures[T]{
		textures: make(map[ID]T),
	}
}

// Insert takes ownership of resource and returns the ID assigned to it.
func (t *Textures[T]) Insert(resource T) (ID, error) {
	if t.exhausted {
		return 0, ErrCapacityExceeded
	}
	id := ID(t.next)
	t.textures[id] = resource
	if t.next == maxID {
		t.exhausted = true
	} else {
		t.next++
	}
	return id, nil
}

// Replace stores resource under id whether or not the id exists and returns
// the value it displaced, if any.
func (t *Textures[T]) Replace(id ID, resource T) (T, bool) {
	previous, ok := t.textures[id]
	t.textures[id] = resource
	return previous, ok
}

// Remove deletes the entry and hands its value back to the caller.
func (t *Textures[T]) Remove(id ID) (T, bool) {
	resource, ok := t.textures[id]
	if ok {
		delete(t.textures, id)
	}
	return resource, ok
}

// Get returns the value stored under id. The registry keeps ownership.
func (t *Textures[T]) Get(id ID) (T, bool) {
	resource, ok := t.textures[id]
	return resource, ok
}

func (t *Textures[T]) Contains(id ID) bool {
	_, ok := t.textures[id]
	return ok
}

// Resolve returns id back if it is registered, or an error wrapping
// ErrTextureNotFound.
func (t *Textures[T]) Resolve(id ID) (ID, error) {
	if !t.Contains(id) {
		return id, fmt.Errorf("resolve %s: %w", id, ErrTextureNotFound)
	}
	return id, nil
}

func (t *Textures[T]) Len() int {
	return len(t.textures)
}

// All yields every entry in ascending ID order.
func (t *Textures[T]) All() iter.Seq2[ID, T] {
	return func(yield func(ID, T) bool) {
		ids := make([]ID, 0, len(t.textures))
		for id := range t.textures {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			if !yield(id, t.textures[id]) {
				return
			}
		}
	}
}
