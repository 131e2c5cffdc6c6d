// Package texture defines the opaque handle used by the UI to reference
// renderer-owned images, and a registry that allocates those handles.
package texture

import (
	"fmt"
	"unsafe"
)

// ID is an opaque, non-owning handle to a texture owned by a renderer
// backend. It is either a plain number or the bit pattern of a native
// pointer; it is never dereferenced and nothing is freed through it.
// Whether it still names a live resource is decided by the backend at draw
// time.
type ID uintptr

// FromInteger wraps n without validation.
func FromInteger(n uintptr) ID {
	return ID(n)
}

// FromNativePointer reinterprets the address held by p as an ID.
func FromNativePointer(p unsafe.Pointer) ID {
	return ID(uintptr(p))
}

// Value returns the raw integer payload.
func (id ID) Value() uintptr {
	return uintptr(id)
}

func (id ID) String() string {
	return fmt.Sprintf("texture#%d", uintptr(id))
}
