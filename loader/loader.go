// Package loader binds OpenGL entry points resolved at run time to typed Go
// functions. Packages generated by glbind import it; application code only
// needs it for Default and LoadFunc.
//
// Every generated function starts out bound to a failing stub. Binding an
// entry point replaces the stub with a purego trampoline to the resolved
// address; entry points that cannot be resolved keep their stub, which panics
// with a *NotLoadedError the first time it is called.
package loader

import (
	"fmt"
	"unsafe"

	"github.com/ebitengine/purego"
)

// LoadFunc resolves a symbol name such as "glClear" to its address, or 0
// when the symbol is unavailable. A windowing library's GetProcAddress is
// the usual implementation.
type LoadFunc func(name string) uintptr

// NotLoadedError is the value a failing stub panics with.
type NotLoadedError struct {
	Name string
}

func (e *NotLoadedError) Error() string {
	return fmt.Sprintf("loader: %s was not loaded", e.Name)
}

// NotLoaded returns the error a failing stub for name panics with.
func NotLoaded(name string) error {
	return &NotLoadedError{Name: name}
}

// ValidAddr reports whether addr looks like a function address. Some
// wglGetProcAddress implementations return 1, 2, 3 or -1 instead of NULL.
func ValidAddr(addr uintptr) bool {
	switch addr {
	case 0, 1, 2, 3, ^uintptr(0):
		return false
	}
	return true
}

// Resolve looks name up through loadfn, then each fallback in order. It
// returns the first valid address and the name it was found under.
func Resolve(loadfn LoadFunc, name string, fallbacks ...string) (uintptr, string) {
	if loadfn == nil {
		return 0, ""
	}
	if addr := loadfn(name); ValidAddr(addr) {
		return addr, name
	}
	for _, alt := range fallbacks {
		if addr := loadfn(alt); ValidAddr(addr) {
			return addr, alt
		}
	}
	return 0, ""
}

// Bind resolves name (or one of its fallbacks) and stores a callable
// trampoline in slot. When nothing resolves, slot is reset to stub and Bind
// returns false; it never fails otherwise.
func Bind[F any](slot *F, stub F, loadfn LoadFunc, name string, fallbacks ...string) bool {
	addr, _ := Resolve(loadfn, name, fallbacks...)
	if addr == 0 {
		*slot = stub
		return false
	}
	purego.RegisterFunc(slot, addr)
	return true
}

// GoString copies a NUL terminated C string, as returned by glGetString.
func GoString(ptr *byte) string {
	if ptr == nil {
		return ""
	}
	var bytes []byte
	for p := ptr; *p != 0; p = (*byte)(unsafe.Add(unsafe.Pointer(p), 1)) {
		bytes = append(bytes, *p)
	}
	return string(bytes)
}

// CString returns a NUL terminated copy of s for GLchar parameters. The
// caller must keep the result reachable for the duration of the call.
func CString(s string) *byte {
	b := append([]byte(s), 0)
	return &b[0]
}
