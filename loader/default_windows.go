//go:build windows

package loader

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Default returns a resolver backed by opengl32.dll. Extension and post-1.1
// entry points come from wglGetProcAddress, which only answers while a
// context is current; GL 1.1 entry points come from the DLL exports.
func Default() (LoadFunc, error) {
	opengl32 := windows.NewLazySystemDLL("opengl32.dll")
	if err := opengl32.Load(); err != nil {
		return nil, fmt.Errorf("load opengl32.dll: %w", err)
	}
	wglGetProcAddress := opengl32.NewProc("wglGetProcAddress")

	return func(name string) uintptr {
		cname, err := windows.BytePtrFromString(name)
		if err != nil {
			return 0
		}
		if addr, _, _ := wglGetProcAddress.Call(uintptr(unsafe.Pointer(cname))); ValidAddr(addr) {
			return addr
		}
		proc := opengl32.NewProc(name)
		if err := proc.Find(); err != nil {
			return 0
		}
		return proc.Addr()
	}, nil
}
