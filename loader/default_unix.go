//go:build linux || freebsd

package loader

import (
	"fmt"

	"github.com/ebitengine/purego"
)

// Default returns a resolver backed by libGL. Symbols are looked up through
// glXGetProcAddressARB first and the library's export table second.
func Default() (LoadFunc, error) {
	handle, err := purego.Dlopen("libGL.so.1", purego.RTLD_LAZY|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("open libGL.so.1: %w", err)
	}

	var getProcAddress func(*byte) uintptr
	if _, err := purego.Dlsym(handle, "glXGetProcAddressARB"); err == nil {
		purego.RegisterLibFunc(&getProcAddress, handle, "glXGetProcAddressARB")
	}

	return func(name string) uintptr {
		if getProcAddress != nil {
			if addr := getProcAddress(CString(name)); ValidAddr(addr) {
				return addr
			}
		}
		addr, err := purego.Dlsym(handle, name)
		if err != nil {
			return 0
		}
		return addr
	}, nil
}
