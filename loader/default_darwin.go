//go:build darwin

package loader

import (
	"fmt"

	"github.com/ebitengine/purego"
)

const openGLFramework = "/System/Library/Frameworks/OpenGL.framework/OpenGL"

// Default returns a resolver backed by the OpenGL framework's export table.
func Default() (LoadFunc, error) {
	handle, err := purego.Dlopen(openGLFramework, purego.RTLD_GLOBAL|purego.RTLD_LAZY)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", openGLFramework, err)
	}
	return func(name string) uintptr {
		addr, err := purego.Dlsym(handle, name)
		if err != nil {
			return 0
		}
		return addr
	}, nil
}
