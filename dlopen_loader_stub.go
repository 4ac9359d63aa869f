//go:build !linux && !darwin && !freebsd

package micromodule

import "fmt"

// DlopenLoader is a placeholder on platforms without a dlopen-style linker
// exposed to this library. Construction succeeds so managers can be built
// portably; every Open fails.
type DlopenLoader struct{}

// NewDlopenLoader creates the placeholder loader.
func NewDlopenLoader() *DlopenLoader {
	return &DlopenLoader{}
}

// Open implements ImageLoader.
func (l *DlopenLoader) Open(path string, isolated bool) (ModuleImage, error) {
	return nil, fmt.Errorf("dynamic module loading is not supported on this platform")
}
