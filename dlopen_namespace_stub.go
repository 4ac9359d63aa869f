//go:build darwin || freebsd

package micromodule

import "fmt"

// openIsolatedImage reports that this platform has no dlmopen equivalent.
// Managers configured with IsolatedNamespace fail every Open here; clearing
// the flag falls back to plain dlopen with local visibility.
func openIsolatedImage(path string) (uintptr, error) {
	return 0, fmt.Errorf("namespace isolation is not supported on this platform")
}
