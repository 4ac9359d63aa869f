//go:build linux

package micromodule

import (
	"fmt"
	"sync"

	"github.com/ebitengine/purego"
)

// lmIDNewNamespace is glibc's LM_ID_NEWLM: load into a fresh link-map list.
const lmIDNewNamespace = -1

var (
	dlmopenOnce sync.Once
	dlmopenFn   func(lmid int, path string, flags int) uintptr
	dlerrorFn   func() string
	dlmopenErr  error
)

// bindDlmopen resolves dlmopen out of the already-linked libdl. glibc exposes
// it; musl does not, and there the bind fails cleanly instead of at link time.
func bindDlmopen() {
	addr, err := purego.Dlsym(purego.RTLD_DEFAULT, "dlmopen")
	if err != nil || addr == 0 {
		dlmopenErr = fmt.Errorf("namespace isolation unavailable: dlmopen not provided by this libc")
		return
	}
	purego.RegisterFunc(&dlmopenFn, addr)

	if addr, err := purego.Dlsym(purego.RTLD_DEFAULT, "dlerror"); err == nil && addr != 0 {
		purego.RegisterFunc(&dlerrorFn, addr)
	}
}

// openIsolatedImage maps the shared object into a new symbol namespace.
func openIsolatedImage(path string) (uintptr, error) {
	dlmopenOnce.Do(bindDlmopen)
	if dlmopenErr != nil {
		return 0, dlmopenErr
	}
	handle := dlmopenFn(lmIDNewNamespace, path, int(purego.RTLD_LAZY|purego.RTLD_LOCAL))
	if handle == 0 {
		if dlerrorFn != nil {
			if msg := dlerrorFn(); msg != "" {
				return 0, fmt.Errorf("dlmopen %s: %s", path, msg)
			}
		}
		return 0, fmt.Errorf("dlmopen %s failed", path)
	}
	return handle, nil
}
