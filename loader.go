// loader.go: dynamic loading abstraction over platform shared objects
//
// Copyright (c) 2025 Giovanni Santini
// SPDX-License-Identifier: MIT

package micromodule

// ImageLoader maps shared objects into the process. The production
// implementation is DlopenLoader; tests substitute scripted loaders to drive
// the lifecycle without touching the platform linker.
//
// Open maps the shared object at path. When isolated is true the image goes
// into a fresh symbol namespace so it cannot resolve symbols from the host or
// from other loaded modules, and vice versa. A failed Open holds no resources.
// Implementations return plain errors; the manager wraps them into coded
// errors at the operation boundary.
type ImageLoader interface {
	Open(path string, isolated bool) (ModuleImage, error)
}

// ModuleImage is one mapped shared object. The image exclusively owns the
// underlying handle until Close. Symbol resolution is a pure lookup with no
// side effects beyond what the platform loader does internally.
//
// Close unmaps the image. It must only be called after the module's exit
// entry point has returned, never before; that ordering is a hard contract
// of the whole system, enforced by the manager.
type ModuleImage interface {
	// EntryPoint resolves an exported function symbol to a callable.
	EntryPoint(symbol string) (EntryPoint, error)

	// CString resolves an exported symbol holding a null-terminated string
	// and copies it out. The copy stays valid after the image is unmapped.
	CString(symbol string) (string, error)

	// Close unmaps the image and releases the handle.
	Close() error
}
