// dlopen_loader.go: ImageLoader backed by the platform dynamic linker
//
// Copyright (c) 2025 Giovanni Santini
// SPDX-License-Identifier: MIT

//go:build linux || darwin || freebsd

package micromodule

import (
	"fmt"
	"unsafe"

	"github.com/ebitengine/purego"
)

// DlopenLoader maps shared objects through dlopen. Images are opened with
// lazy binding and local symbol visibility so one module's symbols never
// bleed into another's resolution scope. Isolated opens go through dlmopen
// into a fresh namespace, which only Linux provides.
type DlopenLoader struct{}

// NewDlopenLoader creates the production loader for this platform.
func NewDlopenLoader() *DlopenLoader {
	return &DlopenLoader{}
}

// Open implements ImageLoader.
func (l *DlopenLoader) Open(path string, isolated bool) (ModuleImage, error) {
	var handle uintptr
	var err error
	if isolated {
		handle, err = openIsolatedImage(path)
	} else {
		handle, err = purego.Dlopen(path, purego.RTLD_LAZY|purego.RTLD_LOCAL)
	}
	if err != nil {
		return nil, err
	}
	return &dlopenImage{handle: handle, path: path}, nil
}

// dlopenImage is one mapped shared object and the exclusive owner of its
// dlopen handle.
type dlopenImage struct {
	handle uintptr
	path   string
}

// EntryPoint implements ModuleImage.
func (img *dlopenImage) EntryPoint(symbol string) (EntryPoint, error) {
	addr, err := purego.Dlsym(img.handle, symbol)
	if err != nil {
		return nil, err
	}
	if addr == 0 {
		return nil, fmt.Errorf("symbol %q resolved to a null address", symbol)
	}
	var fn EntryPoint
	purego.RegisterFunc(&fn, addr)
	return fn, nil
}

// CString implements ModuleImage. The symbol must name a null-terminated
// character array inside the image; the bytes are copied into Go memory.
func (img *dlopenImage) CString(symbol string) (string, error) {
	addr, err := purego.Dlsym(img.handle, symbol)
	if err != nil {
		return "", err
	}
	if addr == 0 {
		return "", fmt.Errorf("symbol %q resolved to a null address", symbol)
	}
	return goString(addr), nil
}

// Close implements ModuleImage.
func (img *dlopenImage) Close() error {
	return purego.Dlclose(img.handle)
}

// goString copies the null-terminated bytes at addr into a Go string.
func goString(addr uintptr) string {
	if addr == 0 {
		return ""
	}
	length := 0
	for *(*byte)(unsafe.Pointer(addr + uintptr(length))) != 0 {
		length++
	}
	if length == 0 {
		return ""
	}
	return string(unsafe.Slice((*byte)(unsafe.Pointer(addr)), length))
}
