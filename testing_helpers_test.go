// testing_helpers_test.go: scripted loader and enumerator fakes
//
// The fakes drive every lifecycle path without touching the platform linker:
// each path maps to a moduleSpec whose behavior (exported name, entry point
// statuses, missing symbols, open and close failures) is set per test. Specs
// record every call so tests can assert exact ordering.
//
// Copyright (c) 2025 Giovanni Santini
// SPDX-License-Identifier: MIT

package micromodule

import (
	"errors"
	"fmt"
	"testing"

	goerrors "github.com/agilira/go-errors"
)

// moduleSpec scripts the behavior of one loadable path and records what
// happened to it.
type moduleSpec struct {
	name       string
	initStatus int32
	exitStatus int32

	omitInit bool
	omitExit bool
	omitName bool
	openErr  error
	closeErr error // returned by every Close while set

	initCalls   int
	exitCalls   int
	lastInitArg uintptr
	lastExitArg uintptr
	images      []*fakeImage
}

// fakeLoader implements ImageLoader over a table of scripted paths. It
// interprets symbol names through its own SymbolConfig, which must match the
// manager under test.
type fakeLoader struct {
	symbols SymbolConfig
	modules map[string]*moduleSpec

	opens        []string
	lastIsolated bool
	events       []string // open:, init:, exit:, close: in call order
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{
		symbols: DefaultSymbolConfig(),
		modules: make(map[string]*moduleSpec),
	}
}

// add scripts a well-formed module at path exporting the given name.
func (l *fakeLoader) add(path, name string) *moduleSpec {
	spec := &moduleSpec{name: name}
	l.modules[path] = spec
	return spec
}

func (l *fakeLoader) Open(path string, isolated bool) (ModuleImage, error) {
	l.lastIsolated = isolated
	l.opens = append(l.opens, path)
	spec, ok := l.modules[path]
	if !ok {
		return nil, fmt.Errorf("%s: cannot open shared object file", path)
	}
	if spec.openErr != nil {
		return nil, spec.openErr
	}
	l.events = append(l.events, "open:"+path)
	image := &fakeImage{loader: l, spec: spec}
	spec.images = append(spec.images, image)
	return image, nil
}

// fakeImage is one scripted mapped image. closed counts Close attempts so
// tests can assert an image was released exactly once.
type fakeImage struct {
	loader *fakeLoader
	spec   *moduleSpec
	closed int
}

func (img *fakeImage) EntryPoint(symbol string) (EntryPoint, error) {
	spec := img.spec
	switch symbol {
	case img.loader.symbols.InitSymbol:
		if spec.omitInit {
			return nil, errors.New("undefined symbol: " + symbol)
		}
		return func(arg uintptr) int32 {
			spec.initCalls++
			spec.lastInitArg = arg
			img.loader.events = append(img.loader.events, "init:"+spec.name)
			return spec.initStatus
		}, nil
	case img.loader.symbols.ExitSymbol:
		if spec.omitExit {
			return nil, errors.New("undefined symbol: " + symbol)
		}
		return func(arg uintptr) int32 {
			spec.exitCalls++
			spec.lastExitArg = arg
			img.loader.events = append(img.loader.events, "exit:"+spec.name)
			return spec.exitStatus
		}, nil
	}
	return nil, errors.New("undefined symbol: " + symbol)
}

func (img *fakeImage) CString(symbol string) (string, error) {
	if symbol == img.loader.symbols.NameSymbol && !img.spec.omitName {
		return img.spec.name, nil
	}
	return "", errors.New("undefined symbol: " + symbol)
}

func (img *fakeImage) Close() error {
	img.closed++
	img.loader.events = append(img.loader.events, "close:"+img.spec.name)
	if img.spec.closeErr != nil {
		return img.spec.closeErr
	}
	return nil
}

// fakeEnumerator implements Enumerator with a fixed listing.
type fakeEnumerator struct {
	paths []string
	err   error
}

func (f fakeEnumerator) List(dir string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.paths, nil
}

// newTestManager builds a silent manager over a fresh fake loader with the
// default symbol configuration.
func newTestManager() (*Manager, *fakeLoader) {
	loader := newFakeLoader()
	manager := NewManager(ManagerConfig{Loader: loader})
	return manager, loader
}

// registeredNames reports the registry contents in iteration order.
func registeredNames(t *testing.T, m *Manager) []string {
	t.Helper()
	return m.Registry().Names()
}

// assertStatus checks an error's stable integer mapping.
func assertStatus(t *testing.T, err error, want Status) {
	t.Helper()
	if got := StatusOf(err); got != want {
		t.Fatalf("StatusOf(%v) = %d (%s), want %d (%s)", err, got, got, want, want)
	}
}

// assertErrorCode checks the structured code of errors outside the frozen
// integer table, manifest and watcher failures mostly.
func assertErrorCode(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", want)
	}
	var coded *goerrors.Error
	if !errors.As(err, &coded) {
		t.Fatalf("expected structured error with code %s, got %T: %v", want, err, err)
	}
	if string(coded.Code) != want {
		t.Fatalf("expected error code %s, got %s: %v", want, coded.Code, err)
	}
}
