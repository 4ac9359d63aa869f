// types.go: core types for the module lifecycle system
//
// Copyright (c) 2025 Giovanni Santini
// SPDX-License-Identifier: MIT

package micromodule

import (
	"time"

	"github.com/agilira/go-timecache"
)

// Default symbol names a module is expected to export.
const (
	DefaultNameSymbol = "micro_module_name"
	DefaultInitSymbol = "micro_module_init"
	DefaultExitSymbol = "micro_module_exit"
)

// SymbolConfig fixes the three exported symbol names a module must carry and
// whether images are mapped into an isolated symbol namespace. It is set once
// at manager construction and never mutated afterwards; every load operation
// reads the same shared copy.
type SymbolConfig struct {
	// NameSymbol is the exported identifier string (default "micro_module_name")
	NameSymbol string `json:"name_symbol" yaml:"name_symbol"`

	// InitSymbol is the exported init entry point (default "micro_module_init")
	InitSymbol string `json:"init_symbol" yaml:"init_symbol"`

	// ExitSymbol is the exported exit entry point (default "micro_module_exit")
	ExitSymbol string `json:"exit_symbol" yaml:"exit_symbol"`

	// IsolatedNamespace maps each image into a fresh symbol namespace so it
	// cannot resolve symbols from the host or from other loaded modules.
	// Supported on Linux via dlmopen; Open fails elsewhere when set.
	IsolatedNamespace bool `json:"isolated_namespace" yaml:"isolated_namespace"`
}

// DefaultSymbolConfig returns the conventional symbol names with namespace
// isolation disabled.
func DefaultSymbolConfig() SymbolConfig {
	return SymbolConfig{
		NameSymbol: DefaultNameSymbol,
		InitSymbol: DefaultInitSymbol,
		ExitSymbol: DefaultExitSymbol,
	}
}

// withDefaults fills empty symbol names with the conventional ones.
func (c SymbolConfig) withDefaults() SymbolConfig {
	if c.NameSymbol == "" {
		c.NameSymbol = DefaultNameSymbol
	}
	if c.InitSymbol == "" {
		c.InitSymbol = DefaultInitSymbol
	}
	if c.ExitSymbol == "" {
		c.ExitSymbol = DefaultExitSymbol
	}
	return c
}

// EntryPoint is a resolved module entry point: one opaque context word in,
// integer status out. The context word is passed through unmodified; the
// library never inspects or dereferences it.
type EntryPoint func(arg uintptr) int32

// ModuleState tracks where a module is in its lifecycle.
type ModuleState int

const (
	// StateUnloaded means the module is not registered.
	StateUnloaded ModuleState = iota

	// StateLoading means the image is mapped but symbols are still resolving.
	StateLoading

	// StateLoaded means the module is registered and its image is mapped.
	StateLoaded

	// StateUnloading means the exit entry ran but the image is still mapped.
	// An entry observed in this state after a failed unload is the documented
	// "exited but still tracked" anomaly: its image could not be unmapped.
	StateUnloading
)

// String implements fmt.Stringer for ModuleState.
func (s ModuleState) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateUnloading:
		return "unloading"
	default:
		return "unknown"
	}
}

// LoadedModule is one currently loaded plugin: the name it exports, both
// resolved entry points, and the image that owns them. It is never built
// partially; all three symbols resolve or the image is closed and the record
// discarded. The registry exclusively owns every record it holds.
type LoadedModule struct {
	name         string
	path         string
	init         EntryPoint
	exit         EntryPoint
	image        ModuleImage
	state        ModuleState
	loadedAtNano int64
}

func newLoadedModule(name, path string, init, exit EntryPoint, image ModuleImage) *LoadedModule {
	return &LoadedModule{
		name:         name,
		path:         path,
		init:         init,
		exit:         exit,
		image:        image,
		state:        StateLoading,
		loadedAtNano: timecache.CachedTimeNano(),
	}
}

// Name returns the identifier string the module exported at load time.
func (m *LoadedModule) Name() string { return m.name }

// Path returns the file path the module was loaded from.
func (m *LoadedModule) Path() string { return m.path }

// State returns the module's current lifecycle state.
func (m *LoadedModule) State() ModuleState { return m.state }

// Info returns a point-in-time snapshot of the module.
func (m *LoadedModule) Info() ModuleInfo {
	return ModuleInfo{
		Name:     m.name,
		Path:     m.path,
		State:    m.state,
		LoadedAt: time.Unix(0, m.loadedAtNano),
	}
}

// ModuleInfo is a read-only snapshot of one registered module.
type ModuleInfo struct {
	Name     string      `json:"name"`
	Path     string      `json:"path"`
	State    ModuleState `json:"state"`
	LoadedAt time.Time   `json:"loaded_at"`
}
