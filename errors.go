// errors.go: structured error definitions for the micromodule system
//
// Copyright (c) 2025 Giovanni Santini
// SPDX-License-Identifier: MIT

package micromodule

import (
	"github.com/agilira/go-errors"
)

// Error codes for the micromodule system
const (
	// Lifecycle errors (1000-1099). One code per failure kind of the core
	// load/unload protocol; each maps to a stable integer status, see status.go.
	ErrCodeNullArgument        = "MODULE_1001"
	ErrCodeOpenModulesDir      = "MODULE_1002"
	ErrCodeCloseModulesDir     = "MODULE_1003"
	ErrCodeLocatingInitSymbol  = "MODULE_1004"
	ErrCodeLocatingExitSymbol  = "MODULE_1005"
	ErrCodeLocatingNameSymbol  = "MODULE_1006"
	ErrCodeOpeningModule       = "MODULE_1007"
	ErrCodeClosingModule       = "MODULE_1008"
	ErrCodeAllocatingMemory    = "MODULE_1009"
	ErrCodeModuleNotRegistered = "MODULE_1010"
	ErrCodeArgumentNull        = "MODULE_1011"

	// Manifest errors (1100-1199)
	ErrCodeManifestRead    = "MANIFEST_1101"
	ErrCodeManifestParse   = "MANIFEST_1102"
	ErrCodeManifestInvalid = "MANIFEST_1103"

	// Manifest watcher errors (1200-1299)
	ErrCodeWatcher = "WATCHER_1201"
)

// Lifecycle error constructors

func NewNullArgumentError(what string) *errors.Error {
	return errors.New(ErrCodeNullArgument, "Null argument").
		WithUserMessage("A required argument was empty").
		WithContext("argument", what).
		WithSeverity("error")
}

func NewOpenModulesDirError(dir string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeOpenModulesDir, "Failed to open modules directory").
		WithUserMessage("The modules directory could not be opened for enumeration").
		WithContext("directory", dir).
		WithSeverity("error")
}

func NewCloseModulesDirError(dir string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeCloseModulesDir, "Failed to close modules directory").
		WithUserMessage("The modules directory could not be closed after enumeration").
		WithContext("directory", dir).
		WithSeverity("error")
}

func NewLocatingInitSymbolError(path, symbol string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeLocatingInitSymbol, "Failed to locate init symbol").
		WithUserMessage("The module does not export the configured init entry point").
		WithContext("module_path", path).
		WithContext("symbol", symbol).
		WithSeverity("error")
}

func NewLocatingExitSymbolError(path, symbol string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeLocatingExitSymbol, "Failed to locate exit symbol").
		WithUserMessage("The module does not export the configured exit entry point").
		WithContext("module_path", path).
		WithContext("symbol", symbol).
		WithSeverity("error")
}

func NewLocatingNameSymbolError(path, symbol string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeLocatingNameSymbol, "Failed to locate name symbol").
		WithUserMessage("The module does not export the configured identifier symbol").
		WithContext("module_path", path).
		WithContext("symbol", symbol).
		WithSeverity("error")
}

func NewOpeningModuleError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeOpeningModule, "Failed to open module").
		WithUserMessage("The shared object could not be mapped into the process").
		WithContext("module_path", path).
		WithSeverity("error")
}

func NewClosingModuleError(name, path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeClosingModule, "Failed to close module").
		WithUserMessage("The module image could not be unmapped; its exit entry has already run").
		WithContext("module_name", name).
		WithContext("module_path", path).
		WithSeverity("error")
}

func NewAllocatingMemoryError(cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeAllocatingMemory, "Failed to allocate memory").
		WithUserMessage("A module record could not be allocated").
		WithSeverity("error")
}

func NewModuleNotRegisteredError(name string) *errors.Error {
	return errors.New(ErrCodeModuleNotRegistered, "Module not registered").
		WithUserMessage("No loaded module carries the requested name").
		WithContext("module_name", name).
		WithSeverity("warning")
}

func NewArgumentNullError(what string) *errors.Error {
	return errors.New(ErrCodeArgumentNull, "Argument null").
		WithUserMessage("A required name argument was empty").
		WithContext("argument", what).
		WithSeverity("error")
}

// Manifest error constructors

func NewManifestReadError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeManifestRead, "Failed to read manifest").
		WithUserMessage("The module manifest file could not be read").
		WithContext("manifest_path", path).
		WithSeverity("error")
}

func NewManifestParseError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeManifestParse, "Failed to parse manifest").
		WithUserMessage("The module manifest file is not valid JSON or YAML").
		WithContext("manifest_path", path).
		WithSeverity("error")
}

func NewManifestInvalidError(message string) *errors.Error {
	return errors.New(ErrCodeManifestInvalid, "Invalid manifest: "+message).
		WithUserMessage("The module manifest failed validation").
		WithSeverity("error")
}

// Watcher error constructors

func NewWatcherError(message string, cause error) *errors.Error {
	if cause != nil {
		return errors.Wrap(cause, ErrCodeWatcher, "Manifest watcher error: "+message).
			WithSeverity("error")
	}
	return errors.New(ErrCodeWatcher, "Manifest watcher error: "+message).
		WithSeverity("error")
}
