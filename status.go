// status.go: stable integer status codes mirroring the original C ABI
//
// Copyright (c) 2025 Giovanni Santini
// SPDX-License-Identifier: MIT

package micromodule

import (
	"errors"
	"fmt"

	goerrors "github.com/agilira/go-errors"
)

// Status is the stable integer return contract of the lifecycle operations.
// Zero means success, negative values identify one failure kind each. The
// numeric values are frozen; hosts that bridge back into C code may rely on
// them never changing.
type Status int32

const (
	StatusOK                  Status = 0
	StatusNullArgument        Status = -1
	StatusOpenModulesDir      Status = -2
	StatusCloseModulesDir     Status = -3
	StatusLocatingInitSymbol  Status = -4
	StatusLocatingExitSymbol  Status = -5
	StatusLocatingNameSymbol  Status = -6
	StatusOpeningModule       Status = -7
	StatusClosingModule       Status = -8
	StatusAllocatingMemory    Status = -9
	StatusModuleNotRegistered Status = -10
	StatusArgumentNull        Status = -11

	// StatusUnrecognized is reported for errors that fall outside the frozen
	// lifecycle table: manifest and watcher failures, or foreign errors a
	// custom ImageLoader returned without wrapping.
	StatusUnrecognized Status = -12
)

// String implements fmt.Stringer for diagnostic output.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNullArgument:
		return "null_argument"
	case StatusOpenModulesDir:
		return "open_modules_directory"
	case StatusCloseModulesDir:
		return "close_modules_directory"
	case StatusLocatingInitSymbol:
		return "locating_init_symbol"
	case StatusLocatingExitSymbol:
		return "locating_exit_symbol"
	case StatusLocatingNameSymbol:
		return "locating_name_symbol"
	case StatusOpeningModule:
		return "opening_module"
	case StatusClosingModule:
		return "closing_module"
	case StatusAllocatingMemory:
		return "allocating_memory"
	case StatusModuleNotRegistered:
		return "module_not_registered"
	case StatusArgumentNull:
		return "argument_null"
	case StatusUnrecognized:
		return "unrecognized"
	default:
		return fmt.Sprintf("status(%d)", int32(s))
	}
}

// statusByCode maps structured error codes onto the frozen integer table.
var statusByCode = map[string]Status{
	ErrCodeNullArgument:        StatusNullArgument,
	ErrCodeOpenModulesDir:      StatusOpenModulesDir,
	ErrCodeCloseModulesDir:     StatusCloseModulesDir,
	ErrCodeLocatingInitSymbol:  StatusLocatingInitSymbol,
	ErrCodeLocatingExitSymbol:  StatusLocatingExitSymbol,
	ErrCodeLocatingNameSymbol:  StatusLocatingNameSymbol,
	ErrCodeOpeningModule:       StatusOpeningModule,
	ErrCodeClosingModule:       StatusClosingModule,
	ErrCodeAllocatingMemory:    StatusAllocatingMemory,
	ErrCodeModuleNotRegistered: StatusModuleNotRegistered,
	ErrCodeArgumentNull:        StatusArgumentNull,
}

// StatusOf collapses any error returned by this package into the stable
// integer contract. A nil error reports StatusOK. A ModuleInitError reports
// the module's own init status verbatim; it is domain data from the plugin,
// never one of the core codes. Everything else maps through the error code
// table, falling back to StatusUnrecognized.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOK
	}
	var initErr *ModuleInitError
	if errors.As(err, &initErr) {
		return initErr.Status
	}
	var coded *goerrors.Error
	if errors.As(err, &coded) {
		if status, ok := statusByCode[string(coded.Code)]; ok {
			return status
		}
	}
	return StatusUnrecognized
}

// ModuleInitError reports a module whose init entry point returned non-zero.
// The module stays registered: it may have partially initialized shared state
// that only its own exit entry knows how to tear down. The status is carried
// verbatim and deliberately kept outside the coded error space.
type ModuleInitError struct {
	Name   string
	Path   string
	Status Status
}

// Error implements the error interface.
func (e *ModuleInitError) Error() string {
	return fmt.Sprintf("module %q init entry returned status %d", e.Name, int32(e.Status))
}
