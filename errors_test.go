// errors_test.go: structured error constructor tests
//
// Copyright (c) 2025 Giovanni Santini
// SPDX-License-Identifier: MIT

package micromodule

import (
	stderrors "errors"
	"testing"

	"github.com/agilira/go-errors"
)

func TestLifecycleErrorConstructors(t *testing.T) {
	t.Run("NewNullArgumentError", func(t *testing.T) {
		err := NewNullArgumentError("module path")

		if err.ErrorCode() != errors.ErrorCode(ErrCodeNullArgument) {
			t.Errorf("Expected error code %s, got %s", ErrCodeNullArgument, err.ErrorCode())
		}
		if err.Context["argument"] != "module path" {
			t.Errorf("Expected argument context to be %q, got %v", "module path", err.Context["argument"])
		}
		if err.Severity != "error" {
			t.Errorf("Expected severity %q, got %q", "error", err.Severity)
		}
		if err.UserMessage() == "" {
			t.Error("Expected a user message")
		}
	})

	t.Run("NewOpenModulesDirError", func(t *testing.T) {
		cause := stderrors.New("permission denied")
		err := NewOpenModulesDirError("/opt/modules", cause)

		if err.ErrorCode() != errors.ErrorCode(ErrCodeOpenModulesDir) {
			t.Errorf("Expected error code %s, got %s", ErrCodeOpenModulesDir, err.ErrorCode())
		}
		if err.Context["directory"] != "/opt/modules" {
			t.Errorf("Expected directory context, got %v", err.Context["directory"])
		}
		if !stderrors.Is(err, cause) {
			t.Error("Expected wrapped cause to be reachable via errors.Is")
		}
	})

	t.Run("NewLocatingInitSymbolError", func(t *testing.T) {
		cause := stderrors.New("symbol not found")
		err := NewLocatingInitSymbolError("plugins/a.so", "micro_module_init", cause)

		if err.ErrorCode() != errors.ErrorCode(ErrCodeLocatingInitSymbol) {
			t.Errorf("Expected error code %s, got %s", ErrCodeLocatingInitSymbol, err.ErrorCode())
		}
		if err.Context["module_path"] != "plugins/a.so" {
			t.Errorf("Expected module_path context, got %v", err.Context["module_path"])
		}
		if err.Context["symbol"] != "micro_module_init" {
			t.Errorf("Expected symbol context, got %v", err.Context["symbol"])
		}
	})

	t.Run("NewClosingModuleError", func(t *testing.T) {
		cause := stderrors.New("image busy")
		err := NewClosingModuleError("alpha", "plugins/a.so", cause)

		if err.ErrorCode() != errors.ErrorCode(ErrCodeClosingModule) {
			t.Errorf("Expected error code %s, got %s", ErrCodeClosingModule, err.ErrorCode())
		}
		if err.Context["module_name"] != "alpha" {
			t.Errorf("Expected module_name context, got %v", err.Context["module_name"])
		}
		if err.Context["module_path"] != "plugins/a.so" {
			t.Errorf("Expected module_path context, got %v", err.Context["module_path"])
		}
	})

	t.Run("NewModuleNotRegisteredError", func(t *testing.T) {
		err := NewModuleNotRegisteredError("ghost")

		if err.ErrorCode() != errors.ErrorCode(ErrCodeModuleNotRegistered) {
			t.Errorf("Expected error code %s, got %s", ErrCodeModuleNotRegistered, err.ErrorCode())
		}
		// Asking for an absent module is an expected host mistake, not a
		// system fault.
		if err.Severity != "warning" {
			t.Errorf("Expected severity %q, got %q", "warning", err.Severity)
		}
		if err.Context["module_name"] != "ghost" {
			t.Errorf("Expected module_name context, got %v", err.Context["module_name"])
		}
	})

	t.Run("NewArgumentNullError", func(t *testing.T) {
		err := NewArgumentNullError("module name")

		if err.ErrorCode() != errors.ErrorCode(ErrCodeArgumentNull) {
			t.Errorf("Expected error code %s, got %s", ErrCodeArgumentNull, err.ErrorCode())
		}
		if err.Context["argument"] != "module name" {
			t.Errorf("Expected argument context, got %v", err.Context["argument"])
		}
	})
}

func TestManifestErrorConstructors(t *testing.T) {
	t.Run("NewManifestReadError", func(t *testing.T) {
		cause := stderrors.New("no such file")
		err := NewManifestReadError("modules.yaml", cause)

		if err.ErrorCode() != errors.ErrorCode(ErrCodeManifestRead) {
			t.Errorf("Expected error code %s, got %s", ErrCodeManifestRead, err.ErrorCode())
		}
		if err.Context["manifest_path"] != "modules.yaml" {
			t.Errorf("Expected manifest_path context, got %v", err.Context["manifest_path"])
		}
		if !stderrors.Is(err, cause) {
			t.Error("Expected wrapped cause to be reachable via errors.Is")
		}
	})

	t.Run("NewManifestInvalidError", func(t *testing.T) {
		err := NewManifestInvalidError("module entry 2 has an empty path")

		if err.ErrorCode() != errors.ErrorCode(ErrCodeManifestInvalid) {
			t.Errorf("Expected error code %s, got %s", ErrCodeManifestInvalid, err.ErrorCode())
		}
	})
}

func TestWatcherErrorConstructor(t *testing.T) {
	t.Run("with cause", func(t *testing.T) {
		cause := stderrors.New("poller exhausted")
		err := NewWatcherError("failed to start watcher", cause)

		if err.ErrorCode() != errors.ErrorCode(ErrCodeWatcher) {
			t.Errorf("Expected error code %s, got %s", ErrCodeWatcher, err.ErrorCode())
		}
		if !stderrors.Is(err, cause) {
			t.Error("Expected wrapped cause to be reachable via errors.Is")
		}
	})

	t.Run("without cause", func(t *testing.T) {
		err := NewWatcherError("watcher already stopped", nil)

		if err.ErrorCode() != errors.ErrorCode(ErrCodeWatcher) {
			t.Errorf("Expected error code %s, got %s", ErrCodeWatcher, err.ErrorCode())
		}
	})
}

func TestErrorsExtractableViaAs(t *testing.T) {
	var coded *errors.Error
	err := NewOpeningModuleError("plugins/a.so", stderrors.New("bad ELF header"))

	if !stderrors.As(err, &coded) {
		t.Fatal("Expected errors.As to extract the structured error")
	}
	if coded.ErrorCode() != errors.ErrorCode(ErrCodeOpeningModule) {
		t.Errorf("Expected error code %s, got %s", ErrCodeOpeningModule, coded.ErrorCode())
	}
}
