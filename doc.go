// Package micromodule loads, initializes, reloads, and unloads native plugin
// modules at runtime without recompiling or relinking the host process.
// A module is a separately compiled shared object that exports three well-known
// symbols: an identifier string, an init entry point, and an exit entry point.
//
// Key Features:
//   - Load-or-reload semantics keyed by the module's own exported name
//   - Optional symbol namespace isolation per manager (dlmopen on Linux)
//   - Ordered registry of loaded modules with snapshot-safe bulk teardown
//   - Stable integer status codes mirroring the C ABI of the original library
//   - Bulk loading of every shared object in a directory, first error stops
//   - Declarative module manifests (JSON/YAML) with hot reload via Argus
//   - Lifecycle metrics and pluggable structured logging
//
// Basic Usage:
//
//	// Create a manager with the default symbol names
//	// (micro_module_name, micro_module_init, micro_module_exit)
//	manager := micromodule.NewManager(micromodule.ManagerConfig{})
//
//	// Load one module, passing an opaque context word to its init entry
//	if err := manager.Load("plugins/alpha.so", 0); err != nil {
//		log.Fatal(err)
//	}
//
//	// Load every shared object in a directory
//	if err := manager.LoadDirectory("plugins", 0); err != nil {
//		log.Fatal(err)
//	}
//
//	// Tear everything down: exit entry first, then the image is unmapped
//	if err := manager.UnloadAll(0); err != nil {
//		log.Fatal(err)
//	}
//
// Lifecycle Ordering:
// The manager guarantees that a module's exit entry point has returned before
// its image is unmapped, on every path: single unload, bulk unload, and the
// teardown of the old image during a reload. The registry itself never calls
// into a module; all sequencing lives in the manager.
//
// Concurrency:
// Manager and Registry are single-threaded by contract. Callers that share a
// manager across goroutines must serialize access externally; ManifestWatcher
// does exactly that for the manifest reload path.
//
// Copyright (c) 2025 Giovanni Santini
// SPDX-License-Identifier: MIT
package micromodule
