// manager.go: lifecycle orchestration for native plugin modules
//
// Copyright (c) 2025 Giovanni Santini
// SPDX-License-Identifier: MIT

package micromodule

// ManagerConfig assembles a Manager. Every field is optional; the zero value
// yields a manager with the conventional symbol names, the platform dlopen
// loader, name-ordered directory enumeration, and silent logging.
type ManagerConfig struct {
	// Symbols configures the exported symbol names and namespace isolation.
	// Empty names fall back to the micro_module_* defaults.
	Symbols SymbolConfig

	// Loader maps shared objects. Nil selects DlopenLoader.
	Loader ImageLoader

	// Enumerator lists bulk-load candidates. Nil selects FSEnumerator.
	Enumerator Enumerator

	// Logger receives lifecycle logs. Accepts a Logger, *slog.Logger, or
	// nil for silent operation.
	Logger any
}

// Manager orchestrates the module lifecycle protocol on top of an
// ImageLoader and a Registry: load-or-reload one module, unload one module
// by name, bulk-load a directory, bulk-unload everything. Each operation
// defines its own failure policy, documented on the method.
//
// Every module moves through Unloaded, Loading, Loaded, Unloading and back
// to Unloaded. The manager guarantees that a module's exit entry point has
// returned before its image is unmapped, on every path.
//
// Manager is single-threaded and non-reentrant: operations run to completion
// on the calling goroutine, dynamic-linker calls block for their duration,
// and no cancellation exists. A hung init or exit entry blocks the caller
// indefinitely; that is an accepted property of in-process native plugins,
// not a defect. Callers that share a manager across goroutines must
// serialize access externally, as ManifestWatcher does.
type Manager struct {
	symbols    SymbolConfig
	loader     ImageLoader
	enumerator Enumerator
	registry   *Registry
	logger     Logger
	metrics    LifecycleMetrics
}

// NewManager creates a manager with an empty registry.
func NewManager(config ManagerConfig) *Manager {
	loader := config.Loader
	if loader == nil {
		loader = NewDlopenLoader()
	}
	enumerator := config.Enumerator
	if enumerator == nil {
		enumerator = FSEnumerator{}
	}
	return &Manager{
		symbols:    config.Symbols.withDefaults(),
		loader:     loader,
		enumerator: enumerator,
		registry:   NewRegistry(),
		logger:     NewLogger(config.Logger),
	}
}

// Symbols returns the immutable symbol configuration this manager was built
// with.
func (m *Manager) Symbols() SymbolConfig {
	return m.symbols
}

// Registry exposes the underlying registry for read access. Mutations belong
// to the manager; calling InsertOrReplace or Remove directly bypasses the
// lifecycle ordering guarantees.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Metrics returns a snapshot of the lifecycle counters.
func (m *Manager) Metrics() MetricsSnapshot {
	return m.metrics.Snapshot()
}

// Load maps the shared object at path, resolves its three symbols, and
// registers it under the name it exports. If a module with that name is
// already registered, it is torn down first: its exit entry runs, then its
// image is closed, and only then does the new record take its place.
//
// Failure policy, in order of occurrence:
//   - Opening fails: nothing was held, an OpeningModule error is returned.
//   - Any symbol fails to resolve: the fresh image is closed before the
//     corresponding LocatingXSymbol error is returned; the handle never
//     leaks on this path.
//   - Closing the old image during a reload fails: the fresh image is closed
//     too, the old entry stays registered in the Unloading state, and a
//     ClosingModule error is returned.
//   - The init entry returns non-zero: the module stays registered and a
//     ModuleInitError carries the status verbatim. The plugin may have
//     partially initialized state only its own exit path can tear down, so
//     registration is deliberately not rolled back.
func (m *Manager) Load(path string, arg uintptr) error {
	_, err := m.LoadModule(path, arg)
	return err
}

// LoadModule is Load returning a snapshot of the registered module. On a
// ModuleInitError the snapshot is valid, since the module stays registered;
// on every other error it is zero.
func (m *Manager) LoadModule(path string, arg uintptr) (ModuleInfo, error) {
	if path == "" {
		m.metrics.Failures.Add(1)
		return ModuleInfo{}, NewNullArgumentError("module path")
	}

	m.logger.Debug("Opening module image",
		"path", path,
		"isolated_namespace", m.symbols.IsolatedNamespace)

	image, err := m.loader.Open(path, m.symbols.IsolatedNamespace)
	if err != nil {
		m.metrics.Failures.Add(1)
		return ModuleInfo{}, NewOpeningModuleError(path, err)
	}

	module, err := m.resolveModule(image, path)
	if err != nil {
		m.metrics.Failures.Add(1)
		return ModuleInfo{}, err
	}

	old, reloading := m.registry.Find(module.name)
	if reloading {
		m.logger.Info("Reloading module", "module", module.name, "path", path)
		old.state = StateUnloading
		if status := old.exit(arg); status != 0 {
			m.logger.Warn("Old module exit entry returned non-zero status during reload",
				"module", old.name, "status", status)
		}
		if err := old.image.Close(); err != nil {
			m.discardImage(module.image, path)
			m.metrics.Failures.Add(1)
			m.logger.Error("Failed to close old module image during reload; old entry remains registered",
				"module", old.name, "error", err)
			return ModuleInfo{}, NewClosingModuleError(old.name, old.path, err)
		}
		old.state = StateUnloaded
	}

	m.registry.InsertOrReplace(module)
	module.state = StateLoaded

	m.metrics.recordEvent()
	if reloading {
		m.metrics.ModulesReloaded.Add(1)
	} else {
		m.metrics.ModulesLoaded.Add(1)
	}

	if status := module.init(arg); status != 0 {
		m.metrics.InitRejections.Add(1)
		m.logger.Warn("Module init entry returned non-zero status; module remains registered",
			"module", module.name, "status", status)
		return module.Info(), &ModuleInitError{
			Name:   module.name,
			Path:   path,
			Status: Status(status),
		}
	}

	if reloading {
		m.logger.Info("Module reloaded", "module", module.name, "path", path)
	} else {
		m.logger.Info("Module loaded", "module", module.name, "path", path)
	}
	return module.Info(), nil
}

// resolveModule resolves the init, exit, and name symbols in that order and
// builds the module record. On any failure the image is closed before the
// coded error is returned, so partially resolved state never escapes.
func (m *Manager) resolveModule(image ModuleImage, path string) (*LoadedModule, error) {
	initEntry, err := image.EntryPoint(m.symbols.InitSymbol)
	if err != nil {
		m.discardImage(image, path)
		return nil, NewLocatingInitSymbolError(path, m.symbols.InitSymbol, err)
	}
	exitEntry, err := image.EntryPoint(m.symbols.ExitSymbol)
	if err != nil {
		m.discardImage(image, path)
		return nil, NewLocatingExitSymbolError(path, m.symbols.ExitSymbol, err)
	}
	name, err := image.CString(m.symbols.NameSymbol)
	if err != nil {
		m.discardImage(image, path)
		return nil, NewLocatingNameSymbolError(path, m.symbols.NameSymbol, err)
	}
	return newLoadedModule(name, path, initEntry, exitEntry, image), nil
}

// discardImage closes an image that never reached the registry.
func (m *Manager) discardImage(image ModuleImage, path string) {
	if err := image.Close(); err != nil {
		m.logger.Warn("Failed to close discarded module image", "path", path, "error", err)
	}
}

// Unload runs the exit entry of the module registered under name, closes its
// image, and removes it from the registry.
//
// If closing the image fails, the entry is not removed: it stays registered
// in the Unloading state, exited but still tracked. The anomaly is left
// visible through Find and List rather than silently retried or discarded,
// so hosts can observe exactly which modules hold an image that would not
// unmap.
func (m *Manager) Unload(name string, arg uintptr) error {
	if name == "" {
		m.metrics.Failures.Add(1)
		return NewArgumentNullError("module name")
	}

	module, ok := m.registry.Find(name)
	if !ok {
		m.metrics.Failures.Add(1)
		return NewModuleNotRegisteredError(name)
	}

	module.state = StateUnloading
	if status := module.exit(arg); status != 0 {
		m.logger.Warn("Module exit entry returned non-zero status",
			"module", name, "status", status)
	}

	if err := module.image.Close(); err != nil {
		m.metrics.Failures.Add(1)
		m.logger.Error("Failed to close module image; entry remains registered",
			"module", name, "error", err)
		return NewClosingModuleError(name, module.path, err)
	}

	m.registry.Remove(name)
	module.state = StateUnloaded
	m.metrics.ModulesUnloaded.Add(1)
	m.metrics.recordEvent()

	m.logger.Info("Module unloaded", "module", name)
	return nil
}

// LoadDirectory loads every candidate the enumerator yields for dir, in
// order, through the same load-or-reload path as Load. The sweep stops at
// the first failure and returns it immediately; later candidates are never
// attempted. Enumeration failures are reported with their own error codes,
// never conflated with per-module failures. The registry afterward reveals
// how far the sweep got.
func (m *Manager) LoadDirectory(dir string, arg uintptr) error {
	if dir == "" {
		m.metrics.Failures.Add(1)
		return NewNullArgumentError("modules directory")
	}

	paths, err := m.enumerator.List(dir)
	if err != nil {
		m.metrics.Failures.Add(1)
		return err
	}

	m.logger.Info("Loading modules from directory", "directory", dir, "candidates", len(paths))
	for _, path := range paths {
		if err := m.Load(path, arg); err != nil {
			return err
		}
	}
	return nil
}

// UnloadAll unloads every registered module, most recently loaded first. The
// name set is snapshotted before the first unload, so removal is driven from
// the snapshot rather than a live cursor into the mutating registry. The
// sweep stops at the first failure, leaving the registry in whatever partial
// state resulted; there is no rollback or retry. On full success the
// registry is empty, and running UnloadAll again is a successful no-op.
func (m *Manager) UnloadAll(arg uintptr) error {
	for _, name := range m.registry.Names() {
		if err := m.Unload(name, arg); err != nil {
			return err
		}
	}
	return nil
}

// Find returns a snapshot of the module registered under name.
func (m *Manager) Find(name string) (ModuleInfo, bool) {
	module, ok := m.registry.Find(name)
	if !ok {
		return ModuleInfo{}, false
	}
	return module.Info(), true
}

// List returns snapshots of every registered module in iteration order.
func (m *Manager) List() []ModuleInfo {
	modules := m.registry.Modules()
	infos := make([]ModuleInfo, len(modules))
	for i, module := range modules {
		infos[i] = module.Info()
	}
	return infos
}

// Len returns the number of registered modules.
func (m *Manager) Len() int {
	return m.registry.Len()
}
