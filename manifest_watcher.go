// manifest_watcher.go: manifest hot reload with Argus integration
//
// Watches one manifest file and drives the manager toward whatever the file
// declares: paths that appear are loaded, paths that disappear are unloaded
// by the name they exported at load time. Every change is logged and,
// when enabled, written to the Argus audit trail.
//
// Copyright (c) 2025 Giovanni Santini
// SPDX-License-Identifier: MIT

package micromodule

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/argus"
)

// ManifestWatcherOptions customizes watcher behavior.
type ManifestWatcherOptions struct {
	// PollInterval is how often the manifest file is checked for changes.
	PollInterval time.Duration

	// CacheTTL bounds how long a stat result is reused between polls.
	CacheTTL time.Duration

	// AuditConfig configures the Argus audit trail for manifest changes.
	AuditConfig argus.AuditConfig

	// ErrorHandler receives file-watching errors. Defaults to logging.
	ErrorHandler func(err error, path string)
}

// DefaultManifestWatcherOptions returns conservative defaults: five second
// polling and a buffered audit trail next to the process.
func DefaultManifestWatcherOptions() ManifestWatcherOptions {
	return ManifestWatcherOptions{
		PollInterval: 5 * time.Second,
		CacheTTL:     2 * time.Second,
		AuditConfig: argus.AuditConfig{
			Enabled:       true,
			OutputFile:    "micromodule-manifest-audit.jsonl",
			MinLevel:      argus.AuditInfo,
			BufferSize:    1000,
			FlushInterval: 10 * time.Second,
		},
	}
}

// ManifestWatcher hot-reloads a module manifest. It owns the only
// serialization in the library: all manager access from the watch callback
// goes through an internal mutex, so a host that hands its manager to a
// watcher must not call the manager directly while the watcher runs.
//
// Symbol configuration is frozen at manager construction, so a manifest
// change that edits the symbols section is refused in full and logged; the
// module list of such a manifest is not applied either.
type ManifestWatcher struct {
	manager *Manager
	logger  Logger

	watcher     *argus.Watcher
	auditLogger *argus.AuditLogger

	manifestPath string
	options      ManifestWatcherOptions
	arg          uintptr

	current atomic.Pointer[ManifestConfig]
	tracked map[string]string // module path -> exported name

	enabled  atomic.Bool
	stopped  atomic.Bool
	stopOnce sync.Once
	mutex    sync.Mutex
}

// NewManifestWatcher creates a watcher bound to one manager and one manifest
// file. The arg word is passed to every init and exit entry the watcher
// triggers, exactly as a direct Load or Unload call would.
func NewManifestWatcher(manager *Manager, manifestPath string, options ManifestWatcherOptions, logger any, arg uintptr) (*ManifestWatcher, error) {
	if manager == nil {
		return nil, NewNullArgumentError("manager")
	}
	if manifestPath == "" {
		return nil, NewNullArgumentError("manifest path")
	}

	internalLogger := NewLogger(logger)
	watcher := argus.New(buildArgusConfig(options, internalLogger))

	var auditLogger *argus.AuditLogger
	if options.AuditConfig.Enabled {
		var err error
		auditLogger, err = argus.NewAuditLogger(options.AuditConfig)
		if err != nil {
			return nil, NewWatcherError("failed to create audit logger", err)
		}
	}

	return &ManifestWatcher{
		manager:      manager,
		logger:       internalLogger,
		watcher:      watcher,
		auditLogger:  auditLogger,
		manifestPath: manifestPath,
		options:      options,
		arg:          arg,
		tracked:      make(map[string]string),
	}, nil
}

// buildArgusConfig tunes Argus for a single small manifest file.
func buildArgusConfig(options ManifestWatcherOptions, logger Logger) argus.Config {
	return argus.Config{
		PollInterval:         options.PollInterval,
		CacheTTL:             options.CacheTTL,
		MaxWatchedFiles:      2,
		Audit:                options.AuditConfig,
		OptimizationStrategy: argus.OptimizationSingleEvent,
		ErrorHandler: func(err error, filepath string) {
			if options.ErrorHandler != nil {
				options.ErrorHandler(err, filepath)
			} else {
				logger.Error("Manifest file watching error", "error", err, "file", filepath)
			}
		},
	}
}

// Start loads the manifest, applies it, and begins watching the file.
//
// The initial apply loads each listed module and keeps going past individual
// load failures; a typo in one path should not keep the rest of the manifest
// down. Manifest read, parse, or validation failures fail Start outright, as
// does a manifest whose symbols section disagrees with the manager.
func (w *ManifestWatcher) Start(ctx context.Context) error {
	if w.stopped.Load() {
		return NewWatcherError("manifest watcher has been permanently stopped and cannot be restarted", nil)
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()

	if !w.enabled.CompareAndSwap(false, true) {
		return NewWatcherError("manifest watcher is already running", nil)
	}

	manifest, err := LoadManifest(w.manifestPath)
	if err != nil {
		w.enabled.Store(false)
		return NewWatcherError("failed to load initial manifest", err)
	}
	if manifest.Symbols != w.manager.Symbols() {
		w.enabled.Store(false)
		return NewWatcherError("manifest symbol configuration does not match the manager", nil)
	}

	w.applyModuleDiff(diffManifests(nil, manifest))
	w.current.Store(manifest)

	w.auditEvent("manifest_loaded", map[string]interface{}{
		"path":    w.manifestPath,
		"modules": len(manifest.Modules),
		"source":  "initial_load",
	})

	if err := w.watcher.Watch(w.manifestPath, w.handleManifestChange); err != nil {
		w.enabled.Store(false)
		return NewWatcherError("failed to watch manifest file", err)
	}
	if err := w.watcher.Start(); err != nil {
		w.enabled.Store(false)
		return NewWatcherError("failed to start manifest watcher", err)
	}

	w.logger.Info("Manifest watcher started",
		"manifest_path", w.manifestPath,
		"poll_interval", w.options.PollInterval,
		"modules", len(manifest.Modules))

	w.auditEvent("manifest_watcher_started", map[string]interface{}{
		"manifest_path": w.manifestPath,
		"poll_interval": w.options.PollInterval.String(),
	})
	return nil
}

// Stop permanently stops the watcher. Loaded modules stay loaded; tearing
// them down remains the host's call, typically UnloadAll.
func (w *ManifestWatcher) Stop() error {
	if w.stopped.Load() {
		return NewWatcherError("manifest watcher is already stopped", nil)
	}

	var stopErr error
	w.stopOnce.Do(func() {
		w.mutex.Lock()
		defer w.mutex.Unlock()

		if !w.enabled.CompareAndSwap(true, false) {
			stopErr = NewWatcherError("manifest watcher is not running", nil)
			return
		}

		w.stopped.Store(true)

		if err := w.watcher.Stop(); err != nil {
			w.enabled.Store(true)
			stopErr = NewWatcherError("failed to stop file watcher", err)
			return
		}

		if w.auditLogger != nil {
			if err := w.auditLogger.Close(); err != nil {
				w.logger.Warn("Failed to close audit logger during shutdown", "error", err)
			}
		}

		w.logger.Info("Manifest watcher stopped")
		w.auditEvent("manifest_watcher_stopped", map[string]interface{}{
			"manifest_path": w.manifestPath,
		})
	})
	return stopErr
}

// IsRunning reports whether the watcher is active.
func (w *ManifestWatcher) IsRunning() bool {
	return w.enabled.Load() && !w.stopped.Load()
}

// CurrentManifest returns the most recently applied manifest.
func (w *ManifestWatcher) CurrentManifest() *ManifestConfig {
	return w.current.Load()
}

// handleManifestChange processes manifest file changes from Argus.
func (w *ManifestWatcher) handleManifestChange(event argus.ChangeEvent) {
	w.logger.Info("Manifest file change detected",
		"path", event.Path,
		"mod_time", event.ModTime,
		"size", event.Size,
		"is_create", event.IsCreate,
		"is_delete", event.IsDelete,
		"is_modify", event.IsModify)

	if event.IsDelete {
		w.logger.Warn("Manifest file was deleted, keeping current modules", "path", event.Path)
		w.auditEvent("manifest_deleted", map[string]interface{}{
			"path": event.Path,
		})
		return
	}

	newManifest, err := LoadManifest(event.Path)
	if err != nil {
		w.logger.Error("Failed to load changed manifest", "error", err, "path", event.Path)
		w.auditEvent("manifest_load_failed", map[string]interface{}{
			"path":  event.Path,
			"error": err.Error(),
		})
		return
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()
	if !w.enabled.Load() {
		return
	}

	if newManifest.Symbols != w.manager.Symbols() {
		w.logger.Error("Manifest symbol configuration changed; a new manager is required to apply it",
			"path", event.Path)
		w.auditEvent("manifest_symbols_rejected", map[string]interface{}{
			"path": event.Path,
		})
		return
	}

	diff := diffManifests(w.current.Load(), newManifest)
	removed, added := w.applyModuleDiff(diff)
	w.current.Store(newManifest)

	w.logger.Info("Manifest reload applied",
		"added", added,
		"removed", removed,
		"unchanged", len(diff.unchanged))

	w.auditEvent("manifest_reloaded", map[string]interface{}{
		"path":      event.Path,
		"added":     added,
		"removed":   removed,
		"unchanged": len(diff.unchanged),
	})
}

// manifestDiff partitions module paths between two manifest versions.
type manifestDiff struct {
	added     []string // in new, not in old; new-manifest order
	removed   []string // in old, not in new; old-manifest order
	unchanged []string
}

func diffManifests(old, updated *ManifestConfig) manifestDiff {
	var diff manifestDiff

	oldSet := make(map[string]struct{})
	if old != nil {
		for _, path := range old.Modules {
			oldSet[path] = struct{}{}
		}
	}
	newSet := make(map[string]struct{}, len(updated.Modules))
	for _, path := range updated.Modules {
		newSet[path] = struct{}{}
	}

	if old != nil {
		for _, path := range old.Modules {
			if _, ok := newSet[path]; !ok {
				diff.removed = append(diff.removed, path)
			}
		}
	}
	for _, path := range updated.Modules {
		if _, ok := oldSet[path]; ok {
			diff.unchanged = append(diff.unchanged, path)
		} else {
			diff.added = append(diff.added, path)
		}
	}
	return diff
}

// applyModuleDiff unloads removed paths, then loads added ones. Individual
// failures are logged and audited but never abort the rest of the diff; the
// watcher reconciles as much of the manifest as it can and stays alive.
// Returns how many removals and additions actually took effect.
func (w *ManifestWatcher) applyModuleDiff(diff manifestDiff) (removed, added int) {
	for _, path := range diff.removed {
		name, ok := w.tracked[path]
		if !ok {
			w.logger.Debug("Removed manifest entry was never loaded, nothing to unload", "path", path)
			continue
		}
		if err := w.manager.Unload(name, w.arg); err != nil {
			if StatusOf(err) == StatusModuleNotRegistered {
				// Already gone, drop the stale mapping.
				delete(w.tracked, path)
				continue
			}
			w.logger.Error("Failed to unload module removed from manifest",
				"module", name, "path", path, "error", err)
			w.auditEvent("manifest_unload_failed", map[string]interface{}{
				"module": name,
				"path":   path,
				"error":  err.Error(),
			})
			continue
		}
		delete(w.tracked, path)
		removed++
	}

	for _, path := range diff.added {
		info, err := w.manager.LoadModule(path, w.arg)
		if err != nil {
			// An init rejection still registers the module; track it so a
			// later removal can tear it down through its exit path.
			var initErr *ModuleInitError
			if errors.As(err, &initErr) {
				w.tracked[path] = info.Name
			}
			w.logger.Error("Failed to load module added to manifest",
				"path", path, "error", err)
			w.auditEvent("manifest_load_module_failed", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
			continue
		}
		w.tracked[path] = info.Name
		added++
	}
	return removed, added
}

// auditEvent writes one event to the audit trail if auditing is enabled.
func (w *ManifestWatcher) auditEvent(eventType string, context map[string]interface{}) {
	if w.auditLogger != nil {
		w.auditLogger.LogSecurityEvent(eventType, "Module manifest change", context)
	}
}
