// registry.go: ordered name-indexed bookkeeping for loaded modules
//
// Copyright (c) 2025 Giovanni Santini
// SPDX-License-Identifier: MIT

package micromodule

// Registry is the in-memory authority over currently loaded modules, keyed by
// the unique name each module exports. Iteration order is reverse load order:
// the most recently loaded module comes first. The ordering is an iteration
// convenience only; bulk teardown just needs every entry visited exactly once.
//
// The registry is pure bookkeeping. It never calls a module's exit entry and
// never closes an image; all lifecycle ordering lives in the Manager. Keeping
// the split strict closes the class of bugs where teardown and bookkeeping
// drift out of sync.
//
// Registry is not safe for concurrent use. Callers that share one across
// goroutines must serialize access externally.
type Registry struct {
	byName map[string]*LoadedModule
	order  []*LoadedModule
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*LoadedModule),
	}
}

// InsertOrReplace stores the module under its name. A new name becomes the
// iteration head. An existing name keeps its position: the new record is
// swapped into the old slot and the displaced record is returned so the
// caller can release it. The caller must already have run the displaced
// entry's exit path; the registry only swaps slots.
func (r *Registry) InsertOrReplace(module *LoadedModule) *LoadedModule {
	if old, ok := r.byName[module.name]; ok {
		for i, entry := range r.order {
			if entry == old {
				r.order[i] = module
				break
			}
		}
		r.byName[module.name] = module
		return old
	}
	r.order = append([]*LoadedModule{module}, r.order...)
	r.byName[module.name] = module
	return nil
}

// Find returns the module registered under name.
func (r *Registry) Find(name string) (*LoadedModule, bool) {
	module, ok := r.byName[name]
	return module, ok
}

// Remove detaches the module registered under name and returns ownership of
// the record to the caller, who must already have closed its image or be
// about to.
func (r *Registry) Remove(name string) (*LoadedModule, bool) {
	module, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	delete(r.byName, name)
	for i, entry := range r.order {
		if entry == module {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return module, true
}

// Names returns a snapshot of the registered names in iteration order. Bulk
// operations that unload mid-traversal must drive removal from a snapshot,
// never from a live cursor into the mutating structure.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	for i, module := range r.order {
		names[i] = module.name
	}
	return names
}

// Modules returns a snapshot of the registered records in iteration order.
// The registry retains ownership of every returned record.
func (r *Registry) Modules() []*LoadedModule {
	modules := make([]*LoadedModule, len(r.order))
	copy(modules, r.order)
	return modules
}

// Len returns the number of registered modules.
func (r *Registry) Len() int {
	return len(r.order)
}
