// manifest.go: declarative module manifests in JSON or YAML
//
// Copyright (c) 2025 Giovanni Santini
// SPDX-License-Identifier: MIT

package micromodule

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/agilira/argus"
	"gopkg.in/yaml.v3"
)

// ManifestConfig declares the modules a host wants loaded and the symbol
// configuration they were built against. Hosts typically pass the symbols to
// NewManager and the module list to ApplyManifest, or hand the whole file to
// a ManifestWatcher for hot reload.
//
// Example YAML:
//
//	symbols:
//	  name_symbol: micro_module_name
//	  init_symbol: micro_module_init
//	  exit_symbol: micro_module_exit
//	  isolated_namespace: true
//	modules:
//	  - plugins/alpha.so
//	  - plugins/beta.so
type ManifestConfig struct {
	// Symbols the listed modules export. Empty names take the defaults.
	Symbols SymbolConfig `json:"symbols" yaml:"symbols"`

	// Modules are shared object paths, loaded in listed order.
	Modules []string `json:"modules" yaml:"modules"`
}

// LoadManifest reads and parses a manifest file. The format is detected from
// the file extension; JSON and YAML are supported. Empty symbol names are
// filled with the defaults before validation.
func LoadManifest(path string) (*ManifestConfig, error) {
	if path == "" {
		return nil, NewNullArgumentError("manifest path")
	}

	data, err := os.ReadFile(path) // #nosec G304 -- reads the host-specified manifest path
	if err != nil {
		return nil, NewManifestReadError(path, err)
	}
	if len(data) == 0 {
		return nil, NewManifestInvalidError("manifest file is empty")
	}

	var config ManifestConfig
	switch format := argus.DetectFormat(path); format {
	case argus.FormatJSON:
		err = json.Unmarshal(data, &config)
	case argus.FormatYAML:
		err = yaml.Unmarshal(data, &config)
	default:
		return nil, NewManifestParseError(path, fmt.Errorf("unsupported manifest format: %s", format.String()))
	}
	if err != nil {
		return nil, NewManifestParseError(path, err)
	}

	config.Symbols = config.Symbols.withDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the manifest for structural mistakes: empty module paths
// and exact duplicate entries. Listing the same path twice would only make
// the second entry reload the first, which is never what a manifest means.
func (c *ManifestConfig) Validate() error {
	seen := make(map[string]struct{}, len(c.Modules))
	for i, path := range c.Modules {
		if path == "" {
			return NewManifestInvalidError(fmt.Sprintf("module entry %d has an empty path", i))
		}
		if _, dup := seen[path]; dup {
			return NewManifestInvalidError(fmt.Sprintf("module path %q is listed more than once", path))
		}
		seen[path] = struct{}{}
	}
	return nil
}

// ApplyManifest loads every module the manifest lists, in order, with the
// same first-error-stops policy as LoadDirectory. The manifest's Symbols
// field is not consulted here; symbol configuration is fixed at manager
// construction, so pass manifest.Symbols to NewManager instead.
func (m *Manager) ApplyManifest(manifest *ManifestConfig, arg uintptr) error {
	if manifest == nil {
		return NewNullArgumentError("manifest")
	}
	m.logger.Info("Applying module manifest", "modules", len(manifest.Modules))
	for _, path := range manifest.Modules {
		if err := m.Load(path, arg); err != nil {
			return err
		}
	}
	return nil
}
