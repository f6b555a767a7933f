package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const configFileName = "offering.json"
const wasmHandlerFileName = "handler.wasm"

// ErrOfferingNotFound is returned when no offering directory or config
// matches the requested name.
var ErrOfferingNotFound = errors.New("offering not configured locally")

// ErrHandlerMissing is returned when an offering directory exists and
// parses, but exposes neither a native nor a WASM executeJob
// capability.
var ErrHandlerMissing = errors.New("offering does not expose an executeJob handler")

// Registry is a read-through offering loader: it does not cache
// directory scans or WASM instantiations between calls.
type Registry struct {
	root string

	mu     sync.RWMutex
	native map[string]func() Handlers
}

// New creates a registry rooted at the given offerings directory.
func New(root string) *Registry {
	return &Registry{
		root:   root,
		native: make(map[string]func() Handlers),
	}
}

// RegisterNative registers a compiled-in handler factory for the
// offering named name. Called at boot time, once per offering the
// binary ships support for.
func (r *Registry) RegisterNative(name string, factory func() Handlers) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.native[name] = factory
}

// ListOfferings enumerates immediate subdirectories of the offerings
// root.
func (r *Registry) ListOfferings() ([]string, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		return nil, fmt.Errorf("read offerings root: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func loadConfig(dir string) (Offering, error) {
	path := filepath.Join(dir, configFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return Offering{}, fmt.Errorf("read %s: %w", path, err)
	}

	var cfg Offering
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Offering{}, fmt.Errorf("parse %s: %w", path, err)
	}

	var extra map[string]interface{}
	if err := json.Unmarshal(data, &extra); err == nil {
		cfg.Extra = extra
	}

	return cfg, nil
}

// resolveDir finds the offering directory for name: first a direct
// directory-name match, otherwise a scan of every subdirectory's config
// looking for config.Name == name.
func (r *Registry) resolveDir(name string) (string, Offering, error) {
	direct := filepath.Join(r.root, name)
	if cfg, err := loadConfig(direct); err == nil {
		return direct, cfg, nil
	}

	entries, err := os.ReadDir(r.root)
	if err != nil {
		return "", Offering{}, fmt.Errorf("%w: %s", ErrOfferingNotFound, name)
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(r.root, e.Name())
		cfg, err := loadConfig(dir)
		if err != nil {
			continue
		}
		if cfg.Name == name {
			return dir, cfg, nil
		}
	}

	return "", Offering{}, fmt.Errorf("%w: %s", ErrOfferingNotFound, name)
}

// LoadOffering resolves the offering directory for name, loads its
// config, and loads its handler (native registration first, then a
// handler.wasm file in the offering's own directory). A WASM handler is
// instantiated once here to confirm it exposes execute_job before it is
// handed back, so a guest missing the required capability is rejected
// at load time rather than surfacing only when the deliver stage calls
// ExecuteJob.
func (r *Registry) LoadOffering(ctx context.Context, name string) (Offering, Handlers, error) {
	dir, cfg, err := r.resolveDir(name)
	if err != nil {
		return Offering{}, nil, err
	}

	r.mu.RLock()
	factory, ok := r.native[cfg.Name]
	r.mu.RUnlock()
	if ok {
		return cfg, factory(), nil
	}

	wasmPath := filepath.Join(dir, wasmHandlerFileName)
	if _, err := os.Stat(wasmPath); err == nil {
		h, err := newWasmHandlers(ctx, wasmPath)
		if err != nil {
			if errors.Is(err, ErrHandlerMissing) {
				return Offering{}, nil, err
			}
			return Offering{}, nil, fmt.Errorf("load wasm handler for %s: %w", name, err)
		}
		return cfg, h, nil
	}

	return Offering{}, nil, fmt.Errorf("%w: %s", ErrHandlerMissing, name)
}
