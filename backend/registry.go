package backend

import (
	"fmt"
	"slices"
	"sync"

	"github.com/kanbang/cesium"
	"github.com/kanbang/cesium/render"
)

// registry holds registered backends.
var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)
	// Priority order for Default. Unlisted backends follow in name order.
	backendPriority = []string{BackendNative}
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it will be replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns the registered backend names in sorted order.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Open creates a context with the named backend.
func Open(name string, provider render.DeviceHandle) (render.Context, error) {
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBackendNotAvailable, name)
	}
	return open(name, factory, provider)
}

func open(name string, factory Factory, provider render.DeviceHandle) (render.Context, error) {
	ctx, err := factory(provider)
	if err != nil {
		return nil, fmt.Errorf("backend %s: %w", name, err)
	}
	if ctx == nil {
		return nil, fmt.Errorf("%w: %s", ErrNilContext, name)
	}
	return ctx, nil
}

// Default opens the first backend that succeeds, trying the priority list
// first and then the remaining backends in name order. The error of the
// last failed attempt is returned when none succeeds.
func Default(provider render.DeviceHandle) (render.Context, error) {
	registryMu.RLock()
	order := make([]string, 0, len(backends))
	for _, name := range backendPriority {
		if _, ok := backends[name]; ok {
			order = append(order, name)
		}
	}
	var rest []string
	for name := range backends {
		if !slices.Contains(backendPriority, name) {
			rest = append(rest, name)
		}
	}
	slices.Sort(rest)
	order = append(order, rest...)
	factories := make([]Factory, len(order))
	for i, name := range order {
		factories[i] = backends[name]
	}
	registryMu.RUnlock()

	lastErr := ErrBackendNotAvailable
	for i, name := range order {
		ctx, err := open(name, factories[i], provider)
		if err == nil {
			return ctx, nil
		}
		cesium.Logger().Debug("backend: open failed", "backend", name, "error", err)
		lastErr = err
	}
	return nil, lastErr
}
