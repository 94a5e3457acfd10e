package backend

import (
	"errors"

	"github.com/kanbang/cesium/render"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not registered.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNilContext is returned when a factory succeeds without a context.
	ErrNilContext = errors.New("backend: factory returned nil context")
)

// Backend name constants.
const (
	// BackendNative is the name of the gogpu/wgpu HAL backend.
	BackendNative = "native"
)

// Factory creates a render context on the device exposed by provider.
type Factory func(provider render.DeviceHandle) (render.Context, error)
