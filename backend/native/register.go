package native

import (
	"github.com/kanbang/cesium/backend"
	"github.com/kanbang/cesium/render"
)

// init registers the native backend on package import.
func init() {
	backend.Register(backend.BackendNative, func(provider render.DeviceHandle) (render.Context, error) {
		ctx, err := NewFromProvider(provider)
		if err != nil {
			return nil, err
		}
		return ctx, nil
	})
}
