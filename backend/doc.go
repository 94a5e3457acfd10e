// Package backend selects render.Context implementations by name.
//
// Backends register a factory from an init function, so importing the
// backend package is enough to make it available:
//
//	import _ "github.com/kanbang/cesium/backend/native"
//
// # Backend Selection
//
// Use Open to request a backend by name, or Default to take the first
// registered backend in priority order:
//
//	provider, err := backend.Headless()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	ctx, err := backend.Default(provider)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ctx.Destroy()
//
// # Device Providers
//
// Factories receive a render.DeviceHandle. Windowed applications pass the
// provider of their windowing framework. Headless returns a provider
// backed by the noop HAL device for tools and tests.
package backend
