// Package cesium batches large numbers of mutable 3D polylines into a few
// GPU draw calls.
//
// # Overview
//
// The engine lives in the polyline package. A [polyline.Collection] owns
// any number of polylines, tracks which of them changed since the last
// frame, rewrites the GPU vertex buffers only when needed and draws every
// polyline with a three-pass stencil technique that produces a crisp
// outline around a fill without double blending.
//
// # Quick Start
//
//	import (
//	    "github.com/kanbang/cesium"
//	    "github.com/kanbang/cesium/backend/native"
//	    "github.com/kanbang/cesium/polyline"
//	    "github.com/kanbang/cesium/render"
//	)
//
//	ctx, _ := native.New(device, queue)
//	defer ctx.Destroy()
//
//	lines := polyline.New()
//	defer lines.Destroy()
//
//	lines.Add(
//	    polyline.WithPositions(f32.Vec3{0, 0, 0}, f32.Vec3{1, 1, 0}),
//	    polyline.WithColor(cesium.Red),
//	    polyline.WithOutlineColor(cesium.White),
//	    polyline.WithOutlineWidth(3),
//	)
//
//	fs := &render.FrameState{Context: ctx, Mode: render.SceneMode3D, MorphTime: 1}
//	_ = ctx.BeginFrame(800, 600)
//	_ = lines.Update(fs)
//	_ = lines.Render(fs)
//	_ = ctx.EndFrame()
//
// # Architecture
//
// The module is organized into:
//   - cesium: colors and the shared logger
//   - polyline: polylines, the collection, dirty tracking and the draw passes
//   - vertexstore: vertex attributes partitioned into index-addressable segments
//   - render: the backend-agnostic GPU context, render state and index buffer cache
//   - backend: named backend registry and a headless noop device provider
//   - backend/native: a render.Context on top of gogpu/wgpu HAL
//   - render/rendertest: a recording render.Context for tests
//
// # Threading
//
// Collections and polylines must be used from one goroutine per rendering
// context. Logging and the shared index buffer cache are safe for
// concurrent use.
package cesium

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
