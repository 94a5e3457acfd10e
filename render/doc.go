// Copyright 2026 The cesium Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render defines the backend-agnostic GPU context that primitive
// collections draw through.
//
// A collection never talks to a GPU API directly. It creates buffers,
// acquires programs and submits [DrawCommand] values through a [Context],
// and the backend translates those into device calls. The native backend
// (package backend/native) implements Context on top of gogpu/wgpu HAL;
// package render/rendertest implements it in memory for tests.
//
// # Core Types
//
//   - Context: buffer, program and draw submission interface
//   - DrawCommand: topology, program, uniforms, vertex array, render state and index ranges
//   - RenderState: blending, depth and stencil configuration plus line width
//   - FrameState: the per-frame scene mode, morph time and view-projection
//
// # Shared Resources
//
// [SharedIndexBuffer] hands out one immutable line-list index buffer per
// context and capacity. Backends call [ReleaseContext] from Destroy so
// the cached buffers live exactly as long as their context.
//
// [ProgramCache] deduplicates programs by source pair with reference
// counting, so many collections using the same shaders share one
// compiled program.
package render
