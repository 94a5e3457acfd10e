// Copyright 2026 The cesium Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"sync"

	"github.com/kanbang/cesium"
)

// indexCache holds the shared line-list index buffers of every live
// context, keyed by capacity.
var indexCache = struct {
	mu      sync.Mutex
	buffers map[Context]map[int]BufferID
}{buffers: make(map[Context]map[int]BufferID)}

// LineListIndices returns the line-list indices connecting capacity
// consecutive vertices: 0,1, 1,2, ..., capacity-2,capacity-1.
//
// A polyline occupying vertices [v, v+n) is drawn with the range
// First = 2*v, Count = 2*(n-1).
func LineListIndices(capacity int) []uint16 {
	if capacity < 2 {
		return nil
	}
	indices := make([]uint16, 0, 2*(capacity-1))
	for i := 0; i < capacity-1; i++ {
		indices = append(indices, uint16(i), uint16(i+1)) //nolint:gosec // capacity <= MaxSegmentVertices
	}
	return indices
}

// SharedIndexBuffer returns the line-list index buffer for capacity
// vertices on ctx, creating it on first request. The buffer is immutable
// and shared by every caller; it is released by ReleaseContext.
func SharedIndexBuffer(ctx Context, capacity int) (BufferID, error) {
	if capacity < 2 || capacity > MaxSegmentVertices {
		return 0, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}

	indexCache.mu.Lock()
	defer indexCache.mu.Unlock()

	byCap := indexCache.buffers[ctx]
	if id, ok := byCap[capacity]; ok {
		return id, nil
	}

	id, err := ctx.CreateIndexBuffer(LineListIndices(capacity), StaticDraw)
	if err != nil {
		return 0, fmt.Errorf("render: create shared index buffer: %w", err)
	}
	if byCap == nil {
		byCap = make(map[int]BufferID)
		indexCache.buffers[ctx] = byCap
	}
	byCap[capacity] = id

	cesium.Logger().Debug("render: shared index buffer created", "capacity", capacity)
	return id, nil
}

// ReleaseContext destroys the shared index buffers created for ctx.
// Backends call it from Destroy.
func ReleaseContext(ctx Context) {
	indexCache.mu.Lock()
	byCap := indexCache.buffers[ctx]
	delete(indexCache.buffers, ctx)
	indexCache.mu.Unlock()

	for _, id := range byCap {
		ctx.DestroyBuffer(id)
	}
}
