// Package polyline batches many independent, mutable 3D polylines into a
// few GPU draw calls.
//
// A [Collection] owns its polylines. Setters on a [Polyline] record which
// property changed; once per frame [Collection.Update] decides between a
// full rebuild of the vertex store and an in-place write of the changed
// attributes, and [Collection.Render] issues three draws per batch:
//
//  1. seed: stencil cleared to 0 under the outline footprint, no color
//  2. fill: fill color drawn, stencil set to 1 under the fill footprint
//  3. outline: outline color drawn where the stencil is not 1
//
// The outline therefore covers only pixels the fill did not, and no
// pixel is blended twice.
//
// Polylines sharing a (width, outline width) pair are drawn together. All
// draws use line-list topology over the context's shared index buffer.
//
// A Collection and its polylines are not safe for concurrent use.
package polyline
