// Package vertexstore realizes a logical stream of vertex attributes as
// one or more GPU buffer segments, each small enough to be addressed by
// 16-bit indices.
//
// Vertex i lives in segment i / capacity at local index i % capacity.
// Every segment shares the line-list index buffer returned by
// render.SharedIndexBuffer for the store's capacity.
//
// Writes go to a CPU shadow copy and are uploaded by Commit, which sends
// only the dirty byte range of each (segment, attribute) buffer.
package vertexstore
