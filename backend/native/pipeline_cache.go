package native

import (
	"encoding/binary"
	"hash"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/kanbang/cesium/render"
)

// pipelineKey identifies a render pipeline: the program, the
// fixed-function state, the topology and the vertex layout.
type pipelineKey uint64

// makePipelineKey hashes everything a pipeline is specialized on. The
// stencil reference and line width are dynamic and not part of the key.
func makePipelineKey(progID render.ProgramID, topology gputypes.PrimitiveTopology, rs *render.RenderState, va *render.VertexArray) pipelineKey {
	h := fnv.New64a()
	writeUint64(h, uint64(progID))
	writeUint64(h, uint64(topology))
	writeUint64(h, rs.PipelineKey())
	for _, b := range va.Attributes {
		writeUint64(h, uint64(b.Location))
		writeUint64(h, uint64(b.Components))
		writeUint64(h, uint64(b.Type))
		if b.Normalize {
			writeUint64(h, 1)
		} else {
			writeUint64(h, 0)
		}
	}
	return pipelineKey(h.Sum64())
}

func writeUint64(h hash.Hash64, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, _ = h.Write(buf[:])
}

// pipelineCache caches render pipelines by key.
//
// Pipeline creation involves shader compilation and validation, so every
// distinct state is built once. The cache is safe for concurrent use and
// uses double-check locking around creation.
type pipelineCache struct {
	mu        sync.RWMutex
	pipelines map[pipelineKey]cachedPipeline

	hits   uint64
	misses uint64
}

type cachedPipeline struct {
	program  render.ProgramID
	pipeline hal.RenderPipeline
}

func newPipelineCache() *pipelineCache {
	return &pipelineCache{pipelines: make(map[pipelineKey]cachedPipeline)}
}

// getOrCreate returns the pipeline for key, calling create on a miss.
func (c *pipelineCache) getOrCreate(key pipelineKey, progID render.ProgramID, create func() (hal.RenderPipeline, error)) (hal.RenderPipeline, error) {
	c.mu.RLock()
	if cp, ok := c.pipelines[key]; ok {
		c.mu.RUnlock()
		atomic.AddUint64(&c.hits, 1)
		return cp.pipeline, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if cp, ok := c.pipelines[key]; ok {
		atomic.AddUint64(&c.hits, 1)
		return cp.pipeline, nil
	}

	pipeline, err := create()
	if err != nil {
		return nil, err
	}
	c.pipelines[key] = cachedPipeline{program: progID, pipeline: pipeline}
	atomic.AddUint64(&c.misses, 1)
	return pipeline, nil
}

// evictProgram destroys every pipeline built from the program.
func (c *pipelineCache) evictProgram(progID render.ProgramID, destroy func(hal.RenderPipeline)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, cp := range c.pipelines {
		if cp.program == progID {
			destroy(cp.pipeline)
			delete(c.pipelines, key)
		}
	}
}

// clear destroys every cached pipeline.
func (c *pipelineCache) clear(destroy func(hal.RenderPipeline)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, cp := range c.pipelines {
		destroy(cp.pipeline)
		delete(c.pipelines, key)
	}
}

// len returns the number of cached pipelines.
func (c *pipelineCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pipelines)
}

// stats returns cache hits and misses.
func (c *pipelineCache) stats() (hits, misses uint64) {
	return atomic.LoadUint64(&c.hits), atomic.LoadUint64(&c.misses)
}
