// Copyright 2026 The cesium Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"sync"
)

type programKey struct {
	vertex   string
	fragment string
}

type programEntry[T any] struct {
	key   programKey
	value T
	refs  int
}

// ProgramCache deduplicates compiled programs by their source pair and
// counts references, so that a program is built once and destroyed when
// its last user releases it.
//
// T is the backend's compiled representation. ProgramCache is safe for
// concurrent use.
type ProgramCache[T any] struct {
	mu     sync.Mutex
	byKey  map[programKey]ProgramID
	byID   map[ProgramID]*programEntry[T]
	nextID ProgramID
}

// NewProgramCache creates an empty program cache.
func NewProgramCache[T any]() *ProgramCache[T] {
	return &ProgramCache[T]{
		byKey: make(map[programKey]ProgramID),
		byID:  make(map[ProgramID]*programEntry[T]),
	}
}

// Acquire returns the program for desc, calling build on the first
// request for its source pair. A build error leaves the cache unchanged.
func (c *ProgramCache[T]) Acquire(desc ProgramDescriptor, build func(ProgramDescriptor) (T, error)) (ProgramID, error) {
	key := programKey{vertex: desc.VertexSource, fragment: desc.FragmentSource}

	c.mu.Lock()
	defer c.mu.Unlock()

	if id, ok := c.byKey[key]; ok {
		c.byID[id].refs++
		return id, nil
	}

	value, err := build(desc)
	if err != nil {
		return 0, err
	}

	c.nextID++
	id := c.nextID
	c.byKey[key] = id
	c.byID[id] = &programEntry[T]{key: key, value: value, refs: 1}
	return id, nil
}

// Get returns the compiled program for id.
func (c *ProgramCache[T]) Get(id ProgramID) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.byID[id]
	if !ok {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Release drops one reference to id. When the last reference goes, the
// entry is removed and destroy is called with its value. Unknown IDs are
// ignored.
func (c *ProgramCache[T]) Release(id ProgramID, destroy func(T)) {
	c.mu.Lock()
	e, ok := c.byID[id]
	if !ok {
		c.mu.Unlock()
		return
	}
	e.refs--
	if e.refs > 0 {
		c.mu.Unlock()
		return
	}
	delete(c.byID, id)
	delete(c.byKey, e.key)
	c.mu.Unlock()

	if destroy != nil {
		destroy(e.value)
	}
}

// Refs returns the reference count of id, or 0 if it is not cached.
func (c *ProgramCache[T]) Refs(id ProgramID) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.byID[id]; ok {
		return e.refs
	}
	return 0
}

// Len returns the number of cached programs.
func (c *ProgramCache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byID)
}

// Clear removes every entry, calling destroy for each value regardless of
// its reference count.
func (c *ProgramCache[T]) Clear(destroy func(T)) {
	c.mu.Lock()
	entries := c.byID
	c.byID = make(map[ProgramID]*programEntry[T])
	c.byKey = make(map[programKey]ProgramID)
	c.mu.Unlock()

	if destroy == nil {
		return
	}
	for _, e := range entries {
		destroy(e.value)
	}
}
