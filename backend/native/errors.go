package native

import "errors"

// Package errors.
var (
	// ErrNilDevice is returned when a context is created without a device or queue.
	ErrNilDevice = errors.New("native: HAL device or queue is nil")

	// ErrNoHALProvider is returned when a device provider does not expose
	// HAL handles.
	ErrNoHALProvider = errors.New("native: provider does not expose HAL device")

	// ErrDestroyed is returned by operations on a destroyed context.
	ErrDestroyed = errors.New("native: context destroyed")

	// ErrNoFrame is returned when Draw or EndFrame is called outside a frame.
	ErrNoFrame = errors.New("native: no frame in progress")

	// ErrFrameInProgress is returned when BeginFrame is called twice.
	ErrFrameInProgress = errors.New("native: frame already in progress")

	// ErrInvalidDimensions is returned when width or height is not positive.
	ErrInvalidDimensions = errors.New("native: invalid dimensions")

	// ErrUnalignedWrite is returned when a buffer write is not 4-byte aligned.
	ErrUnalignedWrite = errors.New("native: buffer write not 4-byte aligned")

	// ErrUnsupportedFormat is returned for vertex layouts with no WebGPU format.
	ErrUnsupportedFormat = errors.New("native: unsupported vertex format")

	// ErrMissingUniform is returned when a draw lacks a uniform the program declares.
	ErrMissingUniform = errors.New("native: missing uniform")

	// ErrInvalidShader is returned when WGSL fails validation.
	ErrInvalidShader = errors.New("native: invalid shader")
)
