package vertexstore

import "github.com/kanbang/cesium/render"

// Option configures a Store.
type Option func(*options)

type options struct {
	capacity int
	label    string
}

func defaultOptions() options {
	return options{
		capacity: render.MaxSegmentVertices,
		label:    "vertexstore",
	}
}

// WithSegmentCapacity sets the maximum number of vertices per segment.
// Values are clamped to [2, render.MaxSegmentVertices].
func WithSegmentCapacity(n int) Option {
	return func(o *options) {
		o.capacity = max(2, min(n, render.MaxSegmentVertices))
	}
}

// WithLabel sets the debug label used in errors and logs.
func WithLabel(label string) Option {
	return func(o *options) {
		o.label = label
	}
}
