package backend

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/kanbang/cesium/render"
)

// HeadlessDevice is a device provider backed by the noop HAL. It accepts
// every command and produces no pixels, which suits tools and tests that
// exercise the full draw path without a GPU.
type HeadlessDevice struct {
	render.NullDeviceHandle

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	once     sync.Once
}

// Headless opens a noop HAL device.
func Headless() (*HeadlessDevice, error) {
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("backend: create headless instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("%w: no headless adapter", ErrBackendNotAvailable)
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("backend: open headless device: %w", err)
	}
	return &HeadlessDevice{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
	}, nil
}

// HalDevice returns the hal.Device.
func (h *HeadlessDevice) HalDevice() any { return h.device }

// HalQueue returns the hal.Queue.
func (h *HeadlessDevice) HalQueue() any { return h.queue }

// Close destroys the device and instance. Contexts created on it must be
// destroyed first.
func (h *HeadlessDevice) Close() {
	h.once.Do(func() {
		h.device.Destroy()
		h.instance.Destroy()
	})
}
