package native

import (
	"time"

	"github.com/gogpu/gputypes"
)

const (
	defaultSampleCount = 4
	defaultTimeout     = 5 * time.Second
)

// config holds construction options.
type config struct {
	sampleCount    uint32
	timeout        time.Duration
	colorFormat    gputypes.TextureFormat
	validateShader bool
}

func defaultConfig() config {
	return config{
		sampleCount:    defaultSampleCount,
		timeout:        defaultTimeout,
		colorFormat:    gputypes.TextureFormatBGRA8Unorm,
		validateShader: true,
	}
}

// Option configures a Context.
type Option func(*config)

// WithSampleCount sets the MSAA sample count of the frame attachments.
// Values other than 1 and 4 fall back to 4.
func WithSampleCount(n uint32) Option {
	return func(c *config) {
		if n == 1 || n == 4 {
			c.sampleCount = n
		}
	}
}

// WithTimeout sets how long EndFrame waits for the GPU.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithColorFormat sets the format of the resolve target.
func WithColorFormat(f gputypes.TextureFormat) Option {
	return func(c *config) {
		c.colorFormat = f
	}
}

// WithShaderValidation toggles naga validation of program sources.
func WithShaderValidation(enabled bool) Option {
	return func(c *config) {
		c.validateShader = enabled
	}
}
