package foliage

import (
	"log/slog"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/foliage/attr"
	"github.com/gogpu/foliage/gfx"
	"github.com/gogpu/foliage/render"
	"github.com/gogpu/foliage/world"
)

// Option configures an Engine during creation.
//
// Example:
//
//	eng, err := foliage.New(instance, win,
//	    foliage.WithSampleCount(1),
//	    foliage.WithClearColor(attr.Black),
//	)
type Option func(*options)

// extraKind is a renderer registered next to the built-in kinds.
type extraKind struct {
	link     world.RenderLink
	renderer render.Renderer
}

// options holds optional configuration for Engine creation.
type options struct {
	gfx      gfx.Options
	capacity int
	validate bool
	logger   *slog.Logger
	kinds    []extraKind
}

// defaultOptions returns the default engine options.
func defaultOptions() options {
	return options{
		gfx:      gfx.DefaultOptions(),
		capacity: 1,
	}
}

// WithConfig applies every setting of c. Options given after it override
// single settings.
func WithConfig(c Config) Option {
	return func(o *options) {
		o.gfx.SampleCount = c.SampleCount
		o.gfx.Near = c.Near
		o.gfx.Far = c.Far
		o.gfx.PresentMode = c.presentMode()
		o.gfx.Downlevel = c.Downlevel
		o.gfx.ClearColor = clearColor(c.ClearColor)
		o.capacity = c.InitialCapacity
		o.validate = c.ValidateShaders
	}
}

// WithLogger sets the logger for foliage and all its sub-packages, as
// SetLogger does.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithSampleCount requests an MSAA level. The effective level is clamped
// to what the adapter supports for the surface format.
func WithSampleCount(n uint32) Option {
	return func(o *options) {
		o.gfx.SampleCount = n
	}
}

// WithNearFar sets the elevation range mapped to clip depth.
func WithNearFar(near, far float32) Option {
	return func(o *options) {
		o.gfx.Near = near
		o.gfx.Far = far
	}
}

// WithClearColor sets the color each frame is cleared to.
func WithClearColor(c attr.Color) Option {
	return func(o *options) {
		o.gfx.ClearColor = clearColor([4]float32{c.R, c.G, c.B, c.A})
	}
}

// WithRequiredFeatures adds features the adapter must expose.
func WithRequiredFeatures(f gputypes.Features) Option {
	return func(o *options) {
		o.gfx.RequiredFeatures |= f
	}
}

// WithDownlevel opens the device with downlevel limits, for WebGL2-class
// targets.
func WithDownlevel() Option {
	return func(o *options) {
		o.gfx.Downlevel = true
	}
}

// WithPresentMode sets the swapchain present mode. Unsupported modes fall
// back to FIFO.
func WithPresentMode(m gputypes.PresentMode) Option {
	return func(o *options) {
		o.gfx.PresentMode = m
	}
}

// WithInitialCapacity sets the initial instance capacity of every built-in
// kind.
func WithInitialCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithShaderValidation validates every built-in shader with naga before
// pipeline creation.
func WithShaderValidation() Option {
	return func(o *options) {
		o.validate = true
	}
}

// WithRenderer registers an additional renderer kind under link. It runs
// after the built-in kinds within its phase.
func WithRenderer(link world.RenderLink, r render.Renderer) Option {
	return func(o *options) {
		o.kinds = append(o.kinds, extraKind{link: link, renderer: r})
	}
}

func clearColor(c [4]float32) gputypes.Color {
	return gputypes.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3])}
}
