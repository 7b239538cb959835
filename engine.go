package foliage

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/foliage/attr"
	"github.com/gogpu/foliage/bus"
	"github.com/gogpu/foliage/differential"
	"github.com/gogpu/foliage/elements"
	"github.com/gogpu/foliage/gfx"
	"github.com/gogpu/foliage/render"
	"github.com/gogpu/foliage/world"
)

// Stats aggregates the frame counters of the engine.
type Stats struct {
	// Frames is the number of frames handed to the composer.
	Frames int
	// Presented, Skipped and Lost count composed frames by outcome.
	Presented int
	Skipped   int
	Lost      int
	// Recorded is the number of kind re-records.
	Recorded int
	// Unknown is the number of bus entries dropped for unregistered links.
	Unknown int
}

// Engine drives the render core: it owns the graphics context, the packet
// bus, the registry of element kinds and the frame composer.
//
// Engine is not safe for concurrent use; it belongs to the render
// goroutine.
type Engine struct {
	ctx       *gfx.Context
	ownsCtx   bool
	bus       *bus.Bus
	extractor *differential.Extractor
	registry  *render.Registry
	composer  *render.Composer

	icons  *elements.Icon
	images *elements.Image
	text   *elements.Text
}

// New acquires a graphics context for win on instance and creates an
// engine with every built-in element kind registered.
func New(instance hal.Instance, win gfx.Window, opts ...Option) (*Engine, error) {
	o := buildOptions(opts)
	ctx, err := gfx.Acquire(instance, win, o.gfx)
	if err != nil {
		return nil, err
	}
	e := newEngine(ctx, o)
	e.ownsCtx = true
	if win.Provider != nil {
		if err := ctx.ConfigureWindow(win.Provider); err != nil {
			e.Close()
			return nil, err
		}
	}
	return e, nil
}

// NewWithContext creates an engine over a context owned by the host. The
// context options given to gfx take precedence over the graphics options
// in opts.
func NewWithContext(ctx *gfx.Context, opts ...Option) (*Engine, error) {
	if ctx == nil {
		return nil, fmt.Errorf("%w: nil context", gfx.ErrGfxInit)
	}
	return newEngine(ctx, buildOptions(opts)), nil
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger != nil {
		SetLogger(o.logger)
	}
	elements.SetShaderValidation(o.validate)
	return o
}

func newEngine(ctx *gfx.Context, o options) *Engine {
	capacity := elements.WithCapacity(o.capacity)
	e := &Engine{
		ctx:       ctx,
		bus:       bus.New(),
		extractor: newExtractor(),
		registry:  render.NewRegistry(),
		composer:  render.NewComposer(ctx),
		icons:     elements.NewIcon(capacity),
		images:    elements.NewImage(capacity),
		text:      elements.NewText(capacity),
	}
	kinds := map[world.RenderLink]render.Renderer{
		elements.RectangleLink: elements.NewRectangle(capacity),
		elements.PanelLink:     elements.NewPanel(capacity),
		elements.CircleLink:    elements.NewCircle(capacity),
		elements.ShapeLink:     elements.NewShape(capacity),
		elements.IconLink:      e.icons,
		elements.ImageLink:     e.images,
		elements.TextLink:      e.text,
	}
	for _, link := range elements.Links {
		e.registry.Register(link, kinds[link])
	}
	for _, k := range o.kinds {
		e.registry.Register(k.link, k.renderer)
	}
	return e
}

// newExtractor registers the extraction systems of every built-in
// attribute.
func newExtractor() *differential.Extractor {
	x := differential.NewExtractor()
	differential.Register[attr.Position](x)
	differential.Register[attr.Area](x)
	differential.Register[attr.Color](x)
	differential.Register[attr.Elevation](x)
	differential.Register[attr.CornerRadius](x)
	differential.Register[attr.Progress](x)
	differential.Register[attr.MipsLevel](x)
	differential.Register[attr.Slot](x)
	differential.Register[attr.Line](x)
	differential.Register[attr.Weight](x)
	differential.Register[attr.FontSize](x)
	differential.Register[attr.Content](x)
	differential.Register[attr.ClipSection](x)
	differential.Register[attr.Opacity](x)
	return x
}

// RegisterAttribute adds the extraction system of a custom attribute type
// used by a renderer given with WithRenderer.
func RegisterAttribute[D comparable](e *Engine) {
	differential.Register[D](e.extractor)
}

// Configure sizes the surface to extent (physical pixels) with the given
// scale factor.
func (e *Engine) Configure(extent gfx.Extent, scale float32) error {
	return e.ctx.Configure(extent, scale)
}

// ConfigureWindow sizes the surface from the window's logical size and
// scale factor.
func (e *Engine) ConfigureWindow(w gpucontext.WindowProvider) error {
	return e.ctx.ConfigureWindow(w)
}

// Resize resizes the surface, keeping the scale factor.
func (e *Engine) Resize(extent gfx.Extent) error {
	return e.ctx.Resize(extent)
}

// Tick extracts the changed attributes, visibility edges and despawns of w
// into the bus.
func (e *Engine) Tick(w *world.World) error {
	if err := e.extractor.Tick(w, e.bus); err != nil {
		return fmt.Errorf("foliage: tick: %w", err)
	}
	return nil
}

// Frame drains the bus into the element kinds and draws one frame. A lost
// surface is recovered and the frame skipped without error.
func (e *Engine) Frame() error {
	if !e.ctx.Configured() {
		return gfx.ErrNotConfigured
	}
	instructions, err := e.registry.Frame(e.ctx, e.bus.PackageForTransit())
	if err != nil {
		return fmt.Errorf("foliage: frame: %w", err)
	}
	if err := e.composer.Compose(instructions); err != nil {
		return fmt.Errorf("foliage: frame: %w", err)
	}
	return nil
}

// Bus returns the packet bus. Hosts that do not use a world forward
// attributes on it directly.
func (e *Engine) Bus() *bus.Bus { return e.bus }

// Context returns the graphics context.
func (e *Engine) Context() *gfx.Context { return e.ctx }

// Registry returns the registry of element kinds.
func (e *Engine) Registry() *render.Registry { return e.registry }

// Icons returns the Icon kind, for loading atlas slots.
func (e *Engine) Icons() *elements.Icon { return e.icons }

// Images returns the Image kind, for filling atlas slots.
func (e *Engine) Images() *elements.Image { return e.images }

// Text returns the Text kind.
func (e *Engine) Text() *elements.Text { return e.text }

// Stats returns the frame counters.
func (e *Engine) Stats() Stats {
	rs := e.registry.Stats()
	cs := e.composer.Stats()
	return Stats{
		Frames:    rs.Frames,
		Presented: cs.Frames,
		Skipped:   cs.Skipped,
		Lost:      cs.Lost,
		Recorded:  rs.Recorded,
		Unknown:   rs.Unknown,
	}
}

// Close releases every kind and the composer, and the graphics context if
// the engine acquired it.
func (e *Engine) Close() {
	e.registry.Destroy()
	e.composer.Close()
	if e.ownsCtx {
		e.ctx.Close()
	}
}
