// Command foliage-demo drives the foliage render core headless.
//
// It spawns one element of every built-in kind, animates a circle's
// progress and a panel's elevation for a number of frames, and reports
// what the core recorded and presented. Rendering goes through an
// in-memory recording device, so no GPU or window is needed.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"log/slog"
	"math"
	"os"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/foliage"
	"github.com/gogpu/foliage/attr"
	"github.com/gogpu/foliage/differential"
	"github.com/gogpu/foliage/elements"
	"github.com/gogpu/foliage/gfx"
	"github.com/gogpu/foliage/internal/gputest"
	"github.com/gogpu/foliage/world"
)

func main() {
	var (
		width   = flag.Int("width", 800, "surface width")
		height  = flag.Int("height", 600, "surface height")
		scale   = flag.Float64("scale", 1, "display scale factor")
		frames  = flag.Int("frames", 60, "frames to render")
		config  = flag.String("config", "", "TOML config file")
		verbose = flag.Bool("v", false, "log core activity")
	)
	flag.Parse()

	if *verbose {
		foliage.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	opts := []foliage.Option{}
	if *config != "" {
		cfg, err := foliage.LoadConfig(*config)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		opts = append(opts, foliage.WithConfig(cfg))
	}

	inst := gputest.NewInstance(gputypes.Features(gputypes.FeatureTextureAdapterSpecificFormatFeatures))
	win := &gpucontext.NullWindowProvider{W: *width, H: *height, SF: *scale}
	eng, err := foliage.New(inst, gfx.Window{Provider: win}, opts...)
	if err != nil {
		log.Fatalf("Failed to start engine: %v", err)
	}
	defer eng.Close()

	if err := loadAtlases(eng); err != nil {
		log.Fatalf("Failed to fill atlases: %v", err)
	}

	w := world.New()
	spawnBackground(w, float32(*width), float32(*height))
	card := spawnCard(w)
	ring := spawnRing(w)
	spawnDivider(w)
	spawnIcon(w)
	spawnPhoto(w)
	label := spawnLabel(w)

	for i := 0; i < *frames; i++ {
		t := float32(i) / float32(max(*frames-1, 1))
		differential.Set(w, ring, attr.Progress{Start: 0, End: t})
		differential.Set(w, card, attr.Elevation(2+3*float32(math.Sin(float64(t)*math.Pi))))
		if i%15 == 0 {
			differential.Set(w, label, attr.Content(fmt.Sprintf("frame %d", i)))
		}
		if err := eng.Tick(w); err != nil {
			log.Fatalf("Tick %d: %v", i, err)
		}
		if err := eng.Frame(); err != nil {
			log.Fatalf("Frame %d: %v", i, err)
		}
	}

	s := eng.Stats()
	log.Printf("Rendered %d frames at %dx%d (presented %d, skipped %d, lost %d, re-records %d)\n",
		s.Frames, *width, *height, s.Presented, s.Skipped, s.Lost, s.Recorded)
	log.Printf("Text holds %d glyph instances\n", eng.Text().Glyphs(label))
}

func loadAtlases(eng *foliage.Engine) error {
	icons := []color.RGBA{{R: 220, A: 255}, {G: 180, A: 255}, {B: 220, A: 255}}
	for i, c := range icons {
		if err := eng.Icons().Load(attr.Slot(i), disc(eng.Icons().SlotSize(), c)); err != nil {
			return err
		}
	}
	return eng.Images().Fill(0, gradient(eng.Images().SlotSize()))
}

// disc returns a filled circle on transparent, for the icon atlas's alpha mask.
func disc(size int, c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	r := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx, dy := float64(x)+0.5-r, float64(y)+0.5-r
			if dx*dx+dy*dy <= r*r {
				img.SetRGBA(x, y, c)
			}
		}
	}
	return img
}

func gradient(size int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(255 * x / max(size-1, 1)),
				G: uint8(255 * y / max(size-1, 1)),
				B: 160,
				A: 255,
			})
		}
	}
	return img
}

func spawn(w *world.World, link world.RenderLink) world.Entity {
	e := w.Spawn()
	world.Insert(w, e, link)
	world.Insert(w, e, world.Shown)
	return e
}

func spawnBackground(w *world.World, width, height float32) {
	e := spawn(w, elements.RectangleLink)
	differential.Track(w, e, attr.Position{})
	differential.Track(w, e, attr.Area{W: width, H: height})
	differential.Track(w, e, attr.Color{R: 0.93, G: 0.94, B: 0.96, A: 1})
	differential.Track(w, e, attr.Elevation(0))
}

func spawnCard(w *world.World) world.Entity {
	e := spawn(w, elements.PanelLink)
	differential.Track(w, e, attr.Position{X: 40, Y: 40})
	differential.Track(w, e, attr.Area{W: 320, H: 200})
	differential.Track(w, e, attr.White)
	differential.Track(w, e, attr.Elevation(2))
	differential.Track(w, e, attr.CornerRadius(12))
	return e
}

func spawnRing(w *world.World) world.Entity {
	e := spawn(w, elements.CircleLink)
	differential.Track(w, e, attr.Position{X: 400, Y: 40})
	differential.Track(w, e, attr.Area{W: 120, H: 120})
	differential.Track(w, e, attr.Color{R: 0.2, G: 0.5, B: 0.9, A: 1})
	differential.Track(w, e, attr.Elevation(3))
	differential.Track(w, e, attr.Progress{})
	return e
}

func spawnDivider(w *world.World) {
	e := spawn(w, elements.ShapeLink)
	differential.Track(w, e, attr.Line{X0: 40, Y0: 280, X1: 560, Y1: 280})
	differential.Track(w, e, attr.Weight(3))
	differential.Track(w, e, attr.Color{R: 0.4, G: 0.4, B: 0.45, A: 0.8})
	differential.Track(w, e, attr.Elevation(1))
}

func spawnIcon(w *world.World) {
	e := spawn(w, elements.IconLink)
	differential.Track(w, e, attr.Position{X: 60, Y: 60})
	differential.Track(w, e, attr.Area{W: 24, H: 24})
	differential.Track(w, e, attr.Red)
	differential.Track(w, e, attr.Elevation(6))
	differential.Track(w, e, attr.Slot(0))
}

func spawnPhoto(w *world.World) {
	e := spawn(w, elements.ImageLink)
	differential.Track(w, e, attr.Position{X: 40, Y: 300})
	differential.Track(w, e, attr.Area{W: 160, H: 160})
	differential.Track(w, e, attr.Elevation(2))
	differential.Track(w, e, attr.Slot(0))
	differential.Track(w, e, attr.Opacity(0.8))
	differential.Track(w, e, attr.ClipSection{X: 40, Y: 300, W: 160, H: 80})
}

func spawnLabel(w *world.World) world.Entity {
	e := spawn(w, elements.TextLink)
	differential.Track(w, e, attr.Position{X: 80, Y: 64})
	differential.Track(w, e, attr.FontSize(20))
	differential.Track(w, e, attr.Black)
	differential.Track(w, e, attr.Elevation(6))
	differential.Track(w, e, attr.Content("foliage"))
	differential.Track(w, e, attr.ClipSection{X: 40, Y: 40, W: 320, H: 200})
	return e
}
