// Command polylinedemo renders animated polyline collections on a headless
// device and reports batching statistics.
package main

import (
	"flag"
	"log"
	"log/slog"
	"math"
	"os"

	"golang.org/x/image/math/f32"

	"github.com/kanbang/cesium"
	"github.com/kanbang/cesium/backend"
	"github.com/kanbang/cesium/backend/native"
	"github.com/kanbang/cesium/polyline"
	"github.com/kanbang/cesium/render"
)

func main() {
	var (
		width    = flag.Int("width", 800, "frame width")
		height   = flag.Int("height", 600, "frame height")
		frames   = flag.Int("frames", 120, "frames to render")
		count    = flag.Int("lines", 64, "number of polylines")
		points   = flag.Int("points", 32, "vertices per polyline")
		capacity = flag.Int("segment", render.MaxSegmentVertices, "vertices per buffer segment")
		name     = flag.String("backend", backend.BackendNative, "render backend")
		verbose  = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		cesium.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	device, err := backend.Headless()
	if err != nil {
		log.Fatalf("Failed to open headless device: %v", err)
	}
	defer device.Close()

	rc, err := backend.Open(*name, device)
	if err != nil {
		log.Fatalf("Failed to open backend: %v", err)
	}
	defer rc.Destroy()
	ctx, ok := rc.(*native.Context)
	if !ok {
		log.Fatalf("Backend %q does not support frames", *name)
	}

	lines := polyline.New(polyline.WithSegmentCapacity(*capacity))
	defer lines.Destroy()

	var all []*polyline.Polyline
	for i := 0; i < *count; i++ {
		hue := float32(i) / float32(*count)
		all = append(all, lines.Add(
			polyline.WithPositions(wave(i, *points, 0)...),
			polyline.WithColor(cesium.Cyan.Lerp(cesium.Magenta, hue)),
			polyline.WithOutlineColor(cesium.Black),
			polyline.WithWidth(float32(1+i%4)),
			polyline.WithOutlineWidth(1),
		))
	}

	for f := 0; f < *frames; f++ {
		t := float32(f) / 30
		// Animate a quarter of the lines to exercise the streaming path.
		for i := 0; i < len(all); i += 4 {
			all[i].SetPositions(wave(i, *points, t))
		}
		if f%60 == 59 && len(all) > 0 {
			all[len(all)-1].SetShow(!all[len(all)-1].Show())
		}

		fs := &render.FrameState{
			Context:        ctx,
			Mode:           render.SceneMode3D,
			MorphTime:      1,
			ViewProjection: render.Scale(1/float32(*width)*float32(*height), 1, 1),
		}
		if err := ctx.BeginFrame(*width, *height); err != nil {
			log.Fatalf("BeginFrame: %v", err)
		}
		if err := lines.Update(fs); err != nil {
			log.Fatalf("Update: %v", err)
		}
		if err := lines.Render(fs); err != nil {
			log.Fatalf("Render: %v", err)
		}
		if err := ctx.EndFrame(); err != nil {
			log.Fatalf("EndFrame: %v", err)
		}
	}

	s := lines.Stats()
	g := ctx.Stats()
	log.Printf("Rendered %d frames: %d polylines, %d vertices, %d segments, %d batches, %d rebuilds\n",
		*frames, s.Polylines, s.Vertices, s.Segments, s.Batches, s.Rebuilds)
	log.Printf("Pipelines: %d (hits %d, misses %d)\n", g.Pipelines, g.PipelineHits, g.PipelineMisses)
	log.Printf("Positions usage: %s\n", lines.Usage(polyline.PropertyPositions))
}

// wave returns a sine polyline across clip space, offset vertically by
// index i and shifted in phase by t.
func wave(i, n int, t float32) []f32.Vec3 {
	pts := make([]f32.Vec3, n)
	y0 := -0.9 + 1.8*float32(i%32)/32
	for k := range pts {
		x := -1 + 2*float32(k)/float32(max(n-1, 1))
		y := y0 + 0.05*float32(math.Sin(float64(4*x+t+float32(i))))
		pts[k] = f32.Vec3{x, y, 0}
	}
	return pts
}
