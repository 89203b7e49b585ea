// Command postfxdemo renders the rotating cube through the post-process pass
// for a number of frames, optionally resizing the window along the way, and
// saves the final window surface.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/gogpu/postfx"
	"github.com/gogpu/postfx/present"
)

// resizeStep resizes the window before frame Frame.
type resizeStep struct {
	Frame         int
	Width, Height uint32
}

func main() {
	var (
		configPath = flag.String("config", "", "YAML configuration file")
		frames     = flag.Int("frames", 120, "number of frames to render")
		fps        = flag.Float64("fps", 60, "simulated frames per second")
		resizes    = flag.String("resize", "", "scripted resizes, e.g. 60:1024x768,90:640x480")
		shaderRef  = flag.String("shader", "", "post-process shader reference (overrides config)")
		output     = flag.String("output", "postfx.webp", "snapshot file (.webp or .png)")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	postfx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := postfx.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = postfx.LoadConfig(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *shaderRef != "" {
		cfg.Shader = *shaderRef
	}

	steps, err := parseResizes(*resizes)
	if err != nil {
		log.Fatalf("Invalid -resize: %v", err)
	}
	if *frames <= 0 || *fps <= 0 {
		log.Fatal("-frames and -fps must be positive")
	}

	p, err := postfx.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create pipeline: %v", err)
	}
	defer func() { _ = p.Close() }()

	bar := progressbar.Default(int64(*frames), "rendering")
	dt := 1 / *fps
	next := 0
	for i := range *frames {
		for next < len(steps) && steps[next].Frame == i {
			p.Resize(steps[next].Width, steps[next].Height)
			next++
		}
		if _, err := p.Frame(dt); err != nil {
			// A failed resize still renders; anything else is fatal.
			if !postfx.IsResizeError(err) {
				log.Fatalf("Frame %d failed: %v", i, err)
			}
			log.Printf("Frame %d: %v", i, err)
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	if err := present.SaveSnapshot(*output, p.Surface().Image()); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	x, z := p.Cube().Spin.Angles()
	log.Printf("Snapshot saved to %s (%dx%d, spin x=%.2f z=%.2f)\n",
		*output, p.Surface().Width(), p.Surface().Height(), x, z)
}

// parseResizes parses "frame:WxH" steps separated by commas. Steps are
// returned in the order given and must have non-decreasing frames.
func parseResizes(s string) ([]resizeStep, error) {
	if s == "" {
		return nil, nil
	}
	var steps []resizeStep
	for part := range strings.SplitSeq(s, ",") {
		frame, size, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("%q: want frame:WxH", part)
		}
		f, err := strconv.Atoi(frame)
		if err != nil || f < 0 {
			return nil, fmt.Errorf("%q: bad frame", part)
		}
		ws, hs, ok := strings.Cut(size, "x")
		if !ok {
			return nil, fmt.Errorf("%q: want WxH", part)
		}
		w, err := strconv.ParseUint(ws, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%q: bad width: %w", part, err)
		}
		h, err := strconv.ParseUint(hs, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%q: bad height: %w", part, err)
		}
		if len(steps) > 0 && f < steps[len(steps)-1].Frame {
			return nil, fmt.Errorf("%q: frames must not decrease", part)
		}
		steps = append(steps, resizeStep{Frame: f, Width: uint32(w), Height: uint32(h)})
	}
	return steps, nil
}
