package postfx

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/gogpu/postfx/pass"
	"github.com/gogpu/postfx/postprocess"
	"github.com/gogpu/postfx/render"
	"github.com/gogpu/postfx/shader"
)

func runFrames(t *testing.T, p *Pipeline, n int, dt float64) FrameStats {
	t.Helper()
	var stats FrameStats
	for range n {
		var err error
		stats, err = p.Frame(dt)
		if err != nil {
			t.Fatalf("Frame() error = %v", err)
		}
	}
	return stats
}

func assertLockstep(t *testing.T, p *Pipeline, w, h uint32) {
	t.Helper()
	if tw, th := p.Target().Size(); tw != w || th != h {
		t.Errorf("target = %dx%d, want %dx%d", tw, th, w, h)
	}
	if qw, qh := p.Quad().Size(); qw != w || qh != h {
		t.Errorf("quad = %dx%d, want %dx%d", qw, qh, w, h)
	}
	if p.Surface().Width() != w || p.Surface().Height() != h {
		t.Errorf("surface = %dx%d, want %dx%d", p.Surface().Width(), p.Surface().Height(), w, h)
	}
	if err := p.Coordinator().Check(); err != nil {
		t.Errorf("Check() error = %v", err)
	}
}

func TestPipelineEndToEnd(t *testing.T) {
	p := newTestPipeline(t, DefaultConfig())
	assertLockstep(t, p, 800, 600)

	id, gen := p.Target().ID(), p.Target().Generation()
	stats := runFrames(t, p, 120, 1.0/60)

	if math.Abs(stats.Elapsed-2.0) > 1e-9 {
		t.Errorf("Elapsed = %v, want 2.0", stats.Elapsed)
	}
	x, z := p.Cube().Spin.Angles()
	if math.Abs(x-1.10) > 1e-6 || math.Abs(z-0.30) > 1e-6 {
		t.Errorf("Angles() = (%v, %v), want (1.10, 0.30)", x, z)
	}

	bg, _ := p.Config().Clear()
	if got := p.Surface().Image().RGBAAt(400, 300); got == bg {
		t.Errorf("surface center = %v, want the cube", got)
	}

	p.Resize(1024, 768)
	stats = runFrames(t, p, 1, 1.0/60)
	assertLockstep(t, p, 1024, 768)

	if p.Target().ID() != id {
		t.Errorf("ID() = %d, want %d", p.Target().ID(), id)
	}
	if p.Target().Generation() != gen+1 {
		t.Errorf("Generation() = %d, want %d", p.Target().Generation(), gen+1)
	}
	if !stats.Resize.Applied || stats.Resize.Width != 1024 || stats.Resize.Height != 768 {
		t.Errorf("Resize = %+v, want applied 1024x768", stats.Resize)
	}

	write, ok := stats.Trace.Find(pass.OpWrite, id)
	if !ok {
		t.Fatal("no producer write in trace")
	}
	read, ok := stats.Trace.Find(pass.OpRead, id)
	if !ok {
		t.Fatal("no compositor read in trace")
	}
	if read.Generation != write.Generation || read.Width != 1024 || read.Height != 768 {
		t.Errorf("read = %v, write = %v", read, write)
	}
	if p.Material().Binding().Generation != p.Target().Generation() {
		t.Errorf("binding generation = %d, want %d", p.Material().Binding().Generation, p.Target().Generation())
	}
}

func TestPipelineTraceOrder(t *testing.T) {
	p := newTestPipeline(t, DefaultConfig())
	stats := runFrames(t, p, 1, 0)

	want := []string{ProducerName, CompositorName}
	if got := stats.Trace.Passes(); !slices.Equal(got, want) {
		t.Errorf("Passes() = %v, want %v", got, want)
	}
	wantOps := []pass.Op{pass.OpWrite, pass.OpRead, pass.OpWrite}
	var ops []pass.Op
	for _, r := range stats.Trace.Records {
		ops = append(ops, r.Op)
	}
	if !slices.Equal(ops, wantOps) {
		t.Errorf("ops = %v, want %v", ops, wantOps)
	}

	prod := stats.Trace.Records[0]
	if prod.Op != pass.OpWrite || !slices.Equal(prod.Drawables, []string{CubeName}) {
		t.Errorf("producer record = %v, want write of %s", prod, CubeName)
	}
	for _, r := range stats.Trace.Records[1:] {
		if !slices.Equal(r.Drawables, []string{postprocess.QuadName}) {
			t.Errorf("compositor record = %v, want only %s", r, postprocess.QuadName)
		}
		if r.Frame != 1 {
			t.Errorf("Frame = %d, want 1", r.Frame)
		}
	}
}

func TestPipelineCoalescesResizes(t *testing.T) {
	p := newTestPipeline(t, DefaultConfig())
	for _, s := range [][2]uint32{{640, 480}, {700, 500}, {900, 650}, {1280, 720}} {
		p.Resize(s[0], s[1])
	}
	stats := runFrames(t, p, 1, 0)

	if stats.Resize.Coalesced != 4 {
		t.Errorf("Coalesced = %d, want 4", stats.Resize.Coalesced)
	}
	if got := p.Coordinator().Reallocations(); got != 1 {
		t.Errorf("Reallocations() = %d, want 1", got)
	}
	assertLockstep(t, p, 1280, 720)
}

func TestPipelineConcurrentResize(t *testing.T) {
	p := newTestPipeline(t, DefaultConfig())

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 20 {
				p.Resize(uint32(400+i*10+j), uint32(300+j))
			}
		}()
	}
	for range 10 {
		if _, err := p.Frame(0.01); err != nil {
			t.Fatalf("Frame() error = %v", err)
		}
	}
	wg.Wait()

	p.Resize(1000, 700)
	runFrames(t, p, 1, 0)
	assertLockstep(t, p, 1000, 700)
}

func TestPipelineZeroSize(t *testing.T) {
	tests := []struct {
		policy string
		w, h   uint32
	}{
		{"ignore", 800, 600},
		{"clamp", 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.policy, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.ZeroSize = tt.policy
			p := newTestPipeline(t, cfg)

			p.Resize(0, 0)
			stats := runFrames(t, p, 1, 0)
			if stats.Resize.Ignored != (tt.policy == "ignore") {
				t.Errorf("Ignored = %v", stats.Resize.Ignored)
			}
			assertLockstep(t, p, tt.w, tt.h)

			p.Resize(800, 600)
			runFrames(t, p, 1, 0)
			assertLockstep(t, p, 800, 600)
		})
	}
}

func TestPipelineResizeFailureKeepsPreviousSize(t *testing.T) {
	p := newTestPipeline(t, DefaultConfig(), WithLimits(render.DeviceLimits{MaxTextureDimension2D: 1000}))
	id, gen := p.Target().ID(), p.Target().Generation()

	p.Resize(1200, 900)
	stats, err := p.Frame(0.1)
	var allocErr *render.AllocationError
	if !errors.As(err, &allocErr) || !errors.Is(err, render.ErrExceedsLimit) {
		t.Fatalf("Frame() error = %v, want AllocationError wrapping ErrExceedsLimit", err)
	}
	if !IsResizeError(err) {
		t.Errorf("IsResizeError(%v) = false", err)
	}
	if len(stats.Trace.Records) == 0 {
		t.Error("frame did not render after a failed resize")
	}
	assertLockstep(t, p, 800, 600)
	if p.Target().ID() != id || p.Target().Generation() != gen {
		t.Errorf("target = id %d gen %d, want id %d gen %d", p.Target().ID(), p.Target().Generation(), id, gen)
	}

	if _, err := p.Frame(0.1); err != nil {
		t.Errorf("Frame() after failed resize error = %v", err)
	}
}

func TestPipelineSetShader(t *testing.T) {
	p := newTestPipeline(t, DefaultConfig())

	if err := p.SetShader("./shaders/passthrough.wgsl"); err != nil {
		t.Fatalf("SetShader() error = %v", err)
	}
	if got := p.Material().ShaderRef(); got != shader.RefPassthrough {
		t.Errorf("ShaderRef() = %q, want %q", got, shader.RefPassthrough)
	}
	if err := p.Coordinator().Check(); err != nil {
		t.Errorf("Check() after SetShader error = %v", err)
	}

	err := p.SetShader("shaders/missing.wgsl")
	if !errors.Is(err, shader.ErrNotFound) {
		t.Errorf("SetShader(missing) error = %v, want ErrNotFound", err)
	}
	if got := p.Material().ShaderRef(); got != shader.RefPassthrough {
		t.Errorf("ShaderRef() after failed swap = %q, want %q", got, shader.RefPassthrough)
	}
	runFrames(t, p, 1, 0)
}

func TestPipelineHotReload(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "shaders"), 0o755); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(dir, "shaders", "fxaa.wgsl")
	if err := os.WriteFile(file, []byte("// v1"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.ShaderDir = dir
	cfg.HotReload = true
	p := newTestPipeline(t, cfg)

	if err := os.WriteFile(file, []byte("// v2"), 0o600); err != nil {
		t.Fatal(err)
	}
	p.watcher.Mark(shader.RefFXAA)
	stats := runFrames(t, p, 1, 0)
	if !slices.Contains(stats.Reloaded, shader.RefFXAA) {
		t.Errorf("Reloaded = %v, want %s", stats.Reloaded, shader.RefFXAA)
	}
	if prog, _ := p.Library().Cached(shader.RefFXAA); prog.Source != "// v2" {
		t.Errorf("Source = %q, want // v2", prog.Source)
	}

	// A broken edit keeps the previous program.
	if err := os.WriteFile(file, []byte("syntax error"), 0o600); err != nil {
		t.Fatal(err)
	}
	p.watcher.Mark(shader.RefFXAA)
	stats = runFrames(t, p, 1, 0)
	if slices.Contains(stats.Reloaded, shader.RefFXAA) {
		t.Errorf("Reloaded = %v, want failed reload skipped", stats.Reloaded)
	}
	if prog, _ := p.Library().Cached(shader.RefFXAA); prog.Source != "// v2" {
		t.Errorf("Source = %q, want // v2 kept", prog.Source)
	}
}

func TestPipelineClose(t *testing.T) {
	p, err := New(DefaultConfig(), WithShaderCompiler(fakeCompile))
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := p.Frame(0); !errors.Is(err, ErrClosed) {
		t.Errorf("Frame() after Close error = %v, want ErrClosed", err)
	}
	if p.Target().Texture() != nil {
		t.Error("Texture() after Close is not nil")
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width = 0
	if _, err := New(cfg); err == nil {
		t.Error("New() accepted zero width")
	}
}

func TestPipelineCustomLayers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SceneLayer = 3
	cfg.PostProcessLayer = 7
	p := newTestPipeline(t, cfg)

	if !p.Quad().RenderLayers().Has(7) || p.Quad().RenderLayers().Has(3) {
		t.Errorf("quad layers = %v, want layer 7 only", p.Quad().RenderLayers())
	}
	stats := runFrames(t, p, 1, 0)
	if _, ok := stats.Trace.Find(pass.OpRead, p.Target().ID()); !ok {
		t.Error("compositor did not read the target on custom layers")
	}
	if got := stats.Trace.Records[0].Drawables; !slices.Equal(got, []string{CubeName}) {
		t.Errorf("producer drawables = %v, want [%s]", got, CubeName)
	}
}

func TestPipelineDrainsAssetEvents(t *testing.T) {
	p := newTestPipeline(t, DefaultConfig())

	stats := runFrames(t, p, 1, 0)
	// Cube mesh, quad mesh, cube material and post-process material.
	if stats.AssetChanges != 4 {
		t.Errorf("first frame AssetChanges = %d, want 4", stats.AssetChanges)
	}

	for i := range 1000 {
		if i%2 == 0 {
			p.Resize(1024, 768)
		} else {
			p.Resize(800, 600)
		}
		stats := runFrames(t, p, 1, 0.001)
		// Quad mesh replaced and material touched.
		if stats.AssetChanges != 2 {
			t.Fatalf("frame %d AssetChanges = %d, want 2", stats.Frame, stats.AssetChanges)
		}
		if n := p.Meshes().Pending(); n != 0 {
			t.Fatalf("frame %d: %d mesh events pending", stats.Frame, n)
		}
		if n := p.postMaterials.Pending(); n != 0 {
			t.Fatalf("frame %d: %d material events pending", stats.Frame, n)
		}
	}

	if err := p.SetShader(shader.RefPassthrough); err != nil {
		t.Fatal(err)
	}
	if stats := runFrames(t, p, 1, 0); stats.AssetChanges != 1 {
		t.Errorf("AssetChanges after SetShader = %d, want 1", stats.AssetChanges)
	}
}

func TestPipelineRejectsStaleModifiedMaterial(t *testing.T) {
	p := newTestPipeline(t, DefaultConfig())
	runFrames(t, p, 1, 0)

	// Resize the target behind the coordinator's back.
	if err := p.Target().Resize(640, 480); err != nil {
		t.Fatal(err)
	}
	if err := p.postMaterials.Touch(p.material); err != nil {
		t.Fatal(err)
	}
	_, err := p.Frame(0)
	var stale *render.BindingStaleError
	if !errors.As(err, &stale) {
		t.Errorf("Frame() error = %v, want *render.BindingStaleError", err)
	}
}
