package postfx

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"os"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/postfx/asset"
	"github.com/gogpu/postfx/camera"
	"github.com/gogpu/postfx/mesh"
	"github.com/gogpu/postfx/pass"
	"github.com/gogpu/postfx/postprocess"
	"github.com/gogpu/postfx/render"
	"github.com/gogpu/postfx/shader"
	"github.com/gogpu/postfx/world"
)

var (
	// ErrClosed is returned by Frame after Close.
	ErrClosed = errors.New("postfx: pipeline is closed")

	// ErrHotReloadFS is returned by New when hot reload is combined with
	// WithShaderFS: the watcher reports paths under Config.ShaderDir, which
	// need not exist in the injected file system.
	ErrHotReloadFS = errors.New("postfx: hot_reload requires shaders loaded from shader_dir, not WithShaderFS")
)

// Reference scene.
const (
	CubeName       = "MainCube"
	CubeSize       = 4
	CubeScale      = 2
	ProducerName   = "producer"
	CompositorName = "compositor"
)

var (
	cubeTranslation = mgl32.Vec3{0, 0, 1}
	cubeColor       = color.RGBA{R: 204, G: 178, B: 153, A: 255} // (0.8, 0.7, 0.6)
	lightPosition   = mgl32.Vec3{0, 0, 10}
	producerEye     = mgl32.Vec3{0, 0, 15}
)

// IsResizeError reports whether err, as returned by Frame, is a failed
// resize. Such a frame was still rendered at the previous size.
func IsResizeError(err error) bool {
	var allocErr *render.AllocationError
	return errors.As(err, &allocErr)
}

// FrameStats describes one executed frame.
type FrameStats struct {
	// Frame is the 1-based frame number.
	Frame uint64

	// Elapsed is the accumulated animation time in seconds.
	Elapsed float64

	// Resize is what the resize coordinator did at the start of the frame.
	Resize postprocess.Result

	// Reloaded lists shader references reloaded this frame.
	Reloaded []string

	// AssetChanges is the number of asset events drained this frame.
	AssetChanges int

	// Trace lists the target accesses of the camera passes in order.
	Trace pass.Trace
}

// Pipeline is the two-pass renderer: a producer camera draws the rotating
// cube into an off-screen RenderTarget and a compositor camera draws a
// full-screen quad sampling that target into the window surface.
//
// Resize may be called from any goroutine. Every other method must be called
// from the goroutine that runs frames.
type Pipeline struct {
	cfg    Config
	logger *slog.Logger

	target  *render.RenderTarget
	surface *render.WindowSurface

	meshes         *asset.Store[*mesh.Mesh]
	sceneMaterials *asset.Store[world.StandardMaterial]
	postMaterials  *asset.Store[*postprocess.Material]
	material       asset.Handle[*postprocess.Material]

	world *world.World
	cube  *world.Object
	quad  *postprocess.Quad

	schedule *camera.Schedule
	coord    *postprocess.Coordinator

	library *shader.Library
	effects *shader.Effects
	watcher *shader.Watcher

	producer   *pass.Producer
	compositor *pass.Compositor

	frame   uint64
	elapsed float64
	closed  bool
}

// New builds the pipeline described by cfg.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if cfg.HotReload && o.shaderFS != nil {
		return nil, ErrHotReloadFS
	}
	if o.allocator == nil {
		o.allocator = render.NewHostAllocator()
	}
	if o.logger == nil {
		o.logger = Logger()
	}
	if o.effects == nil {
		o.effects = shader.NewEffects()
	}

	format, _ := cfg.TextureFormat()
	policy, _ := cfg.ZeroSizePolicy()
	clearColor, _ := cfg.Clear()

	target, err := render.NewRenderTarget(o.allocator, o.limits, cfg.Width, cfg.Height, format)
	if err != nil {
		return nil, fmt.Errorf("postfx: create render target: %w", err)
	}

	p := &Pipeline{
		cfg:            cfg,
		logger:         o.logger,
		target:         target,
		surface:        render.NewWindowSurface(cfg.Width, cfg.Height),
		meshes:         asset.NewStore[*mesh.Mesh]("mesh"),
		sceneMaterials: asset.NewStore[world.StandardMaterial]("standard material"),
		postMaterials:  asset.NewStore[*postprocess.Material]("post-process material"),
		world:          world.New(),
		effects:        o.effects,
	}

	if err := p.setupShaders(o); err != nil {
		target.Destroy()
		return nil, err
	}
	p.setupScene()
	p.material = p.postMaterials.Add(postprocess.NewMaterial(shader.CleanRef(cfg.Shader), target))
	p.quad = postprocess.NewQuad(p.meshes, p.material, cfg.Width, cfg.Height)
	p.quad.Layers = render.Layer(cfg.PostProcessLayer)

	producerCam := &camera.Camera{
		Name:       ProducerName,
		Target:     camera.ImageTarget(target),
		Priority:   cfg.ProducerPriority,
		Layers:     render.Layer(cfg.SceneLayer),
		Projection: camera.DefaultPerspective(),
		ClearColor: clearColor,
		Eye:        producerEye,
		Up:         world.AxisY,
	}
	compositorCam := &camera.Camera{
		Name:       CompositorName,
		Target:     camera.WindowTarget(),
		Priority:   cfg.CompositorPriority,
		Layers:     render.Layer(cfg.PostProcessLayer),
		Projection: camera.DefaultOrthographic(),
		ClearColor: clearColor,
	}
	p.schedule = camera.NewSchedule(compositorCam, producerCam)
	if err := p.schedule.Validate(target); err != nil {
		_ = p.release()
		return nil, err
	}

	p.coord, err = postprocess.NewCoordinator(postprocess.CoordinatorConfig{
		Target:    target,
		Surface:   p.surface,
		Materials: p.postMaterials,
		Material:  p.material,
		Meshes:    p.meshes,
		Quad:      p.quad,
		Policy:    policy,
	})
	if err != nil {
		_ = p.release()
		return nil, err
	}

	p.producer = &pass.Producer{Meshes: p.meshes, Materials: p.sceneMaterials, World: p.world}
	p.compositor = &pass.Compositor{
		Meshes:    p.meshes,
		Materials: p.postMaterials,
		Effects:   p.effects,
		Surface:   p.surface,
	}

	propagateLogger(p.logger, p.components()...)
	p.logger.Info("postfx: pipeline created",
		"width", cfg.Width, "height", cfg.Height, "shader", cfg.Shader, "zero_size", policy)
	return p, nil
}

func (p *Pipeline) setupShaders(o options) error {
	fsys := o.shaderFS
	if fsys == nil {
		if p.cfg.ShaderDir != "" {
			fsys = os.DirFS(p.cfg.ShaderDir)
		} else {
			fsys = shader.Builtin
		}
	}
	p.library = shader.NewLibrary(fsys)
	if o.compiler != nil {
		p.library.SetCompiler(o.compiler)
	}
	p.library.SetLogger(o.logger)

	if _, err := p.library.Load(p.cfg.Shader); err != nil {
		return fmt.Errorf("postfx: load shader: %w", err)
	}
	if _, ok := p.effects.Lookup(p.cfg.Shader); !ok {
		p.logger.Warn("postfx: no CPU effect for shader, compositing without filtering", "shader", p.cfg.Shader)
	}

	if p.cfg.HotReload {
		w, err := shader.NewWatcher(p.cfg.ShaderDir)
		if err != nil {
			return fmt.Errorf("postfx: %w", err)
		}
		p.watcher = w
	}
	return nil
}

func (p *Pipeline) setupScene() {
	p.cube = &world.Object{
		Name:      CubeName,
		Transform: world.FromTranslation(cubeTranslation).WithScale(mgl32.Vec3{CubeScale, CubeScale, CubeScale}),
		Mesh:      p.meshes.Add(mesh.Cube(CubeSize)),
		Material: p.sceneMaterials.Add(world.StandardMaterial{
			BaseColor:   cubeColor,
			Reflectance: 0.02,
		}),
		Layers: render.Layer(p.cfg.SceneLayer),
		Tags:   []world.Tag{world.TagMainCube},
		Spin:   world.NewSpin(p.cfg.Spin.RateX, p.cfg.Spin.RateZ),
	}
	p.world.Spawn(p.cube)

	// Lights carry no layers; they are consumed by the producer pass only.
	p.world.SpawnLight(&world.Light{
		Kind:      world.PointLight,
		Position:  lightPosition,
		Color:     color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Intensity: 1,
	})
}

// SetLogger replaces the pipeline logger and propagates it to the resize
// coordinator and the shader library. Pass nil to silence the pipeline.
func (p *Pipeline) SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	p.logger = l
	propagateLogger(l, p.components()...)
}

// components returns the parts of the pipeline that log on their own.
func (p *Pipeline) components() []any {
	c := []any{p.coord, p.library}
	if p.watcher != nil {
		c = append(c, p.watcher)
	}
	return c
}

// Resize records a window resize. It is applied at the start of the next
// frame; of several calls between two frames only the last one counts.
//
// Resize is safe for concurrent use.
func (p *Pipeline) Resize(width, height uint32) {
	p.coord.Notify(width, height)
}

// Frame advances the animation by dt seconds and renders one frame:
//
//  1. apply the pending resize
//  2. reload shaders edited on disk
//  3. drain asset changes, checking a modified material's binding
//  4. animate the scene
//  5. run the camera passes in priority order
//
// If the pending resize cannot be allocated, Frame still renders at the
// previous size and returns the *render.AllocationError together with valid
// stats. Any other error aborts the frame.
func (p *Pipeline) Frame(dt float64) (FrameStats, error) {
	if p.closed {
		return FrameStats{}, ErrClosed
	}
	p.frame++
	stats := FrameStats{Frame: p.frame}

	res, resizeErr := p.coord.Apply()
	stats.Resize = res
	if resizeErr != nil {
		p.logger.Warn("postfx: resize failed, rendering at previous size",
			"frame", p.frame, "width", res.Width, "height", res.Height, "err", resizeErr)
	}

	stats.Reloaded = p.reloadShaders()

	n, err := p.syncAssets()
	stats.AssetChanges = n
	if err != nil {
		return stats, err
	}

	if dt > 0 {
		p.elapsed += dt
	}
	p.world.Animate(dt)
	stats.Elapsed = p.elapsed

	if err := p.runPasses(&stats.Trace); err != nil {
		return stats, err
	}

	p.logger.Debug("postfx: frame",
		"frame", p.frame, "dt", dt, "width", p.target.Width(), "height", p.target.Height(),
		"generation", p.target.Generation())
	return stats, resizeErr
}

func (p *Pipeline) runPasses(trace *pass.Trace) error {
	drawables := make([]camera.Drawable, 0, 2)
	for _, obj := range p.world.Objects() {
		drawables = append(drawables, obj)
	}
	drawables = append(drawables, p.quad)

	for _, cam := range p.schedule.Ordered() {
		visible := cam.Visible(drawables)
		switch cam.Target.Kind {
		case camera.TargetImage:
			rec, err := p.producer.Run(cam, visible)
			if err != nil {
				return fmt.Errorf("postfx: %s pass: %w", cam.Name, err)
			}
			rec.Frame = p.frame
			trace.Add(rec)

		case camera.TargetWindow:
			records, err := p.compositor.Run(cam, visible)
			if err != nil {
				var stale *render.BindingStaleError
				if errors.As(err, &stale) {
					p.logger.Error("postfx: compositor bound to a stale texture",
						"frame", p.frame, "target", stale.TargetID, "bound", stale.Bound, "live", stale.Live)
				}
				return fmt.Errorf("postfx: %s pass: %w", cam.Name, err)
			}
			for _, r := range records {
				r.Frame = p.frame
				trace.Add(r)
			}
		}
	}
	return trace.Validate()
}

// syncAssets drains the asset change queues. A modified post-process
// material is checked against the live target before any pass samples it.
func (p *Pipeline) syncAssets() (int, error) {
	n := len(p.meshes.Drain()) + len(p.sceneMaterials.Drain())
	for _, ev := range p.postMaterials.Drain() {
		n++
		if ev.Kind != asset.Modified || ev.Handle != p.material {
			continue
		}
		if err := p.Material().Check(); err != nil {
			p.logger.Error("postfx: modified material is not bound to the live target",
				"frame", p.frame, "err", err)
			return n, fmt.Errorf("postfx: %w", err)
		}
	}
	return n, nil
}

func (p *Pipeline) reloadShaders() []string {
	if p.watcher == nil {
		return nil
	}
	var reloaded []string
	current := shader.CleanRef(p.Material().ShaderRef())
	for _, ref := range p.watcher.Drain() {
		if _, ok := p.library.Cached(ref); !ok && ref != current {
			continue
		}
		if _, err := p.library.Reload(ref); err != nil {
			p.logger.Warn("postfx: shader reload failed, keeping previous program", "ref", ref, "err", err)
			continue
		}
		reloaded = append(reloaded, ref)
		if ref == current {
			p.Material().SetShader(ref)
			_ = p.postMaterials.Touch(p.material)
		}
		p.logger.Info("postfx: shader reloaded", "ref", ref)
	}
	return reloaded
}

// SetShader swaps the post-process program. The program is loaded and
// compiled first; on failure the current program stays in place.
func (p *Pipeline) SetShader(ref string) error {
	ref = shader.CleanRef(ref)
	if _, err := p.library.Load(ref); err != nil {
		return fmt.Errorf("postfx: set shader: %w", err)
	}
	if _, ok := p.effects.Lookup(ref); !ok {
		p.logger.Warn("postfx: no CPU effect for shader, compositing without filtering", "shader", ref)
	}
	p.Material().SetShader(ref)
	return p.postMaterials.Touch(p.material)
}

// Config returns the configuration the pipeline was built with.
func (p *Pipeline) Config() Config { return p.cfg }

// Target returns the off-screen render target.
func (p *Pipeline) Target() *render.RenderTarget { return p.target }

// Surface returns the window surface the compositor draws into.
func (p *Pipeline) Surface() *render.WindowSurface { return p.surface }

// Cube returns the rotating cube.
func (p *Pipeline) Cube() *world.Object { return p.cube }

// World returns the producer scene.
func (p *Pipeline) World() *world.World { return p.world }

// Quad returns the post-process quad.
func (p *Pipeline) Quad() *postprocess.Quad { return p.quad }

// Material returns the post-process material.
func (p *Pipeline) Material() *postprocess.Material { return p.postMaterials.MustGet(p.material) }

// Meshes returns the mesh store shared by both passes.
func (p *Pipeline) Meshes() *asset.Store[*mesh.Mesh] { return p.meshes }

// Schedule returns the camera schedule.
func (p *Pipeline) Schedule() *camera.Schedule { return p.schedule }

// Coordinator returns the resize coordinator.
func (p *Pipeline) Coordinator() *postprocess.Coordinator { return p.coord }

// Library returns the shader library.
func (p *Pipeline) Library() *shader.Library { return p.library }

// Close stops hot reload and destroys the render target.
// Close is idempotent.
func (p *Pipeline) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	return p.release()
}

func (p *Pipeline) release() error {
	var err error
	if p.watcher != nil {
		err = p.watcher.Close()
		p.watcher = nil
	}
	p.target.Destroy()
	return err
}
