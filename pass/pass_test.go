// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pass

import (
	"errors"
	"image/color"
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/postfx/asset"
	"github.com/gogpu/postfx/camera"
	"github.com/gogpu/postfx/mesh"
	"github.com/gogpu/postfx/postprocess"
	"github.com/gogpu/postfx/render"
	"github.com/gogpu/postfx/shader"
	"github.com/gogpu/postfx/world"
)

var (
	clearBlue = color.RGBA{0, 0, 80, 255}
	red       = color.RGBA{255, 0, 0, 255}
	green     = color.RGBA{0, 255, 0, 255}
)

type scene struct {
	target    *render.RenderTarget
	meshes    *asset.Store[*mesh.Mesh]
	materials *asset.Store[world.StandardMaterial]
	world     *world.World
	camera    *camera.Camera
	producer  *Producer
}

func newScene(t *testing.T, w, h uint32) *scene {
	t.Helper()
	rt, err := render.NewRenderTarget(render.NewHostAllocator(), render.DefaultDeviceLimits(), w, h, gputypes.TextureFormatRGBA8Unorm)
	if err != nil {
		t.Fatal(err)
	}
	s := &scene{
		target:    rt,
		meshes:    asset.NewStore[*mesh.Mesh]("mesh"),
		materials: asset.NewStore[world.StandardMaterial]("material"),
		world:     world.New(),
		camera: &camera.Camera{
			Name:       "producer",
			Target:     camera.ImageTarget(rt),
			Layers:     render.Layer(render.SceneLayer),
			Projection: camera.DefaultPerspective(),
			ClearColor: clearBlue,
			Eye:        mgl32.Vec3{0, 0, 15},
		},
	}
	s.producer = &Producer{Meshes: s.meshes, Materials: s.materials, World: s.world}
	return s
}

func (s *scene) spawnCube(name string, size float32, at mgl32.Vec3, c color.RGBA) *world.Object {
	obj := &world.Object{
		Name:      name,
		Transform: world.FromTranslation(at),
		Mesh:      s.meshes.Add(mesh.Cube(size)),
		Material:  s.materials.Add(world.StandardMaterial{BaseColor: c, Unlit: true}),
		Layers:    render.Layer(render.SceneLayer),
	}
	s.world.Spawn(obj)
	return obj
}

func (s *scene) pixel(x, y int) color.RGBA {
	return s.target.Texture().(*render.HostTexture).Image().RGBAAt(x, y)
}

func TestProducerDrawsVisibleObjects(t *testing.T) {
	s := newScene(t, 64, 48)
	cube := s.spawnCube("MainCube", 2, mgl32.Vec3{}, red)

	rec, err := s.producer.Run(s.camera, []camera.Drawable{cube})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := s.pixel(32, 24); got != red {
		t.Errorf("center pixel = %v, want %v", got, red)
	}
	if got := s.pixel(0, 0); got != clearBlue {
		t.Errorf("corner pixel = %v, want clear color %v", got, clearBlue)
	}
	if rec.Op != OpWrite || rec.TargetID != s.target.ID() || rec.Generation != s.target.Generation() {
		t.Errorf("record = %v", rec)
	}
	if len(rec.Drawables) != 1 || rec.Drawables[0] != "MainCube" {
		t.Errorf("Drawables = %v, want [MainCube]", rec.Drawables)
	}
}

func TestProducerDepthTest(t *testing.T) {
	for _, order := range []string{"near first", "far first"} {
		t.Run(order, func(t *testing.T) {
			s := newScene(t, 64, 48)
			near := s.spawnCube("near", 2, mgl32.Vec3{0, 0, 3}, red)
			far := s.spawnCube("far", 4, mgl32.Vec3{0, 0, -3}, green)

			ds := []camera.Drawable{near, far}
			if order == "far first" {
				ds = []camera.Drawable{far, near}
			}
			if _, err := s.producer.Run(s.camera, ds); err != nil {
				t.Fatal(err)
			}
			if got := s.pixel(32, 24); got != red {
				t.Errorf("center pixel = %v, want near color %v", got, red)
			}
		})
	}
}

func TestProducerIgnoresForeignDrawables(t *testing.T) {
	s := newScene(t, 32, 32)
	quad := &postprocess.Quad{Layers: render.Layer(render.SceneLayer)}

	rec, err := s.producer.Run(s.camera, []camera.Drawable{quad})
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Drawables) != 0 {
		t.Errorf("Drawables = %v, want none", rec.Drawables)
	}
	if got := s.pixel(16, 16); got != clearBlue {
		t.Errorf("pixel = %v, want clear color", got)
	}
}

func TestProducerLitShading(t *testing.T) {
	s := newScene(t, 64, 48)
	obj := s.spawnCube("lit", 2, mgl32.Vec3{}, color.RGBA{200, 200, 200, 255})
	mat := s.materials.MustGet(obj.Material)
	mat.Unlit = false
	if err := s.materials.Set(obj.Material, mat); err != nil {
		t.Fatal(err)
	}

	if _, err := s.producer.Run(s.camera, []camera.Drawable{obj}); err != nil {
		t.Fatal(err)
	}
	dark := s.pixel(32, 24)

	s.world.SpawnLight(&world.Light{
		Kind:      world.PointLight,
		Position:  mgl32.Vec3{0, 0, 10},
		Color:     color.RGBA{255, 255, 255, 255},
		Intensity: 1,
	})
	if _, err := s.producer.Run(s.camera, []camera.Drawable{obj}); err != nil {
		t.Fatal(err)
	}
	lit := s.pixel(32, 24)

	if dark.R != 30 {
		t.Errorf("ambient-only pixel R = %d, want 30", dark.R)
	}
	if lit.R <= dark.R {
		t.Errorf("lit pixel %v not brighter than ambient %v", lit, dark)
	}
}

func TestProducerMissingMesh(t *testing.T) {
	s := newScene(t, 16, 16)
	obj := &world.Object{Name: "ghost", Layers: render.Layer(render.SceneLayer)}
	if _, err := s.producer.Run(s.camera, []camera.Drawable{obj}); !errors.Is(err, asset.ErrInvalidHandle) {
		t.Errorf("Run() error = %v, want ErrInvalidHandle", err)
	}
}

type gpuOnlyTexture struct{}

func (gpuOnlyTexture) Width() uint32                  { return 1 }
func (gpuOnlyTexture) Height() uint32                 { return 1 }
func (gpuOnlyTexture) Format() gputypes.TextureFormat { return gputypes.TextureFormatRGBA8Unorm }
func (gpuOnlyTexture) Destroy()                       {}

type gpuOnlyAllocator struct{}

func (gpuOnlyAllocator) Allocate(render.TextureDescriptor) (render.Texture, error) {
	return gpuOnlyTexture{}, nil
}

func TestProducerRequiresHostTexture(t *testing.T) {
	rt, err := render.NewRenderTarget(gpuOnlyAllocator{}, render.DefaultDeviceLimits(), 1, 1, gputypes.TextureFormatRGBA8Unorm)
	if err != nil {
		t.Fatal(err)
	}
	p := &Producer{World: world.New()}
	_, err = p.Run(&camera.Camera{Name: "producer", Target: camera.ImageTarget(rt)}, nil)
	if !errors.Is(err, ErrNotHostTexture) {
		t.Errorf("Run() error = %v, want ErrNotHostTexture", err)
	}
}

type composite struct {
	target    *render.RenderTarget
	surface   *render.WindowSurface
	meshes    *asset.Store[*mesh.Mesh]
	materials *asset.Store[*postprocess.Material]
	quad      *postprocess.Quad
	camera    *camera.Camera
	comp      *Compositor
}

func newComposite(t *testing.T, w, h uint32, ref string) *composite {
	t.Helper()
	rt, err := render.NewRenderTarget(render.NewHostAllocator(), render.DefaultDeviceLimits(), w, h, gputypes.TextureFormatRGBA8Unorm)
	if err != nil {
		t.Fatal(err)
	}
	c := &composite{
		target:    rt,
		surface:   render.NewWindowSurface(w, h),
		meshes:    asset.NewStore[*mesh.Mesh]("mesh"),
		materials: asset.NewStore[*postprocess.Material]("material"),
		camera: &camera.Camera{
			Name:       "compositor",
			Target:     camera.WindowTarget(),
			Priority:   1,
			Layers:     render.Layer(render.PostProcessLayer),
			Projection: camera.DefaultOrthographic(),
		},
	}
	mat := c.materials.Add(postprocess.NewMaterial(ref, rt))
	c.quad = postprocess.NewQuad(c.meshes, mat, w, h)
	c.comp = &Compositor{Meshes: c.meshes, Materials: c.materials, Effects: shader.NewEffects(), Surface: c.surface}
	return c
}

func TestCompositorCopiesSource(t *testing.T) {
	c := newComposite(t, 40, 30, shader.RefPassthrough)
	c.target.Texture().(*render.HostTexture).Clear(green)

	records, err := c.comp.Run(c.camera, []camera.Drawable{c.quad})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for _, p := range [][2]int{{0, 0}, {20, 15}, {39, 29}} {
		if got := c.surface.Image().RGBAAt(p[0], p[1]); got != green {
			t.Errorf("surface(%d,%d) = %v, want %v", p[0], p[1], got, green)
		}
	}

	if len(records) != 2 {
		t.Fatalf("records = %v, want read + write", records)
	}
	read, write := records[0], records[1]
	if read.Op != OpRead || read.TargetID != c.target.ID() || read.Width != 40 || read.Height != 30 {
		t.Errorf("read record = %v", read)
	}
	if write.Op != OpWrite || write.TargetID != WindowTargetID || write.Drawables[0] != postprocess.QuadName {
		t.Errorf("write record = %v", write)
	}
}

func TestCompositorRejectsStaleBinding(t *testing.T) {
	c := newComposite(t, 40, 30, shader.RefFXAA)
	if err := c.target.Resize(80, 60); err != nil {
		t.Fatal(err)
	}
	c.surface.Image().SetRGBA(0, 0, red)

	_, err := c.comp.Run(c.camera, []camera.Drawable{c.quad})
	var stale *render.BindingStaleError
	if !errors.As(err, &stale) {
		t.Fatalf("Run() error = %v, want *render.BindingStaleError", err)
	}
	if got := c.surface.Image().RGBAAt(0, 0); got != red {
		t.Errorf("surface was drawn despite stale binding: %v", got)
	}
}

func TestCompositorClearsWithoutQuad(t *testing.T) {
	c := newComposite(t, 8, 8, shader.RefPassthrough)
	c.camera.ClearColor = clearBlue

	records, err := c.comp.Run(c.camera, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Op != OpWrite {
		t.Errorf("records = %v, want single window write", records)
	}
	if got := c.surface.Image().RGBAAt(4, 4); got != clearBlue {
		t.Errorf("surface = %v, want clear color", got)
	}
}

func TestTraceValidate(t *testing.T) {
	write := Record{Camera: "producer", Op: OpWrite, TargetID: 7, Generation: 2, Width: 10, Height: 10}
	read := Record{Camera: "compositor", Op: OpRead, TargetID: 7, Generation: 2, Width: 10, Height: 10}
	window := Record{Camera: "compositor", Op: OpWrite, TargetID: WindowTargetID, Width: 10, Height: 10}

	stale := read
	stale.Generation = 1

	tests := []struct {
		name    string
		records []Record
		wantErr bool
	}{
		{"write then read", []Record{write, read, window}, false},
		{"read first", []Record{read, write, window}, true},
		{"stale generation", []Record{write, stale, window}, true},
		{"window only", []Record{window}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &Trace{}
			for _, r := range tt.records {
				tr.Add(r)
			}
			err := tr.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrReadBeforeWrite) {
				t.Errorf("Validate() error = %v, want ErrReadBeforeWrite", err)
			}
		})
	}

	tr := &Trace{Records: []Record{write, read, window}}
	if r, ok := tr.Find(OpRead, 7); !ok || r.Camera != "compositor" {
		t.Errorf("Find(read, 7) = %v, %v", r, ok)
	}
}

func TestTracePasses(t *testing.T) {
	tr := &Trace{}
	for _, r := range []Record{
		{Camera: "producer", Op: OpWrite, TargetID: 7},
		{Camera: "compositor", Op: OpRead, TargetID: 7},
		{Camera: "compositor", Op: OpWrite, TargetID: WindowTargetID},
	} {
		tr.Add(r)
	}

	if got, want := tr.Cameras(), []string{"producer", "compositor", "compositor"}; !slices.Equal(got, want) {
		t.Errorf("Cameras() = %v, want %v", got, want)
	}
	if got, want := tr.Passes(), []string{"producer", "compositor"}; !slices.Equal(got, want) {
		t.Errorf("Passes() = %v, want %v", got, want)
	}
	if got := (&Trace{}).Passes(); len(got) != 0 {
		t.Errorf("empty Passes() = %v, want none", got)
	}
}
