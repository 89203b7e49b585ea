package postfx

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"

	"github.com/gogpu/gputypes"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/postfx/postprocess"
	"github.com/gogpu/postfx/render"
	"github.com/gogpu/postfx/shader"
)

// Config describes a pipeline. The zero value is not valid; start from
// DefaultConfig and override fields, or load a YAML file with LoadConfig.
//
// Example YAML:
//
//	width: 1280
//	height: 720
//	shader: shaders/fxaa.wgsl
//	shader_dir: ./assets
//	hot_reload: true
//	zero_size: clamp
//	spin:
//	  rate_x: 0.55
//	  rate_z: 0.15
type Config struct {
	// Width and Height are the initial window client size in pixels.
	Width  uint32 `yaml:"width"`
	Height uint32 `yaml:"height"`

	// Format is the RenderTarget pixel format: "rgba8unorm" or "bgra8unorm".
	Format string `yaml:"format"`

	// Shader is the post-process program reference.
	Shader string `yaml:"shader"`

	// ShaderDir, if set, is the directory program references resolve in.
	// Otherwise the built-in programs are used.
	ShaderDir string `yaml:"shader_dir"`

	// HotReload watches ShaderDir and reloads changed programs between frames.
	// Programs are then always loaded from ShaderDir.
	HotReload bool `yaml:"hot_reload"`

	// ZeroSize is the zero-size resize policy: "ignore" or "clamp".
	ZeroSize string `yaml:"zero_size"`

	Spin SpinConfig `yaml:"spin"`

	// ProducerPriority and CompositorPriority order the two camera passes.
	ProducerPriority   int `yaml:"producer_priority"`
	CompositorPriority int `yaml:"compositor_priority"`

	// SceneLayer and PostProcessLayer are the render layers of the producer
	// scene and of the post-process quad.
	SceneLayer       uint8 `yaml:"scene_layer"`
	PostProcessLayer uint8 `yaml:"post_process_layer"`

	// ClearColor is the "#rrggbb" or "#rrggbbaa" clear color of both passes.
	ClearColor string `yaml:"clear_color"`
}

// SpinConfig holds the cube's angular rates in radians per second.
type SpinConfig struct {
	RateX float64 `yaml:"rate_x"`
	RateZ float64 `yaml:"rate_z"`
}

// DefaultConfig returns the configuration of the reference scene.
func DefaultConfig() Config {
	return Config{
		Width:              800,
		Height:             600,
		Format:             "rgba8unorm",
		Shader:             shader.RefFXAA,
		ZeroSize:           "ignore",
		Spin:               SpinConfig{RateX: 0.55, RateZ: 0.15},
		ProducerPriority:   0,
		CompositorPriority: 1,
		SceneLayer:         render.SceneLayer,
		PostProcessLayer:   render.PostProcessLayer,
		ClearColor:         "#666666",
	}
}

// LoadConfig reads a YAML file over DefaultConfig and validates the result.
// Keys absent from the file keep their default values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("postfx: read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig is LoadConfig for in-memory YAML.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("postfx: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.Width == 0 || c.Height == 0 {
		return fmt.Errorf("postfx: invalid size %dx%d", c.Width, c.Height)
	}
	if _, err := c.TextureFormat(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Shader) == "" {
		return errors.New("postfx: shader reference is empty")
	}
	if c.HotReload && c.ShaderDir == "" {
		return errors.New("postfx: hot_reload requires shader_dir")
	}
	if _, err := c.ZeroSizePolicy(); err != nil {
		return err
	}
	if c.CompositorPriority <= c.ProducerPriority {
		return fmt.Errorf("postfx: compositor priority %d must be greater than producer priority %d",
			c.CompositorPriority, c.ProducerPriority)
	}
	if c.SceneLayer >= render.TotalLayers || c.PostProcessLayer >= render.TotalLayers {
		return fmt.Errorf("postfx: layers must be below %d", render.TotalLayers)
	}
	if c.SceneLayer == c.PostProcessLayer {
		return fmt.Errorf("postfx: scene and post-process share layer %d", c.SceneLayer)
	}
	if _, err := c.Clear(); err != nil {
		return err
	}
	return nil
}

// TextureFormat maps Format to a gputypes format.
func (c Config) TextureFormat() (gputypes.TextureFormat, error) {
	switch strings.ToLower(c.Format) {
	case "", "rgba8unorm":
		return gputypes.TextureFormatRGBA8Unorm, nil
	case "bgra8unorm":
		return gputypes.TextureFormatBGRA8Unorm, nil
	default:
		return gputypes.TextureFormatUndefined, fmt.Errorf("postfx: unknown format %q", c.Format)
	}
}

// ZeroSizePolicy parses ZeroSize.
func (c Config) ZeroSizePolicy() (postprocess.ZeroSizePolicy, error) {
	return postprocess.ParseZeroSizePolicy(c.ZeroSize)
}

// Clear parses ClearColor. An empty string is opaque black.
func (c Config) Clear() (color.RGBA, error) {
	return parseHexColor(c.ClearColor)
}

func parseHexColor(s string) (color.RGBA, error) {
	if s == "" {
		return color.RGBA{A: 255}, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("postfx: invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("postfx: invalid color %q: %w", s, err)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
