package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"mocap-retarget/internal/export"
	"mocap-retarget/internal/render"
	"mocap-retarget/internal/retarget"
	"mocap-retarget/internal/skeleton"
)

// Config holds all configurable paths, export and preview settings.
type Config struct {
	// Paths
	OutputDir     string `json:"output_dir" toml:"output_dir"`
	AnimationName string `json:"animation_name" toml:"animation_name"`

	// Segmenting
	FramesPerSegment int     `json:"frames_per_segment" toml:"frames_per_segment"`
	MaxSegments      int     `json:"max_segments" toml:"max_segments"` // negative: unlimited
	LegacyOverflow   bool    `json:"legacy_overflow" toml:"legacy_overflow"`
	FrameDelay       float64 `json:"frame_delay" toml:"frame_delay"`

	// Retargeting
	RootMotionMode  string  `json:"root_motion_mode" toml:"root_motion_mode"`
	RootMotionScale float64 `json:"root_motion_scale" toml:"root_motion_scale"`
	RootHeight      float64 `json:"root_height" toml:"root_height"`
	LengthScale     float64 `json:"length_scale" toml:"length_scale"`
	SkipInvalid     bool    `json:"skip_invalid" toml:"skip_invalid"`

	// Rig overrides the default bone table when Bones is non-empty.
	RootJoint skeleton.JointID   `json:"root_joint" toml:"root_joint"`
	Bones     []skeleton.BoneSpec `json:"bones" toml:"bones"`

	// Output format
	Renderer string `json:"renderer" toml:"renderer"`
	Package  string `json:"package" toml:"package"`

	// Preview settings
	Preview       bool   `json:"preview" toml:"preview"`
	PreviewFormat string `json:"preview_format" toml:"preview_format"`
	PreviewSize   int    `json:"preview_size" toml:"preview_size"`
	Supersample   int    `json:"supersample" toml:"supersample"`
	Workers       int    `json:"workers" toml:"workers"`

	LogLevel string `json:"log_level" toml:"log_level"`
}

// Load reads a TOML (.toml) or JSON (anything else) config file.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve applies CLI flags over the loaded values and fills in defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.AnimationName != "" {
		c.AnimationName = flags.AnimationName
	}
	if flags.FramesPerSegment > 0 {
		c.FramesPerSegment = flags.FramesPerSegment
	}
	if flags.MaxSegments != 0 {
		c.MaxSegments = flags.MaxSegments
	}
	if flags.Renderer != "" {
		c.Renderer = flags.Renderer
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
	if flags.Preview {
		c.Preview = true
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	if c.OutputDir == "" {
		c.OutputDir = export.DefaultOutputDirectory
	}
	if c.AnimationName == "" {
		c.AnimationName = export.DefaultAnimationName
	}
	if c.FramesPerSegment <= 0 {
		c.FramesPerSegment = export.DefaultFramesPerSegment
	}
	if c.MaxSegments == 0 {
		c.MaxSegments = export.DefaultMaxSegments
	}
	if c.FrameDelay <= 0 {
		c.FrameDelay = export.DefaultFrameDelay
	}
	if c.RootMotionMode == "" {
		c.RootMotionMode = string(retarget.RootMotionNudge)
	}
	if c.RootMotionScale <= 0 {
		c.RootMotionScale = retarget.DefaultRootMotionScale
	}
	if c.RootHeight <= 0 {
		c.RootHeight = retarget.DefaultRootHeight
	}
	if c.LengthScale <= 0 {
		c.LengthScale = 1
	}
	if c.Renderer == "" {
		c.Renderer = "alice"
	}
	if c.Package == "" {
		c.Package = render.DefaultPackage
	}
	if c.PreviewFormat == "" {
		c.PreviewFormat = "webp"
	}
	if c.PreviewSize <= 0 {
		c.PreviewSize = 256
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	OutputDir        string
	AnimationName    string
	FramesPerSegment int
	MaxSegments      int
	Renderer         string
	LogLevel         string
	Preview          bool
	Workers          int
}

// ExportConfig converts the resolved settings for the exporter.
func (c Config) ExportConfig() (export.Config, error) {
	mode, err := retarget.ParseRootMotionMode(c.RootMotionMode)
	if err != nil {
		return export.Config{}, fmt.Errorf("config: %w", err)
	}
	maxSegments := c.MaxSegments
	if maxSegments < 0 {
		maxSegments = 0
	}
	return export.Config{
		FramesPerSegment: c.FramesPerSegment,
		MaxSegments:      maxSegments,
		LegacyOverflow:   c.LegacyOverflow,
		AnimationName:    c.AnimationName,
		OutputDirectory:  c.OutputDir,
		FrameDelay:       c.FrameDelay,
		RootHeight:       c.RootHeight,
		LengthScale:      c.LengthScale,
		RootMotionMode:   mode,
		RootMotionScale:  c.RootMotionScale,
	}, nil
}

// Hierarchy returns the configured bone table, validated, or the default one.
func (c Config) Hierarchy() (*skeleton.Hierarchy, error) {
	if len(c.Bones) == 0 {
		return skeleton.DefaultHierarchy(), nil
	}
	return skeleton.NewHierarchy(c.RootJoint, c.Bones)
}

// NewRenderer builds the configured renderer.
func (c Config) NewRenderer() (render.Renderer, error) {
	return render.New(c.Renderer, render.Options{Package: c.Package})
}
