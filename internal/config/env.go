package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every environment override, e.g. RETARGET_OUTPUT_DIR.
const EnvPrefix = "RETARGET_"

// envOverrides uses pointers so only variables that are actually set win
// over the config file.
type envOverrides struct {
	OutputDir        *string  `env:"OUTPUT_DIR"`
	AnimationName    *string  `env:"ANIMATION_NAME"`
	FramesPerSegment *int     `env:"FRAMES_PER_SEGMENT"`
	MaxSegments      *int     `env:"MAX_SEGMENTS"`
	LegacyOverflow   *bool    `env:"LEGACY_OVERFLOW"`
	FrameDelay       *float64 `env:"FRAME_DELAY"`
	RootMotionMode   *string  `env:"ROOT_MOTION_MODE"`
	RootMotionScale  *float64 `env:"ROOT_MOTION_SCALE"`
	Renderer         *string  `env:"RENDERER"`
	Package          *string  `env:"PACKAGE"`
	Preview          *bool    `env:"PREVIEW"`
	PreviewFormat    *string  `env:"PREVIEW_FORMAT"`
	Workers          *int     `env:"WORKERS"`
	LogLevel         *string  `env:"LOG_LEVEL"`
}

// ApplyEnv overrides c with RETARGET_* environment variables.
func (c *Config) ApplyEnv() error {
	var o envOverrides
	if err := env.ParseWithOptions(&o, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("config: parse env: %w", err)
	}
	set(&c.OutputDir, o.OutputDir)
	set(&c.AnimationName, o.AnimationName)
	set(&c.FramesPerSegment, o.FramesPerSegment)
	set(&c.MaxSegments, o.MaxSegments)
	set(&c.LegacyOverflow, o.LegacyOverflow)
	set(&c.FrameDelay, o.FrameDelay)
	set(&c.RootMotionMode, o.RootMotionMode)
	set(&c.RootMotionScale, o.RootMotionScale)
	set(&c.Renderer, o.Renderer)
	set(&c.Package, o.Package)
	set(&c.Preview, o.Preview)
	set(&c.PreviewFormat, o.PreviewFormat)
	set(&c.Workers, o.Workers)
	set(&c.LogLevel, o.LogLevel)
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
