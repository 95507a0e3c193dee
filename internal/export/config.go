package export

import (
	"errors"
	"fmt"

	"mocap-retarget/internal/retarget"
)

// Defaults produce the classic Alice layout: 25-frame segments, at most 50.
const (
	DefaultFramesPerSegment = 25
	DefaultMaxSegments      = 50
	DefaultAnimationName    = "KinectAnimation"
	DefaultOutputDirectory  = "out"
	DefaultFrameDelay       = 0.0166 // 1/60 s
)

// Config controls one exporter.
type Config struct {
	// FramesPerSegment is the rotation threshold. A segment is flushed once it
	// holds FramesPerSegment frames, or FramesPerSegment+1 with LegacyOverflow.
	FramesPerSegment int
	// MaxSegments caps flushed segments; frames arriving after the cap are
	// dropped. Zero means unlimited.
	MaxSegments int
	// LegacyOverflow flushes only when the frame counter exceeds
	// FramesPerSegment, reproducing older exports byte for byte.
	LegacyOverflow bool

	AnimationName   string
	OutputDirectory string
	// FrameDelay is the per-frame delay marker, in seconds.
	FrameDelay float64

	RootHeight      float64
	LengthScale     float64
	RootMotionMode  retarget.RootMotionMode
	RootMotionScale float64
}

// DefaultConfig returns a config with every field at its default.
func DefaultConfig() Config {
	return Config{
		FramesPerSegment: DefaultFramesPerSegment,
		MaxSegments:      DefaultMaxSegments,
		AnimationName:    DefaultAnimationName,
		OutputDirectory:  DefaultOutputDirectory,
		FrameDelay:       DefaultFrameDelay,
		RootHeight:       retarget.DefaultRootHeight,
		LengthScale:      1,
		RootMotionMode:   retarget.RootMotionNudge,
		RootMotionScale:  retarget.DefaultRootMotionScale,
	}
}

func (c Config) validate() error {
	var errs []error
	if c.FramesPerSegment < 1 {
		errs = append(errs, fmt.Errorf("frames per segment must be at least 1, got %d", c.FramesPerSegment))
	}
	if c.MaxSegments < 0 {
		errs = append(errs, fmt.Errorf("max segments must not be negative, got %d", c.MaxSegments))
	}
	if c.AnimationName == "" {
		errs = append(errs, errors.New("animation name is required"))
	}
	if c.OutputDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if c.FrameDelay < 0 {
		errs = append(errs, fmt.Errorf("frame delay must not be negative, got %v", c.FrameDelay))
	}
	if _, err := retarget.ParseRootMotionMode(string(c.RootMotionMode)); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("export: config: %w", err)
	}
	return nil
}
