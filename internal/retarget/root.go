package retarget

import (
	"fmt"
	"strings"

	"mocap-retarget/internal/mathutil"
	"mocap-retarget/internal/skeleton"
)

// RootMotionMode selects how root displacement is derived from the anchor.
type RootMotionMode string

const (
	// RootMotionNudge scales the unit direction of travel, discarding distance.
	RootMotionNudge RootMotionMode = "nudge"
	// RootMotionLinear scales the true displacement.
	RootMotionLinear RootMotionMode = "linear"
	// RootMotionOff never moves the root.
	RootMotionOff RootMotionMode = "off"
)

// DefaultRootMotionScale is the nudge magnitude.
const DefaultRootMotionScale = 0.25

// ParseRootMotionMode accepts the mode names above; empty means nudge.
func ParseRootMotionMode(s string) (RootMotionMode, error) {
	switch m := RootMotionMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return RootMotionNudge, nil
	case RootMotionNudge, RootMotionLinear, RootMotionOff:
		return m, nil
	default:
		return "", fmt.Errorf("retarget: unknown root motion mode %q", s)
	}
}

// RootTracker latches the root position of the first tracked frame and
// reports later displacements relative to it.
type RootTracker struct {
	root   skeleton.JointID
	mode   RootMotionMode
	scale  float64
	anchor mathutil.Vec3
	set    bool
}

func NewRootTracker(root skeleton.JointID, mode RootMotionMode, scale float64) *RootTracker {
	if mode == "" {
		mode = RootMotionNudge
	}
	return &RootTracker{root: root, mode: mode, scale: scale}
}

// Reset forgets the anchor so the next frame latches a new one.
func (t *RootTracker) Reset() {
	t.set = false
	t.anchor = mathutil.Vec3{}
}

// Anchor returns the latched anchor and whether one has been latched.
func (t *RootTracker) Anchor() (mathutil.Vec3, bool) {
	return t.anchor, t.set
}

// Track returns the root displacement for f.
func (t *RootTracker) Track(f skeleton.Frame) (mathutil.Vec3, error) {
	s, ok := f.Joints[t.root]
	if !ok {
		return mathutil.Vec3{}, &MissingJointError{Frame: f.Index, Joint: t.root}
	}
	if !t.set {
		t.anchor = s.Position
		t.set = true
	}

	d := s.Position.Sub(t.anchor)
	switch t.mode {
	case RootMotionOff:
		return mathutil.Vec3{}, nil
	case RootMotionLinear:
		return d.Scale(t.scale), nil
	default:
		return d.Normalize().Scale(t.scale), nil
	}
}
