// Package retarget recomputes captured skeleton poses for a target rig whose
// bone lengths are fixed: directions come from the capture, lengths from the rig.
package retarget

import (
	"math"

	"mocap-retarget/internal/mathutil"
	"mocap-retarget/internal/skeleton"
)

// RollDirection is the sense of a roll correction.
type RollDirection int

const (
	RollLeft RollDirection = iota
	RollRight
)

func (d RollDirection) String() string {
	if d == RollLeft {
		return "LEFT"
	}
	return "RIGHT"
}

// FlipTurns is the extra roll applied to a bone whose end lies behind the
// character's reference plane.
const FlipTurns = 0.5

// BoneOutput is the retargeted result for one bone of one frame.
type BoneOutput struct {
	Bone     skeleton.BoneSpec
	Position mathutil.Vec3

	// Emit is false for bones flagged IgnorePosition. Their position is still
	// cached for child bones but no instructions are produced.
	Emit bool

	Roll          float64
	HasRoll       bool
	RollDirection RollDirection
	Flip          bool
}

// FrameOutput is everything rendered for one exported frame.
type FrameOutput struct {
	Index int
	Root  mathutil.Vec3
	// Origin is the seeded root position every chain starts from.
	Origin mathutil.Vec3
	Bones  []BoneOutput
}

// Engine applies a hierarchy to capture frames.
type Engine struct {
	hierarchy   *skeleton.Hierarchy
	joints      []skeleton.JointID
	lengthScale float64
}

// NewEngine binds an engine to a validated hierarchy. A lengthScale of zero
// or less means 1.
func NewEngine(h *skeleton.Hierarchy, lengthScale float64) *Engine {
	if lengthScale <= 0 {
		lengthScale = 1
	}
	return &Engine{hierarchy: h, joints: h.Joints(), lengthScale: lengthScale}
}

// Hierarchy returns the bone table the engine walks.
func (e *Engine) Hierarchy() *skeleton.Hierarchy { return e.hierarchy }

// Check returns a MissingJointError for the first referenced joint absent from f.
func (e *Engine) Check(f skeleton.Frame) error {
	for _, j := range e.joints {
		if _, ok := f.Joints[j]; !ok {
			return &MissingJointError{Frame: f.Index, Joint: j}
		}
	}
	return nil
}

// Compute retargets one frame in table order, reading parents from and writing
// children to cache. The cache is left untouched when the frame is incomplete.
func (e *Engine) Compute(f skeleton.Frame, cache *PositionCache) ([]BoneOutput, error) {
	if err := e.Check(f); err != nil {
		return nil, err
	}

	bones := e.hierarchy.Bones()
	out := make([]BoneOutput, len(bones))
	for i, b := range bones {
		from := f.Joints[b.From]
		to := f.Joints[b.To]

		dir := to.Position.Sub(from.Position).Normalize()
		final := cache.Get(b.From).Add(dir.Scale(b.Length * e.lengthScale))
		cache.Set(b.To, final)

		o := BoneOutput{Bone: b, Position: final, Emit: !b.IgnorePosition}
		if o.Emit {
			if from.HasOrientation {
				o.HasRoll = true
				o.Roll = from.Orientation.Y() / (2 * math.Pi)
				o.RollDirection = RollRight
				if final.X() > 0 {
					o.RollDirection = RollLeft
				}
			}
			o.Flip = final.Z() > 0 && !b.IgnoreRotation
		}
		out[i] = o
	}
	return out, nil
}
