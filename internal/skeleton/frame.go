package skeleton

import (
	"time"

	"mocap-retarget/internal/mathutil"
)

// JointState is one joint's captured position and, when the source tracks it,
// its hierarchical orientation.
type JointState struct {
	Position       mathutil.Vec3
	Orientation    mathutil.Quat
	HasOrientation bool
}

// Frame is one captured skeleton snapshot. Frames are treated as immutable
// once handed to a Recorder.
type Frame struct {
	Index     int
	Timestamp time.Duration
	Joints    map[JointID]JointState
}

// NewFrame returns an empty frame with the given source index.
func NewFrame(index int) Frame {
	return Frame{Index: index, Joints: make(map[JointID]JointState, jointCount)}
}

// Joint returns the state of j and whether the frame carries it.
func (f Frame) Joint(j JointID) (JointState, bool) {
	s, ok := f.Joints[j]
	return s, ok
}

// Position returns the captured position of j, or the zero vector.
func (f Frame) Position(j JointID) mathutil.Vec3 {
	return f.Joints[j].Position
}

// Translate returns a copy of f with every joint shifted by d.
func (f Frame) Translate(d mathutil.Vec3) Frame {
	out := Frame{Index: f.Index, Timestamp: f.Timestamp, Joints: make(map[JointID]JointState, len(f.Joints))}
	for j, s := range f.Joints {
		s.Position = s.Position.Add(d)
		out.Joints[j] = s
	}
	return out
}
