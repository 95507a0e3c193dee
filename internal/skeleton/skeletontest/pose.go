// Package skeletontest builds synthetic capture frames for tests.
package skeletontest

import (
	"mocap-retarget/internal/mathutil"
	"mocap-retarget/internal/skeleton"
)

// standing is a plausible capture-space standing pose, in metres, facing -Z.
var standing = map[skeleton.JointID]mathutil.Vec3{
	skeleton.HipCenter:      {0, 0.9, 2},
	skeleton.Spine:          {0, 1.1, 2},
	skeleton.ShoulderCenter: {0, 1.4, 2},
	skeleton.Head:           {0, 1.6, 2},
	skeleton.ShoulderLeft:   {-0.2, 1.35, 2},
	skeleton.ElbowLeft:      {-0.45, 1.35, 2},
	skeleton.WristLeft:      {-0.65, 1.35, 2},
	skeleton.HandLeft:       {-0.72, 1.35, 2},
	skeleton.ShoulderRight:  {0.2, 1.35, 2},
	skeleton.ElbowRight:     {0.45, 1.35, 2},
	skeleton.WristRight:     {0.65, 1.35, 2},
	skeleton.HandRight:      {0.72, 1.35, 2},
	skeleton.HipLeft:        {-0.1, 0.85, 2},
	skeleton.KneeLeft:       {-0.1, 0.45, 2},
	skeleton.AnkleLeft:      {-0.1, 0.08, 2},
	skeleton.FootLeft:       {-0.1, 0.02, 1.9},
	skeleton.HipRight:       {0.1, 0.85, 2},
	skeleton.KneeRight:      {0.1, 0.45, 2.1},
	skeleton.AnkleRight:     {0.1, 0.08, 2.1},
	skeleton.FootRight:      {0.1, 0.02, 2.0},
}

// Standing returns a complete frame in the standing pose.
func Standing(index int) skeleton.Frame {
	f := skeleton.NewFrame(index)
	for j, p := range standing {
		f.Joints[j] = skeleton.JointState{Position: p}
	}
	return f
}

// WithOrientation sets the same orientation on every joint of f.
func WithOrientation(f skeleton.Frame, q mathutil.Quat) skeleton.Frame {
	for j, s := range f.Joints {
		s.Orientation = q
		s.HasOrientation = true
		f.Joints[j] = s
	}
	return f
}

// Walk returns n standing frames whose right hand moves along a straight line
// from the standing position by step per frame.
func Walk(n int, step mathutil.Vec3) []skeleton.Frame {
	frames := make([]skeleton.Frame, n)
	for i := range frames {
		f := Standing(i)
		s := f.Joints[skeleton.HandRight]
		s.Position = s.Position.Add(step.Scale(float64(i)))
		f.Joints[skeleton.HandRight] = s
		frames[i] = f
	}
	return frames
}
