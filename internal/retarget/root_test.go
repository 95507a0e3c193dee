package retarget

import (
	"errors"
	"testing"

	"mocap-retarget/internal/mathutil"
	"mocap-retarget/internal/skeleton"
	"mocap-retarget/internal/skeleton/skeletontest"
)

func TestTrackFirstFrameIsZero(t *testing.T) {
	for _, mode := range []RootMotionMode{RootMotionNudge, RootMotionLinear, RootMotionOff} {
		t.Run(string(mode), func(t *testing.T) {
			tr := NewRootTracker(skeleton.HipCenter, mode, DefaultRootMotionScale)
			d, err := tr.Track(skeletontest.Standing(0).Translate(mathutil.Vec3{4, 5, 6}))
			if err != nil {
				t.Fatalf("track failed: %v", err)
			}
			if !d.IsZero() {
				t.Fatalf("first displacement should be zero: got=%v", d)
			}
		})
	}
}

func TestTrackModes(t *testing.T) {
	first := skeletontest.Standing(0)
	moved := first.Translate(mathutil.Vec3{0, 2, 0})

	testCases := []struct {
		mode RootMotionMode
		want mathutil.Vec3
	}{
		{mode: RootMotionNudge, want: mathutil.Vec3{0, 0.25, 0}},
		{mode: RootMotionLinear, want: mathutil.Vec3{0, 0.5, 0}},
		{mode: RootMotionOff, want: mathutil.Vec3{}},
	}
	for _, tc := range testCases {
		t.Run(string(tc.mode), func(t *testing.T) {
			tr := NewRootTracker(skeleton.HipCenter, tc.mode, DefaultRootMotionScale)
			if _, err := tr.Track(first); err != nil {
				t.Fatalf("track failed: %v", err)
			}
			got, err := tr.Track(moved)
			if err != nil {
				t.Fatalf("track failed: %v", err)
			}
			if !got.ApproxEqual(tc.want, 1e-12) {
				t.Fatalf("displacement mismatch: got=%v want=%v", got, tc.want)
			}
		})
	}
}

func TestTrackAnchorLatchesOnce(t *testing.T) {
	tr := NewRootTracker(skeleton.HipCenter, RootMotionLinear, 1)
	first := skeletontest.Standing(0)
	if _, err := tr.Track(first); err != nil {
		t.Fatalf("track failed: %v", err)
	}
	if _, err := tr.Track(first.Translate(mathutil.Vec3{1, 0, 0})); err != nil {
		t.Fatalf("track failed: %v", err)
	}
	anchor, ok := tr.Anchor()
	if !ok || anchor != first.Position(skeleton.HipCenter) {
		t.Fatalf("anchor moved: got=%v want=%v", anchor, first.Position(skeleton.HipCenter))
	}

	tr.Reset()
	if _, ok := tr.Anchor(); ok {
		t.Fatalf("reset should clear the anchor")
	}
}

func TestTrackMissingRoot(t *testing.T) {
	f := skeletontest.Standing(3)
	delete(f.Joints, skeleton.HipCenter)
	_, err := NewRootTracker(skeleton.HipCenter, RootMotionNudge, 1).Track(f)
	var missing *MissingJointError
	if !errors.As(err, &missing) || missing.Joint != skeleton.HipCenter {
		t.Fatalf("expected missing root error: got=%v", err)
	}
}

func TestParseRootMotionMode(t *testing.T) {
	if m, err := ParseRootMotionMode(""); err != nil || m != RootMotionNudge {
		t.Fatalf("empty mode: got=%s err=%v", m, err)
	}
	if m, err := ParseRootMotionMode("Linear"); err != nil || m != RootMotionLinear {
		t.Fatalf("linear mode: got=%s err=%v", m, err)
	}
	if _, err := ParseRootMotionMode("teleport"); err == nil {
		t.Fatalf("unknown mode should fail")
	}
}
