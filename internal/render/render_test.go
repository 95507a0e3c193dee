package render

import (
	"bytes"
	"strings"
	"testing"

	"mocap-retarget/internal/mathutil"
	"mocap-retarget/internal/retarget"
	"mocap-retarget/internal/skeleton"
)

func sampleFrame() retarget.FrameOutput {
	return retarget.FrameOutput{
		Index: 4,
		Root:  mathutil.Vec3{0.1, 0.25, -0.2},
		Bones: []retarget.BoneOutput{
			{
				Bone:          skeleton.BoneSpec{Name: skeleton.BoneLeftElbow},
				Position:      mathutil.Vec3{-0.5, 1.25, 0.125},
				Emit:          true,
				HasRoll:       true,
				Roll:          0.125,
				RollDirection: retarget.RollRight,
				Flip:          true,
			},
			{
				Bone:     skeleton.BoneSpec{Name: skeleton.BoneNeck},
				Position: mathutil.Vec3{0, 1.5, 0},
			},
		},
	}
}

func TestTextFrame(t *testing.T) {
	var buf bytes.Buffer
	if err := (Text{}).Frame(&buf, sampleFrame()); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	want := "frame 4 root 0.100000 0.250000 -0.200000\n" +
		"bone LeftElbow -0.500000 1.250000 0.125000 roll 0.125000 RIGHT flip true\n"
	if buf.String() != want {
		t.Fatalf("text frame mismatch:\ngot=%q\nwant=%q", buf.String(), want)
	}
}

func TestAliceFrame(t *testing.T) {
	a, err := NewAlice("")
	if err != nil {
		t.Fatalf("new alice: %v", err)
	}
	var buf bytes.Buffer
	if err := a.Frame(&buf, sampleFrame()); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"new Position(0, 0.250000, 0)",
		"new Position(-0.500000, 1.250000, 0.125000)",
		"biped.getLeftElbow().pointAt(box, PointAt.duration(0));",
		"biped.getLeftElbow().roll(RollDirection.RIGHT, 0.125000, Roll.duration(0));",
		"biped.getLeftElbow().roll(RollDirection.LEFT, 0.500000, Roll.duration(0));",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("alice output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "getNeck") {
		t.Fatalf("non-emitting bone rendered:\n%s", out)
	}
}

func TestAliceSegmentAndEntry(t *testing.T) {
	a, err := NewAlice("org.example.anim")
	if err != nil {
		t.Fatalf("new alice: %v", err)
	}
	var seg bytes.Buffer
	if err := a.Segment(&seg, SegmentInfo{Index: 3, Frames: 2}, []byte("\t\tbox.delay(0.016600);\n")); err != nil {
		t.Fatalf("segment failed: %v", err)
	}
	for _, want := range []string{"package org.example.anim;", "public class AnimationSegment3 implements IAnimator", "box.delay(0.016600);"} {
		if !strings.Contains(seg.String(), want) {
			t.Fatalf("segment missing %q:\n%s", want, seg.String())
		}
	}

	var entry bytes.Buffer
	if err := a.Entry(&entry, EntryInfo{AnimationName: "Wave", SegmentCount: 7}); err != nil {
		t.Fatalf("entry failed: %v", err)
	}
	for _, want := range []string{"public class Wave implements IAnimator", "int totalSegments = 7;", `"org.example.anim.AnimationSegment" + i`} {
		if !strings.Contains(entry.String(), want) {
			t.Fatalf("entry missing %q:\n%s", want, entry.String())
		}
	}

	if err := a.Entry(&entry, EntryInfo{AnimationName: "my wave"}); err == nil {
		t.Fatalf("invalid class name should fail")
	}
}

func TestNewRenderer(t *testing.T) {
	testCases := []struct {
		name    string
		wantExt string
		wantErr bool
	}{
		{name: "", wantExt: ".java"},
		{name: "alice", wantExt: ".java"},
		{name: "TEXT", wantExt: ".txt"},
		{name: "svg", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := New(tc.name, Options{})
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.name)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.Ext() != tc.wantExt {
				t.Fatalf("ext mismatch: got=%s want=%s", r.Ext(), tc.wantExt)
			}
		})
	}
	if _, err := NewAlice("1bad.pkg"); err == nil {
		t.Fatalf("invalid package should fail")
	}
}

func TestNegativeZeroFormatsAsZero(t *testing.T) {
	negZero := negativeZero()
	if got := num(negZero); got != "0.000000" {
		t.Fatalf("negative zero mismatch: got=%s", got)
	}
}

func negativeZero() float64 {
	z := 0.0
	return -z
}

func TestAliceCheckName(t *testing.T) {
	a, err := NewAlice("")
	if err != nil {
		t.Fatalf("new alice: %v", err)
	}
	var _ NameChecker = a
	for _, name := range []string{"KinectAnimation", "_walk2"} {
		if err := a.CheckName(name); err != nil {
			t.Fatalf("CheckName(%q): %v", name, err)
		}
	}
	for _, name := range []string{"my-walk", "2walk", "", "walk cycle"} {
		if err := a.CheckName(name); err == nil {
			t.Fatalf("CheckName(%q) should fail", name)
		}
	}
}
