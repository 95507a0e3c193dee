package recorder

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"mocap-retarget/internal/export"
	"mocap-retarget/internal/mathutil"
	"mocap-retarget/internal/render"
	"mocap-retarget/internal/retarget"
	"mocap-retarget/internal/skeleton"
	"mocap-retarget/internal/skeleton/skeletontest"
)

func newTestRecorder(t *testing.T, framesPerSegment int) (*Recorder, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := export.DefaultConfig()
	cfg.FramesPerSegment = framesPerSegment
	cfg.OutputDirectory = dir
	cfg.AnimationName = "Clip"
	return New(cfg, render.Text{}, skeleton.DefaultHierarchy()), dir
}

func captureN(r *Recorder, n int) {
	for _, f := range skeletontest.Walk(n, mathutil.Vec3{0.02, 0, 0}) {
		r.Capture(f)
	}
}

func TestNextLoops(t *testing.T) {
	r, _ := newTestRecorder(t, 10)
	captureN(r, 5)

	testCases := []struct {
		name  string
		start int
		end   int
		want  []int
	}{
		{name: "whole recording", start: 0, end: -1, want: []int{0, 1, 2, 3, 4, 0, 1}},
		{name: "sub range", start: 1, end: 3, want: []int{1, 2, 3, 1, 2, 3, 1}},
		{name: "single frame", start: 4, end: 4, want: []int{4, 4, 4}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r.cursor = -1
			for i, want := range tc.want {
				f, err := r.Next(tc.start, tc.end)
				if err != nil {
					t.Fatalf("next: %v", err)
				}
				if f.Index != want {
					t.Fatalf("step %d frame mismatch: got=%d want=%d", i, f.Index, want)
				}
			}
		})
	}
}

func TestNextErrors(t *testing.T) {
	r, _ := newTestRecorder(t, 10)
	if _, err := r.Next(0, -1); !errors.Is(err, ErrEmpty) {
		t.Fatalf("empty recorder: got=%v", err)
	}
	captureN(r, 3)
	for _, rng := range [][2]int{{-1, 2}, {2, 1}, {0, 3}} {
		if _, err := r.Next(rng[0], rng[1]); !errors.Is(err, ErrRange) {
			t.Fatalf("range %v: got=%v", rng, err)
		}
	}
}

func TestClearResetsPlayback(t *testing.T) {
	r, _ := newTestRecorder(t, 10)
	captureN(r, 3)
	if _, err := r.Next(0, -1); err != nil {
		t.Fatalf("next: %v", err)
	}
	if _, err := r.Next(0, -1); err != nil {
		t.Fatalf("next: %v", err)
	}
	r.Clear()
	if r.Len() != 0 {
		t.Fatalf("clear should drop frames: got=%d", r.Len())
	}
	captureN(r, 3)
	f, err := r.Next(0, -1)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if f.Index != 0 {
		t.Fatalf("playback should restart at the first frame: got=%d", f.Index)
	}
}

func TestExportRange(t *testing.T) {
	r, dir := newTestRecorder(t, 2)
	captureN(r, 6)

	m, err := r.Export(context.Background(), 1, 4)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if m.FrameCount != 3 || m.SegmentCount != 2 {
		t.Fatalf("manifest mismatch: frames=%d segments=%d", m.FrameCount, m.SegmentCount)
	}
	onDisk, err := export.ReadManifest(dir)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	if onDisk.SessionID != m.SessionID {
		t.Fatalf("manifest on disk mismatch: got=%s want=%s", onDisk.SessionID, m.SessionID)
	}

	m, err = r.Export(context.Background(), 0, -1)
	if err != nil {
		t.Fatalf("export all: %v", err)
	}
	if m.FrameCount != 6 {
		t.Fatalf("default end should export every frame: got=%d", m.FrameCount)
	}

	if _, err := r.Export(context.Background(), 4, 7); !errors.Is(err, ErrRange) {
		t.Fatalf("out of range export: got=%v", err)
	}
}

func TestExportEmpty(t *testing.T) {
	r, dir := newTestRecorder(t, 2)
	m, err := r.Export(context.Background(), 0, -1)
	if err != nil || m != nil {
		t.Fatalf("empty export: manifest=%v err=%v", m, err)
	}
	if _, err := export.ReadManifest(dir); err == nil {
		t.Fatalf("empty export should not write a manifest")
	}
}

func TestExportMissingJoint(t *testing.T) {
	r, _ := newTestRecorder(t, 2)
	captureN(r, 2)
	bad := skeletontest.Standing(2)
	delete(bad.Joints, skeleton.Head)
	r.Capture(bad)
	captureN(r, 1)

	_, err := r.Export(context.Background(), 0, -1)
	var missing *retarget.MissingJointError
	if !errors.As(err, &missing) || missing.Joint != skeleton.Head {
		t.Fatalf("expected missing head: got=%v", err)
	}

	r.SkipInvalid = true
	m, err := r.Export(context.Background(), 0, -1)
	if err != nil {
		t.Fatalf("export with skip: %v", err)
	}
	if m.FrameCount != 3 {
		t.Fatalf("skipped frame should not count: got=%d", m.FrameCount)
	}
}

func TestExportCancelledStillFinishes(t *testing.T) {
	r, _ := newTestRecorder(t, 2)
	captureN(r, 4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m, err := r.Export(ctx, 0, -1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation: got=%v", err)
	}
	if m == nil || m.SegmentCount != 1 || m.FrameCount != 0 {
		t.Fatalf("cancelled export should still finalize: %+v", m)
	}
}

func TestConfigureOutput(t *testing.T) {
	r, _ := newTestRecorder(t, 2)
	path := filepath.Join("exports", "Dance.java")
	r.ConfigureOutput(path)
	cfg := r.Config()
	if cfg.AnimationName != "Dance" || cfg.OutputDirectory != "exports" {
		t.Fatalf("configure output mismatch: name=%s dir=%s", cfg.AnimationName, cfg.OutputDirectory)
	}

	r.ConfigureOutput(filepath.Join("other", ".java"))
	cfg = r.Config()
	if cfg.OutputDirectory != "other" {
		t.Fatalf("directory mismatch: got=%s", cfg.OutputDirectory)
	}
	if cfg.AnimationName != "Dance" {
		t.Fatalf("empty stem should keep the name: got=%s", cfg.AnimationName)
	}
}

func TestFailedExportLeavesNoSegments(t *testing.T) {
	r, dir := newTestRecorder(t, 2)
	captureN(r, 2)
	bad := skeletontest.Standing(2)
	delete(bad.Joints, skeleton.HandLeft)
	r.Capture(bad)

	if _, err := r.Export(context.Background(), 0, 2); err != nil {
		t.Fatalf("export good prefix: %v", err)
	}
	if _, err := r.Export(context.Background(), 0, -1); err == nil {
		t.Fatalf("missing joint should fail the export")
	}

	matches, err := filepath.Glob(filepath.Join(dir, "segment*.txt"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("partial segments left behind: %v", matches)
	}
}
