package preview

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/ftrvxmtrx/tga"

	"mocap-retarget/internal/export"
	"mocap-retarget/internal/mathutil"
	"mocap-retarget/internal/render"
	"mocap-retarget/internal/retarget"
	"mocap-retarget/internal/skeleton"
	"mocap-retarget/internal/skeleton/skeletontest"
)

func retargeted(t *testing.T, n int) []retarget.FrameOutput {
	t.Helper()
	h := skeleton.DefaultHierarchy()
	engine := retarget.NewEngine(h, 1)
	cache := retarget.NewCache(h.Root(), retarget.DefaultRootHeight)
	var out []retarget.FrameOutput
	for _, f := range skeletontest.Walk(n, mathutil.Vec3{0, 0.05, -0.02}) {
		bones, err := engine.Compute(f, cache)
		if err != nil {
			t.Fatalf("compute frame %d: %v", f.Index, err)
		}
		out = append(out, retarget.FrameOutput{
			Index:  f.Index,
			Origin: cache.Get(h.Root()),
			Bones:  bones,
		})
	}
	return out
}

func opaquePixels(img *image.NRGBA) int {
	n := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] > 0 {
			n++
		}
	}
	return n
}

func TestCanvasSegment(t *testing.T) {
	c := NewCanvas(20, 20)
	c.Segment(2, 10, 18, 10, 3, color.NRGBA{R: 255, A: 255})
	img := c.Image()

	if a := img.NRGBAAt(10, 10).A; a != 255 {
		t.Fatalf("pixel on the line should be opaque: alpha=%d", a)
	}
	if a := img.NRGBAAt(10, 2).A; a != 0 {
		t.Fatalf("pixel far from the line should be untouched: alpha=%d", a)
	}
}

func TestCanvasClipsOutOfBounds(t *testing.T) {
	c := NewCanvas(8, 8)
	c.Segment(-50, -50, 100, 100, 2, color.NRGBA{G: 255, A: 255})
	c.Dot(-20, 4, 6, color.NRGBA{B: 255, A: 255})
	if opaquePixels(c.Image()) == 0 {
		t.Fatalf("diagonal through the canvas should draw something")
	}
}

func TestDownsample(t *testing.T) {
	src := NewCanvas(64, 64)
	src.Fill(color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	out := Downsample(src.Image(), 16)
	if out.Bounds().Dx() != 16 || out.Bounds().Dy() != 16 {
		t.Fatalf("size mismatch: %v", out.Bounds())
	}
	px := out.NRGBAAt(8, 8)
	if px.A != 255 || px.R < 195 || px.R > 205 {
		t.Fatalf("solid colour should survive downsampling: %+v", px)
	}

	small := NewCanvas(8, 8).Image()
	if Downsample(small, 16) != small {
		t.Fatalf("image already small enough should be returned as is")
	}
}

func TestRenderSegment(t *testing.T) {
	v := View{Size: 64, Supersample: 2, Margin: 4}
	img := RenderSegment(retargeted(t, 5), v)
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 64 {
		t.Fatalf("size mismatch: %v", img.Bounds())
	}
	if opaquePixels(img) == 0 {
		t.Fatalf("segment rendered nothing")
	}
	if empty := RenderSegment(nil, v); opaquePixels(empty) != 0 {
		t.Fatalf("empty segment should be transparent")
	}
}

func TestJointsIncludesRoot(t *testing.T) {
	frames := retargeted(t, 1)
	frames[0].Root = mathutil.Vec3{0, 0.25, 0}
	joints := Joints(frames[0])

	root := joints[skeleton.HipCenter]
	want := mathutil.Vec3{0, retarget.DefaultRootHeight + 0.25, 0}
	if !root.ApproxEqual(want, 1e-12) {
		t.Fatalf("root mismatch: got=%v want=%v", root, want)
	}
	if len(joints) != skeleton.DefaultHierarchy().Len()+1 {
		t.Fatalf("joint count mismatch: got=%d", len(joints))
	}
}

func TestEncodeFormats(t *testing.T) {
	img := RenderSegment(retargeted(t, 2), View{Size: 32, Supersample: 1})

	var webp bytes.Buffer
	if err := Encode(&webp, img, FormatWebP); err != nil {
		t.Fatalf("webp: %v", err)
	}
	if b := webp.Bytes(); len(b) < 12 || string(b[:4]) != "RIFF" || string(b[8:12]) != "WEBP" {
		t.Fatalf("webp output lacks RIFF/WEBP header")
	}

	var out bytes.Buffer
	if err := Encode(&out, img, FormatTGA); err != nil {
		t.Fatalf("tga: %v", err)
	}
	decoded, err := tga.Decode(&out)
	if err != nil {
		t.Fatalf("decode tga: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Fatalf("tga bounds mismatch: got=%v want=%v", decoded.Bounds(), img.Bounds())
	}

	if err := Encode(&out, img, Format("bmp")); err == nil {
		t.Fatalf("unknown format should fail")
	}
}

func TestParseFormat(t *testing.T) {
	testCases := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatWebP, false},
		{"WebP", FormatWebP, false},
		{" tga ", FormatTGA, false},
		{"png", "", true},
	}
	for _, tc := range testCases {
		got, err := ParseFormat(tc.in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Fatalf("ParseFormat(%q) = %q, %v", tc.in, got, err)
		}
	}
}

func TestRunWritesEveryJob(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "preview")
	frames := retargeted(t, 4)
	jobs := []Job{
		{Name: "a", Frames: frames[:2]},
		{Name: "b", Frames: frames[2:]},
		{Name: "c"},
	}
	results := Run(context.Background(), Config{OutputDir: dir, Format: FormatTGA, View: View{Size: 24, Supersample: 1}, Workers: 2}, jobs)

	if Failed(results) != 0 {
		t.Fatalf("unexpected failures: %+v", results)
	}
	for i, r := range results {
		if r.Name != jobs[i].Name {
			t.Fatalf("result order mismatch at %d: %s", i, r.Name)
		}
		if _, err := os.Stat(filepath.Join(dir, r.File)); err != nil {
			t.Fatalf("missing output %s: %v", r.File, err)
		}
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := Run(ctx, Config{OutputDir: t.TempDir(), Format: FormatWebP, View: DefaultView()}, []Job{{Name: "x"}})
	if Failed(results) != 1 {
		t.Fatalf("cancelled run should fail every job: %+v", results)
	}
}

func TestCollectorWithExporter(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "anim")
	cfg := export.DefaultConfig()
	cfg.FramesPerSegment = 2
	cfg.OutputDirectory = outDir
	r := render.Text{}
	exp, err := export.New(cfg, r, skeleton.DefaultHierarchy())
	if err != nil {
		t.Fatalf("new exporter: %v", err)
	}

	c := NewCollector(Config{
		OutputDir: filepath.Join(outDir, "preview"),
		Format:    FormatWebP,
		View:      View{Size: 32, Supersample: 2, Margin: 2},
		Workers:   2,
	}, r.SegmentName)
	exp.OnSegment(c.Observe)

	if err := exp.Prepare(); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	for _, f := range skeletontest.Walk(5, mathutil.Vec3{0.02, 0, 0}) {
		if err := exp.ApplyFrame(f); err != nil {
			t.Fatalf("apply: %v", err)
		}
	}
	if _, err := exp.Finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}

	if c.Pending() != 3 {
		t.Fatalf("pending mismatch: got=%d want=3", c.Pending())
	}
	results := c.Render(context.Background())
	if Failed(results) != 0 {
		t.Fatalf("render failures: %+v", results)
	}
	for _, name := range []string{"segment0.webp", "segment1.webp", "segment2.webp"} {
		if _, err := os.Stat(filepath.Join(outDir, "preview", name)); err != nil {
			t.Fatalf("missing preview %s: %v", name, err)
		}
	}
	if c.Pending() != 0 {
		t.Fatalf("queue should be empty after render")
	}
}
