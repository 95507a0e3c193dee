// Package preview draws retargeted segments as onion-skinned stick figures
// and writes them as WebP or TGA images next to the exported animation.
package preview

import (
	"image"
	"image/color"
	"math"

	"mocap-retarget/internal/mathutil"
	"mocap-retarget/internal/retarget"
	"mocap-retarget/internal/skeleton"
)

// View controls how poses are projected onto the image.
type View struct {
	Size        int     // output edge length in pixels
	Supersample int     // render at Size*Supersample then downsample
	Yaw         float64 // degrees around +Y, 0 looks down -Z
	Margin      int     // pixels left free on every side, before supersampling
}

// DefaultView is a 256 px front view rendered at 2x.
func DefaultView() View {
	return View{Size: 256, Supersample: 2, Yaw: 0, Margin: 12}
}

var (
	boneColor   = color.NRGBA{R: 40, G: 110, B: 220, A: 255}
	hiddenColor = color.NRGBA{R: 150, G: 150, B: 160, A: 255}
	flipColor   = color.NRGBA{R: 220, G: 90, B: 40, A: 255}
	jointColor  = color.NRGBA{R: 20, G: 20, B: 30, A: 255}
)

// Joints returns the world position of every joint the frame touches,
// offset by the frame's root motion.
func Joints(out retarget.FrameOutput) map[skeleton.JointID]mathutil.Vec3 {
	pos := make(map[skeleton.JointID]mathutil.Vec3, len(out.Bones)+1)
	if len(out.Bones) > 0 {
		pos[out.Bones[0].Bone.From] = out.Origin.Add(out.Root)
	}
	for _, b := range out.Bones {
		pos[b.Bone.To] = b.Position.Add(out.Root)
	}
	return pos
}

// RenderSegment overlays every frame of a segment, older frames fainter.
// The figure is fitted to the bounding box of all frames.
func RenderSegment(frames []retarget.FrameOutput, v View) *image.NRGBA {
	if v.Size <= 0 {
		v.Size = DefaultView().Size
	}
	if v.Supersample < 1 {
		v.Supersample = 1
	}
	renderSize := v.Size * v.Supersample
	canvas := NewCanvas(renderSize, renderSize)
	if len(frames) == 0 {
		return canvas.Image()
	}

	R := mathutil.RotY(mathutil.Deg2Rad(v.Yaw))
	projected := make([]map[skeleton.JointID]mathutil.Vec3, len(frames))
	minP := mathutil.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	maxP := mathutil.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for i, f := range frames {
		joints := Joints(f)
		for j, p := range joints {
			tp := R.MulVec3(p)
			joints[j] = tp
			for k := 0; k < 3; k++ {
				minP[k] = math.Min(minP[k], tp[k])
				maxP[k] = math.Max(maxP[k], tp[k])
			}
		}
		projected[i] = joints
	}

	center := minP.Add(maxP).Scale(0.5)
	span := math.Max(maxP.X()-minP.X(), maxP.Y()-minP.Y())
	if span < 0.001 {
		span = 0.001
	}
	margin := float64(v.Margin * v.Supersample)
	scale := (float64(renderSize) - 2*margin) / span
	half := float64(renderSize) / 2
	screen := func(p mathutil.Vec3) (float64, float64) {
		return half + (p.X()-center.X())*scale, half - (p.Y()-center.Y())*scale
	}

	ss := float64(v.Supersample)
	for i, f := range frames {
		fade := uint8(255 * float64(i+1) / float64(len(frames)))
		fade = mathutil.Clamp(fade, 48, 255)
		joints := projected[i]
		for _, b := range f.Bones {
			col := boneColor
			switch {
			case !b.Emit:
				col = hiddenColor
			case b.Flip:
				col = flipColor
			}
			col.A = fade
			x0, y0 := screen(joints[b.Bone.From])
			x1, y1 := screen(joints[b.Bone.To])
			canvas.Segment(x0, y0, x1, y1, 3*ss, col)
		}
		dot := jointColor
		dot.A = fade
		for _, p := range joints {
			x, y := screen(p)
			canvas.Dot(x, y, 4*ss, dot)
		}
	}

	img := canvas.Image()
	if v.Supersample > 1 {
		img = Downsample(img, v.Size)
	}
	return img
}
