package preview

import (
	"image"
	"image/color"
	"math"

	"mocap-retarget/internal/mathutil"
)

// Canvas is the drawing target, RGBA interleaved in a flat slice.
type Canvas struct {
	Width  int
	Height int
	Color  []uint8 // len = W*H*4, non-premultiplied
}

// NewCanvas allocates a fully transparent canvas.
func NewCanvas(w, h int) *Canvas {
	return &Canvas{Width: w, Height: h, Color: make([]uint8, w*h*4)}
}

// Fill sets every pixel to col.
func (c *Canvas) Fill(col color.NRGBA) {
	for i := 0; i < len(c.Color); i += 4 {
		c.Color[i], c.Color[i+1], c.Color[i+2], c.Color[i+3] = col.R, col.G, col.B, col.A
	}
}

// blend composites col over the pixel at (x, y) with extra coverage in [0, 1].
func (c *Canvas) blend(x, y int, col color.NRGBA, coverage float64) {
	i := (y*c.Width + x) * 4
	sa := float64(col.A) / 255 * coverage
	if sa <= 0 {
		return
	}
	da := float64(c.Color[i+3]) / 255
	oa := sa + da*(1-sa)
	mix := func(s, d uint8) uint8 {
		v := (float64(s)*sa + float64(d)*da*(1-sa)) / oa
		return uint8(mathutil.Clamp(v+0.5, 0, 255))
	}
	c.Color[i] = mix(col.R, c.Color[i])
	c.Color[i+1] = mix(col.G, c.Color[i+1])
	c.Color[i+2] = mix(col.B, c.Color[i+2])
	c.Color[i+3] = uint8(mathutil.Clamp(oa*255+0.5, 0, 255))
}

// Segment draws a line of the given width from (x0, y0) to (x1, y1) with
// round caps and a one pixel soft edge.
func (c *Canvas) Segment(x0, y0, x1, y1, width float64, col color.NRGBA) {
	r := width / 2
	minX := int(mathutil.Clamp(math.Floor(math.Min(x0, x1)-r-1), 0, float64(c.Width-1)))
	maxX := int(mathutil.Clamp(math.Ceil(math.Max(x0, x1)+r+1), 0, float64(c.Width-1)))
	minY := int(mathutil.Clamp(math.Floor(math.Min(y0, y1)-r-1), 0, float64(c.Height-1)))
	maxY := int(mathutil.Clamp(math.Ceil(math.Max(y0, y1)+r+1), 0, float64(c.Height-1)))

	dx, dy := x1-x0, y1-y0
	lenSq := dx*dx + dy*dy
	for y := minY; y <= maxY; y++ {
		py := float64(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float64(x) + 0.5
			t := 0.0
			if lenSq > 0 {
				t = mathutil.Clamp(((px-x0)*dx+(py-y0)*dy)/lenSq, 0, 1)
			}
			d := math.Hypot(px-(x0+t*dx), py-(y0+t*dy))
			if cov := mathutil.Clamp(r+0.5-d, 0, 1); cov > 0 {
				c.blend(x, y, col, cov)
			}
		}
	}
}

// Dot draws a filled disc of the given diameter.
func (c *Canvas) Dot(x, y, diameter float64, col color.NRGBA) {
	c.Segment(x, y, x, y, diameter, col)
}

// Image copies the canvas into an NRGBA image.
func (c *Canvas) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, c.Width, c.Height))
	copy(img.Pix, c.Color)
	return img
}
