package preview

import (
	"image"

	"golang.org/x/image/draw"

	"mocap-retarget/internal/mathutil"
)

// Downsample scales img to size×size, filtering in premultiplied alpha so
// thin strokes over transparency keep their colour instead of darkening.
func Downsample(img *image.NRGBA, size int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() <= size && b.Dy() <= size {
		return img
	}

	premul := image.NewRGBA(b)
	for i := 0; i < len(img.Pix); i += 4 {
		a := float64(img.Pix[i+3]) / 255
		premul.Pix[i] = uint8(float64(img.Pix[i])*a + 0.5)
		premul.Pix[i+1] = uint8(float64(img.Pix[i+1])*a + 0.5)
		premul.Pix[i+2] = uint8(float64(img.Pix[i+2])*a + 0.5)
		premul.Pix[i+3] = img.Pix[i+3]
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), premul, premul.Bounds(), draw.Src, nil)

	out := image.NewNRGBA(dst.Bounds())
	for i := 0; i < len(dst.Pix); i += 4 {
		a := float64(dst.Pix[i+3])
		if a > 1 {
			inv := 255 / a
			for k := 0; k < 3; k++ {
				out.Pix[i+k] = uint8(mathutil.Clamp(float64(dst.Pix[i+k])*inv+0.5, 0, 255))
			}
		}
		out.Pix[i+3] = dst.Pix[i+3]
	}
	return out
}
