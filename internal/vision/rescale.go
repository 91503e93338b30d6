package vision

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// ForScale returns the template resized for a display running at the
// given scale. Templates record the scale they were captured at in
// their sidecar; when it differs from the live display the pixels are
// resampled so the matcher compares like with like.
func (t Template) ForScale(display float64) Template {
	captured := t.Scale
	if captured == 0 {
		captured = 1
	}
	if display == 0 {
		display = 1
	}
	factor := display / captured
	if factor == 1 || t.Img == nil {
		return t
	}

	w := int(math.Round(float64(t.Img.Bounds().Dx()) * factor))
	h := int(math.Round(float64(t.Img.Bounds().Dy()) * factor))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), t.Img, t.Img.Bounds(), xdraw.Src, nil)

	out := t
	out.Img = dst
	out.Scale = display
	return out
}
