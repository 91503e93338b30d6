package vision

import (
	"fmt"
	"image"
	"math"

	"github.com/honk-lang/honk/internal/geom"
	"github.com/honk-lang/honk/internal/screen"
)

// Windows whose per-pixel gray deviation is at or below this count as
// flat, which routes them through mean comparison instead of
// correlation.
const flatStdDev = 2.0

// Score differences below this are ties, resolved in favor of the
// earlier (topmost, then leftmost) window.
const scoreEpsilon = 1e-9

// CorrelationMatcher locates a template by zero-mean normalized cross
// correlation over grayscale pixels. The best-scoring window wins;
// among equal scores the topmost, then leftmost window is kept.
type CorrelationMatcher struct {
	Threshold float64
}

func (m CorrelationMatcher) Find(snap screen.Snapshot, tpl Template) (Match, error) {
	sw, sh, tw, th, err := matchDims(snap, tpl)
	if err != nil {
		return Match{}, err
	}

	scene := grayPlane(snap.Img)
	sum, sqSum := integrals(scene, sw, sh)

	tmpl := grayPlane(tpl.Img)
	n := float64(tw * th)
	var tMean float64
	for _, v := range tmpl {
		tMean += v
	}
	tMean /= n

	tZero := make([]float64, len(tmpl))
	var tNorm float64
	for i, v := range tmpl {
		d := v - tMean
		tZero[i] = d
		tNorm += d * d
	}
	tNorm = math.Sqrt(tNorm)
	flatTemplate := tNorm <= flatStdDev*math.Sqrt(n)

	threshold := tpl.Threshold
	if threshold == 0 {
		threshold = m.Threshold
	}

	best := Match{Score: math.Inf(-1)}
	for v := 0; v+th <= sh; v++ {
		for u := 0; u+tw <= sw; u++ {
			wSum := windowSum(sum, sw, u, v, tw, th)
			variance := windowSum(sqSum, sw, u, v, tw, th) - wSum*wSum/n
			if variance < 0 {
				variance = 0
			}

			var score float64
			switch {
			case flatTemplate:
				// A flat template carries no texture to correlate, so
				// it only matches an equally flat window of similar
				// brightness.
				if math.Sqrt(variance/n) <= flatStdDev {
					score = 1 - math.Abs(wSum/n-tMean)/255
				}
			case variance > 0:
				var cross float64
				for y := 0; y < th; y++ {
					si := (v+y)*sw + u
					ti := y * tw
					for x := 0; x < tw; x++ {
						cross += scene[si+x] * tZero[ti+x]
					}
				}
				score = cross / (math.Sqrt(variance) * tNorm)
			}

			if score > best.Score+scoreEpsilon {
				best = Match{
					Score:  score,
					Bounds: geom.NewZone(snap.Zone.X+u, snap.Zone.Y+v, tw, th),
					Zone:   snap.Zone,
				}
			}
		}
	}

	if best.Score < threshold {
		return Match{}, fmt.Errorf("template %q best score %.3f below %.2f: %w",
			tpl.Name, best.Score, threshold, ErrNoMatch)
	}
	return best, nil
}

// grayPlane flattens an RGBA image into row-major luminance values.
func grayPlane(img *image.RGBA) []float64 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		o := img.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < w; x++ {
			r := float64(img.Pix[o])
			g := float64(img.Pix[o+1])
			bl := float64(img.Pix[o+2])
			out[y*w+x] = 0.299*r + 0.587*g + 0.114*bl
			o += 4
		}
	}
	return out
}

// integrals builds summed-area tables for the plane and its squares,
// padded by one row and column of zeros.
func integrals(plane []float64, w, h int) (sum, sqSum []float64) {
	stride := w + 1
	sum = make([]float64, stride*(h+1))
	sqSum = make([]float64, stride*(h+1))
	for y := 0; y < h; y++ {
		var rowSum, rowSq float64
		for x := 0; x < w; x++ {
			v := plane[y*w+x]
			rowSum += v
			rowSq += v * v
			i := (y+1)*stride + x + 1
			sum[i] = sum[y*stride+x+1] + rowSum
			sqSum[i] = sqSum[y*stride+x+1] + rowSq
		}
	}
	return sum, sqSum
}

func windowSum(integral []float64, w, u, v, tw, th int) float64 {
	stride := w + 1
	return integral[(v+th)*stride+u+tw] -
		integral[v*stride+u+tw] -
		integral[(v+th)*stride+u] +
		integral[v*stride+u]
}
