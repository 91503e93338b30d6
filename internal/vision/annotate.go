package vision

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/honk-lang/honk/internal/geom"
	"github.com/honk-lang/honk/internal/screen"
)

var (
	markColor    = color.RGBA{50, 205, 50, 255}
	labelColor   = color.RGBA{255, 255, 255, 255}
	outlineColor = color.RGBA{0, 0, 0, 255}
)

const borderThickness = 2

// Mark is a labeled zone drawn by Annotate.
type Mark struct {
	Zone  geom.Zone
	Label string
}

// Annotate copies the snapshot and draws each mark's outline and label
// onto it. Marks use screen coordinates and are translated into the
// snapshot's zone.
func Annotate(snap screen.Snapshot, marks []Mark) *image.RGBA {
	out := image.NewRGBA(snap.Img.Bounds())
	draw.Draw(out, out.Bounds(), snap.Img, snap.Img.Bounds().Min, draw.Src)

	for _, m := range marks {
		local := geom.NewZone(m.Zone.X-snap.Zone.X, m.Zone.Y-snap.Zone.Y, m.Zone.W, m.Zone.H)
		drawBorder(out, local, markColor)
		if m.Label != "" {
			drawLabel(out, local.X+2, local.Y-4, m.Label)
		}
	}
	return out
}

func drawBorder(img *image.RGBA, z geom.Zone, col color.RGBA) {
	for t := 0; t < borderThickness; t++ {
		for x := z.X; x < z.X+z.W; x++ {
			setPixel(img, x, z.Y+t, col)
			setPixel(img, x, z.Y+z.H-1-t, col)
		}
		for y := z.Y; y < z.Y+z.H; y++ {
			setPixel(img, z.X+t, y, col)
			setPixel(img, z.X+z.W-1-t, y, col)
		}
	}
}

func setPixel(img *image.RGBA, x, y int, col color.RGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetRGBA(x, y, col)
	}
}

// drawLabel renders text with a 1px dark outline so it stays readable
// on any background.
func drawLabel(img *image.RGBA, x, y int, text string) {
	if y < basicfont.Face7x13.Ascent {
		y = basicfont.Face7x13.Ascent
	}
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			drawString(img, x+dx, y+dy, text, outlineColor)
		}
	}
	drawString(img, x, y, text, labelColor)
}

func drawString(img *image.RGBA, x, y int, text string, col color.RGBA) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
