package vision

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Template is a reference image searched for on screen.
type Template struct {
	Name      string
	Img       *image.RGBA
	Threshold float64 // minimum match score, 0 defers to the matcher
	Scale     float64 // display scale the pixels were captured at, 0 means 1
}

// Size returns the template's pixel dimensions.
func (t Template) Size() (w, h int) {
	if t.Img == nil {
		return 0, 0
	}
	return t.Img.Bounds().Dx(), t.Img.Bounds().Dy()
}

type sidecar struct {
	Threshold float64 `yaml:"threshold"`
	Scale     float64 `yaml:"scale"`
}

// LoadTemplate reads a PNG template from path together with its
// optional YAML sidecar, which carries a per-template match threshold
// and the display scale the image was captured at.
func LoadTemplate(path string) (Template, error) {
	f, err := os.Open(path)
	if err != nil {
		return Template{}, fmt.Errorf("template %s: %w", path, err)
	}
	defer f.Close()

	decoded, err := png.Decode(f)
	if err != nil {
		return Template{}, fmt.Errorf("decode %s: %w", path, err)
	}

	img := image.NewRGBA(image.Rect(0, 0, decoded.Bounds().Dx(), decoded.Bounds().Dy()))
	draw.Draw(img, img.Bounds(), decoded, decoded.Bounds().Min, draw.Src)

	tpl := Template{
		Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Img:  img,
	}

	side := sidecarPath(path)
	data, err := os.ReadFile(side)
	if err != nil {
		if os.IsNotExist(err) {
			return tpl, nil
		}
		return Template{}, fmt.Errorf("sidecar %s: %w", side, err)
	}
	var meta sidecar
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return Template{}, fmt.Errorf("sidecar %s: %w", side, err)
	}
	tpl.Threshold = meta.Threshold
	tpl.Scale = meta.Scale
	return tpl, nil
}

func sidecarPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".yaml"
}
