package vision

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/honk-lang/honk/internal/geom"
)

func writeTemplatePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x * 20), uint8(y * 20), 0, 255})
		}
	}
	path := filepath.Join(dir, name+".png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close %s: %v", path, err)
	}
	return path
}

func writeSidecar(t *testing.T, pngPath, body string) {
	t.Helper()
	path := sidecarPath(pngPath)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadTemplateWithSidecar(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplatePNG(t, dir, "submit", 6, 4)
	writeSidecar(t, path, "threshold: 0.9\nscale: 2\n")

	tpl, err := LoadTemplate(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tpl.Name != "submit" {
		t.Errorf("name = %q", tpl.Name)
	}
	if w, h := tpl.Size(); w != 6 || h != 4 {
		t.Errorf("size = %dx%d, want 6x4", w, h)
	}
	if tpl.Threshold != 0.9 {
		t.Errorf("threshold = %v, want 0.9", tpl.Threshold)
	}
	if tpl.Scale != 2 {
		t.Errorf("scale = %v, want 2", tpl.Scale)
	}
}

func TestLoadTemplateWithoutSidecar(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplatePNG(t, dir, "plain", 3, 3)

	tpl, err := LoadTemplate(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tpl.Threshold != 0 || tpl.Scale != 0 {
		t.Errorf("sidecar defaults = %v/%v, want zero values", tpl.Threshold, tpl.Scale)
	}
}

func TestLoadTemplateBadSidecar(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplatePNG(t, dir, "broken", 3, 3)
	writeSidecar(t, path, "threshold: [not a number\n")

	if _, err := LoadTemplate(path); err == nil {
		t.Fatal("malformed sidecar accepted")
	}
}

func TestLibraryResolveBareName(t *testing.T) {
	dir := t.TempDir()
	writeTemplatePNG(t, dir, "ok-button", 5, 5)

	lib := NewLibrary(dir)
	tpl, err := lib.Resolve("ok-button")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if tpl.Name != "ok-button" {
		t.Errorf("name = %q", tpl.Name)
	}
}

func TestLibraryResolvePath(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplatePNG(t, dir, "elsewhere", 5, 5)

	lib := NewLibrary(t.TempDir())
	tpl, err := lib.Resolve(path)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if tpl.Name != "elsewhere" {
		t.Errorf("name = %q", tpl.Name)
	}
}

func TestLibraryResolveMissing(t *testing.T) {
	lib := NewLibrary(t.TempDir())
	if _, err := lib.Resolve("ghost"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want wrapped os.ErrNotExist", err)
	}
}

func TestLibraryResolveCaches(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplatePNG(t, dir, "cached", 4, 4)

	lib := NewLibrary(dir)
	if _, err := lib.Resolve("cached"); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := lib.Resolve("cached"); err != nil {
		t.Errorf("cached resolve after delete: %v", err)
	}

	lib.Invalidate()
	if _, err := lib.Resolve("cached"); err == nil {
		t.Error("resolve after invalidate should reread from disk")
	}
}

func TestLibraryList(t *testing.T) {
	dir := t.TempDir()
	writeTemplatePNG(t, dir, "beta", 4, 2)
	alpha := writeTemplatePNG(t, dir, "alpha", 6, 4)
	writeSidecar(t, alpha, "threshold: 0.7\n")
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write stray file: %v", err)
	}

	infos, err := NewLibrary(dir).List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("len = %d, want 2", len(infos))
	}
	if infos[0].Name != "alpha" || infos[1].Name != "beta" {
		t.Errorf("order = %q, %q, want alpha, beta", infos[0].Name, infos[1].Name)
	}
	if infos[0].Width != 6 || infos[0].Height != 4 {
		t.Errorf("alpha size = %dx%d", infos[0].Width, infos[0].Height)
	}
	if infos[0].Threshold != 0.7 {
		t.Errorf("alpha threshold = %v", infos[0].Threshold)
	}
}

func TestForScale(t *testing.T) {
	tpl := Template{Name: "s", Img: image.NewRGBA(image.Rect(0, 0, 8, 6)), Scale: 1}

	doubled := tpl.ForScale(2)
	if w, h := doubled.Size(); w != 16 || h != 12 {
		t.Errorf("doubled size = %dx%d, want 16x12", w, h)
	}
	if doubled.Scale != 2 {
		t.Errorf("doubled scale = %v, want 2", doubled.Scale)
	}

	same := tpl.ForScale(1)
	if same.Img != tpl.Img {
		t.Error("matching scale should return the template unchanged")
	}

	retina := Template{Name: "r", Img: image.NewRGBA(image.Rect(0, 0, 8, 6)), Scale: 2}
	halved := retina.ForScale(1)
	if w, h := halved.Size(); w != 4 || h != 3 {
		t.Errorf("halved size = %dx%d, want 4x3", w, h)
	}
}

func TestAnnotateDrawsBorder(t *testing.T) {
	snap := uniformSnapshot(geom.NewZone(100, 50, 40, 30), color.RGBA{90, 90, 90, 255})
	out := Annotate(snap, []Mark{{Zone: geom.NewZone(110, 55, 10, 8)}})

	if got := out.RGBAAt(10, 5); got != markColor {
		t.Errorf("top-left border pixel = %v, want %v", got, markColor)
	}
	if got := out.RGBAAt(19, 12); got != markColor {
		t.Errorf("bottom-right border pixel = %v, want %v", got, markColor)
	}
	// The source snapshot must stay untouched.
	if got := snap.Img.RGBAAt(10, 5); got != (color.RGBA{90, 90, 90, 255}) {
		t.Errorf("source pixel mutated: %v", got)
	}
}

func TestAnnotateLabelStaysInsideImage(t *testing.T) {
	snap := uniformSnapshot(geom.NewZone(0, 0, 80, 40), color.RGBA{90, 90, 90, 255})
	// A mark at the very top forces the label baseline to clamp.
	out := Annotate(snap, []Mark{{Zone: geom.NewZone(2, 0, 20, 10), Label: "submit"}})

	changed := false
	for y := 0; y < 14 && !changed; y++ {
		for x := 0; x < 80; x++ {
			c := out.RGBAAt(x, y)
			if c == labelColor || c == outlineColor {
				changed = true
				break
			}
		}
	}
	if !changed {
		t.Error("label not drawn")
	}
}
