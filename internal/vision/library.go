package vision

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Library resolves template names against a directory of PNG files.
type Library struct {
	dir string

	mu    sync.Mutex
	cache map[string]Template
}

// NewLibrary returns a library rooted at dir.
func NewLibrary(dir string) *Library {
	return &Library{dir: dir, cache: map[string]Template{}}
}

// Dir returns the library root.
func (l *Library) Dir() string {
	return l.dir
}

// Resolve loads the named template. A name with a .png suffix or a
// path separator is treated as a file path; anything else is looked up
// as <dir>/<name>.png. Loaded templates are cached.
func (l *Library) Resolve(name string) (Template, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if tpl, ok := l.cache[name]; ok {
		return tpl, nil
	}

	path := name
	if !strings.HasSuffix(name, ".png") && !strings.ContainsRune(name, filepath.Separator) {
		path = filepath.Join(l.dir, name+".png")
	}

	tpl, err := LoadTemplate(path)
	if err != nil {
		return Template{}, err
	}
	l.cache[name] = tpl
	return tpl, nil
}

// Invalidate drops every cached template so the next Resolve rereads
// from disk.
func (l *Library) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = map[string]Template{}
}

// Info describes a library entry without holding its pixels.
type Info struct {
	Name      string  `yaml:"name" json:"name"`
	Path      string  `yaml:"path" json:"path"`
	Width     int     `yaml:"width" json:"width"`
	Height    int     `yaml:"height" json:"height"`
	Threshold float64 `yaml:"threshold,omitempty" json:"threshold,omitempty"`
	Scale     float64 `yaml:"scale,omitempty" json:"scale,omitempty"`
}

// List loads every PNG under the library root, sorted by name.
func (l *Library) List() ([]Info, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("library %s: %w", l.dir, err)
	}

	infos := make([]Info, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".png") {
			continue
		}
		path := filepath.Join(l.dir, e.Name())
		tpl, err := LoadTemplate(path)
		if err != nil {
			return nil, err
		}
		w, h := tpl.Size()
		infos = append(infos, Info{
			Name:      tpl.Name,
			Path:      path,
			Width:     w,
			Height:    h,
			Threshold: tpl.Threshold,
			Scale:     tpl.Scale,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}
