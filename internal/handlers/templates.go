package handlers

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"path"
	"strconv"
	"sync"
)

//go:embed templates/*.html
var templateFS embed.FS

// TemplateCache holds parsed templates
type TemplateCache struct {
	cache map[string]*template.Template
	mu    sync.RWMutex
	funcs template.FuncMap
}

func NewTemplateCache() *TemplateCache {
	return &TemplateCache{
		cache: make(map[string]*template.Template),
		funcs: template.FuncMap{
			"money": func(currency string, v float64) string {
				return currency + strconv.FormatFloat(v, 'f', 2, 64)
			},
		},
	}
}

func (tc *TemplateCache) AddFunc(name string, fn any) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.funcs[name] = fn
}

// Load parses the embedded page templates.
func (tc *TemplateCache) Load() error {
	return tc.LoadFS(templateFS, "templates")
}

// LoadFS parses every *.html file in dir of fsys
func (tc *TemplateCache) LoadFS(fsys fs.FS, dir string) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	files, err := fs.Glob(fsys, path.Join(dir, "*.html"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no templates found in %s", dir)
	}
	for _, file := range files {
		name := path.Base(file)
		tmpl, err := template.New(name).Funcs(tc.funcs).ParseFS(fsys, file)
		if err != nil {
			slog.Error("Failed to parse template", "file", file, "error", err)
			return err
		}
		tc.cache[name] = tmpl
		slog.Debug("Cached template", "name", name)
	}
	return nil
}

func (tc *TemplateCache) Get(name string) *template.Template {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.cache[name]
}
