// Package web holds the HTML templates and static assets and renders pages
// for gin.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/gin-gonic/gin/render"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFiles embed.FS

//go:embed static
var staticFiles embed.FS

const layoutFile = "layout.html"

// Static returns the embedded static assets rooted at the static directory.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

var funcs = template.FuncMap{
	"money": func(d decimal.Decimal) string {
		return d.StringFixed(2)
	},
	"negative": func(d decimal.Decimal) bool {
		return d.IsNegative()
	},
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}

// Renderer implements gin's render.HTMLRender. Each page template is parsed
// together with the shared layout and executed through it.
type Renderer struct {
	dir string // empty for the embedded set
	log *slog.Logger

	mu    sync.RWMutex
	pages map[string]*template.Template
}

// NewRenderer loads templates from dir, or from the embedded set when dir is empty.
func NewRenderer(dir string, log *slog.Logger) (*Renderer, error) {
	if log == nil {
		log = slog.Default()
	}
	r := &Renderer{dir: dir, log: log}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Renderer) source() (fs.FS, error) {
	if r.dir != "" {
		return os.DirFS(r.dir), nil
	}
	return fs.Sub(templateFiles, "templates")
}

// Reload re-parses every page. The previous set stays active on error.
func (r *Renderer) Reload() error {
	fsys, err := r.source()
	if err != nil {
		return err
	}
	names, err := fs.Glob(fsys, "*.html")
	if err != nil {
		return err
	}
	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		if name == layoutFile {
			continue
		}
		t, err := template.New(name).Funcs(funcs).ParseFS(fsys, layoutFile, name)
		if err != nil {
			return fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	if len(pages) == 0 {
		return errors.New("no page templates found")
	}
	r.mu.Lock()
	r.pages = pages
	r.mu.Unlock()
	return nil
}

// Instance satisfies render.HTMLRender.
func (r *Renderer) Instance(name string, data any) render.Render {
	r.mu.RLock()
	t, ok := r.pages[name]
	r.mu.RUnlock()
	if !ok {
		return missingTemplate(name)
	}
	return render.HTML{Template: t, Name: "layout", Data: data}
}

type missingTemplate string

func (m missingTemplate) Render(w http.ResponseWriter) error {
	return fmt.Errorf("template %q not found", string(m))
}

func (m missingTemplate) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}

// Watch reloads the templates whenever a file in the template directory
// changes. It blocks until ctx is done and is a no-op for the embedded set.
func (r *Renderer) Watch(ctx context.Context) error {
	if r.dir == "" {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(r.dir); err != nil {
		return fmt.Errorf("watch %s: %w", r.dir, err)
	}
	r.log.Info("watching templates", "dir", r.dir)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.EqualFold(path.Ext(filepath.ToSlash(ev.Name)), ".html") || ev.Op == fsnotify.Chmod {
				continue
			}
			if err := r.Reload(); err != nil {
				r.log.Error("template reload failed", "file", ev.Name, "err", err)
				continue
			}
			r.log.Debug("templates reloaded", "file", ev.Name, "op", ev.Op.String())
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.log.Warn("template watcher error", "err", err)
		}
	}
}
