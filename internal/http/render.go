package http

import (
	"embed"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin/render"
)

//go:embed templates
var templateFS embed.FS

const layoutTemplate = "templates/base.html"

var templateFuncs = template.FuncMap{
	"date": func(t time.Time) string {
		return t.Local().Format("January 2, 2006, 15:04")
	},
	"percent": func(votes, total int64) int64 {
		if total == 0 {
			return 0
		}
		return votes * 100 / total
	},
}

// pageRenderer gives every page its own template set so that each page can
// define the layout's "title" and "content" blocks independently.
type pageRenderer struct {
	pages map[string]*template.Template
}

// loadTemplates parses base.html together with each page under templates/.
// Pages are addressed by their path below templates/, e.g. "blog/post_list.html".
func loadTemplates() (*pageRenderer, error) {
	r := &pageRenderer{pages: make(map[string]*template.Template)}
	err := fs.WalkDir(templateFS, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || p == layoutTemplate || path.Ext(p) != ".html" {
			return err
		}
		tmpl, err := template.New(path.Base(p)).Funcs(templateFuncs).ParseFS(templateFS, layoutTemplate, p)
		if err != nil {
			return err
		}
		r.pages[strings.TrimPrefix(p, "templates/")] = tmpl
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *pageRenderer) Instance(name string, data any) render.Render {
	tmpl, ok := r.pages[name]
	if !ok {
		panic("html template not found: " + name)
	}
	return render.HTML{Template: tmpl, Name: "base", Data: data}
}
