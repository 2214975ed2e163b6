package handlers

import (
	"fmt"
	"html/template"
	"io"
	"path/filepath"
	"strings"
)

// Page views are rendered inside the base layout; .turbo.html fragments are
// rendered standalone for turbo-stream responses.
var (
	pageViews = []string{
		"login.html",
		"accounts/index.html",
		"accounts/new.html",
		"accounts/edit.html",
		"goals/index.html",
		"goals/new.html",
		"goals/edit.html",
	}
	fragmentViews = []string{
		"accounts/form.turbo.html",
		"goals/form.turbo.html",
	}
)

// TemplateRegistry holds every parsed template. It is built once at startup
// and read-only afterwards, so handlers can share it freely.
type TemplateRegistry struct {
	views map[string]*template.Template
}

// LoadTemplates parses all views under dir into a registry.
func LoadTemplates(dir string) (*TemplateRegistry, error) {
	views := make(map[string]*template.Template, len(pageViews)+len(fragmentViews))

	for _, name := range pageViews {
		tmpl, err := template.ParseFiles(
			filepath.Join(dir, "base.html"),
			filepath.Join(dir, filepath.FromSlash(name)),
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		views[name] = tmpl
	}

	for _, name := range fragmentViews {
		tmpl, err := template.ParseFiles(filepath.Join(dir, filepath.FromSlash(name)))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		views[name] = tmpl
	}

	return &TemplateRegistry{views: views}, nil
}

// Render executes the named view. Page views execute through the base
// layout; fragments execute on their own.
func (reg *TemplateRegistry) Render(w io.Writer, name string, data any) error {
	tmpl, ok := reg.views[name]
	if !ok {
		return fmt.Errorf("no template %q", name)
	}
	if strings.HasSuffix(name, ".turbo.html") {
		return tmpl.Execute(w, data)
	}
	return tmpl.ExecuteTemplate(w, "base.html", data)
}
