// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the site. Each page
// template is paired with the base layout; auth pages render standalone.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"inkwell/internal/markdown"
	"inkwell/internal/middleware"
	"inkwell/internal/sanitize"
	"inkwell/internal/session"
)

//go:embed templates/*.html
var pageFS embed.FS

// PageData holds all data passed to page templates.
type PageData struct {
	Title     string         // Page title for <title> tag
	Session   *session.Data  // Current session (nil if unauthenticated)
	CSRFToken string         // CSRF token for forms
	Error     string         // Form-level error message, if any
	Data      map[string]any // Page-specific data
}

// Str returns the named Data entry as a string, or "" when the entry is
// absent. Keeps shared templates safe on pages that don't set every key.
func (d *PageData) Str(key string) string {
	s, _ := d.Data[key].(string)
	return s
}

// Renderer handles template parsing and execution.
type Renderer struct {
	templates map[string]*template.Template
	funcMap   template.FuncMap
}

// standaloneTemplates lists templates that render as full HTML pages
// without the base layout (they have their own <html>, <head>, etc.).
var standaloneTemplates = map[string]bool{
	"login":        true,
	"signup":       true,
	"twofa_verify": true,
}

// New creates a Renderer by parsing all page templates from the embedded
// filesystem.
func New() (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		funcMap: template.FuncMap{
			// deref safely dereferences a string pointer for use in templates.
			"deref": func(s *string) string {
				if s == nil {
					return ""
				}
				return *s
			},
			// date formats a timestamp for display.
			"date": func(t time.Time) string {
				return t.Format("Jan 2, 2006")
			},
			// markdown renders a post body: Markdown → HTML → sanitizer.
			// The result is trusted precisely because it passed the
			// allow-list policy.
			"markdown": func(source string) template.HTML {
				html, err := markdown.ToHTML(source)
				if err != nil {
					return template.HTML(template.HTMLEscapeString(source))
				}
				return template.HTML(sanitize.HTML(html))
			},
		},
	}

	entries, err := pageFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	// Files starting with "_" are shared partials, parsed into every page.
	var partials []string
	for _, e := range entries {
		if !e.IsDir() && e.Name()[0] == '_' {
			partials = append(partials, "templates/"+e.Name())
		}
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == "base.html" || name[0] == '_' {
			continue
		}

		// Strip .html extension for the template name.
		tmplName := name[:len(name)-len(".html")]

		var tmpl *template.Template
		var parseErr error

		if standaloneTemplates[tmplName] {
			tmpl, parseErr = template.New(name).Funcs(r.funcMap).ParseFS(
				pageFS, "templates/"+name,
			)
		} else {
			files := append([]string{"templates/base.html"}, partials...)
			files = append(files, "templates/"+name)
			tmpl, parseErr = template.New("base.html").Funcs(r.funcMap).ParseFS(
				pageFS, files...,
			)
		}

		if parseErr != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, parseErr)
		}

		r.templates[tmplName] = tmpl
	}

	return r, nil
}

// Page renders a full page into the response. The CSRF token and session
// are injected from the request context so handlers don't repeat it.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	html, err := rn.Render(r, name, data)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

// PageStatus is Page with an explicit HTTP status code (404, 403 pages).
func (rn *Renderer) PageStatus(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	html, err := rn.Render(r, name, data)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(html)
}

// Render executes a page template and returns the HTML bytes. Split from
// Page so handlers can store the result in the page cache.
func (rn *Renderer) Render(r *http.Request, name string, data *PageData) ([]byte, error) {
	tmpl, ok := rn.templates[name]
	if !ok {
		return nil, fmt.Errorf("template %q not found", name)
	}

	if data == nil {
		data = &PageData{}
	}
	data.CSRFToken = middleware.GetCSRFToken(r)
	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}

	execName := "base.html"
	if standaloneTemplates[name] {
		execName = name + ".html"
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, execName, data); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
