package main

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"lotus/internal/models"
	"lotus/web"
)

// TemplateRegistry holds separate template instances for each page
type TemplateRegistry struct {
	templates map[string]*template.Template
	funcMap   template.FuncMap
}

func NewTemplateRegistry(funcMap template.FuncMap) *TemplateRegistry {
	return &TemplateRegistry{
		templates: make(map[string]*template.Template),
		funcMap:   funcMap,
	}
}

func (tr *TemplateRegistry) Add(name string, tmpl *template.Template) {
	tr.templates[name] = tmpl
}

func (tr *TemplateRegistry) ExecuteTemplate(w io.Writer, name string, data interface{}) error {
	tmpl, ok := tr.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}
	return tmpl.ExecuteTemplate(w, name, data)
}

// templateFS picks LOTUS_WEB_DIR/templates when set, else the embedded copy.
func templateFS(webDir string) fs.FS {
	if webDir != "" {
		return os.DirFS(path.Join(webDir, "templates"))
	}
	return web.Templates()
}

func staticFS(webDir string) fs.FS {
	if webDir != "" {
		return os.DirFS(path.Join(webDir, "static"))
	}
	return web.Static()
}

// loadTemplates builds one template set per page. Each set holds every
// layout and partial plus that page, so pages can each define "content".
func loadTemplates(fsys fs.FS) (*TemplateRegistry, error) {
	registry := NewTemplateRegistry(templateFuncs())

	var sharedFiles []string
	for _, dir := range []string{"layouts", "partials"} {
		files, err := fs.Glob(fsys, dir+"/*.html")
		if err != nil {
			return nil, err
		}
		sharedFiles = append(sharedFiles, files...)
	}

	pageFiles, err := fs.Glob(fsys, "pages/*.html")
	if err != nil {
		return nil, err
	}
	if len(pageFiles) == 0 {
		return nil, fmt.Errorf("no page templates found")
	}

	for _, pageFile := range pageFiles {
		pageName := path.Base(pageFile)

		tmpl := template.New(pageName).Funcs(registry.funcMap)
		for _, file := range append(append([]string{}, sharedFiles...), pageFile) {
			content, err := fs.ReadFile(fsys, file)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", file, err)
			}
			if _, err := tmpl.Parse(string(content)); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", file, err)
			}
		}

		registry.Add(pageName, tmpl)
	}

	return registry, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatTime":    formatTime,
		"formatMoney":   formatMoney,
		"capitalize":    capitalize,
		"bankResources": func() []string { return models.BankResources },
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04 UTC")
}

// formatMoney renders v as dollars with thousands separators.
func formatMoney(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return sign + "$" + b.String() + "." + frac
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
