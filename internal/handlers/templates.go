package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"lotus/internal/auth"
	"lotus/internal/middleware"
)

// TemplateExecutor is an interface for template execution
// This allows both *template.Template and custom template registries to be used
type TemplateExecutor interface {
	ExecuteTemplate(wr io.Writer, name string, data interface{}) error
}

// pageData collects what every page layout reads. Pending flashes are popped
// here, so it must run before anything is written to w.
func pageData(w http.ResponseWriter, r *http.Request, sessions *auth.SessionManager, title, activePage string) map[string]interface{} {
	return map[string]interface{}{
		"Title":      title,
		"ActivePage": activePage,
		"Account":    middleware.GetAccount(r),
		"Flashes":    sessions.Flashes(w, r),
	}
}

func render(w http.ResponseWriter, r *http.Request, templates TemplateExecutor, name string, data map[string]interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template error", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
