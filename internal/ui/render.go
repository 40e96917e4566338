package ui

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/goalhub/goalhub/internal/ctxkeys"
	"github.com/goalhub/goalhub/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcMap = template.FuncMap{
	"safeHTML": func(s string) template.HTML {
		return template.HTML(s)
	},
	"date": func(t *time.Time) string {
		if t == nil {
			return "—"
		}
		return t.Format("2006-01-02 15:04")
	},
	"deref": func(p *int) int {
		if p == nil {
			return 0
		}
		return *p
	},
	"statusLabel": func(s model.Status) string {
		return s.Label()
	},
	"query": func(pairs ...any) template.URL {
		q := ""
		for i := 0; i+1 < len(pairs); i += 2 {
			if i > 0 {
				q += "&"
			}
			q += fmt.Sprintf("%v=%v", pairs[i], pairs[i+1])
		}
		return template.URL(q)
	},
}

var tmpl = template.Must(template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html"))

// Page is the data envelope every template receives.
type Page struct {
	Title     string
	User      *model.User
	CSRFToken string
	Path      string
	AppName   string

	// Errors are form/validation messages rendered back into the page.
	Errors []string

	Data any
}

// Render executes the named template, filling the request-scoped fields of
// the page from context.
func Render(w http.ResponseWriter, r *http.Request, name string, p Page) {
	ctx := r.Context()
	p.User = ctxkeys.User(ctx)
	p.CSRFToken = ctxkeys.CSRFToken(ctx)
	p.Path = ctxkeys.URLPath(ctx)
	if cfg := ctxkeys.Config(ctx); cfg != nil {
		p.AppName = cfg.AppName
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := tmpl.ExecuteTemplate(w, name, p)
	if err != nil {
		slog.Error("render failed", "error", err, "template", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
