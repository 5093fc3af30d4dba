package handlers

import (
	"FormIntake/internal/model"
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

const displayDateLayout = "1/2/2006, 3:04:05 PM"

var pages = []string{"index", "success", "login", "list", "view", "edit", "error"}

// PageData — контекст рендеринга для всех страниц.
type PageData struct {
	IsLoggedIn bool
	Username   string

	Records []model.Record
	Record  *model.Record
	Index   int

	Error   string
	Success string
	Message string

	Status      int
	Description string
}

// Renderer держит разобранные шаблоны: layout + страница.
type Renderer struct {
	pages  map[string]*template.Template
	logger *zap.SugaredLogger
}

func NewRenderer(logger *zap.SugaredLogger) (*Renderer, error) {
	funcs := template.FuncMap{
		"date": func(t time.Time) string { return t.Local().Format(displayDateLayout) },
		"inc":  func(i int) int { return i + 1 },
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(pages)), logger: logger}
	for _, p := range pages {
		t, err := template.New(p).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+p+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", p, err)
		}
		r.pages[p] = t
	}
	return r, nil
}

// Render выполняет шаблон в буфер, чтобы ошибка шаблона не оставила полуответ.
func (rn *Renderer) Render(w http.ResponseWriter, status int, page string, data PageData) {
	t, ok := rn.pages[page]
	if !ok {
		rn.logger.Errorw("unknown template", "page", page)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		rn.logger.Errorw("template execution failed", "page", page, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
