// Package fixture serves a self-contained analysis-report page for the
// acceptance tests to run against. The markup mirrors what the real
// result UI renders: a forensics table, its info caption and the source
// and filter links.
package fixture

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed templates
var templateFS embed.FS

// Server renders the fixture pages.
type Server struct {
	router *chi.Mux
	tmpl   *template.Template
}

// New builds the fixture server.
func New() *Server {
	s := &Server{
		router: chi.NewRouter(),
		tmpl:   template.Must(template.ParseFS(templateFS, "templates/*.html.tmpl")),
	}

	s.router.Use(middleware.Recoverer)

	s.router.Get("/", s.handleIndex)
	s.router.Get("/report", s.handleReport)
	s.router.Get("/source/{file}", s.handleSource)

	return s
}

// Handler returns the HTTP handler for use with httptest or a real server.
func (s *Server) Handler() http.Handler { return s.router }

type reportData struct {
	Filter  string
	Headers []string
	Rows    []reportRow
	Shown   int
	Total   int
}

type reportRow struct {
	File  string
	Cells []string // cells after the file column
}

var (
	forensicsHeaders = []string{"File", "Age", "#Authors", "#Commits", "Last Commit", "Added", "#LOC", "Code Churn"}
	dryHeaders       = []string{"File", "Severity", "#Lines", "Age"}
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/report", http.StatusFound)
}

// handleReport renders the result page. Query params shape the table:
// rows (rendered rows, default 10), total (caption total, default 37),
// kind (default|dry) and filter (echoed in the heading).
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rows := intParam(r, "rows", 10)
	total := intParam(r, "total", 37)
	kind := r.URL.Query().Get("kind")
	filter := r.URL.Query().Get("filter")

	data := reportData{
		Filter: filter,
		Shown:  rows,
		Total:  total,
	}

	switch kind {
	case "dry":
		data.Headers = dryHeaders
		for i := 0; i < rows; i++ {
			data.Rows = append(data.Rows, reportRow{
				File:  fmt.Sprintf("dup-%d.java", i),
				Cells: []string{severity(i), strconv.Itoa(10 + i), strconv.Itoa(i + 1)},
			})
		}
	default:
		data.Headers = forensicsHeaders
		for i := 0; i < rows; i++ {
			data.Rows = append(data.Rows, reportRow{
				File: fmt.Sprintf("file-%d.c", i),
				Cells: []string{
					strconv.Itoa(i + 1),            // Age
					strconv.Itoa(1 + i%3),          // #Authors
					strconv.Itoa(5 + i),            // #Commits
					fmt.Sprintf("2024-03-%02d", 1+i%28), // Last Commit
					fmt.Sprintf("2023-01-%02d", 1+i%28), // Added
					strconv.Itoa(100 + 10*i),       // #LOC
					strconv.Itoa(20 + 2*i),         // Code Churn
				},
			})
		}
	}

	s.render(w, "report.html.tmpl", data)
}

func (s *Server) handleSource(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	s.render(w, "source.html.tmpl", map[string]string{
		"File":    file,
		"Content": fmt.Sprintf("// %s\nint main(void) {\n    return 0;\n}\n", file),
	})
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("rendering fixture page", "template", name, "err", err)
	}
}

func intParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func severity(i int) string {
	switch i % 3 {
	case 0:
		return "High"
	case 1:
		return "Normal"
	default:
		return "Low"
	}
}
