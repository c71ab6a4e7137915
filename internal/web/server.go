package web

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"newsbrief/internal/domain"
)

const DefaultRequestTimeout = 2 * time.Minute

//go:embed templates/*.html
var templatesFS embed.FS

// Runner produces summarised articles for a query. It never fails, a bad
// upstream shows up as an empty or degraded result.
type Runner interface {
	RunQuery(ctx context.Context, query domain.SearchQuery) []domain.Article
}

type Options struct {
	// RequestTimeout bounds a single pipeline run started by a request.
	RequestTimeout time.Duration
}

type handler struct {
	runner         Runner
	requestTimeout time.Duration
	log            *slog.Logger
}

// NewRouter builds the gin engine serving the topic form, the JSON API and
// the health check.
func NewRouter(runner Runner, opts Options, log *slog.Logger) *gin.Engine {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}

	h := &handler{
		runner:         runner,
		requestTimeout: opts.RequestTimeout,
		log:            log,
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))
	r.SetHTMLTemplate(template.Must(
		template.New("").
			Funcs(template.FuncMap{"formatTime": formatTime}).
			ParseFS(templatesFS, "templates/*.html"),
	))

	r.GET("/", h.index)
	r.POST("/", h.index)
	r.GET("/api/articles", h.articles)
	r.GET("/health", h.health)

	return r
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.Format("2006-01-02 15:04")
}
