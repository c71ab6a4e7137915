package web_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"newsbrief/internal/domain"
	"newsbrief/internal/summarizer"
	"newsbrief/internal/web"
)

type stubRunner struct {
	mu       sync.Mutex
	queries  []domain.SearchQuery
	deadline bool
	articles []domain.Article
}

func (r *stubRunner) RunQuery(ctx context.Context, query domain.SearchQuery) []domain.Article {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, query)
	_, r.deadline = ctx.Deadline()

	return r.articles
}

func (r *stubRunner) calls() []domain.SearchQuery {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]domain.SearchQuery(nil), r.queries...)
}

func newRouter(runner web.Runner) *gin.Engine {
	gin.SetMode(gin.TestMode)

	return web.NewRouter(runner, web.Options{RequestTimeout: time.Minute}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func sampleArticles() []domain.Article {
	return []domain.Article{
		{
			Title:         "Go 1.26 released",
			URL:           "https://example.com/go",
			PublishedAt:   time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC),
			Source:        domain.Source{Name: "Example News"},
			Summary:       "첫 문장. 둘째 문장. 셋째 문장.",
			SummaryStatus: domain.SummaryStatusSummarized,
		},
		{
			Title:         "Paywalled <story>",
			URL:           "https://example.com/paywall",
			Summary:       summarizer.InsufficientContent,
			SummaryStatus: domain.SummaryStatusInsufficientContent,
		},
	}
}

func TestIndexRendersEmptyForm(t *testing.T) {
	runner := &stubRunner{}
	r := newRouter(runner)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `name="topic"`) {
		t.Fatalf("expected topic form in body")
	}
	if len(runner.calls()) != 0 {
		t.Fatalf("expected no pipeline run")
	}
}

func TestIndexPostRunsPipeline(t *testing.T) {
	runner := &stubRunner{articles: sampleArticles()}
	r := newRouter(runner)

	form := url.Values{"topic": {"  golang  "}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	calls := runner.calls()
	if len(calls) != 1 || calls[0].Topic != "golang" || calls[0].Limit != 0 {
		t.Fatalf("unexpected pipeline calls: %+v", calls)
	}
	if !runner.deadline {
		t.Fatalf("expected request context to carry a deadline")
	}

	body := w.Body.String()
	for _, want := range []string{
		"https://example.com/go",
		"Go 1.26 released",
		"2026-02-10 09:30",
		"Example News",
		"첫 문장. 둘째 문장. 셋째 문장.",
		summarizer.InsufficientContent,
		"Paywalled &lt;story&gt;",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected body to contain %q", want)
		}
	}
}

func TestIndexPostEmptyTopic(t *testing.T) {
	runner := &stubRunner{articles: sampleArticles()}
	r := newRouter(runner)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("topic=+++"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(runner.calls()) != 0 {
		t.Fatalf("expected no pipeline run for empty topic")
	}
	if strings.Contains(w.Body.String(), "No articles found") {
		t.Fatalf("expected plain form without a result section")
	}
}

func TestIndexGetWithTopicNoResults(t *testing.T) {
	runner := &stubRunner{}
	r := newRouter(runner)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?topic=nothing", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "No articles found") {
		t.Fatalf("expected empty result message")
	}
}

func TestArticlesAPI(t *testing.T) {
	runner := &stubRunner{articles: sampleArticles()}
	r := newRouter(runner)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/articles?topic=golang&limit=2", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var got struct {
		Topic    string           `json:"topic"`
		Count    int              `json:"count"`
		Articles []domain.Article `json:"articles"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if got.Topic != "golang" || got.Count != 2 || len(got.Articles) != 2 {
		t.Fatalf("unexpected response: %+v", got)
	}
	if got.Articles[1].SummaryStatus != domain.SummaryStatusInsufficientContent {
		t.Fatalf("unexpected summary status: %q", got.Articles[1].SummaryStatus)
	}

	calls := runner.calls()
	if len(calls) != 1 || calls[0].Limit != 2 {
		t.Fatalf("unexpected pipeline calls: %+v", calls)
	}
}

func TestArticlesAPIEmptyResultIsArray(t *testing.T) {
	r := newRouter(&stubRunner{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/articles?topic=golang", nil))

	if !strings.Contains(w.Body.String(), `"articles":[]`) {
		t.Fatalf("expected empty articles array, got %s", w.Body.String())
	}
}

func TestArticlesAPIBadRequest(t *testing.T) {
	for _, target := range []string{
		"/api/articles",
		"/api/articles?topic=%20",
		"/api/articles?topic=go&limit=abc",
		"/api/articles?topic=go&limit=0",
		"/api/articles?topic=go&limit=101",
	} {
		runner := &stubRunner{}
		r := newRouter(runner)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, w.Code)
		}
		if len(runner.calls()) != 0 {
			t.Fatalf("%s: expected no pipeline run", target)
		}
	}
}

func TestHealth(t *testing.T) {
	r := newRouter(&stubRunner{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != `{"status":"ok"}` {
		t.Fatalf("unexpected health response: %d %s", w.Code, w.Body.String())
	}
}
