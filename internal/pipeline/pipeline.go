package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"newsbrief/internal/domain"
	"newsbrief/internal/summarizer"
)

const maxConcurrency = 8

// Searcher returns article metadata for a topic.
type Searcher interface {
	Search(ctx context.Context, query domain.SearchQuery) ([]domain.Article, error)
}

// TextFetcher returns the readable text behind an article URL.
type TextFetcher interface {
	FetchText(ctx context.Context, rawURL string) (string, error)
}

// Deps wires the driven adapters into the pipeline. Summarizer may be nil,
// in which case every eligible article gets the generation failure summary.
type Deps struct {
	Searcher   Searcher
	Fetcher    TextFetcher
	Summarizer summarizer.Summarizer
}

type Options struct {
	// ResultLimit is used when a query does not carry its own limit.
	ResultLimit int
	// Concurrency above 1 processes articles with a bounded worker pool.
	// Output order always matches search order.
	Concurrency int
}

type Pipeline struct {
	searcher    Searcher
	fetcher     TextFetcher
	guard       *summarizer.Guard
	resultLimit int
	concurrency int
	log         *slog.Logger
}

func New(deps Deps, opts Options, log *slog.Logger) *Pipeline {
	resultLimit := opts.ResultLimit
	if resultLimit <= 0 {
		resultLimit = domain.DefaultResultLimit
	}

	concurrency := min(max(opts.Concurrency, 1), maxConcurrency)

	return &Pipeline{
		searcher:    deps.Searcher,
		fetcher:     deps.Fetcher,
		guard:       summarizer.NewGuard(deps.Summarizer),
		resultLimit: resultLimit,
		concurrency: concurrency,
		log:         log,
	}
}

// Run searches for topic with the default limit and summarises every result.
func (p *Pipeline) Run(ctx context.Context, topic string) []domain.Article {
	return p.RunQuery(ctx, domain.SearchQuery{Topic: topic})
}

// RunQuery never fails as a whole: search problems yield an empty result and
// per-article problems yield a placeholder summary for that article only.
func (p *Pipeline) RunQuery(ctx context.Context, query domain.SearchQuery) []domain.Article {
	start := time.Now()

	query.Topic = strings.TrimSpace(query.Topic)
	if query.Topic == "" {
		return []domain.Article{}
	}
	if query.Limit <= 0 {
		query.Limit = p.resultLimit
	}

	if p.searcher == nil {
		p.log.ErrorContext(ctx, "Search client is not configured",
			"topic", query.Topic)

		return []domain.Article{}
	}

	found, err := p.searcher.Search(ctx, query)
	if err != nil {
		p.log.ErrorContext(ctx, "Failed to search articles",
			"error", err,
			"topic", query.Topic,
			"limit", query.Limit,
			"kind", errorKind(err))

		return []domain.Article{}
	}

	if len(found) == 0 {
		p.log.InfoContext(ctx, "No articles found",
			"topic", query.Topic,
			"limit", query.Limit)

		return []domain.Article{}
	}

	p.log.InfoContext(ctx, "Summarizing articles",
		"topic", query.Topic,
		"articleCount", len(found),
		"concurrency", p.concurrency)

	results := p.processAll(ctx, found)

	p.log.InfoContext(ctx, "Articles are summarized",
		"topic", query.Topic,
		"articleCount", len(results),
		"durationSeconds", time.Since(start).Seconds())

	return results
}

func (p *Pipeline) processAll(ctx context.Context, found []domain.Article) []domain.Article {
	results := make([]domain.Article, len(found))

	workerCount := min(p.concurrency, len(found))
	if workerCount <= 1 {
		for i := range found {
			results[i] = p.process(ctx, found[i])
		}

		return results
	}

	type task struct {
		resultIndex int
		article     domain.Article
	}

	tasks := make(chan task)
	var wg sync.WaitGroup

	for range workerCount {
		wg.Go(func() {
			for t := range tasks {
				results[t.resultIndex] = p.process(ctx, t.article)
			}
		})
	}

	for i := range found {
		tasks <- task{
			resultIndex: i,
			article:     found[i],
		}
	}

	close(tasks)
	wg.Wait()

	return results
}

// process returns a copy of article carrying its own summary; nothing from a
// previous article can leak into it.
func (p *Pipeline) process(ctx context.Context, article domain.Article) domain.Article {
	summary, status := p.summarize(ctx, article)

	article.Summary = summary
	article.SummaryStatus = status

	return article
}

func (p *Pipeline) summarize(ctx context.Context, article domain.Article) (string, domain.SummaryStatus) {
	var text string
	if p.fetcher != nil {
		fetched, err := p.fetcher.FetchText(ctx, article.URL)
		if err != nil {
			p.log.WarnContext(ctx, "Failed to fetch article text",
				"error", err,
				"url", article.URL,
				"title", article.Title,
				"kind", errorKind(err))
		}
		text = fetched
	}

	if !summarizer.Sufficient(text) {
		p.log.DebugContext(ctx, "Not enough article text to summarize",
			"url", article.URL,
			"title", article.Title,
			"textLen", len(text))

		return summarizer.InsufficientContent, domain.SummaryStatusInsufficientContent
	}

	summary, err := p.guard.Summarize(ctx, summarizer.Input{
		Text:      summarizer.Truncate(text),
		SourceURL: article.URL,
	})
	if err != nil {
		if errors.Is(err, domain.ErrContentTooShort) {
			return summary, domain.SummaryStatusInsufficientContent
		}

		p.log.ErrorContext(ctx, "Failed to summarize article",
			"error", err,
			"url", article.URL,
			"title", article.Title,
			"kind", errorKind(err),
			"textLen", len(text))

		return summary, domain.SummaryStatusFailed
	}

	return summary, domain.SummaryStatusSummarized
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrTransport):
		return "transport"
	case errors.Is(err, domain.ErrUpstream):
		return "upstream"
	case errors.Is(err, domain.ErrParse):
		return "parse"
	case errors.Is(err, domain.ErrContentTooShort):
		return "contentTooShort"
	default:
		return "unknown"
	}
}
