package search

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"newsbrief/internal/domain"
)

const defaultRSSTimeout = 15 * time.Second

type RSSOptions struct {
	Endpoint string
	Language string
	Timeout  time.Duration
}

// RSSClient searches an RSS search endpoint (Google News style: q and hl
// query parameters) and maps feed items to articles.
type RSSClient struct {
	endpoint string
	language string
	parser   *gofeed.Parser
	log      *slog.Logger
}

func NewRSSClient(opts RSSOptions, log *slog.Logger) *RSSClient {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultRSSTimeout
	}

	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	parser.UserAgent = userAgent

	return &RSSClient{
		endpoint: strings.TrimSpace(opts.Endpoint),
		language: strings.TrimSpace(opts.Language),
		parser:   parser,
		log:      log,
	}
}

func (c *RSSClient) Search(
	ctx context.Context,
	query domain.SearchQuery,
) ([]domain.Article, error) {
	query, err := normalizeQuery(query)
	if err != nil {
		return nil, fmt.Errorf("normalize query: %w", err)
	}

	feedURL, err := c.buildURL(query)
	if err != nil {
		return nil, fmt.Errorf("build URL: %w", err)
	}

	feed, err := c.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, classifyFeedError(err)
	}

	feedTitle := strings.TrimSpace(feed.Title)
	articles := make([]domain.Article, 0, len(feed.Items))

	for _, item := range feed.Items {
		article, ok := c.articleFromItem(ctx, item, feedTitle)
		if !ok {
			continue
		}

		articles = append(articles, article)
	}

	slices.SortStableFunc(articles, func(a, b domain.Article) int {
		return cmp.Compare(b.PublishedAt.UnixNano(), a.PublishedAt.UnixNano())
	})

	if len(articles) > query.Limit {
		articles = articles[:query.Limit]
	}

	return articles, nil
}

func (c *RSSClient) articleFromItem(
	ctx context.Context,
	item *gofeed.Item,
	feedTitle string,
) (domain.Article, bool) {
	if item == nil {
		return domain.Article{}, false
	}

	link := strings.TrimSpace(item.Link)
	title := strings.TrimSpace(item.Title)
	if link == "" {
		c.log.WarnContext(ctx, "Skipping feed item with empty URL",
			"feedTitle", feedTitle,
			"itemTitle", title)

		return domain.Article{}, false
	}

	var publishedAt time.Time
	if item.PublishedParsed != nil {
		publishedAt = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		publishedAt = *item.UpdatedParsed
	}

	article := domain.Article{
		Title:       title,
		URL:         link,
		PublishedAt: publishedAt,
		Source:      domain.Source{Name: feedTitle},
		Description: strings.TrimSpace(item.Description),
		Content:     strings.TrimSpace(item.Content),
	}

	if item.Author != nil {
		article.Author = strings.TrimSpace(item.Author.Name)
	}
	if item.Image != nil {
		article.URLToImage = strings.TrimSpace(item.Image.URL)
	}

	return article, true
}

func (c *RSSClient) buildURL(query domain.SearchQuery) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("endpoint is not absolute: %q", c.endpoint)
	}

	q := u.Query()
	q.Set("q", query.Topic)
	if c.language != "" {
		q.Set("hl", c.language)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func classifyFeedError(err error) error {
	var httpErr gofeed.HTTPError
	if errors.As(err, &httpErr) {
		return fmt.Errorf("%w: parse feed: %w", domain.ErrUpstream, err)
	}

	if errors.Is(err, gofeed.ErrFeedTypeNotDetected) {
		return fmt.Errorf("%w: parse feed: %w", domain.ErrParse, err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%w: parse feed: %w", domain.ErrTransport, err)
	}

	return fmt.Errorf("%w: parse feed: %w", domain.ErrParse, err)
}
