package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"newsbrief/internal/domain"
)

const (
	newsAPIStatusOK       = "ok"
	newsAPISortBy         = "publishedAt"
	errorBodyMaxBytes     = 4 << 10
	responseBodyMaxBytes  = 8 << 20
	defaultNewsAPITimeout = 15 * time.Second
)

type NewsAPIOptions struct {
	Endpoint string
	APIKey   string
	Language string
	Timeout  time.Duration
}

// NewsAPIClient queries the NewsAPI "everything" endpoint.
type NewsAPIClient struct {
	endpoint string
	apiKey   string
	language string
	client   *http.Client
	log      *slog.Logger
}

type newsAPIResponse struct {
	Status       string           `json:"status"`
	Code         string           `json:"code"`
	Message      string           `json:"message"`
	TotalResults int              `json:"totalResults"`
	Articles     []domain.Article `json:"articles"`
}

func NewNewsAPIClient(opts NewsAPIOptions, log *slog.Logger) *NewsAPIClient {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultNewsAPITimeout
	}

	return &NewsAPIClient{
		endpoint: strings.TrimSpace(opts.Endpoint),
		apiKey:   strings.TrimSpace(opts.APIKey),
		language: strings.TrimSpace(opts.Language),
		client:   &http.Client{Timeout: timeout},
		log:      log,
	}
}

func (c *NewsAPIClient) Search(
	ctx context.Context,
	query domain.SearchQuery,
) ([]domain.Article, error) {
	query, err := normalizeQuery(query)
	if err != nil {
		return nil, fmt.Errorf("normalize query: %w", err)
	}

	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: api key is missing", domain.ErrUpstream)
	}

	reqURL, err := c.buildURL(query)
	if err != nil {
		return nil, fmt.Errorf("build URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: do request: %w", domain.ErrTransport, err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			c.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"operation", "NewsAPIClient.Search",
				"topic", query.Topic)
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: unexpected status: %d: %s",
			domain.ErrUpstream, resp.StatusCode, errorMessage(resp.Body))
	}

	var body newsAPIResponse
	if err = json.NewDecoder(io.LimitReader(resp.Body, responseBodyMaxBytes)).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", domain.ErrParse, err)
	}

	if body.Status != newsAPIStatusOK {
		message := strings.TrimSpace(body.Message)
		if message == "" {
			message = "unknown error"
		}

		return nil, fmt.Errorf("%w: api status %q (code = %s): %s",
			domain.ErrUpstream, body.Status, body.Code, message)
	}

	articles := body.Articles
	if len(articles) > query.Limit {
		articles = articles[:query.Limit]
	}

	for i := range articles {
		articles[i].Title = strings.TrimSpace(articles[i].Title)
		articles[i].URL = strings.TrimSpace(articles[i].URL)
		articles[i].Summary = ""
		articles[i].SummaryStatus = ""
	}

	return articles, nil
}

func (c *NewsAPIClient) buildURL(query domain.SearchQuery) (string, error) {
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
		q.Set("language", c.language)
	}
	q.Set("sortBy", newsAPISortBy)
	q.Set("pageSize", strconv.Itoa(query.Limit))
	q.Set("apiKey", c.apiKey)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// errorMessage extracts the NewsAPI error message from a failed response,
// falling back to the raw body prefix.
func errorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, errorBodyMaxBytes))
	if err != nil {
		return fmt.Sprintf("read body: %v", err)
	}

	var body newsAPIResponse
	if err = json.Unmarshal(raw, &body); err == nil && strings.TrimSpace(body.Message) != "" {
		return strings.TrimSpace(body.Message)
	}

	if message := strings.TrimSpace(string(raw)); message != "" {
		return message
	}

	return "empty body"
}
