package article

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"mvdan.cc/xurls/v2"

	"newsbrief/internal/domain"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"

	defaultFetchTimeout = 10 * time.Second
	maxBodyBytes        = 5 << 20
	maxRedirects        = 10
)

// Fetcher downloads article pages and extracts their readable text.
type Fetcher struct {
	client *http.Client
	urlRe  *regexp.Regexp
	log    *slog.Logger
}

func NewFetcher(timeout time.Duration, log *slog.Logger) (*Fetcher, error) {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}

	urlRe, err := xurls.StrictMatchingScheme(`https?://`)
	if err != nil {
		return nil, fmt.Errorf("create regexp: %w", err)
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		urlRe: urlRe,
		log:   log,
	}, nil
}

// FetchText returns the readable text of the page at rawURL. Empty or
// malformed URLs yield "" and no error without touching the network. On
// failure the text is always "".
func (f *Fetcher) FetchText(ctx context.Context, rawURL string) (string, error) {
	pageURL, ok := f.parseURL(rawURL)
	if !ok {
		return "", nil
	}

	body, err := f.fetchBody(ctx, pageURL)
	if err != nil {
		return "", err
	}

	if text := extractReadable(body, pageURL); text != "" {
		return text, nil
	}

	text, err := extractParagraphs(body)
	if err != nil {
		return "", fmt.Errorf("%w: extract paragraphs: %w", domain.ErrParse, err)
	}
	if text == "" {
		return "", fmt.Errorf("%w: no readable text", domain.ErrParse)
	}

	return text, nil
}

func (f *Fetcher) parseURL(rawURL string) (*url.URL, bool) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, false
	}

	if loc := f.urlRe.FindStringIndex(rawURL); loc == nil || loc[0] != 0 {
		return nil, false
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, false
	}

	return u, true
}

func (f *Fetcher) fetchBody(ctx context.Context, pageURL *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req) //nolint:gosec // URL comes from the search provider
	if err != nil {
		return nil, fmt.Errorf("%w: do request: %w", domain.ErrTransport, err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			f.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"url", pageURL.String(),
				"operation", "fetchBody")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: do request: unexpected status: %d", domain.ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", domain.ErrTransport, err)
	}

	return body, nil
}

func extractReadable(body []byte, pageURL *url.URL) string {
	parsed, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return ""
	}

	return normalizeSpace(parsed.TextContent)
}

// extractParagraphs joins the <p> texts of the first article, main or body
// element.
func extractParagraphs(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create document from reader: %w", err)
	}

	var container *goquery.Selection
	for _, selector := range []string{"article", "main", "body"} {
		if found := doc.Find(selector).First(); found.Length() > 0 {
			container = found
			break
		}
	}
	if container == nil {
		return "", nil
	}

	var paragraphs []string
	container.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := normalizeSpace(p.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	return strings.Join(paragraphs, " "), nil
}

func normalizeSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
