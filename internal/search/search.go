package search

import (
	"context"
	"errors"
	"strings"

	"newsbrief/internal/domain"
)

const userAgent = "newsbrief/1.0 (+https://github.com/newsbrief)"

// Searcher returns article metadata for a topic, newest first.
type Searcher interface {
	Search(ctx context.Context, query domain.SearchQuery) ([]domain.Article, error)
}

func normalizeQuery(query domain.SearchQuery) (domain.SearchQuery, error) {
	query.Topic = strings.TrimSpace(query.Topic)
	if query.Topic == "" {
		return domain.SearchQuery{}, errors.New("topic is empty")
	}

	if query.Limit <= 0 {
		query.Limit = domain.DefaultResultLimit
	}
	query.Limit = min(query.Limit, domain.MaxResultLimit)

	return query, nil
}
