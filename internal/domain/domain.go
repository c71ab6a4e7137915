package domain

import (
	"errors"
	"time"
)

const (
	DefaultResultLimit = 5
	MaxResultLimit     = 100
)

var (
	ErrTransport       = errors.New("transport error")
	ErrUpstream        = errors.New("upstream error")
	ErrContentTooShort = errors.New("content too short")
	ErrParse           = errors.New("parse error")
)

type SummaryStatus string

const (
	SummaryStatusSummarized          SummaryStatus = "summarized"
	SummaryStatusInsufficientContent SummaryStatus = "insufficient_content"
	SummaryStatusFailed              SummaryStatus = "failed"
)

type Source struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// Article is a search result. Summary and SummaryStatus are filled in by
// the pipeline, everything else comes from the search provider as is.
type Article struct {
	Title         string        `json:"title"`
	URL           string        `json:"url"`
	PublishedAt   time.Time     `json:"publishedAt"`
	Source        Source        `json:"source"`
	Author        string        `json:"author,omitempty"`
	Description   string        `json:"description,omitempty"`
	URLToImage    string        `json:"urlToImage,omitempty"`
	Content       string        `json:"content,omitempty"`
	Summary       string        `json:"summary"`
	SummaryStatus SummaryStatus `json:"summaryStatus,omitempty"`
}

type SearchQuery struct {
	Topic string
	Limit int
}
