package summarizer

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"newsbrief/internal/domain"
)

const (
	// MinTextLength is the shortest trimmed text, in characters, worth
	// summarising.
	MinTextLength = 100
	// MaxTextLength caps the text submitted to the model, in characters.
	MaxTextLength = 4000

	InsufficientContent = "insufficient content to summarize"
	GenerationFailed    = "summary generation failed"
)

// Guard applies the length policy around a Summarizer and turns every
// failure into one of the fixed placeholder summaries. The returned error
// is for reporting only, the summary is always usable.
type Guard struct {
	summarizer Summarizer
}

// NewGuard wraps s. A nil s is allowed and makes every eligible text fail
// with GenerationFailed.
func NewGuard(s Summarizer) *Guard {
	return &Guard{summarizer: s}
}

func (g *Guard) Summarize(ctx context.Context, input Input) (string, error) {
	if !Sufficient(input.Text) {
		return InsufficientContent, fmt.Errorf(
			"%w: %d characters (min = %d)",
			domain.ErrContentTooShort,
			utf8.RuneCountInString(strings.TrimSpace(input.Text)),
			MinTextLength,
		)
	}

	if g == nil || g.summarizer == nil {
		return GenerationFailed, fmt.Errorf("%w: summarizer is not configured", domain.ErrUpstream)
	}

	summary, err := g.summarizer.Summarize(ctx, Input{
		Text:      Truncate(strings.TrimSpace(input.Text)),
		SourceURL: input.SourceURL,
	})
	if err != nil {
		return GenerationFailed, fmt.Errorf("summarize: %w", err)
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		return GenerationFailed, fmt.Errorf("%w: summary is empty", domain.ErrParse)
	}

	return summary, nil
}

// Sufficient reports whether text is long enough to be summarised.
func Sufficient(text string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) >= MinTextLength
}

// Truncate cuts text to at most MaxTextLength characters without splitting
// a multi-byte character.
func Truncate(text string) string {
	if utf8.RuneCountInString(text) <= MaxTextLength {
		return text
	}

	runes := []rune(text)

	return string(runes[:MaxTextLength])
}
