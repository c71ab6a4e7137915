package article

import "testing"

func TestExtractParagraphsPrefersArticle(t *testing.T) {
	body := []byte(`<html><body>
		<p>Cookie banner</p>
		<main><p>Main text</p></main>
		<article><p> First   paragraph </p><div>skipped</div><p>Second
		paragraph</p></article>
	</body></html>`)

	got, err := extractParagraphs(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := "First paragraph Second paragraph"; got != want {
		t.Fatalf("unexpected text: got %q want %q", got, want)
	}
}

func TestExtractParagraphsFallsBackToMainThenBody(t *testing.T) {
	mainBody := []byte(`<html><body><p>outside</p><main><p>inside main</p></main></body></html>`)
	if got, _ := extractParagraphs(mainBody); got != "inside main" {
		t.Fatalf("expected main paragraphs, got %q", got)
	}

	plainBody := []byte(`<html><body><p>one</p><div><p>two</p></div></body></html>`)
	if got, _ := extractParagraphs(plainBody); got != "one two" {
		t.Fatalf("expected body paragraphs, got %q", got)
	}
}

func TestExtractParagraphsNoParagraphs(t *testing.T) {
	got, err := extractParagraphs([]byte(`<html><body><div>no paragraphs</div></body></html>`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty text, got %q", got)
	}
}

func TestNormalizeSpace(t *testing.T) {
	if got := normalizeSpace("  a \n\t b  c "); got != "a b c" {
		t.Fatalf("unexpected normalized text: %q", got)
	}
}
