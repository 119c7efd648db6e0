package highlight

import (
	"bytes"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/qepting91/reddit-stream-monitor/internal/config"
	"github.com/qepting91/reddit-stream-monitor/internal/domain"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Subreddit = "golang"
	return cfg
}

func newEngine(t *testing.T, cfg config.Config) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

// tagged returns the text of every span carrying tag.
func tagged(spans []domain.Span, tag domain.Tag) []string {
	var out []string
	for _, s := range spans {
		if s.Tags.Has(tag) {
			out = append(out, s.Text)
		}
	}
	return out
}

func joined(spans []domain.Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

func TestInclude(t *testing.T) {
	sub := domain.Submission{Title: "Need HELP with goroutines"}

	cfg := testConfig()
	if !newEngine(t, cfg).Include(sub) {
		t.Fatalf("empty filter must include everything")
	}
	if !newEngine(t, cfg).Include(domain.Submission{}) {
		t.Fatalf("empty filter must include empty titles")
	}

	tests := []struct {
		filter string
		want   bool
	}{
		{"help", true},
		{"Help", true},
		{"GOROUTINES", true},
		{"with go", true},
		{"channels", false},
	}
	for _, tt := range tests {
		cfg.TitleFilter = tt.filter
		if got := newEngine(t, cfg).Include(sub); got != tt.want {
			t.Errorf("filter %q: Include = %v, want %v", tt.filter, got, tt.want)
		}
	}
}

func TestHighlightKeywordAlert(t *testing.T) {
	cfg := testConfig()
	cfg.Keywords = []string{"urgent"}
	cfg.Beep.Enabled = true
	e := newEngine(t, cfg)

	sub := domain.Submission{ID: "t1", Title: "Urgent: system down", Author: "ops", URL: "https://reddit.com/r/golang/t1"}
	if !e.Include(sub) {
		t.Fatalf("expected inclusion")
	}
	h := e.Highlight(sub)
	if !h.ShouldAlert {
		t.Fatalf("expected alert")
	}
	if got := tagged(h.TitleSpans, domain.TagKeyword); !reflect.DeepEqual(got, []string{"urgent"}) {
		t.Fatalf("keyword spans = %q", got)
	}
	if joined(h.TitleSpans) != "urgent: system down" {
		t.Fatalf("title = %q", joined(h.TitleSpans))
	}
	for _, s := range h.TitleSpans {
		if !s.Tags.Has(domain.TagTitle) {
			t.Fatalf("title span %q missing title tag", s.Text)
		}
	}
	if !reflect.DeepEqual(h.KeywordsHit, []string{"urgent"}) {
		t.Fatalf("keywords hit = %q", h.KeywordsHit)
	}
}

func TestHighlightKeywordIsLiteral(t *testing.T) {
	cfg := testConfig()
	cfg.Keywords = []string{"c++", "a.b"}
	e := newEngine(t, cfg)

	h := e.Highlight(domain.Submission{Title: "C++ vs Go", Body: "axb is not a.b"})
	if got := tagged(h.TitleSpans, domain.TagKeyword); !reflect.DeepEqual(got, []string{"c++"}) {
		t.Fatalf("title keyword spans = %q", got)
	}
	if got := tagged(h.BodySpans, domain.TagKeyword); !reflect.DeepEqual(got, []string{"a.b"}) {
		t.Fatalf("body keyword spans = %q", got)
	}
}

func TestHighlightKeywordWithSpecialLowerCase(t *testing.T) {
	cfg := testConfig()
	cfg.Keywords = []string{"İstanbul"}
	h := newEngine(t, cfg).Highlight(domain.Submission{Title: "İstanbul news"})
	if !h.ShouldAlert {
		t.Fatalf("keyword should match its own spelling in the title")
	}
	if got := tagged(h.TitleSpans, domain.TagKeyword); !reflect.DeepEqual(got, []string{strings.ToLower("İstanbul")}) {
		t.Fatalf("keyword spans = %q", got)
	}
	if !reflect.DeepEqual(h.KeywordsHit, []string{"İstanbul"}) {
		t.Fatalf("keywords hit = %q", h.KeywordsHit)
	}
}

func TestHighlightNoMatchNoAlert(t *testing.T) {
	cfg := testConfig()
	cfg.Keywords = []string{"urgent"}
	h := newEngine(t, cfg).Highlight(domain.Submission{Title: "Weekly thread", Author: "urgentbot"})
	if h.ShouldAlert {
		t.Fatalf("author name must not trigger an alert")
	}
	if len(h.KeywordsHit) != 0 {
		t.Fatalf("keywords hit = %q", h.KeywordsHit)
	}
	// The author line is still highlighted.
	if got := tagged(h.BodySpans, domain.TagKeyword); !reflect.DeepEqual(got, []string{"urgent"}) {
		t.Fatalf("body keyword spans = %q", got)
	}
}

func TestHighlightBeepAllOverride(t *testing.T) {
	cfg := testConfig()
	cfg.BeepAllPosts = true
	h := newEngine(t, cfg).Highlight(domain.Submission{Title: "anything"})
	if !h.ShouldAlert {
		t.Fatalf("beep_all_posts must force an alert")
	}
}

func TestHighlightURLs(t *testing.T) {
	cfg := testConfig()
	cfg.Keywords = []string{"docs"}
	sub := domain.Submission{
		Title:  "Links",
		Author: "gopher",
		URL:    "HTTPS://Example.com/post",
		Body:   "see (https://go.dev/docs) and http://pkg.go.dev now",
	}
	h := newEngine(t, cfg).Highlight(sub)

	want := []string{"HTTPS://Example.com/post", "https://go.dev/", "docs", "http://pkg.go.dev"}
	if got := tagged(h.BodySpans, domain.TagURL); !reflect.DeepEqual(got, want) {
		t.Fatalf("url spans = %q, want %q", got, want)
	}
	for _, s := range h.BodySpans {
		if s.Text == "docs" && !s.Tags.Has(domain.TagKeyword) {
			t.Fatalf("keyword inside URL lost its keyword tag")
		}
	}
}

func TestHighlightBodyLayout(t *testing.T) {
	cfg := testConfig()
	sub := domain.Submission{
		Title:           "Title",
		Author:          "gopher",
		AuthorFlairText: "Helper (+45/100)",
		URL:             "https://reddit.com/x",
		Body:            "Hello WORLD",
	}
	h := newEngine(t, cfg).Highlight(sub)
	want := "User: gopher [helper (+45/100)]\nhttps://reddit.com/x\n\nhello world"
	if got := joined(h.BodySpans); got != want {
		t.Fatalf("body = %q, want %q", got, want)
	}

	sub.AuthorFlairText = ""
	h = newEngine(t, cfg).Highlight(sub)
	if got := joined(h.BodySpans); !strings.HasPrefix(got, "User: gopher\n") {
		t.Fatalf("body without flair = %q", got)
	}
}

func TestHighlightFlair(t *testing.T) {
	cfg := testConfig()
	sub := domain.Submission{Title: "t", Author: "gopher", AuthorFlairText: "Helper (+45/100)"}

	h := newEngine(t, cfg).Highlight(sub)
	if !h.HasFlairColor || h.FlairColor != domain.FlairBlue {
		t.Fatalf("flair color = %v (%v), want blue", h.FlairColor, h.HasFlairColor)
	}
	if got := tagged(h.BodySpans, domain.TagFlair); !reflect.DeepEqual(got, []string{"[helper (+45/100)]"}) {
		t.Fatalf("flair spans = %q", got)
	}

	cfg.ColorFlairs = false
	h = newEngine(t, cfg).Highlight(sub)
	if h.HasFlairColor {
		t.Fatalf("color_flairs disabled must not classify")
	}
	if got := tagged(h.BodySpans, domain.TagFlair); len(got) != 0 {
		t.Fatalf("flair spans with coloring disabled = %q", got)
	}
}

func TestHighlightMalformedFlairLogsAndDefaults(t *testing.T) {
	var logs bytes.Buffer
	e, err := NewEngine(testConfig(), slog.New(slog.NewTextHandler(&logs, nil)))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	h := e.Highlight(domain.Submission{ID: "abc", Title: "t", AuthorFlairText: "no score here"})
	if !h.HasFlairColor || h.FlairColor != domain.FlairWhite {
		t.Fatalf("malformed flair should default to white, got %v", h.FlairColor)
	}
	if !strings.Contains(logs.String(), "Failed to parse flair score") {
		t.Fatalf("expected a warning, logs: %s", logs.String())
	}
}

func TestHighlightMissingFlairIsWhite(t *testing.T) {
	h := newEngine(t, testConfig()).Highlight(domain.Submission{Title: "t"})
	if !h.HasFlairColor || h.FlairColor != domain.FlairWhite {
		t.Fatalf("missing flair = %v, want white", h.FlairColor)
	}
	if got := tagged(h.BodySpans, domain.TagFlair); len(got) != 0 {
		t.Fatalf("no flair label expected, got %q", got)
	}
}

func TestBuildSpans(t *testing.T) {
	spans := buildSpans("abcdef", []mark{
		{start: 1, end: 4, tag: domain.TagURL},
		{start: 3, end: 5, tag: domain.TagKeyword},
	})
	want := []domain.Span{
		{Text: "a"},
		{Text: "bc", Tags: domain.TagURL},
		{Text: "d", Tags: domain.TagURL | domain.TagKeyword},
		{Text: "e", Tags: domain.TagKeyword},
		{Text: "f"},
	}
	if !reflect.DeepEqual(spans, want) {
		t.Fatalf("spans = %+v, want %+v", spans, want)
	}
	if buildSpans("", nil) != nil {
		t.Fatalf("empty text should have no spans")
	}
}
