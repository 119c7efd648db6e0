package domain

import (
	"context"
	"time"
)

// Submission is a single post delivered by the stream
type Submission struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Body            string    `json:"selftext"`
	Subreddit       string    `json:"subreddit"`
	Author          string    `json:"author"`
	AuthorFlairText string    `json:"author_flair_text,omitempty"`
	URL             string    `json:"url"`
	Score           int       `json:"score"`
	CommentCount    int       `json:"comment_count"`
	CreatedUTC      time.Time `json:"created_utc"`
}

// Tag marks how a span of text should be styled. Tags are a bitmask so
// overlapping highlights compose.
type Tag uint8

const (
	TagTitle Tag = 1 << iota
	TagURL
	TagKeyword
	TagFlair
)

func (t Tag) Has(flag Tag) bool { return t&flag != 0 }

// Span is a run of text carrying a single combination of tags
type Span struct {
	Text string
	Tags Tag
}

// FlairColor is the color class derived from an author's flair score
type FlairColor int

const (
	FlairWhite FlairColor = iota
	FlairGreen
	FlairBlue
	FlairPurple
	FlairOrange
	FlairRed
)

// RGB is a 24-bit terminal color
type RGB struct{ R, G, B uint8 }

var flairPalette = [...]struct {
	name string
	rgb  RGB
}{
	FlairWhite:  {"white", RGB{255, 255, 255}},
	FlairGreen:  {"green", RGB{0, 255, 0}},
	FlairBlue:   {"blue", RGB{0, 0, 255}},
	FlairPurple: {"purple", RGB{128, 0, 128}},
	FlairOrange: {"orange", RGB{255, 165, 0}},
	FlairRed:    {"red", RGB{255, 0, 0}},
}

func (c FlairColor) valid() bool { return c >= FlairWhite && int(c) < len(flairPalette) }

func (c FlairColor) String() string {
	if !c.valid() {
		return "white"
	}
	return flairPalette[c].name
}

// RGB returns the display color; unknown classes render white.
func (c FlairColor) RGB() RGB {
	if !c.valid() {
		return flairPalette[FlairWhite].rgb
	}
	return flairPalette[c].rgb
}

// HighlightedSubmission is the engine's per-submission output, consumed
// once by the presenter and the alerter.
type HighlightedSubmission struct {
	Submission    Submission
	TitleSpans    []Span
	BodySpans     []Span
	ShouldAlert   bool
	FlairColor    FlairColor
	HasFlairColor bool
	KeywordsHit   []string
}

// Hit is the record appended to the hit log for every displayed submission
type Hit struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Subreddit   string    `json:"subreddit"`
	Author      string    `json:"author"`
	Flair       string    `json:"flair,omitempty"`
	FlairColor  string    `json:"flair_color,omitempty"`
	URL         string    `json:"url"`
	Alerted     bool      `json:"alerted"`
	KeywordsHit []string  `json:"keywords_hit,omitempty"`
	CreatedUTC  time.Time `json:"created_utc"`
}

// NewHit summarizes a highlighted submission for the hit log.
func NewHit(h HighlightedSubmission) Hit {
	s := h.Submission
	hit := Hit{
		ID:          s.ID,
		Title:       s.Title,
		Subreddit:   s.Subreddit,
		Author:      s.Author,
		Flair:       s.AuthorFlairText,
		URL:         s.URL,
		Alerted:     h.ShouldAlert,
		KeywordsHit: h.KeywordsHit,
		CreatedUTC:  s.CreatedUTC,
	}
	if h.HasFlairColor {
		hit.FlairColor = h.FlairColor.String()
	}
	return hit
}

// Collector defines the interface for data fetching. Posts are returned
// newest first.
type Collector interface {
	FetchNewPosts(ctx context.Context, subreddit string, limit int) ([]Submission, error)
}
