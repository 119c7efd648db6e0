// Package highlight decides which submissions are shown, how their text
// is marked up and whether they should sound an alert.
package highlight

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/qepting91/reddit-stream-monitor/internal/config"
	"github.com/qepting91/reddit-stream-monitor/internal/domain"
)

var urlPattern = regexp.MustCompile(`(?i)https?://[^\s)]+`)

type keyword struct {
	word string
	re   *regexp.Regexp
}

// Engine applies the configured filter and highlight rules. It holds no
// mutable state and never fails on malformed submission data.
type Engine struct {
	titleFilter string
	keywords    []keyword
	beepAll     bool
	colorFlairs bool
	logger      *slog.Logger
}

// NewEngine compiles the keyword patterns. Keywords are lower-cased the
// same way the displayed text is, so a keyword always matches its own
// spelling in a title.
func NewEngine(cfg config.Config, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		titleFilter: strings.ToLower(cfg.TitleFilter),
		beepAll:     cfg.BeepAllPosts,
		colorFlairs: cfg.ColorFlairs,
		logger:      logger,
	}
	for _, kw := range cfg.Keywords {
		if kw == "" {
			continue
		}
		re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(strings.ToLower(kw)))
		if err != nil {
			return nil, domain.E(domain.KindConfig, "compile keyword", fmt.Errorf("keyword %q: %w", kw, err))
		}
		e.keywords = append(e.keywords, keyword{word: kw, re: re})
	}
	return e, nil
}

// Include reports whether the title passes the title filter. An empty
// filter matches everything.
func (e *Engine) Include(s domain.Submission) bool {
	return e.titleFilter == "" || strings.Contains(strings.ToLower(s.Title), e.titleFilter)
}

// Highlight builds the displayed title and body and marks them up.
// Keywords are searched in the same lower-cased text that is displayed,
// so spans always line up with what is rendered. Only the title and the
// self text decide whether to alert.
func (e *Engine) Highlight(s domain.Submission) domain.HighlightedSubmission {
	title := strings.ToLower(s.Title)
	selftext := strings.ToLower(s.Body)
	flair := strings.TrimSpace(s.AuthorFlairText)

	header := "User: " + s.Author
	if flair != "" {
		header += " [" + strings.ToLower(flair) + "]"
	}
	body := header + "\n" + s.URL + "\n\n" + selftext

	titleMarks := []mark{{start: 0, end: len(title), tag: domain.TagTitle}}
	bodyMarks := marksFor(nil, urlPattern.FindAllStringIndex(body, -1), domain.TagURL)

	out := domain.HighlightedSubmission{
		Submission:  s,
		ShouldAlert: e.beepAll,
	}
	for _, kw := range e.keywords {
		inTitle := kw.re.FindAllStringIndex(title, -1)
		titleMarks = marksFor(titleMarks, inTitle, domain.TagKeyword)
		bodyMarks = marksFor(bodyMarks, kw.re.FindAllStringIndex(body, -1), domain.TagKeyword)

		if len(inTitle) > 0 || kw.re.MatchString(selftext) {
			out.ShouldAlert = true
			out.KeywordsHit = append(out.KeywordsHit, kw.word)
		}
	}

	if e.colorFlairs {
		color, err := ClassifyFlair(s.AuthorFlairText)
		if err != nil {
			e.logger.Warn("Failed to parse flair score", "id", s.ID, "flair", s.AuthorFlairText, "err", err)
		}
		out.FlairColor = color
		out.HasFlairColor = true
		if flair != "" {
			label := "[" + strings.ToLower(flair) + "]"
			bodyMarks = marksFor(bodyMarks, indexAll(body, label), domain.TagFlair)
		}
	}

	out.TitleSpans = buildSpans(title, titleMarks)
	out.BodySpans = buildSpans(body, bodyMarks)
	return out
}

func indexAll(s, substr string) [][]int {
	var locs [][]int
	for off := 0; off < len(s); {
		i := strings.Index(s[off:], substr)
		if i < 0 {
			break
		}
		start := off + i
		locs = append(locs, []int{start, start + len(substr)})
		off = start + len(substr)
	}
	return locs
}
