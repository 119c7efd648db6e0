// Package presenter renders highlighted submissions as bordered panels on
// the console.
package presenter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/qepting91/reddit-stream-monitor/internal/domain"
	"golang.org/x/term"
)

const defaultMaxWidth = 100

var (
	keywordColor   = lipgloss.Color("#ff0000")
	urlColor       = lipgloss.Color("#0000ff")
	timestampColor = lipgloss.Color("#00ff00")
	borderColor    = lipgloss.Color("#ffffff")
)

// Presenter writes one timestamp line and one panel per submission.
type Presenter struct {
	out      io.Writer
	renderer *lipgloss.Renderer
	location *time.Location
	maxWidth int
}

// New binds a presenter to w. Color output follows what w supports, so a
// plain buffer gets unstyled text.
func New(w io.Writer) *Presenter {
	return &Presenter{
		out:      w,
		renderer: lipgloss.NewRenderer(w),
		location: time.Local,
		maxWidth: panelWidth(w),
	}
}

// panelWidth narrows panels to the terminal when w is one.
func panelWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultMaxWidth
	}
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil || cols <= 4 {
		return defaultMaxWidth
	}
	// leave room for the border
	return min(defaultMaxWidth, cols-2)
}

// Present renders h. The title sits in the panel's top border and the
// body inside it. A failed write is a render error; the caller moves on
// to the next submission.
func (p *Presenter) Present(h domain.HighlightedSubmission) error {
	stamp := p.renderer.NewStyle().Bold(true).Foreground(timestampColor).
		Render(h.Submission.CreatedUTC.In(p.location).Format("03:04 PM"))

	title := p.renderSpans(h.TitleSpans, h)
	body := p.renderSpans(h.BodySpans, h)

	// padding counts toward the width; the title needs its "─ " and " ─"
	width := max(lipgloss.Width(body)+2, lipgloss.Width(title)+4)
	box := p.renderer.NewStyle().
		Border(lipgloss.RoundedBorder(), false, true, true, true).
		BorderForeground(borderColor).
		Padding(1, 1).
		Width(min(width, p.maxWidth)).
		Render(body)
	top := p.topBorder(title, lipgloss.Width(box)-2)

	if _, err := fmt.Fprintf(p.out, "%s\n%s\n%s\n", stamp, top, box); err != nil {
		return domain.E(domain.KindRender, "present "+h.Submission.ID, err)
	}
	return nil
}

// topBorder draws the upper edge of a panel whose inner width is inner,
// with title centered in it and truncated when it does not fit.
func (p *Presenter) topBorder(title string, inner int) string {
	b := lipgloss.RoundedBorder()
	edge := p.renderer.NewStyle().Foreground(borderColor)
	if title == "" || inner < 5 {
		return edge.Render(b.TopLeft + strings.Repeat(b.Top, max(inner, 0)) + b.TopRight)
	}
	title = ansi.Truncate(title, inner-4, "…")
	fill := inner - lipgloss.Width(title) - 2
	left := fill / 2
	return edge.Render(b.TopLeft+strings.Repeat(b.Top, left)+" ") +
		title +
		edge.Render(" "+strings.Repeat(b.Top, fill-left)+b.TopRight)
}

func (p *Presenter) renderSpans(spans []domain.Span, h domain.HighlightedSubmission) string {
	var b strings.Builder
	for _, s := range spans {
		if s.Tags == 0 {
			b.WriteString(s.Text)
			continue
		}
		st := p.style(s.Tags, h)
		// Render line by line so lipgloss does not pad multi-line spans.
		for i, line := range strings.Split(s.Text, "\n") {
			if i > 0 {
				b.WriteByte('\n')
			}
			if line != "" {
				b.WriteString(st.Render(line))
			}
		}
	}
	return b.String()
}

// style layers tag styles; keyword styling wins over flair, flair over URL.
func (p *Presenter) style(tags domain.Tag, h domain.HighlightedSubmission) lipgloss.Style {
	st := p.renderer.NewStyle()
	if tags.Has(domain.TagTitle) {
		st = st.Bold(true)
	}
	if tags.Has(domain.TagURL) {
		st = st.Bold(true).Foreground(urlColor)
	}
	if tags.Has(domain.TagFlair) && h.HasFlairColor {
		st = st.Foreground(hexColor(h.FlairColor.RGB()))
	}
	if tags.Has(domain.TagKeyword) {
		st = st.Bold(true).Italic(true).Foreground(keywordColor)
	}
	return st
}

func hexColor(c domain.RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
