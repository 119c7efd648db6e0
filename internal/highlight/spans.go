package highlight

import "github.com/qepting91/reddit-stream-monitor/internal/domain"

type mark struct {
	start, end int
	tag        domain.Tag
}

func marksFor(marks []mark, locs [][]int, tag domain.Tag) []mark {
	for _, loc := range locs {
		marks = append(marks, mark{start: loc[0], end: loc[1], tag: tag})
	}
	return marks
}

// buildSpans cuts text at every mark boundary. Each span carries the
// union of the tags covering it, so a keyword inside a URL keeps both.
func buildSpans(text string, marks []mark) []domain.Span {
	if text == "" {
		return nil
	}
	tags := make([]domain.Tag, len(text))
	for _, m := range marks {
		start, end := max(m.start, 0), min(m.end, len(text))
		for i := start; i < end; i++ {
			tags[i] |= m.tag
		}
	}

	var spans []domain.Span
	begin := 0
	for i := 1; i <= len(text); i++ {
		if i == len(text) || tags[i] != tags[begin] {
			spans = append(spans, domain.Span{Text: text[begin:i], Tags: tags[begin]})
			begin = i
		}
	}
	return spans
}
