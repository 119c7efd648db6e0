package highlight

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/qepting91/reddit-stream-monitor/internal/domain"
)

const (
	maxFlairScore   = 100
	flairBucketSize = 20
)

// FlairParseError explains why a flair carried no usable score.
type FlairParseError struct {
	Flair  string
	Reason string
	Err    error
}

func (e *FlairParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("flair %q: %s: %v", e.Flair, e.Reason, e.Err)
	}
	return fmt.Sprintf("flair %q: %s", e.Flair, e.Reason)
}

func (e *FlairParseError) Unwrap() error { return e.Err }

// ParseFlairScore reads the score out of flair text such as
// "Helper (+45/100)" or "Helper +45 (trusted)". The text must contain a
// '(' and a '+'; the score is the digit run right after the first '+'.
// Scores above 100, however long, are clamped. Signs are not accepted.
func ParseFlairScore(flair string) (int, error) {
	if !strings.Contains(flair, "(") {
		return 0, &FlairParseError{Flair: flair, Reason: "missing '('"}
	}
	_, after, ok := strings.Cut(flair, "+")
	if !ok {
		return 0, &FlairParseError{Flair: flair, Reason: "missing '+'"}
	}
	after = strings.TrimLeft(after, " ")
	if i := strings.IndexAny(after, " /()"); i >= 0 {
		after = after[:i]
	}
	if !isDigits(after) {
		return 0, &FlairParseError{Flair: flair, Reason: "score is not a number"}
	}
	score, err := strconv.Atoi(after)
	if errors.Is(err, strconv.ErrRange) {
		return maxFlairScore, nil
	}
	if err != nil {
		return 0, &FlairParseError{Flair: flair, Reason: "score is not a number", Err: err}
	}
	return min(score, maxFlairScore), nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ClassifyFlair maps flair text to a color class. Empty flair is white
// without an error; unparseable flair is white with a *FlairParseError.
func ClassifyFlair(flair string) (domain.FlairColor, error) {
	if strings.TrimSpace(flair) == "" {
		return domain.FlairWhite, nil
	}
	score, err := ParseFlairScore(flair)
	if err != nil {
		return domain.FlairWhite, err
	}
	return ColorForScore(score), nil
}

// ColorForScore buckets a clamped score in steps of 20.
func ColorForScore(score int) domain.FlairColor {
	if score < 0 {
		return domain.FlairWhite
	}
	switch c := domain.FlairColor(min(score, maxFlairScore) / flairBucketSize); c {
	case domain.FlairWhite, domain.FlairGreen, domain.FlairBlue,
		domain.FlairPurple, domain.FlairOrange, domain.FlairRed:
		return c
	}
	return domain.FlairWhite
}
