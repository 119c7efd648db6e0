package ingest

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"regexp"
	"strings"
)

// Regex for valid subreddit names
var subNameRegex = regexp.MustCompile(`^[A-Za-z0-9_]{3,21}$`)

// ValidSubreddit reports whether name is a well-formed subreddit name.
func ValidSubreddit(name string) bool {
	return subNameRegex.MatchString(name)
}

// LoadKeywords reads the first column of a CSV file, skipping the header
// row and blank entries. Case is preserved; matching is case-insensitive
// downstream.
func LoadKeywords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadKeywords(f)
}

func ReadKeywords(r io.Reader) ([]string, error) {
	cr := csv.NewReader(stripBOM(r))
	cr.FieldsPerRecord = -1

	var kws []string
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if line == 1 {
			continue // Skip header
		}
		if len(rec) == 0 {
			continue
		}
		if kw := strings.TrimSpace(rec[0]); kw != "" {
			kws = append(kws, kw)
		}
	}
	return kws, nil
}

func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	rdr, _, err := br.ReadRune()
	if err != nil {
		return br
	}
	if rdr != '\uFEFF' {
		br.UnreadRune()
	}
	return br
}
