package collector

import (
	"fmt"
	"math"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/qepting91/reddit-stream-monitor/internal/domain"
)

// maxListingLimit is the most posts Reddit returns per listing page.
const maxListingLimit = 100

type listingOptions struct {
	Limit   int `url:"limit,omitempty"`
	RawJSON int `url:"raw_json,omitempty"`
}

// newPostsPath builds the relative path of a subreddit's "new" listing.
// raw_json=1 stops Reddit from HTML-escaping the text fields.
func newPostsPath(sub, suffix string, limit int) (string, error) {
	if limit <= 0 || limit > maxListingLimit {
		limit = maxListingLimit
	}
	v, err := query.Values(listingOptions{Limit: limit, RawJSON: 1})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("r/%s/new%s?%s", sub, suffix, v.Encode()), nil
}

// redditListing is the subset of a listing response the monitor uses.
// The go-reddit Post type has no flair or self text, so both clients
// decode into this instead.
type redditListing struct {
	Data struct {
		Children []struct {
			Data listingPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type listingPost struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Selftext        string  `json:"selftext"`
	Subreddit       string  `json:"subreddit_name_prefixed"`
	Author          string  `json:"author"`
	AuthorFlairText string  `json:"author_flair_text"`
	URL             string  `json:"url"`
	Score           int     `json:"score"`
	NumComments     int     `json:"num_comments"`
	CreatedUTC      float64 `json:"created_utc"`
}

func (l *redditListing) submissions() []domain.Submission {
	var result []domain.Submission
	for _, child := range l.Data.Children {
		d := child.Data
		result = append(result, domain.Submission{
			ID:              d.ID,
			Title:           d.Title,
			Body:            d.Selftext,
			Subreddit:       d.Subreddit,
			Author:          d.Author,
			AuthorFlairText: d.AuthorFlairText,
			URL:             d.URL,
			Score:           d.Score,
			CommentCount:    d.NumComments,
			CreatedUTC:      fromUnix(d.CreatedUTC),
		})
	}
	return result
}

func fromUnix(sec float64) time.Time {
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC()
}
