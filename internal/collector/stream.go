package collector

import (
	"context"
	"log/slog"
	"time"

	"github.com/qepting91/reddit-stream-monitor/internal/domain"
	"golang.org/x/time/rate"
)

// seenCapacity bounds how many recent IDs are remembered for
// de-duplication between polls.
const seenCapacity = 301

// Stream turns repeated listing polls into an ordered, unbounded sequence
// of submissions. It cannot be restarted: once a fetch fails, every later
// call to Next returns that failure.
type Stream struct {
	collector    domain.Collector
	subreddit    string
	skipExisting bool
	limiter      *rate.Limiter
	logger       *slog.Logger

	seen    *boundedSet
	pending []domain.Submission
	primed  bool
	err     error
}

// NewStream polls sub at most once per interval. With skipExisting the
// posts present at subscription time are never yielded.
func NewStream(c domain.Collector, sub string, skipExisting bool, interval time.Duration, logger *slog.Logger) *Stream {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stream{
		collector:    c,
		subreddit:    sub,
		skipExisting: skipExisting,
		limiter:      rate.NewLimiter(rate.Every(interval), 1),
		logger:       logger,
		seen:         newBoundedSet(seenCapacity),
	}
}

// Next blocks until a new submission is available. Cancellation returns
// ctx's error and leaves the stream usable.
func (s *Stream) Next(ctx context.Context) (domain.Submission, error) {
	for len(s.pending) == 0 {
		if s.err != nil {
			return domain.Submission{}, s.err
		}
		if err := s.limiter.Wait(ctx); err != nil {
			// Wait fails early when the next poll would land past the deadline.
			<-ctx.Done()
			return domain.Submission{}, ctx.Err()
		}
		if err := s.poll(ctx); err != nil {
			if ctx.Err() != nil {
				return domain.Submission{}, ctx.Err()
			}
			s.err = domain.E(domain.KindStream, "fetch r/"+s.subreddit, err)
			return domain.Submission{}, s.err
		}
	}
	next := s.pending[0]
	s.pending = s.pending[1:]
	return next, nil
}

func (s *Stream) poll(ctx context.Context) error {
	posts, err := s.collector.FetchNewPosts(ctx, s.subreddit, maxListingLimit)
	if err != nil {
		return err
	}

	fresh := 0
	// Listings are newest first; yield oldest first.
	for i := len(posts) - 1; i >= 0; i-- {
		p := posts[i]
		if s.seen.Contains(p.ID) {
			continue
		}
		s.seen.Add(p.ID)
		if !s.primed && s.skipExisting {
			continue
		}
		s.pending = append(s.pending, p)
		fresh++
	}
	if !s.primed {
		s.logger.Debug("Stream primed", "sub", s.subreddit, "existing", len(posts), "skipped", s.skipExisting)
	}
	s.primed = true
	s.logger.Debug("Polled listing", "sub", s.subreddit, "posts", len(posts), "new", fresh)
	return nil
}

// boundedSet remembers the most recent capacity keys.
type boundedSet struct {
	keys  map[string]struct{}
	order []string
	head  int
}

func newBoundedSet(capacity int) *boundedSet {
	return &boundedSet{keys: make(map[string]struct{}, capacity), order: make([]string, 0, capacity)}
}

func (b *boundedSet) Contains(key string) bool {
	_, ok := b.keys[key]
	return ok
}

func (b *boundedSet) Add(key string) {
	if b.Contains(key) {
		return
	}
	if len(b.order) < cap(b.order) {
		b.order = append(b.order, key)
	} else {
		delete(b.keys, b.order[b.head])
		b.order[b.head] = key
		b.head = (b.head + 1) % len(b.order)
	}
	b.keys[key] = struct{}{}
}
