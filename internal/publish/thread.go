// ABOUTME: Publishes a thread as an ordered reply chain with bounded retry on rate limits.
// ABOUTME: SendWithRetry handles one segment; PostThread stops at the first terminal failure.
package publish

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/2389-research/seam/internal/logging"
	"github.com/2389-research/seam/internal/models"
)

const (
	// MaxAttempts is the number of tries per segment, so at most MaxAttempts-1 waits.
	MaxAttempts = 3
	// PostDelay is the pause between consecutive successful posts.
	PostDelay = time.Second
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the real-clock Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Publisher drives a Poster through a whole thread.
type Publisher struct {
	poster      Poster
	sleep       Sleeper
	delay       time.Duration
	maxAttempts int
	log         *logging.Logger
}

// Option customizes a Publisher.
type Option func(*Publisher)

// WithSleeper replaces the clock used for retry waits and post delays.
func WithSleeper(s Sleeper) Option {
	return func(p *Publisher) { p.sleep = s }
}

// WithDelay sets the pause between successful posts.
func WithDelay(d time.Duration) Option {
	return func(p *Publisher) { p.delay = d }
}

// WithLogger sets the publisher logger.
func WithLogger(l *logging.Logger) Option {
	return func(p *Publisher) { p.log = l }
}

// NewPublisher creates a publisher over poster.
func NewPublisher(poster Poster, opts ...Option) *Publisher {
	p := &Publisher{
		poster:      poster,
		sleep:       Sleep,
		delay:       PostDelay,
		maxAttempts: MaxAttempts,
		log:         logging.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SendWithRetry posts one segment, waiting out rate limits up to MaxAttempts tries.
// Any other failure is returned immediately.
func (p *Publisher) SendWithRetry(ctx context.Context, text, replyTo string) (*models.Post, error) {
	for attempt := 1; ; attempt++ {
		post, err := p.poster.Post(ctx, text, replyTo)
		if err == nil {
			return post, nil
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Kind != KindRateLimited || attempt >= p.maxAttempts {
			return nil, err
		}

		wait := apiErr.RetryAfter
		if wait <= 0 {
			wait = DefaultRetryAfter
		}
		p.log.Info().Int("attempt", attempt).Dur("wait", wait).Msg("rate limited, waiting before retry")
		if err := p.sleep(ctx, wait); err != nil {
			return nil, fmt.Errorf("stopped while waiting out rate limit: %w", err)
		}
	}
}

// PostThread publishes segments in order, each replying to the previous one.
// It stops at the first failure; the results say exactly how far it got.
func (p *Publisher) PostThread(ctx context.Context, segments []string) []models.PublishResult {
	results := make([]models.PublishResult, 0, len(segments))
	replyTo := ""

	for i, text := range segments {
		post, err := p.SendWithRetry(ctx, text, replyTo)
		if err != nil {
			p.log.Warn().Int("segment", i+1).Err(err).Msg("thread stopped")
			results = append(results, models.PublishResult{Index: i, Error: err.Error()})
			break
		}
		results = append(results, models.PublishResult{Index: i, Success: true, Post: post})
		replyTo = post.ID

		if i < len(segments)-1 && p.delay > 0 {
			if err := p.sleep(ctx, p.delay); err != nil {
				results = append(results, models.PublishResult{Index: i + 1, Error: fmt.Sprintf("stopped before posting: %v", err)})
				break
			}
		}
	}
	return results
}

// Succeeded counts successful results.
func Succeeded(results []models.PublishResult) int {
	n := 0
	for _, r := range results {
		if r.Success {
			n++
		}
	}
	return n
}

// Summary reports a run as "Posted N of M" plus the first failure, if any.
func Summary(results []models.PublishResult, total int) string {
	n := Succeeded(results)
	for _, r := range results {
		if !r.Success {
			return fmt.Sprintf("Posted %d of %d, failed at segment %d: %s", n, total, r.Index+1, r.Error)
		}
	}
	return fmt.Sprintf("Posted %d of %d", n, total)
}

// ThreadURL links to the first post of a published thread.
func ThreadURL(webURL, screenName string, results []models.PublishResult) string {
	if len(results) == 0 || results[0].PostID() == "" || screenName == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/status/%s", strings.TrimRight(webURL, "/"), screenName, results[0].PostID())
}
