package mirror

import (
	"context"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	log "github.com/sirupsen/logrus"
)

const (
	defaultUserAgent = "Mozilla/5.0 (compatible; kantan-tube/1.0)"
	maxBodySize      = 16 << 20
	maxErrorBodySize = 4 << 10
	maxBackoffStep   = 5 * time.Second
	noElapsedLimit   = time.Duration(math.MaxInt64)
)

// Config controls how one logical call walks the mirror pool.
type Config struct {
	Strategy       Strategy
	RetryBudget    int
	AttemptTimeout time.Duration
	Backoff        time.Duration
	UserAgent      string
}

// URLMapper rewrites a request url right before it is sent.
type URLMapper interface {
	MapURL(u string) string
}

// Decoder inspects a successful response body. A returned error marks the
// mirror as failed, unless it wraps ErrNotFound which ends the call.
type Decoder func(body []byte) error

// Executor performs sequential, first-success-wins requests against a mirror pool.
// It holds no per-call state and is safe for concurrent use.
type Executor struct {
	cl       *http.Client
	registry *Registry
	cfg      Config
	health   *Health
	mapper   URLMapper
	shuffle  shuffleFunc
}

// NewExecutor creates an executor; h may be nil.
func NewExecutor(cl *http.Client, r *Registry, cfg Config, h *Health) *Executor {
	if cfg.Strategy == "" {
		cfg.Strategy = StrategySequential
	}
	return &Executor{
		cl:       cl,
		registry: r,
		cfg:      cfg,
		health:   h,
		shuffle:  rand.Shuffle,
	}
}

// WithURLMapper makes outgoing requests go through m.
func (s *Executor) WithURLMapper(m URLMapper) *Executor {
	s.mapper = m
	return s
}

// Execute returns the raw body of the first successful mirror response.
func (s *Executor) Execute(ctx context.Context, path string) ([]byte, error) {
	return s.Fetch(ctx, path, nil)
}

// Fetch is Execute with a decoder that may reject a successful body,
// so that a differently-behaving mirror gets a chance.
func (s *Executor) Fetch(ctx context.Context, path string, decode Decoder) ([]byte, error) {
	candidates := s.candidates(ctx)
	if len(candidates) == 0 {
		return nil, &ExhaustedError{Path: path}
	}
	l := log.WithFields(log.Fields{
		"call_id": uuid.NewV4().String(),
		"path":    path,
	})

	var (
		attempts []Attempt
		next     int
	)
	operation := func() ([]byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, backoff.Permanent(err)
		}
		m := candidates[next]
		next++
		started := time.Now()
		body, err := s.attempt(ctx, m, path, decode)
		if err == nil {
			s.health.Succeed(ctx, m)
			l.WithFields(log.Fields{
				"mirror":  m,
				"attempt": next,
			}).Debug("mirror answered")
			return body, nil
		}
		if errors.Is(err, ErrNotFound) {
			l.WithField("mirror", m).Debug("mirror reported resource absent")
			return nil, backoff.Permanent(err)
		}
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		attempts = append(attempts, Attempt{
			Mirror:   m,
			Err:      err,
			Duration: time.Since(started),
		})
		s.health.Fail(ctx, m)
		l.WithError(err).WithFields(log.Fields{
			"mirror":  m,
			"attempt": next,
			"of":      len(candidates),
		}).Warn("mirror attempt failed")
		return nil, err
	}

	body, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(newLinearBackOff(s.cfg.Backoff)),
		backoff.WithMaxTries(uint(len(candidates))),
		backoff.WithMaxElapsedTime(noElapsedLimit),
	)
	if err == nil {
		return body, nil
	}
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if cerr := ctx.Err(); cerr != nil {
		return nil, cerr
	}
	exhausted := &ExhaustedError{Path: path, Attempts: attempts}
	l.WithField("attempts", len(attempts)).Error("all mirrors exhausted")
	return nil, exhausted
}

func (s *Executor) candidates(ctx context.Context) []string {
	c := s.cfg.Strategy.order(s.registry.List(), s.shuffle)
	c = s.health.Arrange(ctx, c)
	return limit(c, s.cfg.RetryBudget)
}

func (s *Executor) attempt(ctx context.Context, base, path string, decode Decoder) ([]byte, error) {
	if s.cfg.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.AttemptTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mapURL(s.mapper, Join(base, path)), nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")
	if s.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", s.cfg.UserAgent)
	}

	resp, err := s.cl.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       shorten(strings.TrimSpace(string(b)), 200),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &TransportError{Err: errors.Wrap(err, "failed to read body")}
	}
	if decode == nil {
		return body, nil
	}
	if err := decode(body); err != nil {
		var de *DecodeError
		if errors.Is(err, ErrNotFound) || errors.As(err, &de) {
			return nil, err
		}
		return nil, &DecodeError{Err: err}
	}
	return body, nil
}

func mapURL(m URLMapper, u string) string {
	if m == nil {
		return u
	}
	return m.MapURL(u)
}

func shorten(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// linearBackOff waits step*n after the n-th failure, capped at maxBackoffStep.
type linearBackOff struct {
	step time.Duration
	n    int
}

var _ backoff.BackOff = (*linearBackOff)(nil)

func newLinearBackOff(step time.Duration) *linearBackOff {
	return &linearBackOff{step: step}
}

func (b *linearBackOff) NextBackOff() time.Duration {
	if b.step <= 0 {
		return 0
	}
	b.n++
	d := b.step * time.Duration(b.n)
	if d > maxBackoffStep {
		return maxBackoffStep
	}
	return d
}

func (b *linearBackOff) Reset() {
	b.n = 0
}
