package mirror

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/webtor-io/lazymap"
)

const statsPath = "api/v1/stats"

// ProbeResult is the outcome of a health check against one mirror.
type ProbeResult struct {
	Mirror  string        `json:"mirror"`
	OK      bool          `json:"ok"`
	Status  int           `json:"status,omitempty"`
	Version string        `json:"version,omitempty"`
	Latency time.Duration `json:"latency"`
	Error   string        `json:"error,omitempty"`
}

// Prober checks every registry mirror in parallel.
type Prober struct {
	cl        *http.Client
	registry  *Registry
	timeout   time.Duration
	userAgent string
	health    *Health
	mapper    URLMapper
	cache     *lazymap.LazyMap[[]ProbeResult]
}

func NewProber(cl *http.Client, r *Registry, cfg Config, h *Health) *Prober {
	return &Prober{
		cl:        cl,
		registry:  r,
		timeout:   cfg.AttemptTimeout,
		userAgent: cfg.UserAgent,
		health:    h,
		cache: lazymap.New[[]ProbeResult](&lazymap.Config{
			Expire:      1 * time.Minute,
			ErrorExpire: 10 * time.Second,
		}),
	}
}

// WithURLMapper makes probe requests go through m.
func (s *Prober) WithURLMapper(m URLMapper) *Prober {
	s.mapper = m
	return s
}

// Report returns a probe report that is at most a minute old. The report is
// shared by all callers, so it does not stop when the caller that triggered
// it goes away; per-mirror timeouts still apply.
func (s *Prober) Report(ctx context.Context) ([]ProbeResult, error) {
	ctx = context.WithoutCancel(ctx)
	return s.cache.Get("report", func() ([]ProbeResult, error) {
		return s.Check(ctx), nil
	})
}

// Check probes all mirrors now. Results keep registry order. Failures caused
// by ctx ending are not counted against mirror health.
func (s *Prober) Check(ctx context.Context) []ProbeResult {
	mirrors := s.registry.List()
	res := make([]ProbeResult, len(mirrors))
	var wg sync.WaitGroup
	for i, m := range mirrors {
		wg.Add(1)
		go func(i int, m string) {
			defer wg.Done()
			res[i] = s.probe(ctx, m)
			if res[i].OK {
				s.health.Succeed(ctx, m)
			} else if ctx.Err() == nil {
				s.health.Fail(ctx, m)
			}
		}(i, m)
	}
	wg.Wait()
	var failed int
	for _, r := range res {
		if !r.OK {
			failed++
		}
	}
	log.WithFields(log.Fields{
		"total":  len(res),
		"failed": failed,
	}).Info("mirror probe finished")
	return res
}

// Fastest returns healthy results ordered by latency.
func Fastest(results []ProbeResult) []ProbeResult {
	var out []ProbeResult
	for _, r := range results {
		if r.OK {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Latency < out[j].Latency
	})
	return out
}

type statsResponse struct {
	Software struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"software"`
}

func (s *Prober) probe(ctx context.Context, m string) (r ProbeResult) {
	r.Mirror = m
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	started := time.Now()
	defer func() {
		r.Latency = time.Since(started)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mapURL(s.mapper, Join(m, statsPath)), nil)
	if err != nil {
		r.Error = err.Error()
		return r
	}
	req.Header.Set("Accept", "application/json")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	resp, err := s.cl.Do(req)
	if err != nil {
		r.Error = err.Error()
		return r
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)
	r.Status = resp.StatusCode
	if resp.StatusCode != http.StatusOK {
		r.Error = (&StatusError{StatusCode: resp.StatusCode}).Error()
		return r
	}
	var stats statsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBodySize)).Decode(&stats); err != nil {
		r.Error = errors.Wrap(err, "failed to decode stats").Error()
		return r
	}
	r.Version = stats.Software.Version
	r.OK = true
	return r
}
