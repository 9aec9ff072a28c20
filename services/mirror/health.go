package mirror

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"
)

// HealthStore keeps cool-down marks for failed mirrors.
type HealthStore interface {
	MarkFailed(ctx context.Context, mirror string, cooldown time.Duration) error
	Recover(ctx context.Context, mirror string) error
	Cooling(ctx context.Context, mirrors []string) (map[string]bool, error)
}

// Health demotes recently failed mirrors to the end of the candidate order.
// It never removes a mirror, so the attempt budget is unaffected.
// A nil *Health is valid and keeps the registry order untouched.
type Health struct {
	store    HealthStore
	cooldown time.Duration
}

func NewHealth(store HealthStore, cooldown time.Duration) *Health {
	return &Health{
		store:    store,
		cooldown: cooldown,
	}
}

// NewHealthFromContext returns nil when the cool-down is disabled. Marks are
// kept in process memory or, with the redis health store, in the redis
// configured through the common redis client flags.
func NewHealthFromContext(c *cli.Context, rc *cs.RedisClient) (*Health, error) {
	cooldown := c.Duration(MirrorHealthCooldownFlag)
	if cooldown <= 0 {
		return nil, nil
	}
	l := log.WithField("cooldown", cooldown)
	switch store := c.String(MirrorHealthStoreFlag); store {
	case HealthStoreMemory, "":
		l.Info("mirror health kept in memory")
		return NewHealth(NewMemoryHealthStore(), cooldown), nil
	case HealthStoreRedis:
		if rc == nil {
			return nil, errors.New("redis health store requires a redis client")
		}
		l.Info("mirror health shared through redis")
		return NewHealth(NewRedisHealthStore(rc.Get()), cooldown), nil
	default:
		return nil, errors.Errorf("unknown mirror health store %q", store)
	}
}

// Arrange moves cooling mirrors behind healthy ones, preserving relative order.
func (s *Health) Arrange(ctx context.Context, candidates []string) []string {
	if s == nil || len(candidates) < 2 {
		return candidates
	}
	cooling, err := s.store.Cooling(ctx, candidates)
	if err != nil {
		log.WithError(err).Warn("failed to read mirror health, keeping order")
		return candidates
	}
	if len(cooling) == 0 {
		return candidates
	}
	out := make([]string, 0, len(candidates))
	var tail []string
	for _, m := range candidates {
		if cooling[m] {
			tail = append(tail, m)
		} else {
			out = append(out, m)
		}
	}
	return append(out, tail...)
}

func (s *Health) Fail(ctx context.Context, mirror string) {
	if s == nil {
		return
	}
	if err := s.store.MarkFailed(ctx, mirror, s.cooldown); err != nil {
		log.WithError(err).WithField("mirror", mirror).Warn("failed to mark mirror")
	}
}

func (s *Health) Succeed(ctx context.Context, mirror string) {
	if s == nil {
		return
	}
	if err := s.store.Recover(ctx, mirror); err != nil {
		log.WithError(err).WithField("mirror", mirror).Warn("failed to recover mirror")
	}
}

// MemoryHealthStore is a process-local HealthStore.
type MemoryHealthStore struct {
	mu    sync.Mutex
	until map[string]time.Time
	now   func() time.Time
}

var _ HealthStore = (*MemoryHealthStore)(nil)

func NewMemoryHealthStore() *MemoryHealthStore {
	return &MemoryHealthStore{
		until: make(map[string]time.Time),
		now:   time.Now,
	}
}

func (s *MemoryHealthStore) MarkFailed(_ context.Context, mirror string, cooldown time.Duration) error {
	s.mu.Lock()
	s.until[mirror] = s.now().Add(cooldown)
	s.mu.Unlock()
	return nil
}

func (s *MemoryHealthStore) Recover(_ context.Context, mirror string) error {
	s.mu.Lock()
	delete(s.until, mirror)
	s.mu.Unlock()
	return nil
}

func (s *MemoryHealthStore) Cooling(_ context.Context, mirrors []string) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	res := make(map[string]bool)
	for _, m := range mirrors {
		u, ok := s.until[m]
		if !ok {
			continue
		}
		if now.Before(u) {
			res[m] = true
		} else {
			delete(s.until, m)
		}
	}
	return res, nil
}
