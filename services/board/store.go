package board

import (
	"context"
	"sync"
	"time"

	"github.com/kantan-tube/web-ui/models"
	"github.com/pkg/errors"
	cs "github.com/webtor-io/common-services"
)

type Message struct {
	ID        int64
	Name      string
	Text      string
	Seed      string
	Channel   string
	Verified  bool
	CreatedAt time.Time
}

// Filter selects messages. An empty Channel matches all channels.
type Filter struct {
	Channel      string
	VerifiedOnly bool
	Limit        int
}

type Store interface {
	Add(ctx context.Context, m *Message) error
	List(ctx context.Context, f Filter) ([]Message, error)
}

// MemoryStore keeps messages in process memory; they are lost on restart.
type MemoryStore struct {
	mu   sync.RWMutex
	msgs []Message
	seq  int64
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Add(_ context.Context, m *Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	m.ID = s.seq
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	s.msgs = append(s.msgs, *m)
	return nil
}

func (s *MemoryStore) List(_ context.Context, f Filter) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Message
	for _, m := range s.msgs {
		if f.Channel != "" && m.Channel != f.Channel {
			continue
		}
		if f.VerifiedOnly && !m.Verified {
			continue
		}
		out = append(out, m)
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[len(out)-f.Limit:]
	}
	return out, nil
}

// PGStore persists messages in the board_message table.
type PGStore struct {
	pg *cs.PG
}

var _ Store = (*PGStore)(nil)

func NewPGStore(pg *cs.PG) *PGStore {
	return &PGStore{pg: pg}
}

func (s *PGStore) Add(ctx context.Context, m *Message) error {
	db := s.pg.Get()
	if db == nil {
		return errors.New("no db")
	}
	bm := &models.BoardMessage{
		Name:     m.Name,
		Text:     m.Text,
		Seed:     m.Seed,
		Channel:  m.Channel,
		Verified: m.Verified,
	}
	if err := models.CreateBoardMessage(ctx, db, bm); err != nil {
		return errors.Wrap(err, "failed to store board message")
	}
	m.ID = bm.ID
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	return nil
}

func (s *PGStore) List(ctx context.Context, f Filter) ([]Message, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errors.New("no db")
	}
	rows, err := models.GetBoardMessages(ctx, db, f.Channel, f.VerifiedOnly, f.Limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list board messages")
	}
	out := make([]Message, len(rows))
	for i, r := range rows {
		out[i] = Message{
			ID:        r.ID,
			Name:      r.Name,
			Text:      r.Text,
			Seed:      r.Seed,
			Channel:   r.Channel,
			Verified:  r.Verified,
			CreatedAt: r.CreatedAt,
		}
	}
	return out, nil
}

// NewStore uses Postgres when it is configured and memory otherwise.
func NewStore(pg *cs.PG) Store {
	if pg != nil && pg.Get() != nil {
		return NewPGStore(pg)
	}
	return NewMemoryStore()
}
