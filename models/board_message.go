package models

import (
	"context"
	"errors"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/go-pg/pg/v10/orm"
)

// Modeler is satisfied by *pg.DB, *pg.Tx and migrations.DB.
type Modeler interface {
	Model(model ...interface{}) *orm.Query
}

type BoardMessage struct {
	tableName struct{}  `pg:"board_message"`
	ID        int64     `pg:"board_message_id,pk"`
	Name      string    `pg:"name,notnull"`
	Text      string    `pg:"text,notnull,use_zero"`
	Seed      string    `pg:"seed,notnull"`
	Channel   string    `pg:"channel,notnull"`
	Verified  bool      `pg:"verified,notnull,use_zero"`
	CreatedAt time.Time `pg:"created_at,notnull,default:now()"`
}

// CreateBoardMessage inserts m and fills its generated id.
func CreateBoardMessage(ctx context.Context, db Modeler, m *BoardMessage) error {
	_, err := db.Model(m).Context(ctx).Returning("board_message_id").Insert()
	return err
}

// GetBoardMessages returns messages oldest first. An empty channel matches
// every channel; limit 0 means no limit (the newest ones are kept).
func GetBoardMessages(ctx context.Context, db Modeler, channel string, verifiedOnly bool, limit int) ([]BoardMessage, error) {
	var msgs []BoardMessage
	q := db.Model(&msgs).Context(ctx)
	if channel != "" {
		q = q.Where("channel = ?", channel)
	}
	if verifiedOnly {
		q = q.Where("verified = ?", true)
	}
	q = q.Order("board_message_id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Select(); err != nil && !errors.Is(err, pg.ErrNoRows) {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// CountBoardMessages returns the number of messages in channel.
func CountBoardMessages(ctx context.Context, db Modeler, channel string) (int, error) {
	return db.Model((*BoardMessage)(nil)).
		Context(ctx).
		Where("channel = ?", channel).
		Count()
}
