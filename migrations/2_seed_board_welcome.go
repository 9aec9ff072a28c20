package migrations

import (
	"github.com/go-pg/migrations/v8"
	"github.com/kantan-tube/web-ui/models"
)

const (
	welcomeChannel = "main"
	welcomeName    = "kantan-tube"
	welcomeSeed    = "00000000system00000000"
)

// SeedBoardWelcome posts a verified welcome message to an empty main channel.
func SeedBoardWelcome(col *migrations.Collection, text string) {
	col.MustRegisterTx(func(db migrations.DB) error {
		ctx := db.Context()
		n, err := models.CountBoardMessages(ctx, db, welcomeChannel)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		return models.CreateBoardMessage(ctx, db, &models.BoardMessage{
			Name:     welcomeName,
			Text:     text,
			Seed:     welcomeSeed,
			Channel:  welcomeChannel,
			Verified: true,
		})
	}, func(db migrations.DB) error {
		_, err := db.Model((*models.BoardMessage)(nil)).
			Where("seed = ?", welcomeSeed).
			Delete()
		return err
	})
}
