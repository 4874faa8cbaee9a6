// Package migration creates the engine schema on startup so the service
// is usable out of the box for local and self-hosted environments.
package migration

import (
	ledgerdomain "github.com/meritworks/meritboard/internal/ledger/domain"
	memberdomain "github.com/meritworks/meritboard/internal/member/domain"
	ratingdomain "github.com/meritworks/meritboard/internal/rating/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Models lists every persisted engine model, in dependency order.
func Models() []any {
	return []any{
		&memberdomain.Member{},
		&ledgerdomain.PointTransaction{},
		&ratingdomain.RatingPeriod{},
		&ratingdomain.Criterion{},
		&ratingdomain.SelfRating{},
	}
}

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB) error {
		return conn.AutoMigrate(Models()...)
	}),
)
