package leaderboard

import (
	"github.com/meritworks/meritboard/internal/leaderboard/service"
	"go.uber.org/fx"
)

var Module = fx.Module("leaderboard.service",
	fx.Provide(service.NewService),
)
