package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/meritworks/meritboard/internal/clock"
	"github.com/meritworks/meritboard/internal/config"
	"github.com/meritworks/meritboard/internal/leaderboard"
	"github.com/meritworks/meritboard/internal/ledger"
	"github.com/meritworks/meritboard/internal/logger"
	"github.com/meritworks/meritboard/internal/member"
	"github.com/meritworks/meritboard/internal/migration"
	"github.com/meritworks/meritboard/internal/observability/metrics"
	"github.com/meritworks/meritboard/internal/rating"
	"github.com/meritworks/meritboard/internal/server"
	"github.com/meritworks/meritboard/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		metrics.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Functional domains
		member.Module,
		ledger.Module,
		leaderboard.Module,
		rating.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
