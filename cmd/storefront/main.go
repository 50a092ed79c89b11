package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/greenmandi/storefront/internal/config"
	"github.com/greenmandi/storefront/internal/logger"
	"github.com/greenmandi/storefront/internal/observability"
	"github.com/greenmandi/storefront/internal/server"
	"github.com/greenmandi/storefront/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
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
