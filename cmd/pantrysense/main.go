package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/pantrysense/pantrysense/internal/clock"
	"github.com/pantrysense/pantrysense/internal/config"
	"github.com/pantrysense/pantrysense/internal/migration"
	"github.com/pantrysense/pantrysense/internal/observability"
	"github.com/pantrysense/pantrysense/internal/server"
	"github.com/pantrysense/pantrysense/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
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
