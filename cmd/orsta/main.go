package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/orsta/orsta/internal/apikey"
	"github.com/orsta/orsta/internal/auth/session"
	"github.com/orsta/orsta/internal/billing"
	"github.com/orsta/orsta/internal/clock"
	"github.com/orsta/orsta/internal/config"
	"github.com/orsta/orsta/internal/instance"
	"github.com/orsta/orsta/internal/migration"
	"github.com/orsta/orsta/internal/observability"
	"github.com/orsta/orsta/internal/orchestrator"
	payment "github.com/orsta/orsta/internal/providers/payment"
	"github.com/orsta/orsta/internal/server"
	"github.com/orsta/orsta/internal/user"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		clock.Module,
		orchestrator.Module,
		migration.Module,
		session.Module,

		// Functional domains
		payment.Module,
		user.Module,
		instance.Module,
		billing.Module,
		apikey.Module,

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
