package main

import (
	"os"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/evalworks/vendoreval/internal/admin"
	"github.com/evalworks/vendoreval/internal/auth"
	"github.com/evalworks/vendoreval/internal/authz"
	"github.com/evalworks/vendoreval/internal/catalog"
	"github.com/evalworks/vendoreval/internal/clock"
	"github.com/evalworks/vendoreval/internal/config"
	"github.com/evalworks/vendoreval/internal/evaluation"
	"github.com/evalworks/vendoreval/internal/ledger"
	"github.com/evalworks/vendoreval/internal/observability"
	"github.com/evalworks/vendoreval/internal/project"
	"github.com/evalworks/vendoreval/internal/report"
	"github.com/evalworks/vendoreval/internal/server"
	"github.com/evalworks/vendoreval/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,

		catalog.Module,
		ledger.Module,
		authz.Module,
		auth.Module,
		evaluation.Module,
		report.Module,
		admin.Module,
		project.Module,

		server.Module,
	)
	app.Run()
}

func registerSnowflake() (*snowflake.Node, error) {
	nodeID := int64(1)
	if raw := os.Getenv("SNOWFLAKE_NODE_ID"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			nodeID = parsed
		}
	}
	return snowflake.NewNode(nodeID)
}
