package admin

import (
	"github.com/evalworks/vendoreval/internal/admin/service"
	"go.uber.org/fx"
)

var Module = fx.Module("admin.service",
	fx.Provide(service.New),
)
