package auth

import (
	"github.com/evalworks/vendoreval/internal/auth/service"
	"github.com/evalworks/vendoreval/internal/auth/session"
	"go.uber.org/fx"
)

var Module = fx.Module("auth",
	fx.Provide(session.NewManager),
	fx.Provide(service.New),
)
