package project

import "go.uber.org/fx"

var Module = fx.Module("project.lookup",
	fx.Provide(New),
)
