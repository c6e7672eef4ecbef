package evaluation

import (
	"github.com/evalworks/vendoreval/internal/evaluation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("evaluation.service",
	fx.Provide(service.New),
)
