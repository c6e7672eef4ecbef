package catalog

import "go.uber.org/fx"

var Module = fx.Module("catalog",
	fx.Provide(
		NewHolder,
		func(h *Holder) Provider { return h },
	),
)
