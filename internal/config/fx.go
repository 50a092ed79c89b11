package config

import "go.uber.org/fx"

// Module wires application and storefront runtime configuration.
var Module = fx.Module("config",
	fx.Provide(
		Load,
		NewStorefrontConfigHolder,
	),
)
