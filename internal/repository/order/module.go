package order

import "go.uber.org/fx"

// Module provides the order Repository, built from the shared connections
// and the Orders config section.
var Module = fx.Module("repository_order",
	fx.Provide(NewRepository),
)
