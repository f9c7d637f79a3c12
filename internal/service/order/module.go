package order

import "go.uber.org/fx"

// Module provides the order Service. It expects the repository, cache,
// messaging and observability modules to be present.
var Module = fx.Module("service_order",
	fx.Provide(NewService),
)
