package order

import "go.uber.org/fx"

// Module mounts the /orders routes on the shared Echo router.
var Module = fx.Module("transport_http_order",
	fx.Provide(NewHandler),
	fx.Invoke(Register),
)
