package http

import (
	"go.uber.org/fx"

	ordertransport "github.com/Additional-Code/orderdesk/internal/transport/http/order"
)

// Module aggregates the HTTP route groups served by the API.
var Module = fx.Module("transport_http",
	ordertransport.Module,
)
