package api

import (
	xhttp "CropPulse/pkg/http"

	"github.com/labstack/echo/v4"
)

// Router registers every API handler on one echo instance.
type Router struct {
	handlers []xhttp.Handler
}

func NewRouter(market *MarketHandler, analytics *AnalyticsHandler) *Router {
	return &Router{handlers: []xhttp.Handler{market, analytics}}
}

func (r *Router) RegisterRoutes(e *echo.Echo) {
	for _, h := range r.handlers {
		h.RegisterRoutes(e)
	}
}

var _ xhttp.Handler = (*Router)(nil)
