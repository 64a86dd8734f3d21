package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"CropPulse/internal/domain/models"
	icache "CropPulse/internal/service/cache"
	"CropPulse/internal/service/metrics"
	"CropPulse/internal/usecase"
	xhttp "CropPulse/pkg/http"
	applogger "CropPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// BasePath prefixes every API route.
const BasePath = "/api/v1"

// AnalyticsHandler serves the analytics endpoints. Successful results are
// cached per endpoint, pair and parameters.
type AnalyticsHandler struct {
	analytics *usecase.MarketAnalytics
	report    *usecase.ComprehensiveUseCase
	pairs     func() []models.Pair
	cache     icache.BytesCache
	ttl       time.Duration
	l         *applogger.Logger
}

func NewAnalyticsHandler(l *applogger.Logger, a *usecase.MarketAnalytics, report *usecase.ComprehensiveUseCase, data *usecase.MarketData) *AnalyticsHandler {
	metrics.Register()
	if l == nil {
		l = applogger.Nop()
	}
	return &AnalyticsHandler{
		analytics: a,
		report:    report,
		pairs:     data.Pairs,
		cache:     icache.Noop{},
		ttl:       5 * time.Minute,
		l:         l,
	}
}

// SetCache installs a result cache with the given TTL.
func (h *AnalyticsHandler) SetCache(c icache.BytesCache, ttl time.Duration) {
	if c == nil {
		c = icache.Noop{}
	}
	h.cache = c
	if ttl > 0 {
		h.ttl = ttl
	}
}

func (h *AnalyticsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group(BasePath + "/analytics")
	g.GET("/volatility/:crop/:state", h.Volatility)
	g.GET("/seasonal/:crop/:state", h.Seasonal)
	g.GET("/trends/:crop/:state", h.Trends)
	g.GET("/sentiment/:crop/:state", h.Sentiment)
	g.GET("/opportunities/:crop/:state", h.Opportunities)
	g.GET("/comprehensive/:crop/:state", h.Comprehensive)
}

func (h *AnalyticsHandler) Volatility(c echo.Context) error {
	req := &models.VolatilityRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	key := icache.Key("volatility", req.Crop, req.State, strconv.Itoa(req.PeriodDays))
	return h.serve(c, "volatility", key, func() (interface{}, error) {
		return h.analytics.Volatility(req.Crop, req.State, req.PeriodDays)
	})
}

func (h *AnalyticsHandler) Seasonal(c echo.Context) error {
	req := &models.PairRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	key := icache.Key("seasonal", req.Crop, req.State)
	return h.serve(c, "seasonal", key, func() (interface{}, error) {
		return h.analytics.Seasonal(req.Crop, req.State)
	})
}

func (h *AnalyticsHandler) Trends(c echo.Context) error {
	req := &models.TrendRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	key := icache.Key("trends", req.Crop, req.State, strconv.Itoa(req.Years))
	return h.serve(c, "trends", key, func() (interface{}, error) {
		return h.analytics.Trends(req.Crop, req.State, req.Years)
	})
}

func (h *AnalyticsHandler) Sentiment(c echo.Context) error {
	req := &models.SentimentRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	key := icache.Key("sentiment", req.Crop, req.State, formatPrice(req.PredictedPrice))
	return h.serve(c, "sentiment", key, func() (interface{}, error) {
		return h.analytics.Sentiment(req.Crop, req.State, req.PredictedPrice)
	})
}

func (h *AnalyticsHandler) Opportunities(c echo.Context) error {
	req := &models.OpportunityRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	key := icache.Key("opportunities", req.Crop, req.State, formatPrice(req.PredictedPrice), formatPrice(req.ThresholdPercent))
	return h.serve(c, "opportunities", key, func() (interface{}, error) {
		return h.analytics.Opportunities(req.Crop, req.State, req.PredictedPrice, req.ThresholdPercent)
	})
}

// Comprehensive is never cached: each report gets its own ID and timestamp.
func (h *AnalyticsHandler) Comprehensive(c echo.Context) error {
	const endpoint = "comprehensive"
	defer metrics.ObserveSince(endpoint, time.Now())

	req := &models.ComprehensiveRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	rep, err := h.report.Report(c.Request().Context(), req.Crop, req.State, req.PredictedPrice)
	if err != nil {
		metrics.CountError(endpoint, errorKindLabel(err))
		h.l.Error("comprehensive report failed", applogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err, h.pairs))
	}
	for panel, perr := range rep.Errors {
		metrics.CountError(endpoint+"_"+panel, string(perr.Kind))
	}
	return xhttp.SuccessResponse(c, rep)
}

// serve runs one analyzer behind the result cache. Cache failures only cost a recompute.
func (h *AnalyticsHandler) serve(c echo.Context, endpoint, key string, run func() (interface{}, error)) error {
	defer metrics.ObserveSince(endpoint, time.Now())
	ctx := c.Request().Context()

	b, ok, err := h.cache.GetBytes(ctx, key)
	if err != nil {
		h.l.Warn("analytics cache get failed", applogger.String("key", key), applogger.Error(err))
	} else if ok {
		metrics.CountCache(endpoint, true)
		return c.JSONBlob(http.StatusOK, b)
	}
	metrics.CountCache(endpoint, false)

	res, err := run()
	if err != nil {
		metrics.CountError(endpoint, errorKindLabel(err))
		h.l.Debug("analytics request failed",
			applogger.String("endpoint", endpoint),
			applogger.String("crop", c.Param("crop")),
			applogger.String("state", c.Param("state")),
			applogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, toAppError(err, h.pairs))
	}

	b, err = json.Marshal(xhttp.APIResponse{
		Status:  http.StatusOK,
		Message: http.StatusText(http.StatusOK),
		Data:    res,
	})
	if err != nil {
		h.l.Error("analytics encode failed", applogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	if err := h.cache.SetBytes(ctx, key, b, h.ttl); err != nil {
		h.l.Warn("analytics cache set failed", applogger.String("key", key), applogger.Error(err))
	}
	return c.JSONBlob(http.StatusOK, b)
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

var _ xhttp.Handler = (*AnalyticsHandler)(nil)
