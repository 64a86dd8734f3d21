package api

import (
	"fmt"
	"time"

	"CropPulse/internal/domain/models"
	"CropPulse/internal/service/metrics"
	"CropPulse/internal/usecase"
	xhttp "CropPulse/pkg/http"
	applogger "CropPulse/pkg/logger"
	"CropPulse/pkg/util"

	"github.com/labstack/echo/v4"
)

// MarketHandler serves the catalog, prediction, weather and history endpoints.
type MarketHandler struct {
	data    *usecase.MarketData
	predict *usecase.PredictUseCase
	l       *applogger.Logger
	now     func() time.Time
}

func NewMarketHandler(l *applogger.Logger, data *usecase.MarketData, predict *usecase.PredictUseCase) *MarketHandler {
	metrics.Register()
	if l == nil {
		l = applogger.Nop()
	}
	return &MarketHandler{data: data, predict: predict, l: l, now: time.Now}
}

func (h *MarketHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group(BasePath)
	g.GET("/health", h.Health)
	g.GET("/crops", h.Crops)
	g.GET("/crops/:crop/states", h.States)
	g.POST("/predict", h.Predict)
	g.POST("/weather", h.Weather)
	g.GET("/history/:crop/:state", h.History)
}

func (h *MarketHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status":    "healthy",
		"service":   "CropPulse",
		"timestamp": h.now().UTC().Format(time.RFC3339),
		"records":   h.data.RecordCount(),
	})
}

func (h *MarketHandler) Crops(c echo.Context) error {
	crops := h.data.Crops()
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"crops": crops,
		"total": len(crops),
	})
}

func (h *MarketHandler) States(c echo.Context) error {
	req := &models.CropStatesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	crop, states, ok := h.data.States(req.Crop)
	if !ok {
		appErr := xhttp.NotFoundError("ERR_CROP_NOT_FOUND", fmt.Sprintf("Crop '%s' not found", util.TitleCase(req.Crop))).
			WithParam("available_crops", h.data.Crops())
		return xhttp.AppErrorResponse(c, appErr)
	}
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"crop":   crop,
		"states": states,
		"total":  len(states),
	})
}

func (h *MarketHandler) Predict(c echo.Context) error {
	const endpoint = "predict"
	start := time.Now()
	defer metrics.ObserveSince(endpoint, start)

	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.predict.Predict(c.Request().Context(), req)
	if err != nil {
		metrics.CountError(endpoint, errorKindLabel(err))
		h.l.Warn("predict failed",
			applogger.String("crop", req.Crop),
			applogger.String("state", req.State),
			applogger.String("date", req.Date),
			applogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, toAppError(err, h.data.Pairs))
	}
	return xhttp.SuccessResponse(c, res)
}

// Weather returns the collaborator's reading as is; a failed lookup is still a 200.
func (h *MarketHandler) Weather(c echo.Context) error {
	req := &models.WeatherRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	date, err := util.ParseDate(req.Date)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("Invalid date format. Use YYYY-MM-DD"))
	}
	return xhttp.SuccessResponse(c, h.predict.Weather(c.Request().Context(), req.State, date))
}

func (h *MarketHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.data.History(req.Crop, req.State, req.Days)
	if err != nil {
		h.l.Error("history failed", applogger.Error(err))
		return xhttp.AppErrorResponse(c, toAppError(err, nil))
	}
	return xhttp.SuccessResponse(c, res)
}

var _ xhttp.Handler = (*MarketHandler)(nil)
