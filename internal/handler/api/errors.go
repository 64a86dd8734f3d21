package api

import (
	"errors"
	"strings"

	"CropPulse/internal/domain/models"
	xhttp "CropPulse/pkg/http"
)

// toAppError maps engine errors onto HTTP errors. A missing model lists the supported pairs.
func toAppError(err error, pairs func() []models.Pair) *xhttp.AppError {
	var ae *models.AnalysisError
	if !errors.As(err, &ae) {
		return xhttp.InternalError(err)
	}
	code := "ERR_" + string(ae.Kind)
	switch ae.Kind {
	case models.KindInsufficientData, models.KindNoData, models.KindNoHistoricalData:
		return xhttp.UnprocessableError(code, ae.Error()).WithParam("data_points", ae.DataPoints)
	case models.KindModelNotFound:
		appErr := xhttp.NotFoundError(code, ae.Error())
		if pairs != nil {
			appErr.WithParam("supported_pairs", pairs())
		}
		return appErr
	case models.KindDataUnavailable:
		return xhttp.ServiceUnavailableError(ae.Error()).WithError(err)
	default:
		return xhttp.InternalError(err)
	}
}

func errorKindLabel(err error) string {
	return strings.ToLower(string(models.KindOf(err)))
}
