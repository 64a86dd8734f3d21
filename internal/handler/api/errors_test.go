package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"CropPulse/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptySeriesReportsZeroDataPoints(t *testing.T) {
	err := &models.AnalysisError{Kind: models.KindNoData, Message: "no price data for the window"}

	appErr := toAppError(err, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.Status)
	assert.Equal(t, "ERR_NO_DATA", appErr.Code)

	body, mErr := json.Marshal(appErr)
	require.NoError(t, mErr)
	assert.Contains(t, string(body), `"data_points":0`)

	body, mErr = json.Marshal(models.PanelError{Kind: models.KindNoData, Message: err.Message})
	require.NoError(t, mErr)
	assert.Contains(t, string(body), `"data_points":0`)
}

func TestModelNotFoundListsPairs(t *testing.T) {
	pairs := func() []models.Pair { return []models.Pair{{Crop: "Wheat", State: "Punjab"}} }

	appErr := toAppError(&models.AnalysisError{Kind: models.KindModelNotFound, Message: "no model"}, pairs)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "ERR_MODEL_NOT_FOUND", appErr.Code)
	assert.Contains(t, appErr.Params, "supported_pairs")
	assert.NotContains(t, appErr.Params, "data_points")

	appErr = toAppError(errors.New("boom"), pairs)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Equal(t, "Something went wrong", appErr.Message)
}
