package analytics

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"CropPulse/internal/domain/models"
	domrepo "CropPulse/internal/domain/repository"
	xhttp "CropPulse/pkg/http"
)

// RemoteModelSource serves predictions from a model-serving companion over HTTP.
// POST /predict {crop, state, features} -> {predicted_price}; 404 means no model for the pair.
type RemoteModelSource struct {
	base     *HTTPServiceBase
	attempts int
}

func NewRemoteModelSource(base *HTTPServiceBase, attempts int) *RemoteModelSource {
	return &RemoteModelSource{base: base, attempts: attempts}
}

// Model returns a handle bound to the pair; availability is checked on Predict.
func (s *RemoteModelSource) Model(_ context.Context, crop, state string) (domrepo.PriceModel, error) {
	return &remoteModel{src: s, crop: crop, state: state}, nil
}

type remoteModel struct {
	src   *RemoteModelSource
	crop  string
	state string
}

type remotePredictRequest struct {
	Crop     string             `json:"crop"`
	State    string             `json:"state"`
	Features map[string]float64 `json:"features"`
}

type remotePredictResponse struct {
	PredictedPrice *float64 `json:"predicted_price"`
}

func (m *remoteModel) Predict(ctx context.Context, f models.FeatureVector) (float64, error) {
	var resp remotePredictResponse
	err := m.src.base.PostJSONWithRetry(ctx, "/predict", remotePredictRequest{
		Crop:     m.crop,
		State:    m.state,
		Features: f.Map(),
	}, &resp, m.src.attempts)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return 0, models.ModelNotFound(m.crop, m.state)
		}
		return 0, err
	}
	if resp.PredictedPrice == nil {
		return 0, fmt.Errorf("model service returned no predicted_price")
	}
	return *resp.PredictedPrice, nil
}

var _ domrepo.ModelSource = (*RemoteModelSource)(nil)
