package models

// Requests for the HTTP endpoints. Path params use the param tag, query strings the query tag.

type PairRequest struct {
	Crop  string `param:"crop" json:"crop" validate:"required"`
	State string `param:"state" json:"state" validate:"required"`
}

type CropStatesRequest struct {
	Crop string `param:"crop" validate:"required"`
}

type PredictRequest struct {
	Crop     string   `json:"crop" validate:"required"`
	State    string   `json:"state" validate:"required"`
	Date     string   `json:"date" validate:"required,datetime=2006-01-02"`
	Rainfall *float64 `json:"rainfall" validate:"omitempty,gte=0"`
	Demand   float64  `json:"demand" validate:"gte=0"`
}

type WeatherRequest struct {
	State string `json:"state" validate:"required"`
	Date  string `json:"date" validate:"required,datetime=2006-01-02"`
}

type HistoryRequest struct {
	Crop  string `param:"crop" validate:"required"`
	State string `param:"state" validate:"required"`
	Days  int    `query:"days" default:"30" validate:"gte=1,lte=365"`
}

type VolatilityRequest struct {
	Crop       string `param:"crop" validate:"required"`
	State      string `param:"state" validate:"required"`
	PeriodDays int    `query:"period_days" default:"30" validate:"gte=1,lte=3650"`
}

type TrendRequest struct {
	Crop  string `param:"crop" validate:"required"`
	State string `param:"state" validate:"required"`
	Years int    `query:"years" default:"3" validate:"gte=1,lte=50"`
}

type SentimentRequest struct {
	Crop           string  `param:"crop" validate:"required"`
	State          string  `param:"state" validate:"required"`
	PredictedPrice float64 `query:"predicted_price" validate:"gte=0"`
}

type OpportunityRequest struct {
	Crop             string  `param:"crop" validate:"required"`
	State            string  `param:"state" validate:"required"`
	PredictedPrice   float64 `query:"predicted_price" validate:"required,gt=0"`
	ThresholdPercent float64 `query:"threshold_percent" default:"15" validate:"gt=0,lte=1000"`
}

type ComprehensiveRequest struct {
	Crop           string  `param:"crop" validate:"required"`
	State          string  `param:"state" validate:"required"`
	PredictedPrice float64 `query:"predicted_price" validate:"gte=0"`
}
