package models

import "time"

type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Score maps the risk level onto 1..3 for gauges.
func (r RiskLevel) Score() int {
	switch r {
	case RiskLow:
		return 1
	case RiskHigh:
		return 3
	default:
		return 2
	}
}

type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type VolatilityResult struct {
	Crop                 string     `json:"crop"`
	State                string     `json:"state"`
	PeriodDays           int        `json:"period_days"`
	VolatilityPercentage float64    `json:"volatility_percentage"`
	DailyVolatility      float64    `json:"daily_volatility"`
	RiskLevel            RiskLevel  `json:"risk_level"`
	RiskScore            int        `json:"risk_score"`
	StandardDeviation    float64    `json:"standard_deviation"`
	AveragePrice         float64    `json:"average_price"`
	PriceRange           PriceRange `json:"price_range"`
	CoefficientVariation float64    `json:"coefficient_variation"`
	DataPoints           int        `json:"data_points"`
	LatestPrice          float64    `json:"latest_price"`
}

type MonthStat struct {
	Month        int     `json:"month"`
	MonthName    string  `json:"month_name"`
	AveragePrice float64 `json:"average_price"`
	MedianPrice  float64 `json:"median_price"`
	PriceStd     float64 `json:"price_std"`
	SampleSize   int     `json:"sample_size"`
}

type MonthRef struct {
	Month        int     `json:"month"`
	Name         string  `json:"name"`
	AveragePrice float64 `json:"average_price"`
}

type PriceDifference struct {
	Absolute   float64 `json:"absolute"`
	Percentage float64 `json:"percentage"`
}

type SeasonalResult struct {
	Crop            string          `json:"crop"`
	State           string          `json:"state"`
	BestMonth       MonthRef        `json:"best_month"`
	WorstMonth      MonthRef        `json:"worst_month"`
	PriceDifference PriceDifference `json:"price_difference"`
	PeakSeason      string          `json:"peak_season"`
	MonthlyData     []MonthStat     `json:"monthly_data"`
	Recommendation  string          `json:"recommendation"`
}

type YearStat struct {
	Year         int     `json:"year"`
	AveragePrice float64 `json:"average_price"`
	MedianPrice  float64 `json:"median_price"`
	MinPrice     float64 `json:"min_price"`
	MaxPrice     float64 `json:"max_price"`
	DataPoints   int     `json:"data_points"`
}

type GrowthRate struct {
	FromYear         int     `json:"from_year"`
	ToYear           int     `json:"to_year"`
	GrowthPercentage float64 `json:"growth_percentage"`
	AbsoluteChange   float64 `json:"absolute_change"`
}

type TrendDirection string

const (
	TrendIncreasing TrendDirection = "Increasing"
	TrendDecreasing TrendDirection = "Decreasing"
	TrendStable     TrendDirection = "Stable"
)

type YearRange struct {
	LowestYear   int     `json:"lowest_year"`
	LowestPrice  float64 `json:"lowest_price"`
	HighestYear  int     `json:"highest_year"`
	HighestPrice float64 `json:"highest_price"`
}

type TrendResult struct {
	Crop                string         `json:"crop"`
	State               string         `json:"state"`
	YearsAnalyzed       int            `json:"years_analyzed"`
	YearlyData          []YearStat     `json:"yearly_data"`
	GrowthRates         []GrowthRate   `json:"growth_rates"`
	CAGR                float64        `json:"cagr"`
	TrendDirection      TrendDirection `json:"trend_direction"`
	AverageYearlyGrowth float64        `json:"average_yearly_growth"`
	PriceRange          YearRange      `json:"price_range"`
}

type Sentiment string

const (
	SentimentBullish Sentiment = "Bullish"
	SentimentBearish Sentiment = "Bearish"
	SentimentNeutral Sentiment = "Neutral"
)

type PriceChanges struct {
	OneWeek  float64 `json:"1_week"`
	OneMonth float64 `json:"1_month"`
}

type Indicators struct {
	RSIStatus      string `json:"rsi_status"`
	MomentumStatus string `json:"momentum_status"`
}

type SentimentResult struct {
	Crop           string       `json:"crop"`
	State          string       `json:"state"`
	Sentiment      Sentiment    `json:"sentiment"`
	SentimentScore int          `json:"sentiment_score"`
	Confidence     float64      `json:"confidence"`
	Recommendation string       `json:"recommendation"` // BUY, SELL or HOLD
	CurrentPrice   float64      `json:"current_price"`
	RSI            float64      `json:"rsi"`
	Momentum       float64      `json:"momentum"`
	PriceChanges   PriceChanges `json:"price_changes"`
	Indicators     Indicators   `json:"indicators"`
}

type OpportunityAction string

const (
	ActionHold    OpportunityAction = "HOLD"
	ActionSellNow OpportunityAction = "SELL NOW"
	ActionMonitor OpportunityAction = "MONITOR"
)

type ProfitScenario struct {
	QuantityQuintal int     `json:"quantity_quintal"`
	Profit          float64 `json:"profit"`
}

type RecommendationDetails struct {
	ShouldHold            bool    `json:"should_hold"`
	ShouldSellNow         bool    `json:"should_sell_now"`
	EstimatedDaysToTarget int     `json:"estimated_days_to_target"`
	StopLossPrice         float64 `json:"stop_loss_price"`
}

type OpportunityResult struct {
	Crop                  string                `json:"crop"`
	State                 string                `json:"state"`
	OpportunityFound      bool                  `json:"opportunity_found"`
	CurrentPrice          float64               `json:"current_price"`
	PredictedPrice        float64               `json:"predicted_price"`
	PriceDifference       PriceDifference       `json:"price_difference"`
	Action                OpportunityAction     `json:"action"`
	Message               string                `json:"message"`
	ConfidenceLevel       string                `json:"confidence_level"`
	RiskAssessment        RiskLevel             `json:"risk_assessment"`
	ProfitScenarios       []ProfitScenario      `json:"profit_scenarios"`
	RecommendationDetails RecommendationDetails `json:"recommendation_details"`
}

// PanelError reports why one panel of a comprehensive report is missing.
type PanelError struct {
	Kind       ErrorKind `json:"kind,omitempty"`
	Message    string    `json:"message"`
	DataPoints int       `json:"data_points"`
}

// ComprehensiveReport merges every analyzer for one crop/state pair.
// A failed panel is nil and has an entry in Errors.
type ComprehensiveReport struct {
	ID                  string                `json:"id"`
	Crop                string                `json:"crop"`
	State               string                `json:"state"`
	Timestamp           time.Time             `json:"timestamp"`
	Volatility          *VolatilityResult     `json:"volatility,omitempty"`
	SeasonalPatterns    *SeasonalResult       `json:"seasonal_patterns,omitempty"`
	Trends              *TrendResult          `json:"trends,omitempty"`
	Sentiment           *SentimentResult      `json:"sentiment,omitempty"`
	ProfitOpportunities *OpportunityResult    `json:"profit_opportunities,omitempty"`
	Errors              map[string]PanelError `json:"errors,omitempty"`
}
