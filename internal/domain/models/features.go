package models

// FeatureNames is the column order expected by trained price models.
var FeatureNames = []string{"Rainfall", "Demand", "month", "day_of_week", "moving_average_7_day"}

// FeatureVector is the model input for a single target date.
type FeatureVector struct {
	Rainfall          float64 `json:"Rainfall"`
	Demand            float64 `json:"Demand"`
	Month             int     `json:"month"`       // 1..12
	DayOfWeek         int     `json:"day_of_week"` // Monday=0
	MovingAverage7Day float64 `json:"moving_average_7_day"`
}

// Values returns the features in FeatureNames order.
func (f FeatureVector) Values() []float64 {
	return []float64{f.Rainfall, f.Demand, float64(f.Month), float64(f.DayOfWeek), f.MovingAverage7Day}
}

// Map returns the features keyed by FeatureNames.
func (f FeatureVector) Map() map[string]float64 {
	vals := f.Values()
	out := make(map[string]float64, len(vals))
	for i, name := range FeatureNames {
		out[name] = vals[i]
	}
	return out
}
