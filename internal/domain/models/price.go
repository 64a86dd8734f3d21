package models

import "time"

// PriceRecord is a single daily market observation for a crop in a state.
type PriceRecord struct {
	Date     time.Time `json:"date"`
	Crop     string    `json:"crop"`
	State    string    `json:"state"`
	Price    float64   `json:"price"`    // per quintal
	Rainfall float64   `json:"rainfall"` // mm
	Demand   float64   `json:"demand"`
}

// PriceSeries is a date-ordered view of the records for one crop/state pair.
// It is derived per request and never mutated.
type PriceSeries struct {
	Crop    string
	State   string
	Records []PriceRecord
}

func (s PriceSeries) Len() int { return len(s.Records) }

func (s PriceSeries) Empty() bool { return len(s.Records) == 0 }

// Prices returns the price column in chronological order.
func (s PriceSeries) Prices() []float64 {
	out := make([]float64, len(s.Records))
	for i, r := range s.Records {
		out[i] = r.Price
	}
	return out
}

// Latest returns the last record of the series.
func (s PriceSeries) Latest() (PriceRecord, bool) {
	if len(s.Records) == 0 {
		return PriceRecord{}, false
	}
	return s.Records[len(s.Records)-1], true
}

// MaxDate returns the latest date present in the series.
func (s PriceSeries) MaxDate() time.Time {
	var max time.Time
	for _, r := range s.Records {
		if r.Date.After(max) {
			max = r.Date
		}
	}
	return max
}

// Window keeps the records dated on or after MaxDate minus days.
// A non-positive days value returns the series unchanged.
func (s PriceSeries) Window(days int) PriceSeries {
	if days <= 0 || len(s.Records) == 0 {
		return s
	}
	cutoff := s.MaxDate().AddDate(0, 0, -days)
	out := make([]PriceRecord, 0, len(s.Records))
	for _, r := range s.Records {
		if !r.Date.Before(cutoff) {
			out = append(out, r)
		}
	}
	return PriceSeries{Crop: s.Crop, State: s.State, Records: out}
}

// Tail returns the last n records.
func (s PriceSeries) Tail(n int) PriceSeries {
	if n <= 0 || n >= len(s.Records) {
		return s
	}
	return PriceSeries{Crop: s.Crop, State: s.State, Records: s.Records[len(s.Records)-n:]}
}
