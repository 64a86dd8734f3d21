package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies engine failures.
type ErrorKind string

const (
	KindDataUnavailable  ErrorKind = "DATA_UNAVAILABLE"
	KindNoHistoricalData ErrorKind = "NO_HISTORICAL_DATA"
	KindInsufficientData ErrorKind = "INSUFFICIENT_DATA"
	KindNoData           ErrorKind = "NO_DATA"
	KindModelNotFound    ErrorKind = "MODEL_NOT_FOUND"
)

// Sentinels for errors.Is matching against an AnalysisError of the same kind.
var (
	ErrDataUnavailable  = &AnalysisError{Kind: KindDataUnavailable}
	ErrNoHistoricalData = &AnalysisError{Kind: KindNoHistoricalData}
	ErrInsufficientData = &AnalysisError{Kind: KindInsufficientData}
	ErrNoData           = &AnalysisError{Kind: KindNoData}
	ErrModelNotFound    = &AnalysisError{Kind: KindModelNotFound}
)

// AnalysisError is returned by the store, predictor and analyzers.
type AnalysisError struct {
	Kind       ErrorKind `json:"kind"`
	Message    string    `json:"message"`
	DataPoints int       `json:"data_points"`
	Err        error     `json:"-"`
}

func (e *AnalysisError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// Is matches any AnalysisError with the same kind.
func (e *AnalysisError) Is(target error) bool {
	t, ok := target.(*AnalysisError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// InsufficientData builds the error for a series shorter than required.
func InsufficientData(message string, points int) *AnalysisError {
	return &AnalysisError{Kind: KindInsufficientData, Message: message, DataPoints: points}
}

func NoHistoricalData(crop, state string) *AnalysisError {
	return &AnalysisError{
		Kind:    KindNoHistoricalData,
		Message: fmt.Sprintf("No historical data for %s in %s", crop, state),
	}
}

func NoData(crop, state string) *AnalysisError {
	return &AnalysisError{
		Kind:    KindNoData,
		Message: fmt.Sprintf("No data available for %s in %s", crop, state),
	}
}

func ModelNotFound(crop, state string) *AnalysisError {
	return &AnalysisError{
		Kind:    KindModelNotFound,
		Message: fmt.Sprintf("Model not found for %s in %s", crop, state),
	}
}

func DataUnavailable(err error) *AnalysisError {
	return &AnalysisError{Kind: KindDataUnavailable, Message: "historical data unavailable", Err: err}
}

// KindOf extracts the kind of an AnalysisError in the chain, or "" otherwise.
func KindOf(err error) ErrorKind {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// PanelErrorFrom converts err into the per-panel error record of a report.
func PanelErrorFrom(err error) PanelError {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return PanelError{Kind: ae.Kind, Message: ae.Error(), DataPoints: ae.DataPoints}
	}
	return PanelError{Message: err.Error()}
}
