package dto

// IndicatorResponse represents the JSON response from the
// /v1/indicators/{rsi,sma} endpoints. Results is nil when the provider omits
// the results key.
type IndicatorResponse struct {
	Status    string            `json:"status"`
	RequestID string            `json:"request_id"`
	Results   *IndicatorResults `json:"results"`
}

// IndicatorResults holds the nested values list of an indicator response.
type IndicatorResults struct {
	Values []IndicatorValue `json:"values"`
}

// IndicatorValue is one (timestamp, value) indicator data point.
type IndicatorValue struct {
	Timestamp int64   `json:"timestamp"` // unix ms
	Value     float64 `json:"value"`
}
