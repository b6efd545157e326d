// Package dto defines data transfer objects for the polygon.io API responses.
package dto

// AggregatesResponse represents the JSON response from the
// /v2/aggs/ticker/{symbol}/range endpoint. Results is nil when the provider
// omits the results key (no data for the window).
type AggregatesResponse struct {
	Ticker       string         `json:"ticker"`
	QueryCount   int            `json:"queryCount"`
	ResultsCount int            `json:"resultsCount"`
	Adjusted     bool           `json:"adjusted"`
	Status       string         `json:"status"`
	RequestID    string         `json:"request_id"`
	Results      []AggregateBar `json:"results"`
}

// AggregateBar is one OHLCV bar in an aggregates response.
type AggregateBar struct {
	Time   int64   `json:"t"`  // bar-open timestamp, unix ms
	Open   float64 `json:"o"`
	Close  float64 `json:"c"`
	High   float64 `json:"h"`
	Low    float64 `json:"l"`
	Volume float64 `json:"v"`
	VWAP   float64 `json:"vw"` // volume weighted average price
	Number int64   `json:"n"`  // number of transactions in the bar
}
