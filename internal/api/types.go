// Package api defines the request and response types of the HTTP API.
package api

// ErrorResponse is the generic error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is the generic success payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// TokenResponse carries a signed JWT after a successful login.
type TokenResponse struct {
	Token string `json:"token"`
}

// SignupRequest is the payload for POST /signup.
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest is the payload for POST /login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// MarketDataItem is one merged record in a market-data response. Optional
// fields are omitted when the stored record never received them.
type MarketDataItem struct {
	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`
	Time     string `json:"time"`

	Open    *float64 `json:"o,omitempty"`
	Close   *float64 `json:"c,omitempty"`
	Highest *float64 `json:"h,omitempty"`
	Lowest  *float64 `json:"l,omitempty"`
	Volume  *float64 `json:"v,omitempty"`
	VWAP    *float64 `json:"vw,omitempty"`
	Number  *int64   `json:"n,omitempty"`

	RSI14 *float64 `json:"rsi14,omitempty"`
	SMA5  *float64 `json:"sma5,omitempty"`

	FetchTime string            `json:"fetch_time,omitempty"`
	Options   map[string]string `json:"options,omitempty"`
}

// MarketDataResponse is the payload for GET /market-data/:symbol.
type MarketDataResponse struct {
	Symbol  string           `json:"symbol"`
	Count   int              `json:"count"`
	Results []MarketDataItem `json:"results"`
}
