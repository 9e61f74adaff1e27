// Package dto defines data transfer objects for the Twelve Data API responses.
package dto

// Envelope holds the fields every Twelve Data payload may carry to signal
// failure. Code is a pointer so an absent field can be told apart from zero.
type Envelope struct {
	Status  string `json:"status,omitempty"`
	Code    *int   `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// QuoteResponse represents the JSON response from the Twelve Data quote endpoint.
// Numeric values are sent as strings.
type QuoteResponse struct {
	Envelope
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Currency string `json:"currency"`
	Country  string `json:"country,omitempty"`
	Datetime string `json:"datetime"`
	Close    string `json:"close"`
}

// TimeSeriesResponse represents the JSON response from the Twelve Data time_series endpoint.
type TimeSeriesResponse struct {
	Envelope
	Meta struct {
		Symbol   string `json:"symbol"`
		Interval string `json:"interval"`
	} `json:"meta"`
	Values []struct {
		Datetime string `json:"datetime"`
		Close    string `json:"close"`
	} `json:"values"`
}
