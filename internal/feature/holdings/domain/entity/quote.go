package entity

import "time"

// Quote is a point-in-time price and metadata snapshot for a symbol.
type Quote struct {
	Symbol   string  // Provider symbol, e.g. "AAPL"
	Name     string  // Company name, empty when the provider could not resolve it
	Close    float64 // Latest close price
	Currency string  // Trading currency, e.g. "USD"
	Exchange string  // Listing exchange, e.g. "NASDAQ"
	Country  string  // Country of the exchange, may be empty
}

// PricePoint is one (timestamp, close) pair of a historical series.
type PricePoint struct {
	Time     time.Time // Start of the bar
	Datetime string    // Timestamp exactly as the provider sent it
	Close    float64   // Close price of the bar
}
