// Package entity defines the domain models for the holdings feature.
package entity

import "time"

// Holding represents one stock position tracked by the portfolio.
type Holding struct {
	ID           uint      // Assigned by the store on creation, never changed afterwards
	Ticker       string    // Normalized symbol (trimmed, uppercased), e.g. "TSLA"
	CompanyName  string    // Name resolved from the provider at create/update time
	Quantity     int64     // Number of shares (always 1 for now)
	BuyPrice     float64   // Close price at the time of the last create/update
	CurrentPrice float64   // Latest known market price
	CreatedAt    time.Time // Creation timestamp
	UpdatedAt    time.Time // Last write timestamp
}
