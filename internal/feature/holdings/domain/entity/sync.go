package entity

import "time"

// Failure reasons. The set is closed so it can be used as a metric label.
const (
	ReasonInvalidSymbol = "invalid_symbol"
	ReasonProviderError = "provider_error"
	ReasonUnavailable   = "unavailable"
	ReasonStore         = "store"
)

// SyncFailure records why the price of a single holding could not be refreshed.
type SyncFailure struct {
	HoldingID uint   `json:"holdingId"`
	Ticker    string `json:"ticker"`
	Reason    string `json:"reason"`
	Error     string `json:"error"`
}

// SyncReport summarizes one sync run over all stored holdings.
type SyncReport struct {
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
	Total      int           `json:"total"`
	Updated    int           `json:"updated"`
	Failures   []SyncFailure `json:"failures"`
}

// Failed returns the number of holdings whose price was left untouched.
func (r SyncReport) Failed() int {
	return len(r.Failures)
}
