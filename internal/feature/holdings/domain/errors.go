// Package domain defines domain-level errors for the holdings feature.
package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors for holding and quote operations.
// The transport layer maps these to HTTP status codes; nothing below it retries.
var (
	// ErrNotFound indicates that no holding exists for the requested id.
	ErrNotFound = errors.New("holding not found")

	// ErrInvalidSymbol indicates that the provider does not know the symbol
	// or rejected it as malformed.
	ErrInvalidSymbol = errors.New("invalid symbol")

	// ErrResourceInvalid indicates that the provider answered but the ticker
	// could not be resolved to a named instrument.
	ErrResourceInvalid = errors.New("ticker could not be resolved")

	// ErrProviderUnavailable indicates a transport-level failure talking to the
	// market-data provider: timeouts, refused connections or unreadable bodies.
	ErrProviderUnavailable = errors.New("market data provider unavailable")
)

// ProviderError is returned when the provider rejected a request with a
// structured payload carrying a machine-readable code.
type ProviderError struct {
	Symbol  string
	Code    int
	Message string
}

func (e *ProviderError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("provider error %d for %s: %s", e.Code, e.Symbol, e.Message)
}

// Is reports ProviderErrors with a 400 or 404 code as ErrInvalidSymbol so
// callers can treat unknown symbols uniformly.
func (e *ProviderError) Is(target error) bool {
	if target != ErrInvalidSymbol {
		return false
	}
	return e.Code == http.StatusBadRequest || e.Code == http.StatusNotFound
}
