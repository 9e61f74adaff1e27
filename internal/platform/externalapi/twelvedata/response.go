package twelvedata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"stock_portfolio/internal/feature/holdings/domain"
	"stock_portfolio/internal/platform/externalapi/twelvedata/dto"
)

// successCode is the value of the embedded "code" field on success.
const successCode = 200

// maxResponseSize caps how much of a provider response is read.
const maxResponseSize = 10 << 20

// inspectResponse is the only place provider responses are classified.
// On success the body is decoded into out.
//
//   - unreadable, non-JSON or null body      -> domain.ErrProviderUnavailable
//   - embedded code != 200 or status "error" -> *domain.ProviderError (HTTP status ignored)
//   - non-2xx without a structured payload   -> ErrProviderUnavailable for 5xx, ErrInvalidSymbol otherwise
func inspectResponse(res *http.Response, symbol string, out any) error {
	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseSize))
	if err != nil {
		return unavailable(symbol, fmt.Errorf("read body: %w", err))
	}

	var env dto.Envelope
	envErr := json.Unmarshal(body, &env)
	if envErr == nil {
		if pe := providerError(symbol, env); pe != nil {
			return pe
		}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		if res.StatusCode >= 500 {
			return unavailable(symbol, fmt.Errorf("twelvedata http %d", res.StatusCode))
		}
		return fmt.Errorf("%w: %s (twelvedata http %d)", domain.ErrInvalidSymbol, symbol, res.StatusCode)
	}

	if envErr != nil {
		return unavailable(symbol, fmt.Errorf("decode response: %w", envErr))
	}
	if bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
		return unavailable(symbol, errors.New("empty response payload"))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return unavailable(symbol, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// providerError returns a ProviderError when the envelope signals failure.
func providerError(symbol string, env dto.Envelope) *domain.ProviderError {
	switch {
	case env.Code != nil && *env.Code != successCode:
		return &domain.ProviderError{Symbol: symbol, Code: *env.Code, Message: env.Message}
	case env.Status == "error":
		return &domain.ProviderError{Symbol: symbol, Message: env.Message}
	}
	return nil
}

func unavailable(symbol string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrProviderUnavailable, symbol, err)
}
