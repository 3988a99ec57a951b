package weather

import (
	"errors"
	"fmt"
)

// ErrEmptyQuery is returned when a location query is blank after trimming.
var ErrEmptyQuery = errors.New("please enter a city, region, or postal code")

// ConfigurationError reports a missing credential or setting. It is fatal
// and never retried.
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("weather service is not configured: %s is missing", e.Setting)
}

// NotFoundError is returned when no location matches a query after all fallbacks.
type NotFoundError struct {
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no locations found for %q", e.Query)
}

// ProviderError reports a non-success HTTP status from a provider endpoint.
type ProviderError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("weather provider %s returned status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// MalformedDataError reports a response that fails basic shape expectations.
type MalformedDataError struct {
	Reason string
}

func (e *MalformedDataError) Error() string {
	return "weather data was malformed: " + e.Reason
}

// ErrNoSnapshots is returned when a store has nothing for a tracked query.
var ErrNoSnapshots = errors.New("no forecast snapshots stored for this query")

// ErrProviderUnavailable wraps transport failures and open circuit breakers.
var ErrProviderUnavailable = errors.New("weather provider is temporarily unavailable")
