package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/i474232898/optimistic-forecast/internal/common"
	"github.com/i474232898/optimistic-forecast/internal/observability"
	"github.com/i474232898/optimistic-forecast/internal/weather"
)

const maxErrorBody = 512

// newCircuitBreaker trips on transport failures, throttling, and server
// errors. Client errors such as 404 do not count against the provider.
func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var pe *weather.ProviderError
			if errors.As(err, &pe) {
				return pe.StatusCode < http.StatusInternalServerError && pe.StatusCode != http.StatusTooManyRequests
			}
			return false
		},
	})
}

// doRequestWithResilience executes a single GET through the circuit breaker
// and decodes the JSON body into out. There are no retries: a failure is
// returned to the caller, which decides whether to degrade.
func doRequestWithResilience(
	ctx context.Context,
	cb *gobreaker.CircuitBreaker,
	metrics *observability.Metrics,
	endpoint string,
	req *resty.Request,
	path string,
	out any,
) error {
	start := time.Now()

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := req.SetContext(ctx).Get(path)
		if execErr != nil {
			return nil, fmt.Errorf("%w: %s: %w", weather.ErrProviderUnavailable, endpoint, execErr)
		}
		if !resp.IsSuccess() {
			return nil, &weather.ProviderError{
				Endpoint:   endpoint,
				StatusCode: resp.StatusCode(),
				Body:       common.Truncate(resp.String(), maxErrorBody),
			}
		}
		return resp, nil
	})

	metrics.ProviderDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if err != nil {
		outcome := "error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = "circuit_open"
			err = fmt.Errorf("%w: %s circuit breaker: %v", weather.ErrProviderUnavailable, endpoint, err)
		}
		metrics.ProviderRequests.WithLabelValues(endpoint, outcome).Inc()
		return err
	}

	resp, ok := result.(*resty.Response)
	if !ok {
		return fmt.Errorf("unexpected result type from circuit breaker")
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		metrics.ProviderRequests.WithLabelValues(endpoint, "error").Inc()
		return &weather.MalformedDataError{Reason: fmt.Sprintf("%s: %v", endpoint, err)}
	}

	metrics.ProviderRequests.WithLabelValues(endpoint, "success").Inc()
	return nil
}
