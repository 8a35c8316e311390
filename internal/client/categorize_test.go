package client

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/kjstillabower/krishivani/internal/circuitbreaker"
)

// TestCategorizeError verifies that CategorizeError maps errors to the correct ErrorCategory
// for metrics labeling, including sentinel errors and wrapped errors.
func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"nil", nil, ""},
		{"timeout context", context.DeadlineExceeded, ErrorCategoryTimeout},
		{"canceled context", context.Canceled, ErrorCategoryCanceled},
		{"invalid API key", ErrInvalidAPIKey, ErrorCategoryInvalidAPIKey},
		{"wrapped invalid API key", fmt.Errorf("weather: %w", ErrInvalidAPIKey), ErrorCategoryInvalidAPIKey},
		{"rate limited", ErrRateLimited, ErrorCategoryRateLimited},
		{"upstream failure", fmt.Errorf("%w: HTTP 502", ErrUpstreamFailure), ErrorCategoryUpstream},
		{"exhausted retries", fmt.Errorf("exhausted retries: %w", ErrUpstreamFailure), ErrorCategoryUpstream},
		{"wrapped timeout", fmt.Errorf("forecast request timeout: %w", context.DeadlineExceeded), ErrorCategoryTimeout},
		{"network", fmt.Errorf("%w: dial tcp: connection refused", ErrNetwork), ErrorCategoryNetwork},
		{"parse", fmt.Errorf("%w: forecast has no samples", ErrParse), ErrorCategoryParsing},
		{"circuit open", circuitbreaker.ErrOpen, ErrorCategoryCircuitOpen},
		{"unknown", errors.New("something else"), ErrorCategoryUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CategorizeError(tt.err)
			if got != tt.want {
				t.Errorf("CategorizeError() = %v, want %v", got, tt.want)
			}
		})
	}
}
