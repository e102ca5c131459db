package inference

import (
	"fmt"
	"strings"
)

// RateLimitError means the provider throttled the request, it may be retried.
type RateLimitError struct {
	Err error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited by provider: %v", e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// ProviderError is any other failure reported by the provider (auth, quota, bad request).
type ProviderError struct {
	Code    int
	Status  string
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("provider error %d %s: %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// TransportError is a failure to reach the provider at all.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("unable to reach provider: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ExhaustedError is returned when every attempt was rate limited.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("giving up after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// Skipped describes a tool call that could not be decoded.
type Skipped struct {
	Position int    `json:"position"`
	Reason   string `json:"reason"`
}

// EmptyResultError is the soft outcome of a response without any usable detection.
type EmptyResultError struct {
	Skipped []Skipped
}

func (e *EmptyResultError) Error() string {
	if len(e.Skipped) == 0 {
		return "no components identified"
	}
	reasons := make([]string, 0, len(e.Skipped))
	for _, s := range e.Skipped {
		reasons = append(reasons, s.Reason)
	}
	return fmt.Sprintf("no components identified, %d malformed: %s", len(e.Skipped), strings.Join(reasons, "; "))
}
