package provider

import "errors"

var (
	// ErrProviderUnavailable indicates a transport failure or a non-success
	// response from the trace service.
	ErrProviderUnavailable = errors.New("provider: trace service unavailable")

	// ErrEmptyMap indicates a response with an empty or malformed map or trace.
	ErrEmptyMap = errors.New("provider: empty or malformed map")

	// ErrResponseTooLarge indicates a response body over the configured
	// limit. It is reported together with ErrProviderUnavailable.
	ErrResponseTooLarge = errors.New("provider: response too large")

	// ErrUnknownAlgorithm indicates an algorithm selector outside 0..2.
	ErrUnknownAlgorithm = errors.New("provider: unknown algorithm")
)
