package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrModelUnavailable is returned when the language model cannot be reached or is not configured
	ErrModelUnavailable = errors.New("language model unavailable")

	// ErrMalformedModelOutput is returned when a model reply cannot be decoded into the expected shape
	ErrMalformedModelOutput = errors.New("malformed model output")

	// ErrStoreUnavailable is returned when the catalog store fails or is unreachable
	ErrStoreUnavailable = errors.New("catalog store unavailable")

	// ErrInvalidProduct is returned when a catalog record cannot be coerced into a Product
	ErrInvalidProduct = errors.New("invalid product record")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")
)
