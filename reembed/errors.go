package reembed

import "errors"

var (
	// ErrInvalidMaxAttempts is returned by a RetryPolicy with no attempts.
	ErrInvalidMaxAttempts = errors.New("retry policy needs at least one attempt")

	// ErrEmptyVector is returned when an embedder produced no components.
	ErrEmptyVector = errors.New("empty embedding vector")

	// ErrZeroVector is returned for an all-zero embedding, which has no
	// cosine distance to anything.
	ErrZeroVector = errors.New("zero embedding vector")

	// ErrNonFiniteVector is returned when an embedding holds NaN or Inf.
	ErrNonFiniteVector = errors.New("embedding vector has non-finite components")
)
