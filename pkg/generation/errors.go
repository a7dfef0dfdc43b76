package generation

import (
	"errors"
	"fmt"
)

var (
	// ErrQuotaExhausted means every model in the fallback list was tried
	// and none produced a usable response.
	ErrQuotaExhausted = errors.New("all fallback models exhausted")

	// ErrInvalidModule is returned when a regeneration request names a
	// module outside the fixed set.
	ErrInvalidModule = errors.New("unknown generation module")

	// ErrMissingContext is returned when a module regeneration requires an
	// upstream output (the refined concept) that has never succeeded.
	ErrMissingContext = errors.New("required upstream module has no output")
)

// ProviderError wraps a non-retryable provider failure. It is terminal: the
// orchestrator does not rotate models or retry once one occurs.
type ProviderError struct {
	Model string
	Err   error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error on model %s: %v", e.Model, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
