package llmgateway

import (
	"fmt"
	"net/http"

	"dev.legalrag.engine/internal/errs"
)

// classifyNetworkError wraps a transport-level failure (DNS, dial,
// timeout) as ProviderTransient, generalized from the teacher's
// Toolkit/Commons/errors NetworkError classification.
func classifyNetworkError(op string, cause error) *errs.Error {
	return errs.New(errs.ProviderTransient, op, cause)
}

// classifyStatusError maps an HTTP response status to the taxonomy in
// spec §7, generalized from the teacher's RateLimitError/
// AuthenticationError/ProviderError classification helpers.
func classifyStatusError(op string, status int, message string) *errs.Error {
	cause := fmt.Errorf("provider returned status %d: %s", status, message)
	switch {
	case status == http.StatusTooManyRequests:
		return errs.New(errs.ProviderTransient, op, cause)
	case status >= 500:
		return errs.New(errs.ProviderTransient, op, cause)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return errs.New(errs.ProviderInvalidOutput, op, cause)
	default:
		return errs.New(errs.ProviderInvalidOutput, op, cause)
	}
}
