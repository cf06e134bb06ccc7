package service

import (
	"errors"

	"github.com/ledgerport/order-admission/internal/core/domain"
)

// outcomeOf collapses an admission result into the closed set of outcome
// codes used by metrics labels and the scenario harness.
func outcomeOf(err error) string {
	if err == nil {
		return "created"
	}

	var rej *domain.RejectionError
	if errors.As(err, &rej) {
		return string(rej.Reason)
	}

	var val *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrDuplicateOrder):
		return "duplicate"
	case errors.Is(err, domain.ErrClientNotFound), errors.Is(err, domain.ErrOrderNotFound):
		return "not_found"
	case errors.As(err, &val):
		return "invalid_argument"
	default:
		return "error"
	}
}
