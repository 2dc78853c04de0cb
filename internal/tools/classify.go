package tools

import (
	"errors"

	"github.com/vantage-labs/orcaflow/internal/apperr"
	"github.com/vantage-labs/orcaflow/internal/dependency"
	"github.com/vantage-labs/orcaflow/internal/nexttask"
	"github.com/vantage-labs/orcaflow/internal/store"
)

// classify maps any error this package can produce to a stable
// envelope code, a details payload, and a human-readable message. It
// is the one place request handling bridges into the error taxonomy of
// spec section 7.
func classify(err error) (code string, details any, message string) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return string(ae.Kind), ae.Details, ae.Message
	}

	var cycleErr *dependency.CycleError
	if errors.As(err, &cycleErr) {
		return string(apperr.KindCycleDetected), cycleErr.Path, cycleErr.Error()
	}

	var limitErr nexttask.ErrInvalidLimit
	if errors.As(err, &limitErr) {
		return string(apperr.KindValidation), nil, limitErr.Error()
	}

	if errors.Is(err, store.ErrNotFound) {
		return string(apperr.KindNotFound), nil, err.Error()
	}

	return string(apperr.KindInternal), nil, err.Error()
}
