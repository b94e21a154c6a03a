package auth

import (
	"errors"
	"fmt"
)

// ErrNotAuthenticated is returned when no usable credential exists and
// the caller did not request an interactive flow.
var ErrNotAuthenticated = errors.New("not authenticated")

// AuthError kinds
const (
	KindCSRFMismatch        = "csrf_mismatch"
	KindMissingCode         = "missing_code"
	KindProviderDenied      = "provider_denied"
	KindTokenExchangeFailed = "token_exchange_failed"
)

// AuthError describes a failure in the authorization flow. Status and
// Body are populated only for token exchange failures.
type AuthError struct {
	Kind   string
	Detail string
	Status int
	Body   string
}

func (e *AuthError) Error() string {
	if e.Kind == KindTokenExchangeFailed {
		return fmt.Sprintf("authorization failed (%s): status %d: %s", e.Kind, e.Status, e.Detail)
	}
	return fmt.Sprintf("authorization failed (%s): %s", e.Kind, e.Detail)
}
