package session

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeInvalidCredentials = "INVALID_CREDENTIALS"
	textCodeAccountPending     = "ACCOUNT_PENDING"
	textCodeAccountBlocked     = "ACCOUNT_BLOCKED"
	textCodeCredentialRejected = "CREDENTIAL_REJECTED"
	textCodeDuplicateEmail     = "DUPLICATE_EMAIL"
	textCodeHandshakeRequired  = "HANDSHAKE_REQUIRED"
)

// ErrInvalidCredentials is returned when the API rejects an email/password pair.
var ErrInvalidCredentials = goerrors.New("invalid email or password", goerrors.CategoryAuth).
	WithTextCode(textCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrAccountPending is returned when the account exists but still awaits approval.
var ErrAccountPending = goerrors.New("account is pending approval", goerrors.CategoryAuth).
	WithTextCode(textCodeAccountPending).
	WithCode(goerrors.CodeForbidden)

// ErrAccountBlocked is returned when the account has been blocked by an administrator.
var ErrAccountBlocked = goerrors.New("account is blocked", goerrors.CategoryAuth).
	WithTextCode(textCodeAccountBlocked).
	WithCode(goerrors.CodeForbidden)

// ErrCredentialRejected is returned when the stored bearer credential is no
// longer accepted by the API (expired, revoked, malformed).
var ErrCredentialRejected = goerrors.New("credential rejected", goerrors.CategoryAuth).
	WithTextCode(textCodeCredentialRejected).
	WithCode(goerrors.CodeUnauthorized)

// ErrDuplicateEmail is returned by registration when the email is already taken.
var ErrDuplicateEmail = goerrors.New("email already registered", goerrors.CategoryConflict).
	WithTextCode(textCodeDuplicateEmail).
	WithCode(goerrors.CodeConflict)

// ErrHandshakeRequired is returned when login or register is attempted without
// the pre-authentication handshake token.
var ErrHandshakeRequired = goerrors.New("handshake token required", goerrors.CategoryBadInput).
	WithTextCode(textCodeHandshakeRequired).
	WithCode(goerrors.CodeBadRequest)

// statusAuthError converts a non-active account status into its auth error.
func statusAuthError(status AccountStatus) error {
	switch status {
	case StatusActive:
		return nil
	case StatusPending:
		return ErrAccountPending
	case StatusBlocked:
		return ErrAccountBlocked
	default:
		return goerrors.New("account has an unknown status", goerrors.CategoryAuth).
			WithTextCode("INVALID_ACCOUNT_STATUS").
			WithMetadata(map[string]any{"status": status})
	}
}

func hasTextCode(err error, code string) bool {
	for err != nil {
		var richErr *goerrors.Error
		if !goerrors.As(err, &richErr) {
			return false
		}
		if richErr.TextCode == code {
			return true
		}
		err = errors.Unwrap(richErr)
	}
	return false
}

// IsInvalidCredentials checks for a rejected email/password pair.
func IsInvalidCredentials(err error) bool {
	return hasTextCode(err, textCodeInvalidCredentials)
}

// IsAccountPending checks for the pending-approval outcome.
func IsAccountPending(err error) bool {
	return hasTextCode(err, textCodeAccountPending)
}

// IsAccountBlocked checks for the blocked-account outcome.
func IsAccountBlocked(err error) bool {
	return hasTextCode(err, textCodeAccountBlocked)
}

// IsCredentialRejected checks for a rejected bearer credential.
func IsCredentialRejected(err error) bool {
	return hasTextCode(err, textCodeCredentialRejected)
}

// IsDuplicateEmail checks for the duplicate-registration outcome.
func IsDuplicateEmail(err error) bool {
	return hasTextCode(err, textCodeDuplicateEmail)
}
