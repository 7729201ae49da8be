package session_test

import (
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"

	"github.com/ensemblekit/atril/internal/session"
)

func TestSignInPayloadValidate(t *testing.T) {
	tests := []struct {
		name    string
		payload session.SignInPayload
		wantErr bool
	}{
		{"valid", session.SignInPayload{Email: "clara@ensemble.example", Password: "pw"}, false},
		{"missing email", session.SignInPayload{Password: "pw"}, true},
		{"malformed email", session.SignInPayload{Email: "not-an-email", Password: "pw"}, true},
		{"missing password", session.SignInPayload{Email: "clara@ensemble.example"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.payload.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRegisterRequestValidate(t *testing.T) {
	valid := session.RegisterRequest{
		FirstName:       "Clara",
		LastName:        "Vidal",
		Email:           "clara@ensemble.example",
		Phone:           "+34600111222",
		Instrument:      "viola",
		Password:        "a-long-password",
		ConfirmPassword: "a-long-password",
	}
	assert.NoError(t, valid.Validate())

	t.Run("phone is optional", func(t *testing.T) {
		req := valid
		req.Phone = ""
		assert.NoError(t, req.Validate())
	})

	t.Run("national number uses default region", func(t *testing.T) {
		req := valid
		req.Phone = "600111222"
		assert.NoError(t, req.Validate())
	})

	t.Run("garbage phone rejected", func(t *testing.T) {
		req := valid
		req.Phone = "not a phone"
		err := req.Validate()
		assert.Error(t, err)
		assert.Contains(t, session.FormatValidationErrorToMap(err), "phone_number")
	})

	t.Run("short password rejected", func(t *testing.T) {
		req := valid
		req.Password = "short"
		req.ConfirmPassword = "short"
		err := req.Validate()
		assert.Error(t, err)
		assert.Contains(t, session.FormatValidationErrorToMap(err), "password")
	})

	t.Run("mismatched confirmation rejected", func(t *testing.T) {
		req := valid
		req.ConfirmPassword = "something-else"
		err := req.Validate()
		assert.Error(t, err)
		assert.Contains(t, session.FormatValidationErrorToMap(err), "confirm_password")
	})

	t.Run("field keys follow json tags", func(t *testing.T) {
		err := session.RegisterRequest{}.Validate()
		fields := session.FormatValidationErrorToMap(err)
		assert.Contains(t, fields, "first_name")
		assert.Contains(t, fields, "last_name")
		assert.Contains(t, fields, "email")
	})
}

func TestFormatValidationErrorToMap(t *testing.T) {
	assert.Empty(t, session.FormatValidationErrorToMap(nil))

	opaque := errors.New("something broke")
	fields := session.FormatValidationErrorToMap(opaque)
	assert.Equal(t, map[string]string{"form": "something broke"}, fields)
}

func TestErrorPredicates(t *testing.T) {
	assert.True(t, session.IsInvalidCredentials(session.ErrInvalidCredentials))
	assert.True(t, session.IsAccountPending(session.ErrAccountPending))
	assert.True(t, session.IsAccountBlocked(session.ErrAccountBlocked))
	assert.True(t, session.IsCredentialRejected(session.ErrCredentialRejected))
	assert.True(t, session.IsDuplicateEmail(session.ErrDuplicateEmail))

	assert.False(t, session.IsInvalidCredentials(nil))
	assert.False(t, session.IsInvalidCredentials(errors.New("plain")))
	assert.False(t, session.IsDuplicateEmail(session.ErrInvalidCredentials))
}

func TestErrorPredicatesSeeWrappedErrors(t *testing.T) {
	wrapped := goerrors.Wrap(session.ErrInvalidCredentials, goerrors.CategoryOperation, "login request failed")
	assert.True(t, session.IsInvalidCredentials(wrapped))
}
