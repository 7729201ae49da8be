package session

import (
	"context"
	"fmt"
)

// Logger is the minimal logging surface the session core needs. Callers can
// plug in whatever structured logger the host application uses.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// IdentityAPI is the slice of the remote ensemble API the session manager
// consumes. The concrete client lives in internal/api.
type IdentityAPI interface {
	Handshake(ctx context.Context) (string, error)
	Login(ctx context.Context, handshake, email, password string) (string, error)
	Register(ctx context.Context, handshake string, req RegisterRequest) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) (Identity, error)
}

// CredentialStore persists the bearer credential between process runs.
// An empty string from Read means no credential is stored, which is a valid,
// expected state.
type CredentialStore interface {
	Read() (string, error)
	Write(token string) error
	Clear() error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] SESSION "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] SESSION "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] SESSION "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] SESSION "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
