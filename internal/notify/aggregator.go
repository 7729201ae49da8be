// Package notify derives actionable counts for the current identity and
// exposes a transient advisory banner. It is a best-effort consumer of the
// session: a failed notification fetch never blocks or fails sign-in.
package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ensemblekit/atril/internal/session"
)

// DefaultDisplayWindow is how long the banner stays visible.
const DefaultDisplayWindow = 5 * time.Second

// noticeSeparator joins the individual notices into the banner text.
const noticeSeparator = " · "

// CountsAPI is the slice of the remote API the aggregator consumes.
type CountsAPI interface {
	PendingUsers(ctx context.Context) (int, error)
	UnreadMessages(ctx context.Context, recipient uuid.UUID) (int, error)
}

// Banner is the transient advisory shown after sign-in.
type Banner struct {
	Visible  bool
	Text     string
	Deadline time.Time
}

// Aggregator recomputes notification counts once per successful sign-in.
type Aggregator struct {
	api    CountsAPI
	logger session.Logger
	window time.Duration
	now    func() time.Time

	mu         sync.Mutex
	banner     Banner
	generation uint64
}

// New returns an Aggregator with the default display window.
func New(api CountsAPI) *Aggregator {
	return &Aggregator{
		api:    api,
		logger: noopLogger{},
		window: DefaultDisplayWindow,
		now:    time.Now,
	}
}

func (a *Aggregator) WithLogger(logger session.Logger) *Aggregator {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// WithClock injects a custom clock (useful for tests).
func (a *Aggregator) WithClock(clock func() time.Time) *Aggregator {
	if clock != nil {
		a.now = clock
	}
	return a
}

// WithDisplayWindow overrides how long the banner stays visible.
func (a *Aggregator) WithDisplayWindow(d time.Duration) *Aggregator {
	if d > 0 {
		a.window = d
	}
	return a
}

// Recompute issues the independent count queries for the given identity and
// replaces the banner. A recompute that lost the race to a newer identity is
// discarded wholesale: a stale banner is cleared, never merged.
func (a *Aggregator) Recompute(ctx context.Context, identity session.Identity) Banner {
	a.mu.Lock()
	a.generation++
	gen := a.generation
	a.mu.Unlock()

	var notices []string

	if identity.IsAdmin() {
		if n, err := a.api.PendingUsers(ctx); err != nil {
			a.logger.Warn("pending-approval count failed: %v", err)
		} else if n > 0 {
			notices = append(notices, fmt.Sprintf("%d %s awaiting approval", n, plural(n, "registration", "registrations")))
		}
	}

	if n, err := a.api.UnreadMessages(ctx, identity.ID); err != nil {
		a.logger.Warn("unread-message count failed: %v", err)
	} else if n > 0 {
		notices = append(notices, fmt.Sprintf("%d unread %s", n, plural(n, "message", "messages")))
	}

	banner := Banner{}
	if len(notices) > 0 {
		banner = Banner{
			Visible:  true,
			Text:     strings.Join(notices, noticeSeparator),
			Deadline: a.now().Add(a.window),
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.generation {
		return Banner{}
	}
	a.banner = banner
	return banner
}

// Banner returns the current banner, reported hidden once the display window
// has elapsed.
func (a *Aggregator) Banner() Banner {
	a.mu.Lock()
	banner := a.banner
	a.mu.Unlock()

	if banner.Visible && !banner.Deadline.After(a.now()) {
		banner.Visible = false
	}
	return banner
}

// Clear drops the banner and invalidates any in-flight recompute. Called
// when the session ends or a new identity is being established.
func (a *Aggregator) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.generation++
	a.banner = Banner{}
}

func plural(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
