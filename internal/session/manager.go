package session

import (
	"context"
	"sync"
	"time"
)

// Redirect is a navigation signal returned to the caller. The session core
// never navigates by itself; the shell reacts to these values.
type Redirect int

const (
	// RedirectNone means stay where you are.
	RedirectNone Redirect = iota
	// RedirectSignIn sends the user to the sign-in screen.
	RedirectSignIn
	// RedirectLanding sends the user to the landing screen.
	RedirectLanding
	// RedirectPending sends the user to the registration-pending screen.
	RedirectPending
)

// InitOutcome is the result of the one-time startup identity resolution.
type InitOutcome struct {
	Redirect Redirect
	// Alert carries a blocking, user-visible message (blocked accounts).
	Alert string
}

// SignInReason discriminates sign-in failures.
type SignInReason string

const (
	ReasonInvalidCredentials SignInReason = "invalid_credentials"
	ReasonAccountPending     SignInReason = "pending"
	ReasonAccountBlocked     SignInReason = "blocked"
	ReasonUnknown            SignInReason = "unknown"
)

// SignInResult is the discriminated outcome of a sign-in attempt.
type SignInResult struct {
	OK       bool
	Reason   SignInReason
	Message  string
	Redirect Redirect
}

// RegisterResult is the discriminated outcome of a registration attempt.
type RegisterResult struct {
	OK             bool
	DuplicateEmail bool
	Message        string
	Fields         map[string]string
	Redirect       Redirect
}

const (
	msgInvalidCredentials = "Invalid email or password."
	msgAccountPending     = "Your registration is still awaiting approval."
	msgAccountBlocked     = "Your account has been blocked. Contact an administrator."
	msgSignInUnknown      = "Could not sign in. Please try again later."
	msgRegisterDuplicate  = "That email is already registered."
	msgRegisterUnknown    = "Registration failed. Please try again later."
)

// DefaultLogoutWait bounds how long sign-out waits for server-side
// invalidation before clearing local state regardless.
const DefaultLogoutWait = 3 * time.Second

// EstablishedHook runs once after a successful sign-in establishes a session.
type EstablishedHook func(ctx context.Context, identity Identity)

// Manager is the single authority for the current actor and credential
// lifecycle. Guards and the notification aggregator only ever read from it.
type Manager struct {
	api        IdentityAPI
	store      CredentialStore
	logger     Logger
	sink       ActivitySink
	now        func() time.Time
	logoutWait time.Duration

	onEstablished EstablishedHook

	mu           sync.RWMutex
	identity     *Identity
	credential   string
	initializing bool
	initOnce     sync.Once
}

// NewManager returns a Manager that starts in the initializing state.
func NewManager(api IdentityAPI, store CredentialStore) *Manager {
	return &Manager{
		api:          api,
		store:        store,
		logger:       defLogger{},
		sink:         noopActivitySink{},
		now:          time.Now,
		logoutWait:   DefaultLogoutWait,
		initializing: true,
	}
}

func (m *Manager) WithLogger(logger Logger) *Manager {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// WithActivitySink configures an ActivitySink for session events.
func (m *Manager) WithActivitySink(sink ActivitySink) *Manager {
	m.sink = normalizeActivitySink(sink)
	return m
}

// WithClock injects a custom clock (useful for tests).
func (m *Manager) WithClock(clock func() time.Time) *Manager {
	if clock != nil {
		m.now = clock
	}
	return m
}

// WithLogoutWait overrides the bounded wait applied to server-side sign-out.
func (m *Manager) WithLogoutWait(d time.Duration) *Manager {
	if d > 0 {
		m.logoutWait = d
	}
	return m
}

// OnSessionEstablished registers the hook invoked after a successful sign-in.
func (m *Manager) OnSessionEstablished(hook EstablishedHook) *Manager {
	m.onEstablished = hook
	return m
}

// Snapshot returns the read-only view guards evaluate against.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := Snapshot{Initializing: m.initializing}
	if m.identity != nil {
		ident := *m.identity
		snap.Identity = &ident
	}
	return snap
}

// Credential exposes the current bearer credential to the API transport.
func (m *Manager) Credential() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.credential, m.credential != ""
}

// Initialize resolves the stored credential into an identity, once, at
// process start. Every path through it settles the initializing flag exactly
// once; failures resolve to the unauthenticated state rather than erroring.
func (m *Manager) Initialize(ctx context.Context) InitOutcome {
	defer m.finishInitializing()

	outcome := InitOutcome{}

	raw, err := m.store.Read()
	if err != nil {
		m.logger.Warn("failed to read stored credential: %v", err)
		return outcome
	}
	if raw == "" {
		return outcome
	}

	if credentialExpired(raw, m.now()) {
		m.logger.Info("stored credential expired, discarding")
		m.discardCredential(ctx, "expired")
		return outcome
	}

	m.setCredential(raw)

	identity, err := m.api.Me(ctx)
	if err != nil {
		m.logger.Warn("identity lookup failed: %v", err)
		m.discardCredential(ctx, "lookup_failed")
		return outcome
	}

	switch identity.Status {
	case StatusActive:
		m.establish(identity)
	case StatusPending:
		m.discardCredential(ctx, "pending")
		outcome.Redirect = RedirectPending
	case StatusBlocked:
		m.discardCredential(ctx, "blocked")
		outcome.Redirect = RedirectSignIn
		outcome.Alert = msgAccountBlocked
	default:
		m.logger.Warn("identity has unknown account status: %s", identity.Status)
		m.discardCredential(ctx, "unknown_status")
	}

	return outcome
}

// SignIn acquires the handshake token, submits credentials, persists the
// returned credential, and re-resolves the identity. Identity establishment
// is strictly ordered after credential persistence.
func (m *Manager) SignIn(ctx context.Context, email, password string) SignInResult {
	payload := SignInPayload{Email: email, Password: password}
	if err := payload.Validate(); err != nil {
		return SignInResult{Reason: ReasonInvalidCredentials, Message: msgInvalidCredentials}
	}

	handshake, err := m.api.Handshake(ctx)
	if err != nil {
		m.logger.Error("sign-in handshake failed: %v", err)
		return m.signInFailure(ctx, email, ReasonUnknown, msgSignInUnknown, err)
	}

	token, err := m.api.Login(ctx, handshake, email, password)
	if err != nil {
		if IsInvalidCredentials(err) {
			return m.signInFailure(ctx, email, ReasonInvalidCredentials, msgInvalidCredentials, err)
		}
		m.logger.Error("sign-in request failed: %v", err)
		return m.signInFailure(ctx, email, ReasonUnknown, msgSignInUnknown, err)
	}

	if err := m.store.Write(token); err != nil {
		m.logger.Error("failed to persist credential: %v", err)
		return m.signInFailure(ctx, email, ReasonUnknown, msgSignInUnknown, err)
	}
	m.setCredential(token)

	identity, err := m.api.Me(ctx)
	if err != nil {
		m.logger.Error("post sign-in identity lookup failed: %v", err)
		m.discardCredential(ctx, "lookup_failed")
		return m.signInFailure(ctx, email, ReasonUnknown, msgSignInUnknown, err)
	}

	switch identity.Status {
	case StatusPending:
		m.discardCredential(ctx, "pending")
		res := m.signInFailure(ctx, email, ReasonAccountPending, msgAccountPending, statusAuthError(identity.Status))
		res.Redirect = RedirectPending
		return res
	case StatusBlocked:
		m.discardCredential(ctx, "blocked")
		return m.signInFailure(ctx, email, ReasonAccountBlocked, msgAccountBlocked, statusAuthError(identity.Status))
	case StatusActive:
		m.establish(identity)
		m.emit(ctx, ActivityEventSignInSuccess, identity.ID.String(), map[string]any{"email": email})
		if m.onEstablished != nil {
			m.onEstablished(ctx, identity)
		}
		return SignInResult{OK: true, Redirect: RedirectLanding}
	default:
		m.discardCredential(ctx, "unknown_status")
		return m.signInFailure(ctx, email, ReasonUnknown, msgSignInUnknown, statusAuthError(identity.Status))
	}
}

// SignOut attempts server-side invalidation with a bounded wait, then clears
// local state unconditionally. It must never leave stale local trust.
func (m *Manager) SignOut(ctx context.Context) Redirect {
	invCtx, cancel := context.WithTimeout(ctx, m.logoutWait)
	defer cancel()

	userID := ""
	if snap := m.Snapshot(); snap.Identity != nil {
		userID = snap.Identity.ID.String()
	}

	if err := m.api.Logout(invCtx); err != nil {
		m.logger.Warn("server-side sign-out failed, clearing local session anyway: %v", err)
	}

	m.clearSession()
	if err := m.store.Clear(); err != nil {
		m.logger.Warn("failed to clear stored credential: %v", err)
	}

	m.emit(ctx, ActivityEventSignOut, userID, nil)

	return RedirectSignIn
}

// Register submits a new-account request. Success yields no session; new
// accounts start pending.
func (m *Manager) Register(ctx context.Context, req RegisterRequest) RegisterResult {
	if err := req.Validate(); err != nil {
		return RegisterResult{
			Message: "Please correct the highlighted fields.",
			Fields:  FormatValidationErrorToMap(err),
		}
	}

	handshake, err := m.api.Handshake(ctx)
	if err != nil {
		m.logger.Error("registration handshake failed: %v", err)
		return RegisterResult{Message: msgRegisterUnknown}
	}

	if err := m.api.Register(ctx, handshake, req); err != nil {
		if IsDuplicateEmail(err) {
			return RegisterResult{
				DuplicateEmail: true,
				Message:        msgRegisterDuplicate,
				Fields:         map[string]string{"email": msgRegisterDuplicate},
			}
		}
		m.logger.Error("registration failed: %v", err)
		return RegisterResult{Message: msgRegisterUnknown}
	}

	m.emit(ctx, ActivityEventRegisterAccepted, "", map[string]any{"email": req.Email})

	return RegisterResult{OK: true, Redirect: RedirectPending}
}

func (m *Manager) signInFailure(ctx context.Context, email string, reason SignInReason, message string, cause error) SignInResult {
	meta := map[string]any{"email": email, "reason": string(reason)}
	if cause != nil {
		meta["error"] = cause.Error()
	}
	m.emit(ctx, ActivityEventSignInFailure, "", meta)

	return SignInResult{Reason: reason, Message: message}
}

func (m *Manager) establish(identity Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ident := identity
	m.identity = &ident
}

func (m *Manager) setCredential(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.credential = token
}

func (m *Manager) clearSession() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identity = nil
	m.credential = ""
}

// discardCredential drops local and stored trust after the server reported a
// non-active status or rejected the credential.
func (m *Manager) discardCredential(ctx context.Context, reason string) {
	m.clearSession()
	if err := m.store.Clear(); err != nil {
		m.logger.Warn("failed to clear stored credential: %v", err)
	}
	m.emit(ctx, ActivityEventSessionRevoked, "", map[string]any{"reason": reason})
}

func (m *Manager) finishInitializing() {
	m.initOnce.Do(func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.initializing = false
	})
}

func (m *Manager) emit(ctx context.Context, eventType ActivityEventType, userID string, metadata map[string]any) {
	sink := normalizeActivitySink(m.sink)
	event := ActivityEvent{
		EventType: eventType,
		UserID:    userID,
		Metadata:  metadata,
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = m.now()
	}

	if err := sink.Record(ctx, event); err != nil {
		m.logger.Warn("activity sink record error: %v", err)
	}
}
