package app

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ensemblekit/atril/internal/notify"
	"github.com/ensemblekit/atril/internal/session"
	"github.com/ensemblekit/atril/internal/tui"
	"github.com/ensemblekit/atril/internal/tui/views"
)

type stubAPI struct {
	me      session.Identity
	meErr   error
	pending int
	unread  int
}

func (s *stubAPI) Handshake(ctx context.Context) (string, error) { return "csrf", nil }

func (s *stubAPI) Login(ctx context.Context, handshake, email, password string) (string, error) {
	return "token", nil
}

func (s *stubAPI) Register(ctx context.Context, handshake string, req session.RegisterRequest) error {
	return nil
}

func (s *stubAPI) Logout(ctx context.Context) error { return nil }

func (s *stubAPI) Me(ctx context.Context) (session.Identity, error) {
	if s.meErr != nil {
		return session.Identity{}, s.meErr
	}
	return s.me, nil
}

func (s *stubAPI) PendingUsers(ctx context.Context) (int, error) { return s.pending, nil }

func (s *stubAPI) UnreadMessages(ctx context.Context, recipient uuid.UUID) (int, error) {
	return s.unread, nil
}

func identity(role session.Role) session.Identity {
	return session.Identity{
		ID:          uuid.New(),
		DisplayName: "Clara Vidal",
		Email:       "clara@ensemble.example",
		Role:        role,
		Status:      session.StatusActive,
	}
}

// newApp builds an App around a stub API, wired the way cmd/atril wires the
// real graph: the session-established hook drives the notification recompute.
func newApp(t *testing.T, api *stubAPI, signedIn bool) App {
	t.Helper()

	mgr := session.NewManager(api, &session.MemoryStore{})
	notifier := notify.New(api)
	mgr.OnSessionEstablished(func(ctx context.Context, identity session.Identity) {
		notifier.Recompute(ctx, identity)
	})

	mgr.Initialize(context.Background())
	if signedIn {
		require.True(t, mgr.SignIn(context.Background(), "clara@ensemble.example", "correct-horse").OK)
	}

	return New(mgr, notifier, api)
}

func apply(t *testing.T, a App, msg tea.Msg) (App, tea.Msg) {
	t.Helper()

	model, cmd := a.Update(msg)
	next, ok := model.(App)
	require.True(t, ok)

	if cmd == nil {
		return next, nil
	}
	return next, cmd()
}

func TestStartsLoading(t *testing.T) {
	a := newApp(t, &stubAPI{}, false)

	assert.Equal(t, tui.StateLoading, a.state)
	assert.Contains(t, a.View(), "Checking your session")
}

func TestInitOutcomeUnauthenticated(t *testing.T) {
	a := newApp(t, &stubAPI{}, false)

	a, _ = apply(t, a, initDoneMsg{})

	assert.Equal(t, tui.StateSignIn, a.state)
}

func TestInitOutcomeAuthenticated(t *testing.T) {
	a := newApp(t, &stubAPI{me: identity(session.RoleMember)}, true)

	a, _ = apply(t, a, initDoneMsg{})

	assert.Equal(t, tui.StateLanding, a.state)
	assert.Contains(t, a.View(), "Clara Vidal")
}

func TestInitOutcomeBlockedAlert(t *testing.T) {
	a := newApp(t, &stubAPI{}, false)

	a, _ = apply(t, a, initDoneMsg{outcome: session.InitOutcome{
		Redirect: session.RedirectSignIn,
		Alert:    "Your account has been blocked. Contact an administrator.",
	}})

	assert.Equal(t, tui.StateSignIn, a.state)
	assert.Contains(t, a.View(), "blocked")
}

func TestSignInFailureStaysOnSignIn(t *testing.T) {
	a := newApp(t, &stubAPI{}, false)
	a, _ = apply(t, a, initDoneMsg{})

	a, _ = apply(t, a, signInDoneMsg{result: session.SignInResult{
		Reason:  session.ReasonInvalidCredentials,
		Message: "Invalid email or password.",
	}})

	assert.Equal(t, tui.StateSignIn, a.state)
	assert.Contains(t, a.View(), "Invalid email or password.")
}

func TestSignInSuccessLandsAndRecomputes(t *testing.T) {
	api := &stubAPI{me: identity(session.RoleMember), unread: 2}
	a := newApp(t, api, true)
	a, _ = apply(t, a, initDoneMsg{})

	// The session-established hook recomputed during SignIn, before the done
	// message is delivered.
	require.True(t, a.notifier.Banner().Visible)

	a, followup := apply(t, a, signInDoneMsg{result: session.SignInResult{
		OK:       true,
		Redirect: session.RedirectLanding,
	}})

	assert.Equal(t, tui.StateLanding, a.state)

	banner, ok := followup.(bannerMsg)
	require.True(t, ok, "a successful sign-in surfaces the recomputed banner")
	assert.True(t, banner.banner.Visible)
	assert.Contains(t, banner.banner.Text, "2 unread messages")

	// Apply the banner without running the scheduled expiry tick.
	model, _ := a.Update(banner)
	a = model.(App)
	assert.Contains(t, a.View(), "2 unread messages")
}

func TestSignInPendingRedirects(t *testing.T) {
	a := newApp(t, &stubAPI{}, false)
	a, _ = apply(t, a, initDoneMsg{})

	a, _ = apply(t, a, signInDoneMsg{result: session.SignInResult{
		Reason:   session.ReasonAccountPending,
		Redirect: session.RedirectPending,
	}})

	assert.Equal(t, tui.StatePending, a.state)
}

func typeInto(t *testing.T, a App, s string) App {
	t.Helper()
	for _, r := range s {
		model, _ := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		a = model.(App)
	}
	return a
}

func pressKey(t *testing.T, a App, key tea.KeyType) (App, tea.Cmd) {
	t.Helper()
	model, cmd := a.Update(tea.KeyMsg{Type: key})
	return model.(App), cmd
}

func TestSignInFormUsableAfterPendingRoundTrip(t *testing.T) {
	a := newApp(t, &stubAPI{}, false)
	a, _ = apply(t, a, initDoneMsg{})

	a = typeInto(t, a, "clara@ensemble.example")
	a, _ = pressKey(t, a, tea.KeyTab)
	a = typeInto(t, a, "correct-horse")

	a, cmd := pressKey(t, a, tea.KeyEnter)
	require.NotNil(t, cmd)
	_, ok := cmd().(views.SignInSubmitMsg)
	require.True(t, ok)

	// Server reports the account as pending; the user goes back to sign in.
	a, _ = apply(t, a, signInDoneMsg{result: session.SignInResult{
		Reason:   session.ReasonAccountPending,
		Redirect: session.RedirectPending,
	}})
	require.Equal(t, tui.StatePending, a.state)

	a, _ = apply(t, a, views.BackToSignInMsg{})
	require.Equal(t, tui.StateSignIn, a.state)

	a, cmd = pressKey(t, a, tea.KeyEnter)
	require.NotNil(t, cmd, "the form accepts a new attempt after the pending detour")
	_, ok = cmd().(views.SignInSubmitMsg)
	assert.True(t, ok)
}

func TestMemberCannotReachApprovals(t *testing.T) {
	a := newApp(t, &stubAPI{me: identity(session.RoleMember)}, true)
	a, _ = apply(t, a, initDoneMsg{})

	a, _ = apply(t, a, views.GotoApprovalsMsg{})

	assert.Equal(t, tui.StateLanding, a.state, "members are redirected to the landing screen")
}

func TestAdminReachesApprovals(t *testing.T) {
	api := &stubAPI{me: identity(session.RoleAdmin), pending: 3}
	a := newApp(t, api, true)
	a, _ = apply(t, a, initDoneMsg{})

	a, followup := apply(t, a, views.GotoApprovalsMsg{})
	assert.Equal(t, tui.StateApprovals, a.state)

	loaded, ok := followup.(approvalsLoadedMsg)
	require.True(t, ok)
	assert.Equal(t, 3, loaded.count)

	a, _ = apply(t, a, loaded)
	assert.Contains(t, a.View(), "3")
}

func TestAnonymousCannotReachLanding(t *testing.T) {
	a := newApp(t, &stubAPI{}, false)
	a, _ = apply(t, a, initDoneMsg{})

	a, _ = apply(t, a, views.GotoLandingMsg{})

	assert.Equal(t, tui.StateSignIn, a.state)
}

func TestSignedInUserSkipsSignInScreen(t *testing.T) {
	a := newApp(t, &stubAPI{me: identity(session.RoleMember)}, true)
	a, _ = apply(t, a, initDoneMsg{})

	a, _ = apply(t, a, views.BackToSignInMsg{})

	assert.Equal(t, tui.StateLanding, a.state)
}

func TestSignOutReturnsToSignIn(t *testing.T) {
	a := newApp(t, &stubAPI{me: identity(session.RoleMember), unread: 1}, true)
	a, _ = apply(t, a, initDoneMsg{})

	// Sign-out clears session state before the done message arrives.
	a.session.SignOut(context.Background())
	a, _ = apply(t, a, signOutDoneMsg{})

	assert.Equal(t, tui.StateSignIn, a.state)
	assert.False(t, a.notifier.Banner().Visible, "sign-out drops any visible banner")
}

func TestBannerMsgSchedulesExpiry(t *testing.T) {
	a := newApp(t, &stubAPI{me: identity(session.RoleMember)}, true)
	a, _ = apply(t, a, initDoneMsg{})

	model, cmd := a.Update(bannerMsg{banner: notify.Banner{
		Visible:  true,
		Text:     "2 unread messages",
		Deadline: time.Now().Add(notify.DefaultDisplayWindow),
	}})
	a = model.(App)

	require.NotNil(t, cmd, "a visible banner schedules its own expiry")
	assert.Contains(t, a.View(), "2 unread messages")
}

func TestBannerExpiryClearsText(t *testing.T) {
	a := newApp(t, &stubAPI{me: identity(session.RoleMember)}, true)
	a, _ = apply(t, a, initDoneMsg{})

	model, _ := a.Update(bannerMsg{banner: notify.Banner{
		Visible:  true,
		Text:     "2 unread messages",
		Deadline: time.Now().Add(time.Millisecond),
	}})
	a = model.(App)

	time.Sleep(5 * time.Millisecond)
	a, _ = apply(t, a, bannerExpiredMsg{})

	assert.NotContains(t, a.View(), "2 unread messages")
}
