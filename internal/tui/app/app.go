// Package app wires the session core, the notification aggregator, and the
// views into the root Bubble Tea program.
package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ensemblekit/atril/internal/notify"
	"github.com/ensemblekit/atril/internal/session"
	"github.com/ensemblekit/atril/internal/tui"
	"github.com/ensemblekit/atril/internal/tui/views"
)

// CountsClient fetches the pending-approval count for the approvals screen.
type CountsClient interface {
	PendingUsers(ctx context.Context) (int, error)
}

// App is the root model. It consults the guard layer on every navigation and
// never caches a decision across renders.
type App struct {
	session  *session.Manager
	notifier *notify.Aggregator
	counts   CountsClient

	state  tui.ViewState
	width  int
	height int

	spinner   spinner.Model
	signIn    views.SignInModel
	register  views.RegisterModel
	pending   views.PendingModel
	landing   views.LandingModel
	approvals views.ApprovalsModel
}

type initDoneMsg struct {
	outcome session.InitOutcome
}

type signInDoneMsg struct {
	result session.SignInResult
}

type registerDoneMsg struct {
	result session.RegisterResult
}

type signOutDoneMsg struct{}

type bannerMsg struct {
	banner notify.Banner
}

type bannerExpiredMsg struct{}

type approvalsLoadedMsg struct {
	count int
	err   error
}

// New creates the root application model.
func New(mgr *session.Manager, notifier *notify.Aggregator, counts CountsClient) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return App{
		session:  mgr,
		notifier: notifier,
		counts:   counts,
		state:    tui.StateLoading,
		spinner:  sp,
		signIn:   views.NewSignInModel(80),
		register: views.NewRegisterModel(80),
		pending:  views.NewPendingModel(80),
	}
}

// Init starts the spinner and kicks off the one-time identity resolution.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.initializeCmd())
}

// Update handles all application messages.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case spinner.TickMsg:
		if a.state == tui.StateLoading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case initDoneMsg:
		if msg.outcome.Alert != "" {
			a.signIn.SetAlert(msg.outcome.Alert)
		}
		switch msg.outcome.Redirect {
		case session.RedirectPending:
			a.navigate(tui.StatePending)
		case session.RedirectSignIn:
			a.navigate(tui.StateSignIn)
		default:
			a.navigate(tui.StateLanding)
		}
		return a, nil

	case views.SignInSubmitMsg:
		return a, a.signInCmd(msg.Email, msg.Password)

	case signInDoneMsg:
		if msg.result.OK {
			a.navigate(tui.StateLanding)
			return a, a.bannerCmd()
		}
		if msg.result.Redirect == session.RedirectPending {
			a.signIn.SetBusy(false)
			a.navigate(tui.StatePending)
			return a, nil
		}
		a.signIn.SetError(msg.result.Message)
		return a, nil

	case views.RegisterSubmitMsg:
		return a, a.registerCmd(msg.Request)

	case registerDoneMsg:
		if msg.result.OK {
			a.navigate(tui.StatePending)
			return a, nil
		}
		a.register.SetErrors(msg.result.Message, msg.result.Fields)
		return a, nil

	case views.SignOutMsg:
		return a, a.signOutCmd()

	case signOutDoneMsg:
		a.notifier.Clear()
		a.signIn = views.NewSignInModel(a.width)
		a.navigate(tui.StateSignIn)
		return a, nil

	case views.GotoRegisterMsg:
		a.register = views.NewRegisterModel(a.width)
		a.navigate(tui.StateRegister)
		return a, nil

	case views.BackToSignInMsg:
		a.navigate(tui.StateSignIn)
		return a, nil

	case views.GotoApprovalsMsg:
		a.approvals = views.NewApprovalsModel(a.width)
		a.navigate(tui.StateApprovals)
		if a.state == tui.StateApprovals {
			return a, a.approvalsCmd()
		}
		return a, nil

	case views.GotoLandingMsg:
		a.navigate(tui.StateLanding)
		return a, nil

	case approvalsLoadedMsg:
		if msg.err != nil {
			a.approvals.SetError("Could not load pending approvals.")
		} else {
			a.approvals.SetCount(msg.count)
		}
		return a, nil

	case bannerMsg:
		if msg.banner.Visible {
			a.landing.SetBanner(msg.banner.Text)
			wait := time.Until(msg.banner.Deadline)
			if wait < 0 {
				wait = 0
			}
			return a, tea.Tick(wait, func(time.Time) tea.Msg { return bannerExpiredMsg{} })
		}
		return a, nil

	case bannerExpiredMsg:
		if banner := a.notifier.Banner(); !banner.Visible {
			a.landing.SetBanner("")
		}
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.state {
	case tui.StateSignIn:
		a.signIn, cmd = a.signIn.Update(msg)
	case tui.StateRegister:
		a.register, cmd = a.register.Update(msg)
	case tui.StatePending:
		a.pending, cmd = a.pending.Update(msg)
	case tui.StateLanding:
		a.landing, cmd = a.landing.Update(msg)
	case tui.StateApprovals:
		a.approvals, cmd = a.approvals.Update(msg)
	}
	return a, cmd
}

// View renders the current screen.
func (a App) View() string {
	switch a.state {
	case tui.StateLoading:
		return "\n  " + a.spinner.View() + tui.DimStyle.Render(" Checking your session...")
	case tui.StateSignIn:
		return a.signIn.View()
	case tui.StateRegister:
		return a.register.View()
	case tui.StatePending:
		return a.pending.View()
	case tui.StateLanding:
		return a.landing.View()
	case tui.StateApprovals:
		return a.approvals.View()
	}
	return ""
}

// navigate applies the guard decision for the desired screen. Guards are
// stateless; this is re-run on every navigation.
func (a *App) navigate(desired tui.ViewState) {
	switch session.Evaluate(tierFor(desired), a.session.Snapshot()) {
	case session.DecisionWait:
		a.state = tui.StateLoading
	case session.DecisionRender:
		if desired == tui.StateLanding {
			a.refreshLanding()
		}
		a.state = desired
	case session.DecisionRedirectSignIn:
		a.state = tui.StateSignIn
	case session.DecisionRedirectLanding:
		a.refreshLanding()
		a.state = tui.StateLanding
	}
}

func (a *App) refreshLanding() {
	if snap := a.session.Snapshot(); snap.Identity != nil {
		a.landing = views.NewLandingModel(*snap.Identity, a.width)
		if b := a.notifier.Banner(); b.Visible {
			a.landing.SetBanner(b.Text)
		}
	}
}

func tierFor(state tui.ViewState) session.Tier {
	switch state {
	case tui.StateSignIn, tui.StateRegister, tui.StatePending:
		return session.TierPublicOnly
	case tui.StateApprovals:
		return session.TierAdmin
	default:
		return session.TierMember
	}
}

func (a App) initializeCmd() tea.Cmd {
	return func() tea.Msg {
		return initDoneMsg{outcome: a.session.Initialize(context.Background())}
	}
}

func (a App) signInCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		return signInDoneMsg{result: a.session.SignIn(context.Background(), email, password)}
	}
}

func (a App) registerCmd(req session.RegisterRequest) tea.Cmd {
	return func() tea.Msg {
		return registerDoneMsg{result: a.session.Register(context.Background(), req)}
	}
}

func (a App) signOutCmd() tea.Cmd {
	return func() tea.Msg {
		a.session.SignOut(context.Background())
		return signOutDoneMsg{}
	}
}

// bannerCmd surfaces the banner computed by the session-established hook
// during sign-in. The hook has already run by the time signInDoneMsg arrives.
func (a App) bannerCmd() tea.Cmd {
	return func() tea.Msg {
		return bannerMsg{banner: a.notifier.Banner()}
	}
}

func (a App) approvalsCmd() tea.Cmd {
	return func() tea.Msg {
		count, err := a.counts.PendingUsers(context.Background())
		return approvalsLoadedMsg{count: count, err: err}
	}
}

// Run starts the program in the alternate screen.
func Run(a App) error {
	_, err := tea.NewProgram(a, tea.WithAltScreen()).Run()
	return err
}
