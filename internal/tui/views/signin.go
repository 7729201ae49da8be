package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ensemblekit/atril/internal/tui"
)

// SignInSubmitMsg is sent when the user submits the sign-in form.
type SignInSubmitMsg struct {
	Email    string
	Password string
}

// GotoRegisterMsg is sent when the user wants the registration screen.
type GotoRegisterMsg struct{}

// SignInModel is the view model for the sign-in screen.
type SignInModel struct {
	email    textinput.Model
	password textinput.Model
	focus    int
	errMsg   string
	alert    string
	busy     bool
	width    int
}

// NewSignInModel creates the sign-in view.
func NewSignInModel(width int) SignInModel {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 100
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 100
	password.EchoMode = textinput.EchoPassword

	return SignInModel{
		email:    email,
		password: password,
		width:    width,
	}
}

// SetError shows an inline failure message on the form.
func (m *SignInModel) SetError(msg string) {
	m.errMsg = msg
	m.busy = false
}

// SetAlert shows a blocking alert above the form (blocked accounts).
func (m *SignInModel) SetAlert(msg string) {
	m.alert = msg
}

// SetBusy marks a sign-in attempt in flight.
func (m *SignInModel) SetBusy(busy bool) {
	m.busy = busy
}

// Init returns the initial command for the sign-in view.
func (m SignInModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the sign-in view.
func (m SignInModel) Update(msg tea.Msg) (SignInModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case tui.KeyTab, "shift+tab", "down", "up":
			m.focus = (m.focus + 1) % 2
			if m.focus == 0 {
				m.email.Focus()
				m.password.Blur()
			} else {
				m.password.Focus()
				m.email.Blur()
			}
			return m, nil
		case tui.KeyEnter:
			email := strings.TrimSpace(m.email.Value())
			password := m.password.Value()
			if email != "" && password != "" {
				m.busy = true
				m.errMsg = ""
				return m, func() tea.Msg {
					return SignInSubmitMsg{Email: email, Password: password}
				}
			}
			return m, nil
		case "ctrl+r":
			return m, func() tea.Msg { return GotoRegisterMsg{} }
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	}

	var cmds [2]tea.Cmd
	m.email, cmds[0] = m.email.Update(msg)
	m.password, cmds[1] = m.password.Update(msg)
	return m, tea.Batch(cmds[0], cmds[1])
}

// View renders the sign-in view.
func (m SignInModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("Atril · Sign in"))
	b.WriteString("\n\n")

	if m.alert != "" {
		b.WriteString(tui.ErrorStyle.Render(m.alert))
		b.WriteString("\n\n")
	}

	b.WriteString(tui.LabelStyle.Render("Email"))
	b.WriteString("\n")
	b.WriteString(m.email.View())
	b.WriteString("\n\n")
	b.WriteString(tui.LabelStyle.Render("Password"))
	b.WriteString("\n")
	b.WriteString(m.password.View())
	b.WriteString("\n\n")

	if m.errMsg != "" {
		b.WriteString(tui.ErrorStyle.Render(m.errMsg))
		b.WriteString("\n\n")
	}

	if m.busy {
		b.WriteString(tui.DimStyle.Render("Signing in..."))
		b.WriteString("\n\n")
	}

	b.WriteString(tui.DimStyle.Render("Enter: Sign in       Ctrl+R: Register       Ctrl+C: Exit"))

	return tui.BoxStyle.Width(max(40, m.width-4)).Render(b.String())
}
