package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ensemblekit/atril/internal/session"
	"github.com/ensemblekit/atril/internal/tui"
)

// RegisterSubmitMsg is sent when the user submits the registration form.
type RegisterSubmitMsg struct {
	Request session.RegisterRequest
}

// BackToSignInMsg is sent when the user returns to the sign-in screen.
type BackToSignInMsg struct{}

// field indexes into the registration inputs.
const (
	fieldFirstName = iota
	fieldLastName
	fieldEmail
	fieldPhone
	fieldInstrument
	fieldPassword
	fieldConfirm
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"First name",
	"Last name",
	"Email",
	"Phone (optional)",
	"Instrument (optional)",
	"Password",
	"Confirm password",
}

// fieldKeys map inputs to the validation error keys.
var fieldKeys = [fieldCount]string{
	"first_name",
	"last_name",
	"email",
	"phone_number",
	"instrument",
	"password",
	"confirm_password",
}

// RegisterModel is the view model for the registration screen.
type RegisterModel struct {
	inputs      [fieldCount]textinput.Model
	focus       int
	fieldErrors map[string]string
	errMsg      string
	busy        bool
	width       int
}

// NewRegisterModel creates the registration view.
func NewRegisterModel(width int) RegisterModel {
	m := RegisterModel{width: width}

	for i := range m.inputs {
		in := textinput.New()
		in.Placeholder = strings.ToLower(fieldLabels[i])
		in.CharLimit = 200
		if i == fieldPassword || i == fieldConfirm {
			in.EchoMode = textinput.EchoPassword
		}
		m.inputs[i] = in
	}
	m.inputs[fieldFirstName].Focus()

	return m
}

// SetErrors shows a form-level message and per-field messages.
func (m *RegisterModel) SetErrors(msg string, fields map[string]string) {
	m.errMsg = msg
	m.fieldErrors = fields
	m.busy = false
}

// Init returns the initial command for the registration view.
func (m RegisterModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the registration view.
func (m RegisterModel) Update(msg tea.Msg) (RegisterModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case tui.KeyEsc:
			return m, func() tea.Msg { return BackToSignInMsg{} }
		case tui.KeyTab, "down":
			m.setFocus((m.focus + 1) % fieldCount)
			return m, nil
		case "shift+tab", "up":
			m.setFocus((m.focus + fieldCount - 1) % fieldCount)
			return m, nil
		case tui.KeyEnter:
			if m.focus < fieldCount-1 {
				m.setFocus(m.focus + 1)
				return m, nil
			}
			req := m.request()
			m.busy = true
			m.errMsg = ""
			m.fieldErrors = nil
			return m, func() tea.Msg { return RegisterSubmitMsg{Request: req} }
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	}

	var cmds []tea.Cmd
	for i := range m.inputs {
		var cmd tea.Cmd
		m.inputs[i], cmd = m.inputs[i].Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *RegisterModel) setFocus(i int) {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
}

func (m RegisterModel) request() session.RegisterRequest {
	return session.RegisterRequest{
		FirstName:       strings.TrimSpace(m.inputs[fieldFirstName].Value()),
		LastName:        strings.TrimSpace(m.inputs[fieldLastName].Value()),
		Email:           strings.TrimSpace(m.inputs[fieldEmail].Value()),
		Phone:           strings.TrimSpace(m.inputs[fieldPhone].Value()),
		Instrument:      strings.TrimSpace(m.inputs[fieldInstrument].Value()),
		Password:        m.inputs[fieldPassword].Value(),
		ConfirmPassword: m.inputs[fieldConfirm].Value(),
	}
}

// View renders the registration view.
func (m RegisterModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("Atril · Register"))
	b.WriteString("\n\n")

	for i := range m.inputs {
		b.WriteString(tui.LabelStyle.Render(fieldLabels[i]))
		b.WriteString("\n")
		b.WriteString(m.inputs[i].View())
		if ferr, ok := m.fieldErrors[fieldKeys[i]]; ok {
			b.WriteString("\n")
			b.WriteString(tui.ErrorStyle.Render(ferr))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.errMsg != "" {
		b.WriteString(tui.ErrorStyle.Render(m.errMsg))
		b.WriteString("\n\n")
	}

	if m.busy {
		b.WriteString(tui.DimStyle.Render("Submitting..."))
		b.WriteString("\n\n")
	}

	b.WriteString(tui.DimStyle.Render("Enter: Next/Submit       Esc: Back to sign-in"))

	return tui.BoxStyle.Width(max(48, m.width-4)).Render(b.String())
}
