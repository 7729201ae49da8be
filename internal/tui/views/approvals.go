package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ensemblekit/atril/internal/tui"
)

// GotoLandingMsg is sent when the user returns to the landing screen.
type GotoLandingMsg struct{}

// ApprovalsModel shows administrators how many registrations await approval.
type ApprovalsModel struct {
	count  int
	loaded bool
	errMsg string
	width  int
}

// NewApprovalsModel creates the approvals view.
func NewApprovalsModel(width int) ApprovalsModel {
	return ApprovalsModel{width: width}
}

// SetCount records the fetched pending-approval count.
func (m *ApprovalsModel) SetCount(count int) {
	m.count = count
	m.loaded = true
	m.errMsg = ""
}

// SetError records a failed fetch.
func (m *ApprovalsModel) SetError(msg string) {
	m.loaded = true
	m.errMsg = msg
}

// Update handles messages for the approvals view.
func (m ApprovalsModel) Update(msg tea.Msg) (ApprovalsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case tui.KeyEsc, tui.KeyEnter:
			return m, func() tea.Msg { return GotoLandingMsg{} }
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	}
	return m, nil
}

// View renders the approvals view.
func (m ApprovalsModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("Pending approvals"))
	b.WriteString("\n\n")

	switch {
	case !m.loaded:
		b.WriteString(tui.DimStyle.Render("Loading..."))
	case m.errMsg != "":
		b.WriteString(tui.ErrorStyle.Render(m.errMsg))
	case m.count == 0:
		b.WriteString("No registrations are waiting for approval.")
	default:
		b.WriteString(fmt.Sprintf("%d %s waiting for approval.", m.count, pluralWord(m.count, "registration is", "registrations are")))
	}
	b.WriteString("\n\n")
	b.WriteString(tui.DimStyle.Render("Esc: Back       Ctrl+C: Exit"))

	return tui.BoxStyle.Width(max(48, m.width-4)).Render(b.String())
}

func pluralWord(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
