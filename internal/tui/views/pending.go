package views

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ensemblekit/atril/internal/tui"
)

// PendingModel is the informational screen shown to accounts awaiting
// administrator approval.
type PendingModel struct {
	width int
}

// NewPendingModel creates the pending-registration view.
func NewPendingModel(width int) PendingModel {
	return PendingModel{width: width}
}

// Update handles messages for the pending view.
func (m PendingModel) Update(msg tea.Msg) (PendingModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case tui.KeyEnter, tui.KeyEsc:
			return m, func() tea.Msg { return BackToSignInMsg{} }
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	}
	return m, nil
}

// View renders the pending view.
func (m PendingModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("Registration pending"))
	b.WriteString("\n\n")
	b.WriteString("Your registration has been received and is awaiting\n")
	b.WriteString("approval by an ensemble administrator. You will be able\n")
	b.WriteString("to sign in once your account has been activated.")
	b.WriteString("\n\n")
	b.WriteString(tui.DimStyle.Render("Enter: Back to sign-in       Ctrl+C: Exit"))

	return tui.BoxStyle.Width(max(48, m.width-4)).Render(b.String())
}
