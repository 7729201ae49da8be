package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ensemblekit/atril/internal/session"
	"github.com/ensemblekit/atril/internal/tui"
)

// SignOutMsg is sent when the user signs out.
type SignOutMsg struct{}

// GotoApprovalsMsg is sent when the user opens the approvals screen. The
// admin guard decides whether it actually renders.
type GotoApprovalsMsg struct{}

// LandingModel is the authenticated home screen.
type LandingModel struct {
	identity session.Identity
	banner   string
	width    int
}

// NewLandingModel creates the landing view for the given identity.
func NewLandingModel(identity session.Identity, width int) LandingModel {
	return LandingModel{identity: identity, width: width}
}

// SetBanner shows or clears the transient notification banner text.
func (m *LandingModel) SetBanner(text string) {
	m.banner = text
}

// Update handles messages for the landing view.
func (m LandingModel) Update(msg tea.Msg) (LandingModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "s":
			return m, func() tea.Msg { return SignOutMsg{} }
		case "a":
			return m, func() tea.Msg { return GotoApprovalsMsg{} }
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	}
	return m, nil
}

// View renders the landing view.
func (m LandingModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("Atril · Ensemble Console"))
	b.WriteString("\n\n")

	if m.banner != "" {
		b.WriteString(tui.BannerStyle.Render(m.banner))
		b.WriteString("\n\n")
	}

	b.WriteString(fmt.Sprintf("Signed in as %s", m.identity.DisplayName))
	b.WriteString("\n")
	b.WriteString(tui.DimStyle.Render(fmt.Sprintf("%s · role: %s", m.identity.Email, m.identity.Role)))
	b.WriteString("\n\n")

	hints := "s: Sign out       Ctrl+C: Exit"
	if m.identity.IsAdmin() {
		hints = "a: Pending approvals       " + hints
	}
	b.WriteString(tui.DimStyle.Render(hints))

	return tui.BoxStyle.Width(max(48, m.width-4)).Render(b.String())
}
