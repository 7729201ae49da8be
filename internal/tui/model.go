// Package tui holds the shared state and styling for the terminal interface.
package tui

// ViewState represents the screen currently shown.
type ViewState int

const (
	// StateLoading is the neutral placeholder shown while the startup
	// identity check is unresolved.
	StateLoading ViewState = iota
	StateSignIn
	StateRegister
	StatePending
	StateLanding
	StateApprovals
)

// Key names shared across views.
const (
	KeyEnter = "enter"
	KeyTab   = "tab"
	KeyEsc   = "esc"
)
