package session

// Tier is the trust level a guarded screen requires.
type Tier int

const (
	// TierPublicOnly screens (sign-in, register, reset) are for anonymous
	// users; an authenticated user is sent to the landing screen.
	TierPublicOnly Tier = iota
	// TierMember screens require any resolved, active identity.
	TierMember
	// TierAdmin screens additionally require the admin role.
	TierAdmin
)

// Decision is the per-render outcome of a guard evaluation.
type Decision int

const (
	// DecisionWait means the identity check has not resolved yet: render the
	// neutral placeholder and make no redirect decision. Redirecting while
	// initializing is the race this layer exists to prevent.
	DecisionWait Decision = iota
	// DecisionRender means the wrapped screen may be shown.
	DecisionRender
	// DecisionRedirectSignIn forces navigation to the sign-in screen.
	DecisionRedirectSignIn
	// DecisionRedirectLanding forces navigation to the landing screen.
	DecisionRedirectLanding
)

// Evaluate is a pure function of the required tier and the current session
// snapshot. Guards hold no state and must be re-evaluated on every
// navigation.
func Evaluate(tier Tier, snap Snapshot) Decision {
	if snap.Initializing {
		return DecisionWait
	}

	switch tier {
	case TierPublicOnly:
		if snap.Identity != nil {
			return DecisionRedirectLanding
		}
		return DecisionRender
	case TierMember:
		if snap.Identity == nil {
			return DecisionRedirectSignIn
		}
		return DecisionRender
	case TierAdmin:
		if snap.Identity == nil {
			return DecisionRedirectSignIn
		}
		if !snap.Identity.IsAdmin() {
			return DecisionRedirectLanding
		}
		return DecisionRender
	default:
		return DecisionRedirectSignIn
	}
}
