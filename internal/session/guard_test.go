package session_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ensemblekit/atril/internal/session"
)

func snapshotFor(role session.Role) session.Snapshot {
	return session.Snapshot{
		Identity: &session.Identity{
			ID:     uuid.New(),
			Role:   role,
			Status: session.StatusActive,
		},
	}
}

func TestEvaluateWaitsWhileInitializing(t *testing.T) {
	snap := session.Snapshot{Initializing: true}

	for _, tier := range []session.Tier{session.TierPublicOnly, session.TierMember, session.TierAdmin} {
		assert.Equal(t, session.DecisionWait, session.Evaluate(tier, snap),
			"tier %d must not redirect before initialization settles", tier)
	}

	// Initializing wins even when an identity is already visible.
	withIdentity := snapshotFor(session.RoleAdmin)
	withIdentity.Initializing = true
	assert.Equal(t, session.DecisionWait, session.Evaluate(session.TierAdmin, withIdentity))
}

func TestEvaluateMatrix(t *testing.T) {
	anonymous := session.Snapshot{}
	member := snapshotFor(session.RoleMember)
	admin := snapshotFor(session.RoleAdmin)

	tests := []struct {
		name string
		tier session.Tier
		snap session.Snapshot
		want session.Decision
	}{
		{"public-only anonymous renders", session.TierPublicOnly, anonymous, session.DecisionRender},
		{"public-only member redirects to landing", session.TierPublicOnly, member, session.DecisionRedirectLanding},
		{"public-only admin redirects to landing", session.TierPublicOnly, admin, session.DecisionRedirectLanding},

		{"member anonymous redirects to sign-in", session.TierMember, anonymous, session.DecisionRedirectSignIn},
		{"member member renders", session.TierMember, member, session.DecisionRender},
		{"member admin renders", session.TierMember, admin, session.DecisionRender},

		{"admin anonymous redirects to sign-in", session.TierAdmin, anonymous, session.DecisionRedirectSignIn},
		{"admin member redirects to landing", session.TierAdmin, member, session.DecisionRedirectLanding},
		{"admin admin renders", session.TierAdmin, admin, session.DecisionRender},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, session.Evaluate(tt.tier, tt.snap))
		})
	}
}

func TestEvaluateIsStateless(t *testing.T) {
	member := snapshotFor(session.RoleMember)

	// Same inputs, same decision, however many times it runs.
	first := session.Evaluate(session.TierAdmin, member)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, session.Evaluate(session.TierAdmin, member))
	}
}
