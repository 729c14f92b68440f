// Package navigation derives the top-level navigation branch from the
// session store and the recovery flow. Branch is computed, never stored.
package navigation

import "github.com/harshvardhanchand/MediMind-sub001/recovery"

// Branch is the top-level navigation target.
type Branch string

const (
	BranchSplash          Branch = "splash"
	BranchUnauthenticated Branch = "unauthenticated"
	BranchRecovery        Branch = "recovery"
	BranchOnboarding      Branch = "onboarding"
	BranchMain            Branch = "main"
)

// Inputs are the facts Resolve needs. They are plain values so the function
// stays pure and trivially testable.
type Inputs struct {
	Loading        bool
	HasSession     bool
	HasProfileName bool
	Recovery       recovery.Status
}

// Resolve maps state to a branch. Rules apply in priority order; at most one
// of the recovery and main/onboarding branches can win for any input.
func Resolve(in Inputs) Branch {
	// 1. Bootstrap still racing its timeout.
	if in.Loading {
		return BranchSplash
	}
	// 2. A failed or pending-with-error recovery without a session shows
	// the recovery screen's error / "check your email" prompt.
	if !in.HasSession && recoveryNeedsScreen(in.Recovery) {
		return BranchRecovery
	}
	// 3. An established recovery session always wins, even when a normal
	// session also exists: the user came here to reset a password.
	if in.Recovery.State == recovery.StateAuthenticated {
		return BranchRecovery
	}
	// An exchange in flight keeps the user on the recovery screen rather
	// than flashing the login screen mid-handshake.
	if in.Recovery.State == recovery.StateExchanging {
		return BranchRecovery
	}
	// 4. No session: log in.
	if !in.HasSession {
		return BranchUnauthenticated
	}
	// 5. Signed in but the profile was never completed.
	if !in.HasProfileName {
		return BranchOnboarding
	}
	// 6. Everything settled.
	return BranchMain
}

func recoveryNeedsScreen(st recovery.Status) bool {
	if st.State == recovery.StateError {
		return true
	}
	return st.State == recovery.StateAwaitingLink && st.Message != ""
}
