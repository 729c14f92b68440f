package navigation_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/harshvardhanchand/MediMind-sub001/navigation"
	"github.com/harshvardhanchand/MediMind-sub001/recovery"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		name string
		in   navigation.Inputs
		want navigation.Branch
	}{
		{
			name: "loading wins over everything",
			in: navigation.Inputs{
				Loading:    true,
				HasSession: true,
				Recovery:   recovery.Status{State: recovery.StateAuthenticated},
			},
			want: navigation.BranchSplash,
		},
		{
			name: "no session, idle recovery",
			in:   navigation.Inputs{Recovery: recovery.Status{State: recovery.StateIdle}},
			want: navigation.BranchUnauthenticated,
		},
		{
			name: "recovery error without session",
			in: navigation.Inputs{
				Recovery: recovery.Status{State: recovery.StateError, Message: "Link expired"},
			},
			want: navigation.BranchRecovery,
		},
		{
			name: "awaiting link with error prompt",
			in: navigation.Inputs{
				Recovery: recovery.Status{State: recovery.StateAwaitingLink, Message: "check your email"},
			},
			want: navigation.BranchRecovery,
		},
		{
			name: "awaiting link without message falls through to login",
			in: navigation.Inputs{
				Recovery: recovery.Status{State: recovery.StateAwaitingLink},
			},
			want: navigation.BranchUnauthenticated,
		},
		{
			name: "session with incomplete profile",
			in: navigation.Inputs{
				HasSession: true,
				Recovery:   recovery.Status{State: recovery.StateIdle},
			},
			want: navigation.BranchOnboarding,
		},
		{
			name: "recovery authenticated overrides a normal session",
			in: navigation.Inputs{
				HasSession:     true,
				HasProfileName: true,
				Recovery:       recovery.Status{State: recovery.StateAuthenticated},
			},
			want: navigation.BranchRecovery,
		},
		{
			name: "exchange in flight stays on recovery screen",
			in: navigation.Inputs{
				Recovery: recovery.Status{State: recovery.StateExchanging},
			},
			want: navigation.BranchRecovery,
		},
		{
			name: "settled session with profile",
			in: navigation.Inputs{
				HasSession:     true,
				HasProfileName: true,
				Recovery:       recovery.Status{State: recovery.StateIdle},
			},
			want: navigation.BranchMain,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, navigation.Resolve(tc.in))
		})
	}
}
