package recovery_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/harshvardhanchand/MediMind-sub001/recovery"
)

const (
	testAccessToken  = "AT"
	testRefreshToken = "RT"
)

func TestParseLinkFragmentTokens(t *testing.T) {
	payload, err := recovery.ParseLink(
		"medimind://reset-password#access_token=AT&refresh_token=RT&type=recovery")
	require.NoError(t, err)
	require.NotNil(t, payload)
	require.Equal(t, testAccessToken, payload.AccessToken)
	require.Equal(t, testRefreshToken, payload.RefreshToken)
	require.Equal(t, recovery.TypeRecovery, payload.Type)
	require.Empty(t, payload.ErrorDescription)
	require.True(t, payload.HasTokenPair())
}

func TestParseLinkFragmentWinsOverQuery(t *testing.T) {
	payload, err := recovery.ParseLink(
		"medimind://reset-password?code=query-code#access_token=AT&refresh_token=RT&type=recovery")
	require.NoError(t, err)
	require.NotNil(t, payload)
	require.Equal(t, testAccessToken, payload.AccessToken)
	require.Empty(t, payload.Code)
}

func TestParseLinkQueryCode(t *testing.T) {
	payload, err := recovery.ParseLink("medimind://reset-password?code=abc123")
	require.NoError(t, err)
	require.NotNil(t, payload)
	require.Equal(t, "abc123", payload.Code)
	require.False(t, payload.HasTokenPair())
}

func TestParseLinkErrorDescription(t *testing.T) {
	payload, err := recovery.ParseLink("medimind://reset-password?error_description=Link%20expired")
	require.NoError(t, err)
	require.NotNil(t, payload)
	require.Equal(t, "Link expired", payload.ErrorDescription)
	require.Empty(t, payload.AccessToken)
	require.Empty(t, payload.RefreshToken)
}

func TestParseLinkNothingUsable(t *testing.T) {
	payload, err := recovery.ParseLink("medimind://home?tab=documents")
	require.NoError(t, err)
	require.Nil(t, payload)
}

func TestFromParams(t *testing.T) {
	payload := recovery.FromParams(recovery.Params{
		AccessToken:  testAccessToken,
		RefreshToken: testRefreshToken,
		Type:         recovery.TypeRecovery,
	})
	require.NotNil(t, payload)
	require.True(t, payload.HasTokenPair())

	require.Nil(t, recovery.FromParams(recovery.Params{}))
}

func TestIsRecoveryLink(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want bool
	}{
		{"reset route host", "medimind://reset-password", true},
		{"reset route path", "https://app.example.com/reset-password", true},
		{"code param", "medimind://callback?code=abc", true},
		{"type recovery", "medimind://verify?type=recovery", true},
		{"bare fragment", "medimind://callback#access_token=AT", true},
		{"ordinary link", "medimind://home?tab=documents", false},
		{"unparseable", "://///", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, recovery.IsRecoveryLink(tc.url))
		})
	}
}
