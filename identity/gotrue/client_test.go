package gotrue_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/harshvardhanchand/MediMind-sub001/identity"
	"github.com/harshvardhanchand/MediMind-sub001/identity/gotrue"
)

const (
	testAnonKey = "anon-key"
	testUserID  = "user-1"
	testEmail   = "jane.doe@example.com"
)

type backendFixture struct {
	server   *httptest.Server
	client   *gotrue.Client
	requests []string // method+path, in order

	loginStatus  int
	loginBody    any
	logoutStatus int
	updateStatus int
	updateBody   any
}

func accessToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   testUserID,
		"email": testEmail,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	raw, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func setupBackend(t *testing.T) *backendFixture {
	t.Helper()
	f := &backendFixture{
		loginStatus:  http.StatusOK,
		logoutStatus: http.StatusNoContent,
		updateStatus: http.StatusOK,
	}
	f.loginBody = map[string]any{
		"access_token":  accessToken(t),
		"refresh_token": "refresh-1",
		"token_type":    "bearer",
		"expires_in":    3600,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		f.requests = append(f.requests, r.Method+" /token")
		writeJSON(w, f.loginStatus, f.loginBody)
	})
	mux.HandleFunc("/logout", func(w http.ResponseWriter, r *http.Request) {
		f.requests = append(f.requests, r.Method+" /logout")
		require.NotEmpty(t, r.Header.Get("Authorization"))
		w.WriteHeader(f.logoutStatus)
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		f.requests = append(f.requests, r.Method+" /user")
		require.NotEmpty(t, r.Header.Get("Authorization"))
		writeJSON(w, f.updateStatus, f.updateBody)
	})
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)

	client, err := gotrue.NewClient(f.server.URL, testAnonKey)
	require.NoError(t, err)
	f.client = client
	return f
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func TestNewClientValidation(t *testing.T) {
	_, err := gotrue.NewClient("", testAnonKey)
	require.Error(t, err)
	_, err = gotrue.NewClient("http://localhost", "")
	require.Error(t, err)
}

func TestSignInWithPassword(t *testing.T) {
	f := setupBackend(t)

	var events []identity.EventType
	f.client.OnAuthStateChange(func(ev identity.Event) {
		events = append(events, ev.Type)
	})

	session, err := f.client.SignInWithPassword(context.Background(), testEmail, "password123")
	require.NoError(t, err)
	require.Equal(t, testUserID, session.Identity.ID)
	require.Equal(t, testEmail, session.Identity.Email)
	require.Equal(t, "refresh-1", session.RefreshToken)
	require.Equal(t, []identity.EventType{identity.SignedIn}, events)

	cached, err := f.client.GetSession(context.Background())
	require.NoError(t, err)
	require.Equal(t, session, cached)
}

func TestSignInSurfacesProviderMessage(t *testing.T) {
	f := setupBackend(t)
	f.loginStatus = http.StatusBadRequest
	f.loginBody = map[string]string{"error_description": "Invalid login credentials"}

	_, err := f.client.SignInWithPassword(context.Background(), testEmail, "wrong")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Invalid login credentials")
}

func TestSetSessionAdoptsTokenPair(t *testing.T) {
	f := setupBackend(t)

	session, err := f.client.SetSession(context.Background(), accessToken(t), "refresh-2")
	require.NoError(t, err)
	require.Equal(t, testUserID, session.Identity.ID)

	_, err = f.client.SetSession(context.Background(), "", "refresh-2")
	require.ErrorIs(t, err, identity.InvalidTokenPairErr)
}

func TestSignOutClearsLocallyEvenOnBackendError(t *testing.T) {
	f := setupBackend(t)
	_, err := f.client.SignInWithPassword(context.Background(), testEmail, "password123")
	require.NoError(t, err)

	var events []identity.EventType
	f.client.OnAuthStateChange(func(ev identity.Event) {
		events = append(events, ev.Type)
	})

	f.logoutStatus = http.StatusInternalServerError
	err = f.client.SignOut(context.Background())
	require.Error(t, err)

	cached, err := f.client.GetSession(context.Background())
	require.NoError(t, err)
	require.Nil(t, cached, "local session is gone regardless of the backend")
	require.Equal(t, []identity.EventType{identity.SignedOut}, events)
}

func TestUpdateUserRequiresSession(t *testing.T) {
	f := setupBackend(t)
	err := f.client.UpdateUser(context.Background(), identity.UserAttributes{Password: "new-secret"})
	require.ErrorIs(t, err, identity.NoSessionErr)
}

func TestUpdateUserSurfacesProviderMessage(t *testing.T) {
	f := setupBackend(t)
	_, err := f.client.SignInWithPassword(context.Background(), testEmail, "password123")
	require.NoError(t, err)

	f.updateStatus = http.StatusUnprocessableEntity
	f.updateBody = map[string]string{"msg": "Password should be at least 6 characters"}
	err = f.client.UpdateUser(context.Background(), identity.UserAttributes{Password: "short"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "Password should be at least 6 characters")
}

func TestExchangeCodeForSession(t *testing.T) {
	f := setupBackend(t)

	session, err := f.client.ExchangeCodeForSession(context.Background(), "one-shot-code")
	require.NoError(t, err)
	require.Equal(t, testUserID, session.Identity.ID)

	_, err = f.client.ExchangeCodeForSession(context.Background(), "")
	require.ErrorIs(t, err, identity.InvalidCodeErr)
}

func TestExchangeCodeFailure(t *testing.T) {
	f := setupBackend(t)
	f.loginStatus = http.StatusBadRequest
	f.loginBody = map[string]string{"error_description": "code expired"}

	_, err := f.client.ExchangeCodeForSession(context.Background(), "stale-code")
	require.ErrorIs(t, err, identity.InvalidCodeErr)
}

func TestUnsubscribeStopsEvents(t *testing.T) {
	f := setupBackend(t)

	var events []identity.EventType
	unsubscribe := f.client.OnAuthStateChange(func(ev identity.Event) {
		events = append(events, ev.Type)
	})
	unsubscribe()

	_, err := f.client.SignInWithPassword(context.Background(), testEmail, "password123")
	require.NoError(t, err)
	require.Empty(t, events)
}
