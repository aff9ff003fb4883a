package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zunohq/zuno-gateway/pkg/idmclient"
	"github.com/zunohq/zuno-gateway/pkg/inviteflow"
)

type authUpstream struct {
	loginStatus  int
	acceptCalled bool
}

func (f *authUpstream) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		if f.loginStatus != 0 && f.loginStatus != http.StatusOK {
			w.WriteHeader(f.loginStatus)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Incorrect email or password"})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "tok-login",
			"token_type":   "bearer",
			"expires_in":   1800,
		})
	})
	mux.HandleFunc("/invites/accept", func(w http.ResponseWriter, r *http.Request) {
		f.acceptCalled = true
		json.NewEncoder(w).Encode(map[string]interface{}{
			"workspace_name": "Acme",
			"role":           "member",
			"is_new_user":    false,
		})
	})
	mux.HandleFunc("/auth/register", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":          uuid.New().String(),
			"email":       "jane@x.com",
			"full_name":   "Jane Doe",
			"is_verified": false,
		})
	})
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-login" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Not authenticated"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"id":        uuid.New().String(),
			"email":     "jane@x.com",
			"full_name": "Jane Doe",
		})
	})
	return mux
}

func newAuthServer(t *testing.T, upstream *authUpstream, intents inviteflow.IntentStore) (*httptest.Server, func()) {
	idm := httptest.NewServer(upstream.handler())

	client := idmclient.New(idm.URL)
	if intents == nil {
		intents = inviteflow.NewInMemoryIntentStore()
	}
	handle := NewHandle(client, inviteflow.NewResumeFlow(client, intents),
		NewCookieSetter(DefaultCookieName, false))

	r := chi.NewRouter()
	handle.RegisterRoutes(r)

	gateway := httptest.NewServer(r)
	return gateway, func() {
		gateway.Close()
		idm.Close()
	}
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == DefaultCookieName {
			return c
		}
	}
	return nil
}

func TestLoginSetsCookie(t *testing.T) {
	upstream := &authUpstream{}
	gateway, cleanup := newAuthServer(t, upstream, nil)
	defer cleanup()

	resp, err := http.Post(gateway.URL+"/auth/login", "application/json",
		strings.NewReader(`{"email":"jane@x.com","password":"longenough"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cookie := sessionCookie(t, resp)
	require.NotNil(t, cookie)
	assert.Equal(t, "tok-login", cookie.Value)
	assert.True(t, cookie.HttpOnly)

	var body LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.InviteAccepted)
	assert.False(t, upstream.acceptCalled)
}

func TestLoginResumesPendingInvite(t *testing.T) {
	upstream := &authUpstream{}
	intents := inviteflow.NewInMemoryIntentStore()
	require.NoError(t, intents.Put(context.Background(), inviteflow.PendingInviteIntent{
		Token: "abc123",
		Email: "jane@x.com",
	}))

	gateway, cleanup := newAuthServer(t, upstream, intents)
	defer cleanup()

	resp, err := http.Post(gateway.URL+"/auth/login", "application/json",
		strings.NewReader(`{"email":"jane@x.com","password":"longenough"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.InviteAccepted)
	assert.Equal(t, "Acme", body.WorkspaceName)
	assert.True(t, upstream.acceptCalled)

	_, ok, err := intents.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, ok, "pending invite should be cleared after login")
}

func TestLoginBadCredentials(t *testing.T) {
	gateway, cleanup := newAuthServer(t, &authUpstream{loginStatus: http.StatusUnauthorized}, nil)
	defer cleanup()

	resp, err := http.Post(gateway.URL+"/auth/login", "application/json",
		strings.NewReader(`{"email":"jane@x.com","password":"wrong"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Incorrect email or password", body.Error)
	assert.Nil(t, sessionCookie(t, resp))
}

func TestLoginRequiresCredentials(t *testing.T) {
	gateway, cleanup := newAuthServer(t, &authUpstream{}, nil)
	defer cleanup()

	resp, err := http.Post(gateway.URL+"/auth/login", "application/json",
		strings.NewReader(`{"email":"jane@x.com"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegisterPasswordPolicy(t *testing.T) {
	gateway, cleanup := newAuthServer(t, &authUpstream{}, nil)
	defer cleanup()

	resp, err := http.Post(gateway.URL+"/auth/register", "application/json",
		strings.NewReader(`{"full_name":"Jane Doe","email":"jane@x.com","password":"short"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegister(t *testing.T) {
	gateway, cleanup := newAuthServer(t, &authUpstream{}, nil)
	defer cleanup()

	resp, err := http.Post(gateway.URL+"/auth/register", "application/json",
		strings.NewReader(`{"full_name":"Jane Doe","email":"jane@x.com","password":"longenough"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body RegisterResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "jane@x.com", body.Email)
	assert.Nil(t, sessionCookie(t, resp), "registration must not establish a session")
}

func TestLogoutClearsCookie(t *testing.T) {
	gateway, cleanup := newAuthServer(t, &authUpstream{}, nil)
	defer cleanup()

	resp, err := http.Post(gateway.URL+"/auth/logout", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cookie := sessionCookie(t, resp)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Equal(t, -1, cookie.MaxAge)
}

func TestMe(t *testing.T) {
	gateway, cleanup := newAuthServer(t, &authUpstream{}, nil)
	defer cleanup()

	req, _ := http.NewRequest(http.MethodGet, gateway.URL+"/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "tok-login"})

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body MeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "jane@x.com", body.Email)
}

func TestMeWithoutCookie(t *testing.T) {
	gateway, cleanup := newAuthServer(t, &authUpstream{}, nil)
	defer cleanup()

	resp, err := http.Get(gateway.URL + "/auth/me")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
