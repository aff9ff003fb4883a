package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedRouter(ja *jwtauth.JWTAuth) chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(Verifier(ja, DefaultCookieName))
		r.Use(RequireSession)
		r.Get("/protected", func(w http.ResponseWriter, r *http.Request) {
			user, ok := AuthUserFromContext(r.Context())
			if !ok {
				http.Error(w, "no user", http.StatusInternalServerError)
				return
			}
			w.Write([]byte(user.Email))
		})
	})
	return r
}

func TestRequireSessionFromCookie(t *testing.T) {
	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	userID := uuid.New()
	_, token, err := ja.Encode(map[string]interface{}{
		"sub":     "jane@x.com",
		"user_id": userID.String(),
	})
	require.NoError(t, err)

	server := httptest.NewServer(protectedRouter(ja))
	defer server.Close()

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/protected", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: token})

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireSessionFromHeader(t *testing.T) {
	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	_, token, err := ja.Encode(map[string]interface{}{"sub": "jane@x.com"})
	require.NoError(t, err)

	server := httptest.NewServer(protectedRouter(ja))
	defer server.Close()

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireSessionMissingToken(t *testing.T) {
	ja := jwtauth.New("HS256", []byte("test-secret"), nil)

	server := httptest.NewServer(protectedRouter(ja))
	defer server.Close()

	resp, err := http.Get(server.URL + "/protected")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequireSessionWrongKey(t *testing.T) {
	other := jwtauth.New("HS256", []byte("other-secret"), nil)
	_, token, err := other.Encode(map[string]interface{}{"sub": "jane@x.com"})
	require.NoError(t, err)

	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	server := httptest.NewServer(protectedRouter(ja))
	defer server.Close()

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/protected", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: token})

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRequireSessionMissingSubject(t *testing.T) {
	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	_, token, err := ja.Encode(map[string]interface{}{"user_id": uuid.New().String()})
	require.NoError(t, err)

	server := httptest.NewServer(protectedRouter(ja))
	defer server.Close()

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/protected", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: token})

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthUserPopulated(t *testing.T) {
	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	userID := uuid.New()
	_, token, err := ja.Encode(map[string]interface{}{
		"sub":     "jane@x.com",
		"user_id": userID.String(),
	})
	require.NoError(t, err)

	var seen *AuthUser
	r := chi.NewRouter()
	r.Use(Verifier(ja, DefaultCookieName))
	r.Use(RequireSession)
	r.Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
		seen, _ = AuthUserFromContext(r.Context())
	})

	server := httptest.NewServer(r)
	defer server.Close()

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/whoami", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: token})

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.NotNil(t, seen)
	assert.Equal(t, "jane@x.com", seen.Email)
	assert.Equal(t, userID, seen.UserID)
}
