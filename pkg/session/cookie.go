package session

import (
	"net/http"
)

// DefaultCookieName is the session cookie carrying the upstream access token
const DefaultCookieName = "zuno_auth_token"

// DefaultMaxAge is the cookie lifetime in seconds when the upstream response
// carries no expiry.
const DefaultMaxAge = 1800

// Setter interface defines methods for session cookie operations
type Setter interface {
	// SetSession sets the HTTP-only session cookie. maxAge is in seconds;
	// zero falls back to the configured default.
	SetSession(w http.ResponseWriter, token string, maxAge int) error

	// ClearSession clears the session cookie
	ClearSession(w http.ResponseWriter) error
}

// CookieSetter provides a base implementation of Setter
type CookieSetter struct {
	Name     string
	Path     string
	HttpOnly bool
	Secure   bool
	SameSite http.SameSite
	MaxAge   int
}

// NewCookieSetter creates a new session cookie setter
func NewCookieSetter(name string, secure bool) *CookieSetter {
	if name == "" {
		name = DefaultCookieName
	}
	return &CookieSetter{
		Name:     name,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   DefaultMaxAge,
	}
}

// SetSession sets the HTTP-only session cookie
func (c *CookieSetter) SetSession(w http.ResponseWriter, token string, maxAge int) error {
	if maxAge <= 0 {
		maxAge = c.MaxAge
	}
	cookie := &http.Cookie{
		Name:     c.Name,
		Path:     c.Path,
		Value:    token,
		MaxAge:   maxAge,
		HttpOnly: c.HttpOnly,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	}

	http.SetCookie(w, cookie)
	return nil
}

// ClearSession clears the session cookie
func (c *CookieSetter) ClearSession(w http.ResponseWriter) error {
	cookie := &http.Cookie{
		Name:     c.Name,
		Path:     c.Path,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: c.HttpOnly,
		Secure:   c.Secure,
	}

	http.SetCookie(w, cookie)
	return nil
}

// TokenFromCookie extracts the session token from the named cookie, returning
// an empty string when the cookie is absent.
func TokenFromCookie(r *http.Request, name string) string {
	if name == "" {
		name = DefaultCookieName
	}
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
