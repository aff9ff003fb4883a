package session

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/jinzhu/copier"

	"github.com/zunohq/zuno-gateway/pkg/idmclient"
	"github.com/zunohq/zuno-gateway/pkg/inviteflow"
)

// Handle proxies the credential sub-flows to the Identity & Workspace API and
// owns the session cookie. The login sub-flow resumes a pending invite when
// one was stashed.
type Handle struct {
	client  *idmclient.Client
	resume  *inviteflow.ResumeFlow
	cookies Setter
}

// NewHandle creates a new auth handler
func NewHandle(client *idmclient.Client, resume *inviteflow.ResumeFlow, cookies Setter) *Handle {
	return &Handle{
		client:  client,
		resume:  resume,
		cookies: cookies,
	}
}

// RegisterRoutes registers the auth routes
func (h *Handle) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/register", h.Register)
		r.Post("/verify-email", h.VerifyEmail)
		r.Post("/logout", h.Logout)
		r.Get("/me", h.Me)
	})
}

// Login handles POST /auth/login. On success the upstream token becomes the
// session cookie; a pending invite, if stashed, is accepted with the resumed
// token and the stash is cleared either way.
func (h *Handle) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Email == "" || req.Password == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Email and password are required"})
		return
	}

	result, err := h.resume.CompleteLogin(r.Context(), req.Email, req.Password)
	if result == nil {
		renderUpstreamError(w, r, err, "Login failed")
		return
	}

	h.cookies.SetSession(w, result.Token.AccessToken, result.Token.ExpiresIn)

	resp := LoginResponse{
		Message:    "Login successful",
		RedirectTo: result.RedirectTo,
	}
	if err != nil {
		// Session established, invite acceptance failed
		slog.Info("login succeeded but pending invite was not accepted", "err", err)
		resp.InviteError = err.Error()
	} else if result.Accept != nil {
		resp.InviteAccepted = true
		resp.WorkspaceName = result.Accept.WorkspaceName
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

// Register handles POST /auth/register. Registration does not establish a
// session; the account stays unverified until the email is confirmed.
func (h *Handle) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Email == "" || req.Password == "" || req.FullName == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Full name, email and password are required"})
		return
	}
	if len(req.Password) < inviteflow.MinPasswordLength {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Password must be at least 8 characters long"})
		return
	}

	result, err := h.client.Register(r.Context(), idmclient.RegisterParams{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		renderUpstreamError(w, r, err, "Registration failed")
		return
	}

	resp := RegisterResponse{Message: "Registration successful. Please verify your email address."}
	copier.Copy(&resp, result)

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, resp)
}

// VerifyEmail handles POST /auth/verify-email
func (h *Handle) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req VerifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Email == "" || req.Code == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Email and verification code are required"})
		return
	}

	if err := h.client.VerifyEmail(r.Context(), req.Email, req.Code); err != nil {
		renderUpstreamError(w, r, err, "Email verification failed")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, MessageResponse{Message: "Email verified successfully"})
}

// Logout handles POST /auth/logout. The session exists only as a cookie, so
// clearing it is the whole operation.
func (h *Handle) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.ClearSession(w)
	render.Status(r, http.StatusOK)
	render.JSON(w, r, MessageResponse{Message: "Logged out successfully"})
}

// Me handles GET /auth/me, probing the upstream with the cookie token
func (h *Handle) Me(w http.ResponseWriter, r *http.Request) {
	token := TokenFromCookie(r, h.cookieName())
	if token == "" {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, ErrorResponse{Error: "Not authenticated"})
		return
	}

	identity, err := h.client.CurrentIdentity(r.Context(), token)
	if err != nil {
		renderUpstreamError(w, r, err, "Not authenticated")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, MeResponse{
		ID:       identity.ID.String(),
		Email:    identity.Email,
		FullName: identity.FullName,
	})
}

func (h *Handle) cookieName() string {
	if cs, ok := h.cookies.(*CookieSetter); ok {
		return cs.Name
	}
	return DefaultCookieName
}

// renderUpstreamError maps an upstream failure onto the response, passing the
// upstream status and message through when available.
func renderUpstreamError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var apiErr *idmclient.APIError
	if errors.As(err, &apiErr) {
		render.Status(r, apiErr.StatusCode)
		render.JSON(w, r, ErrorResponse{Error: apiErr.Message})
		return
	}
	slog.Error("identity api request failed", "err", err)
	render.Status(r, http.StatusBadGateway)
	render.JSON(w, r, ErrorResponse{Error: fallback})
}
