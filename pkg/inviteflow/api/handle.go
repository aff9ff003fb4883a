package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/jinzhu/copier"

	"github.com/zunohq/zuno-gateway/pkg/idmclient"
	"github.com/zunohq/zuno-gateway/pkg/inviteflow"
	"github.com/zunohq/zuno-gateway/pkg/session"
)

// Handle exposes the invite acceptance flow over HTTP. Each request builds a
// coordinator bound to the session token from the request cookie, so the
// decision states reflect the caller's ambient credential.
type Handle struct {
	client        *idmclient.Client
	intents       inviteflow.IntentStore
	cookies       session.Setter
	cookieName    string
	redirectDelay time.Duration
}

// Option is a function that configures a Handle
type Option func(*Handle)

// WithClient sets the Identity & Workspace API client
func WithClient(client *idmclient.Client) Option {
	return func(h *Handle) {
		h.client = client
	}
}

// WithIntentStore sets the pending invite store shared with the sub-flows
func WithIntentStore(store inviteflow.IntentStore) Option {
	return func(h *Handle) {
		h.intents = store
	}
}

// WithCookieSetter sets the session cookie writer
func WithCookieSetter(cookies session.Setter) Option {
	return func(h *Handle) {
		h.cookies = cookies
	}
}

// WithCookieName sets the cookie the session token is read from
func WithCookieName(name string) Option {
	return func(h *Handle) {
		h.cookieName = name
	}
}

// WithRedirectDelay overrides the new-account redirect delay
func WithRedirectDelay(d time.Duration) Option {
	return func(h *Handle) {
		h.redirectDelay = d
	}
}

// NewHandle creates a new invite handler
func NewHandle(opts ...Option) *Handle {
	h := &Handle{
		intents:       inviteflow.NewInMemoryIntentStore(),
		cookieName:    session.DefaultCookieName,
		redirectDelay: inviteflow.DefaultRedirectDelay,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// RegisterRoutes registers the invite routes
func (h *Handle) RegisterRoutes(r chi.Router) {
	r.Route("/invites", func(r chi.Router) {
		r.Get("/details", h.GetDetails)
		r.Post("/accept", h.Accept)
	})
}

func (h *Handle) coordinator(r *http.Request, token string) *inviteflow.Coordinator {
	sessionToken := session.TokenFromCookie(r, h.cookieName)
	return inviteflow.NewCoordinator(token, h.client.WithSession(sessionToken),
		inviteflow.WithIntentStore(h.intents),
		inviteflow.WithRedirectDelay(h.redirectDelay),
	)
}

// GetDetails handles GET /invites/details?token=
func (h *Handle) GetDetails(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invite token is required"})
		return
	}

	coord := h.coordinator(r, token)
	defer coord.Close()

	state := coord.Resolve(r.Context())
	if state.Kind == inviteflow.StateInvalid {
		render.Status(r, state.StatusCode)
		render.JSON(w, r, ErrorResponse{Error: state.Reason})
		return
	}

	var invite InviteDetailsModel
	copier.Copy(&invite, state.Invite)

	resp := DetailsResponse{
		Status: string(state.Kind),
		Invite: invite,
	}
	if state.Session != nil {
		resp.CurrentEmail = state.Session.Email
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

// Accept handles POST /invites/accept. A token-only request joins with the
// invited email's existing credentials; full name and password create a new
// account. Success with an upstream access token establishes the session
// cookie.
func (h *Handle) Accept(w http.ResponseWriter, r *http.Request) {
	var req AcceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Token == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: "Invite token is required"})
		return
	}

	coord := h.coordinator(r, req.Token)
	defer coord.Close()

	state := coord.Resolve(r.Context())
	if state.Kind == inviteflow.StateInvalid {
		render.Status(r, state.StatusCode)
		render.JSON(w, r, ErrorResponse{Error: state.Reason})
		return
	}

	withRegistration := req.FullName != "" || req.Password != ""

	var (
		outcome *inviteflow.AcceptOutcome
		err     error
	)
	if withRegistration {
		confirm := req.ConfirmPassword
		if confirm == "" {
			confirm = req.Password
		}
		outcome, err = coord.AcceptWithRegistration(r.Context(), req.FullName, req.Password, confirm)
	} else {
		if state.Kind == inviteflow.StateAccountMismatch {
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, ErrorResponse{Error: "This invitation was issued to a different account"})
			return
		}
		outcome, err = coord.AcceptAsIs(r.Context())
	}
	if err != nil {
		renderAcceptError(w, r, err)
		return
	}

	if outcome.Result.AccessToken != "" {
		h.cookies.SetSession(w, outcome.Result.AccessToken, outcome.Result.ExpiresIn)
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, AcceptResponse{
		Message:         "Invitation accepted",
		IsNewUser:       outcome.Result.IsNewUser,
		WorkspaceName:   outcome.Result.WorkspaceName,
		Role:            outcome.Result.Role,
		RedirectTo:      outcome.RedirectTo,
		RedirectAfterMs: outcome.RedirectAfter.Milliseconds(),
	})
}

func renderAcceptError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *inviteflow.ValidationError
	var acceptErr *inviteflow.AcceptError

	switch {
	case errors.As(err, &validationErr):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorResponse{Error: validationErr.Message})
	case errors.As(err, &acceptErr):
		render.Status(r, acceptErr.StatusCode)
		render.JSON(w, r, ErrorResponse{Error: acceptErr.Message})
	case errors.Is(err, inviteflow.ErrAcceptInFlight):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, ErrorResponse{Error: "An accept request is already in progress"})
	default:
		slog.Error("failed to accept invitation", "err", err)
		render.Status(r, http.StatusBadGateway)
		render.JSON(w, r, ErrorResponse{Error: "Failed to accept invitation"})
	}
}
