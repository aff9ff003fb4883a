package api

import (
	"time"

	"github.com/google/uuid"
)

// InviteDetailsModel is the invite payload rendered to the UI
type InviteDetailsModel struct {
	ID            uuid.UUID  `json:"id"`
	WorkspaceName string     `json:"workspace_name"`
	Email         string     `json:"email"`
	Role          string     `json:"role"`
	InvitedBy     string     `json:"invited_by"`
	ExpiresAt     *time.Time `json:"expires_at"`
}

// DetailsResponse reports the resolved coordinator state for an invite token.
// Status is "needs_decision" or "account_mismatch"; CurrentEmail is set when
// a session was observed.
type DetailsResponse struct {
	Status       string             `json:"status"`
	Invite       InviteDetailsModel `json:"invite"`
	CurrentEmail string             `json:"current_email,omitempty"`
}

// AcceptRequest is the accept payload. FullName and Password are present only
// when the acceptance creates a new account; ConfirmPassword defaults to
// Password when the caller already confirmed client-side.
type AcceptRequest struct {
	Token           string `json:"token"`
	FullName        string `json:"full_name,omitempty"`
	Password        string `json:"password,omitempty"`
	ConfirmPassword string `json:"confirm_password,omitempty"`
}

// AcceptResponse reports a consumed invitation. RedirectAfterMs is zero when
// the UI should navigate immediately.
type AcceptResponse struct {
	Message         string `json:"message"`
	IsNewUser       bool   `json:"is_new_user"`
	WorkspaceName   string `json:"workspace_name"`
	Role            string `json:"role"`
	RedirectTo      string `json:"redirect_to"`
	RedirectAfterMs int64  `json:"redirect_after_ms"`
}

// ErrorResponse is the error body shape shared by all gateway endpoints
type ErrorResponse struct {
	Error string `json:"error"`
}
