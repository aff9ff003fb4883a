package idmclient

import (
	"time"

	"github.com/google/uuid"
)

// InviteDetails describes a pending workspace invitation as reported by the
// Identity & Workspace API. The invited email is immutable for the invite's
// lifetime.
type InviteDetails struct {
	ID            uuid.UUID  `json:"id"`
	WorkspaceID   uuid.UUID  `json:"workspace_id"`
	WorkspaceName string     `json:"workspace_name"`
	Email         string     `json:"email"`
	Role          string     `json:"role"`
	InvitedBy     string     `json:"invited_by"`
	Status        string     `json:"status"`
	ExpiresAt     *time.Time `json:"expires_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// SessionIdentity is the identity behind an ambient session credential.
type SessionIdentity struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
}

// AcceptInviteParams carries an invite acceptance request. FullName and
// Password are set only when the acceptance creates a new account.
type AcceptInviteParams struct {
	Token    string `json:"token"`
	FullName string `json:"full_name,omitempty"`
	Password string `json:"password,omitempty"`
}

// AcceptResult is the upstream response to an accepted invitation. AccessToken
// is present when the upstream established a new session as part of the
// acceptance.
type AcceptResult struct {
	Message       string    `json:"message"`
	UserID        uuid.UUID `json:"user_id"`
	WorkspaceID   uuid.UUID `json:"workspace_id"`
	WorkspaceName string    `json:"workspace_name"`
	Role          string    `json:"role"`
	IsNewUser     bool      `json:"is_new_user"`
	AccessToken   string    `json:"access_token,omitempty"`
	ExpiresIn     int       `json:"expires_in,omitempty"`
}

// TokenResponse is the upstream response to a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// RegisterParams carries a self-service registration request.
type RegisterParams struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResult is the upstream response to a registration request.
// Registration does not establish a session until the email is verified.
type RegisterResult struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"full_name"`
	IsVerified bool      `json:"is_verified"`
}

// CreateWorkspaceParams carries a workspace creation request.
type CreateWorkspaceParams struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Workspace describes a workspace owned by or shared with the session user.
type Workspace struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Slug    string    `json:"slug"`
	OwnerID uuid.UUID `json:"owner_id"`
}

// InviteMemberParams carries a request to invite a member into a workspace.
type InviteMemberParams struct {
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
}

// Member describes a workspace member row.
type Member struct {
	UserID   uuid.UUID `json:"user_id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
	Role     string    `json:"role"`
	IsActive bool      `json:"is_active"`
}

// PlanDetails describes the subscription plan backing the session user's
// workspaces.
type PlanDetails struct {
	Plan      string `json:"plan"`
	Status    string `json:"status"`
	SeatLimit int    `json:"seat_limit"`
	SeatsUsed int    `json:"seats_used"`
}
