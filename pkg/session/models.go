package session

// LoginRequest is the credential payload for the login endpoint
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse reports a successful login. When an invite was pending, the
// accept outcome rides along: InviteError is set when the login succeeded but
// the resumed accept did not.
type LoginResponse struct {
	Message        string `json:"message"`
	InviteAccepted bool   `json:"invite_accepted"`
	InviteError    string `json:"invite_error,omitempty"`
	WorkspaceName  string `json:"workspace_name,omitempty"`
	RedirectTo     string `json:"redirect_to"`
}

// RegisterRequest is the payload for self-service registration
type RegisterRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse reports a created, not yet verified account
type RegisterResponse struct {
	Message  string `json:"message"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// VerifyEmailRequest confirms a registration verification code
type VerifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// MeResponse is the identity behind the session cookie
type MeResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// MessageResponse is a bare confirmation message
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the error body shape shared by all gateway endpoints
type ErrorResponse struct {
	Error string `json:"error"`
}
