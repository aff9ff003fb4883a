package idmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client talks to the external Identity & Workspace API. It never stores
// credentials; session-scoped calls take the bearer token explicitly, or use
// WithSession to bind one.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option is a function that configures a Client
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a new Identity & Workspace API client
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// upstreamError mirrors the error body shapes the upstream emits.
type upstreamError struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

// do issues a JSON request and decodes the response into out. Non-2xx
// responses become *APIError with the upstream message when one is present,
// else the supplied fallback.
func (c *Client) do(ctx context.Context, method, path, bearer string, body, out interface{}, fallback string) error {
	var reqBody *bytes.Buffer
	if body != nil {
		reqBody = new(bytes.Buffer)
		if err := json.NewEncoder(reqBody).Encode(body); err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: fallback}
		var ue upstreamError
		if err := json.NewDecoder(resp.Body).Decode(&ue); err == nil {
			if ue.Detail != "" {
				apiErr.Message = ue.Detail
			} else if ue.Error != "" {
				apiErr.Message = ue.Error
			}
		}
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response body: %w", err)
		}
	}
	return nil
}

// GetInviteDetails fetches a pending invitation by token
func (c *Client) GetInviteDetails(ctx context.Context, token string) (*InviteDetails, error) {
	var details InviteDetails
	path := "/invites/details/" + url.PathEscape(token)
	if err := c.do(ctx, http.MethodGet, path, "", nil, &details, "Failed to fetch invite details"); err != nil {
		return nil, err
	}
	return &details, nil
}

// CurrentIdentity probes the identity behind a session token
func (c *Client) CurrentIdentity(ctx context.Context, sessionToken string) (*SessionIdentity, error) {
	var identity SessionIdentity
	if err := c.do(ctx, http.MethodGet, "/auth/me", sessionToken, nil, &identity, "Not authenticated"); err != nil {
		return nil, err
	}
	return &identity, nil
}

// AcceptInvite accepts a pending invitation, creating a new account when
// FullName and Password are supplied and the invited email has none.
func (c *Client) AcceptInvite(ctx context.Context, params AcceptInviteParams) (*AcceptResult, error) {
	var result AcceptResult
	if err := c.do(ctx, http.MethodPost, "/invites/accept", "", params, &result, "Failed to accept invitation"); err != nil {
		return nil, err
	}
	return &result, nil
}

// Login exchanges credentials for a session token
func (c *Client) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var token TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", body, &token, "Login failed"); err != nil {
		return nil, err
	}
	return &token, nil
}

// Register creates an unverified account
func (c *Client) Register(ctx context.Context, params RegisterParams) (*RegisterResult, error) {
	var result RegisterResult
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", params, &result, "Registration failed"); err != nil {
		return nil, err
	}
	return &result, nil
}

// VerifyEmail confirms a registration verification code
func (c *Client) VerifyEmail(ctx context.Context, email, code string) error {
	body := map[string]string{"email": email, "code": code}
	return c.do(ctx, http.MethodPost, "/auth/verify-email", "", body, nil, "Email verification failed")
}

// CreateWorkspace creates a workspace owned by the session user
func (c *Client) CreateWorkspace(ctx context.Context, sessionToken string, params CreateWorkspaceParams) (*Workspace, error) {
	var ws Workspace
	if err := c.do(ctx, http.MethodPost, "/workspaces/create", sessionToken, params, &ws, "Failed to create workspace"); err != nil {
		return nil, err
	}
	return &ws, nil
}

// InviteMember invites an email address into a workspace
func (c *Client) InviteMember(ctx context.Context, sessionToken string, params InviteMemberParams) error {
	return c.do(ctx, http.MethodPost, "/workspaces/invite", sessionToken, params, nil, "Failed to send invitation")
}

// ListMembers lists the active members of a workspace
func (c *Client) ListMembers(ctx context.Context, sessionToken string, workspaceID uuid.UUID) ([]Member, error) {
	var members []Member
	path := "/workspaces/" + workspaceID.String() + "/members"
	if err := c.do(ctx, http.MethodGet, path, sessionToken, nil, &members, "Failed to list members"); err != nil {
		return nil, err
	}
	return members, nil
}

// CurrentPlan fetches the subscription plan of the session user
func (c *Client) CurrentPlan(ctx context.Context, sessionToken string) (*PlanDetails, error) {
	var plan PlanDetails
	if err := c.do(ctx, http.MethodGet, "/subscription/current-plan-details", sessionToken, nil, &plan, "Failed to fetch plan details"); err != nil {
		return nil, err
	}
	return &plan, nil
}

// SessionClient is a Client view bound to one session token. The token may be
// empty, in which case session-scoped calls behave as anonymous.
type SessionClient struct {
	client *Client
	token  string
}

// WithSession binds the client to a session token taken from the ambient
// credential (the session cookie).
func (c *Client) WithSession(token string) *SessionClient {
	return &SessionClient{client: c, token: token}
}

// GetInviteDetails fetches a pending invitation by token
func (s *SessionClient) GetInviteDetails(ctx context.Context, token string) (*InviteDetails, error) {
	return s.client.GetInviteDetails(ctx, token)
}

// CurrentIdentity probes the identity behind the bound session token
func (s *SessionClient) CurrentIdentity(ctx context.Context) (*SessionIdentity, error) {
	if s.token == "" {
		return nil, &APIError{StatusCode: http.StatusUnauthorized, Message: "Not authenticated"}
	}
	return s.client.CurrentIdentity(ctx, s.token)
}

// AcceptInvite accepts a pending invitation
func (s *SessionClient) AcceptInvite(ctx context.Context, params AcceptInviteParams) (*AcceptResult, error) {
	return s.client.AcceptInvite(ctx, params)
}

// Login exchanges credentials for a session token
func (s *SessionClient) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	return s.client.Login(ctx, email, password)
}
