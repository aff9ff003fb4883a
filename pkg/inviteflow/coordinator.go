package inviteflow

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/zunohq/zuno-gateway/pkg/idmclient"
)

// Navigation destinations signaled by the coordinator
const (
	PathDashboard      = "/dashboard"
	PathInviteLogin    = "/invite-login"
	PathInviteRegister = "/invite-register"
)

// DefaultRedirectDelay is how long the accepted screen is shown to a newly
// created account before the dashboard redirect fires.
const DefaultRedirectDelay = 2 * time.Second

// MinPasswordLength is the only password rule enforced locally. Everything
// else is the upstream's policy.
const MinPasswordLength = 8

// IdentityClient is the surface of the Identity & Workspace API the
// coordinator needs. *idmclient.SessionClient implements it with the session
// token taken from the ambient credential.
type IdentityClient interface {
	GetInviteDetails(ctx context.Context, token string) (*idmclient.InviteDetails, error)
	CurrentIdentity(ctx context.Context) (*idmclient.SessionIdentity, error)
	AcceptInvite(ctx context.Context, params idmclient.AcceptInviteParams) (*idmclient.AcceptResult, error)
}

// Navigator receives navigation signals from the coordinator. Implementations
// must not call back into the coordinator.
type Navigator interface {
	NavigateTo(path string)
}

// NavigatorFunc adapts a function to the Navigator interface
type NavigatorFunc func(path string)

// NavigateTo calls f(path)
func (f NavigatorFunc) NavigateTo(path string) {
	f(path)
}

// Coordinator drives the invite acceptance flow: it reconciles an invite
// token against the current session and decides, per user action, what
// request to send and what state to transition to. All state mutation is
// guarded by one mutex; at most one accept request is in flight at a time.
type Coordinator struct {
	token   string
	client  IdentityClient
	intents IntentStore
	nav     Navigator

	redirectDelay time.Duration

	mu            sync.Mutex
	state         State
	closed        bool
	redirectTimer *time.Timer
}

// CoordinatorOption is a function that configures a Coordinator
type CoordinatorOption func(*Coordinator)

// WithIntentStore sets the store carrying the pending invite across the
// login/registration navigation boundary
func WithIntentStore(store IntentStore) CoordinatorOption {
	return func(c *Coordinator) {
		c.intents = store
	}
}

// WithNavigator sets the navigation signal receiver
func WithNavigator(nav Navigator) CoordinatorOption {
	return func(c *Coordinator) {
		c.nav = nav
	}
}

// WithRedirectDelay overrides the delay before the new-account dashboard redirect
func WithRedirectDelay(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		c.redirectDelay = d
	}
}

// NewCoordinator creates a coordinator for one invite token, as extracted
// from the entry URL. The token may be empty; Resolve then fails locally.
func NewCoordinator(token string, client IdentityClient, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		token:         token,
		client:        client,
		intents:       NewInMemoryIntentStore(),
		nav:           NavigatorFunc(func(string) {}),
		redirectDelay: DefaultRedirectDelay,
		state:         loadingState(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current coordinator state
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Token returns the invite token the coordinator was built with
func (c *Coordinator) Token() string {
	return c.token
}

// Resolve fetches the invite details and probes the current session, then
// computes the decision state. The two reads are independent and issued
// concurrently; a session probe failure is coerced to anonymous, a details
// failure is terminal. With an empty token no network call is made.
func (c *Coordinator) Resolve(ctx context.Context) State {
	if strings.TrimSpace(c.token) == "" {
		c.mu.Lock()
		defer c.mu.Unlock()
		if !c.closed {
			c.state = invalidState("Invalid invite link. No token provided.", http.StatusBadRequest)
		}
		return c.state
	}

	var (
		details    *idmclient.InviteDetails
		detailsErr error
		identity   *idmclient.SessionIdentity
	)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		details, detailsErr = c.client.GetInviteDetails(ctx, c.token)
	}()
	go func() {
		defer wg.Done()
		// Probe failure means anonymous, not an error
		if id, err := c.client.CurrentIdentity(ctx); err == nil {
			identity = id
		}
	}()
	wg.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return c.state
	}

	switch {
	case detailsErr != nil:
		// The upstream status rides along so the HTTP layer can forward it
		c.state = invalidState(upstreamMessage(detailsErr, "Failed to fetch invite details"), upstreamStatus(detailsErr))
	case identity != nil && identity.Email != details.Email:
		c.state = accountMismatchState(details, identity)
	default:
		c.state = needsDecisionState(details, identity)
	}
	return c.state
}

// AcceptOutcome is the result of a successful accept operation. RedirectAfter
// is zero when the redirect signal fired immediately.
type AcceptOutcome struct {
	State         State
	Result        *idmclient.AcceptResult
	RedirectTo    string
	RedirectAfter time.Duration
}

// AcceptAsIs accepts the invitation with the token alone. Valid from
// needs_decision; with no session the upstream response dictates the outcome.
func (c *Coordinator) AcceptAsIs(ctx context.Context) (*AcceptOutcome, error) {
	return c.accept(ctx, idmclient.AcceptInviteParams{Token: c.token}, false)
}

// AcceptWithRegistration accepts the invitation creating a new account.
// Valid from needs_decision, or from account_mismatch after an explicit
// create-new-account choice. Local validation never reaches the network.
func (c *Coordinator) AcceptWithRegistration(ctx context.Context, fullName, password, confirmPassword string) (*AcceptOutcome, error) {
	if err := validateRegistration(fullName, password, confirmPassword); err != nil {
		return nil, err
	}
	params := idmclient.AcceptInviteParams{
		Token:    c.token,
		FullName: strings.TrimSpace(fullName),
		Password: password,
	}
	return c.accept(ctx, params, true)
}

func (c *Coordinator) accept(ctx context.Context, params idmclient.AcceptInviteParams, fromMismatch bool) (*AcceptOutcome, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrCoordinatorClosed
	}
	switch c.state.Kind {
	case StateAccepting:
		c.mu.Unlock()
		return nil, ErrAcceptInFlight
	case StateNeedsDecision:
	case StateAccountMismatch:
		if !fromMismatch {
			c.mu.Unlock()
			return nil, ErrWrongState
		}
	default:
		c.mu.Unlock()
		return nil, ErrWrongState
	}
	prev := c.state
	c.state = acceptingState(prev)
	c.mu.Unlock()

	result, err := c.client.AcceptInvite(ctx, params)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		// Torn down mid-flight: discard the result
		return nil, ErrCoordinatorClosed
	}
	if err != nil {
		c.state = prev
		return nil, acceptErrorFrom(err)
	}

	c.state = acceptedState(prev, result.IsNewUser)
	// The invite is consumed; a stored intent must not be replayed
	c.intents.Clear(ctx)

	outcome := &AcceptOutcome{
		State:      c.state,
		Result:     result,
		RedirectTo: PathDashboard,
	}
	if result.IsNewUser {
		outcome.RedirectAfter = c.redirectDelay
		c.redirectTimer = time.AfterFunc(c.redirectDelay, func() {
			c.nav.NavigateTo(PathDashboard)
		})
	} else {
		c.nav.NavigateTo(PathDashboard)
	}
	return outcome, nil
}

// ChooseSwitchAccount stores the pending invite and signals navigation to the
// sign-in sub-flow for the invited email. The current session is untouched;
// the sign-in sub-flow overwrites it on success.
func (c *Coordinator) ChooseSwitchAccount(ctx context.Context) error {
	return c.stash(ctx, PathInviteLogin)
}

// ChooseCreateNewAccount stores the pending invite and signals navigation to
// the registration sub-flow.
func (c *Coordinator) ChooseCreateNewAccount(ctx context.Context) error {
	return c.stash(ctx, PathInviteRegister)
}

func (c *Coordinator) stash(ctx context.Context, dest string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrCoordinatorClosed
	}
	if c.state.Kind != StateAccountMismatch {
		c.mu.Unlock()
		return ErrWrongState
	}
	invite := c.state.Invite
	c.mu.Unlock()

	intent := PendingInviteIntent{
		Token:             c.token,
		Email:             invite.Email,
		SuggestedFullName: invite.InvitedBy,
	}
	if err := c.intents.Put(ctx, intent); err != nil {
		return fmt.Errorf("failed to store pending invite: %w", err)
	}
	c.nav.NavigateTo(dest + "?email=" + url.QueryEscape(invite.Email))
	return nil
}

// ChooseKeepCurrentAccount discards the invite and signals navigation to the
// dashboard. No request is sent; the invite remains unconsumed upstream.
func (c *Coordinator) ChooseKeepCurrentAccount() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrCoordinatorClosed
	}
	if c.state.Kind != StateAccountMismatch {
		c.mu.Unlock()
		return ErrWrongState
	}
	c.mu.Unlock()

	c.nav.NavigateTo(PathDashboard)
	return nil
}

// Close tears the coordinator down. In-flight results are discarded and the
// scheduled redirect, if any, is canceled.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.redirectTimer != nil {
		c.redirectTimer.Stop()
		c.redirectTimer = nil
	}
}

func validateRegistration(fullName, password, confirmPassword string) error {
	if strings.TrimSpace(fullName) == "" {
		return &ValidationError{Field: "full_name", Message: "Full name is required"}
	}
	if len(password) < MinPasswordLength {
		return &ValidationError{Field: "password", Message: "Password must be at least 8 characters long"}
	}
	if password != confirmPassword {
		return &ValidationError{Field: "confirm_password", Message: "Passwords do not match"}
	}
	return nil
}
