package inviteflow

import (
	"context"
	"strings"
	"time"

	"github.com/zunohq/zuno-gateway/pkg/idmclient"
)

// LoginClient is the surface of the Identity & Workspace API the resume
// sub-flows need.
type LoginClient interface {
	Login(ctx context.Context, email, password string) (*idmclient.TokenResponse, error)
	AcceptInvite(ctx context.Context, params idmclient.AcceptInviteParams) (*idmclient.AcceptResult, error)
}

// ResumeFlow resumes a stashed invite from inside the login or registration
// sub-flow. The stored intent is deleted after one accept attempt regardless
// of outcome, so a stale token cannot be replayed against a later flow.
type ResumeFlow struct {
	client  LoginClient
	intents IntentStore
}

// NewResumeFlow creates a new resume flow service
func NewResumeFlow(client LoginClient, intents IntentStore) *ResumeFlow {
	return &ResumeFlow{client: client, intents: intents}
}

// ResumeResult is the outcome of a completed sub-flow. Token is the session
// established by login (nil for the registration sub-flow, where the accept
// response itself carries the credential). Accept is nil when no invite was
// pending. RedirectAfter is zero for an immediate redirect.
type ResumeResult struct {
	Token         *idmclient.TokenResponse
	Accept        *idmclient.AcceptResult
	RedirectTo    string
	RedirectAfter time.Duration
}

// PendingIntent reads the stashed intent, falling back to the URL-supplied
// email when the store is empty.
func (f *ResumeFlow) PendingIntent(ctx context.Context, fallbackEmail string) PendingInviteIntent {
	intent, ok, err := f.intents.Get(ctx)
	if err != nil || !ok || intent.IsZero() {
		return PendingInviteIntent{Email: fallbackEmail}
	}
	if intent.Email == "" {
		intent.Email = fallbackEmail
	}
	return intent
}

// CompleteLogin signs the user in and, when an invite is pending, accepts it
// with the resumed token. The session is established by the login even when
// the accept fails, so the result carries the token alongside any accept
// error.
func (f *ResumeFlow) CompleteLogin(ctx context.Context, email, password string) (*ResumeResult, error) {
	token, err := f.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	res := &ResumeResult{Token: token, RedirectTo: PathDashboard}

	intent, ok, err := f.intents.Get(ctx)
	if err != nil || !ok || intent.Token == "" {
		return res, nil
	}

	// Cleared regardless of the accept outcome
	defer f.intents.Clear(ctx)

	accept, err := f.client.AcceptInvite(ctx, idmclient.AcceptInviteParams{Token: intent.Token})
	if err != nil {
		return res, acceptErrorFrom(err)
	}
	res.Accept = accept
	return res, nil
}

// CompleteRegistration creates the invited account and accepts the invite in
// one upstream call, using the stashed token. A missing token is an error:
// the sub-flow cannot guess which invite to accept.
func (f *ResumeFlow) CompleteRegistration(ctx context.Context, fullName, password, confirmPassword string) (*ResumeResult, error) {
	if err := validateRegistration(fullName, password, confirmPassword); err != nil {
		return nil, err
	}

	intent, ok, err := f.intents.Get(ctx)
	if err != nil || !ok || intent.Token == "" {
		return nil, ErrNoPendingInvite
	}

	defer f.intents.Clear(ctx)

	accept, err := f.client.AcceptInvite(ctx, idmclient.AcceptInviteParams{
		Token:    intent.Token,
		FullName: strings.TrimSpace(fullName),
		Password: password,
	})
	if err != nil {
		return nil, acceptErrorFrom(err)
	}

	res := &ResumeResult{Accept: accept, RedirectTo: PathDashboard}
	if accept.IsNewUser {
		res.RedirectAfter = DefaultRedirectDelay
	}
	return res, nil
}
