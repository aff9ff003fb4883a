package inviteflow

import (
	"github.com/zunohq/zuno-gateway/pkg/idmclient"
)

// StateKind identifies a coordinator state variant
type StateKind string

const (
	// StateLoading is the construction state, before Resolve completes
	StateLoading StateKind = "loading"
	// StateInvalid is terminal: no token, or the invite lookup failed
	StateInvalid StateKind = "invalid"
	// StateNeedsDecision means the invite is valid and the session is absent
	// or belongs to the invited email
	StateNeedsDecision StateKind = "needs_decision"
	// StateAccountMismatch means the invite is valid but the session belongs
	// to a different email
	StateAccountMismatch StateKind = "account_mismatch"
	// StateAccepting means an accept request is in flight
	StateAccepting StateKind = "accepting"
	// StateAccepted is terminal: the accept request succeeded
	StateAccepted StateKind = "accepted"
)

// State is the coordinator state as a tagged variant. Only the fields
// belonging to the variant are set: Reason and StatusCode for invalid, Invite
// (and Session when one was observed) for the decision states, NewUser for
// accepted.
type State struct {
	Kind       StateKind
	Invite     *idmclient.InviteDetails
	Session    *idmclient.SessionIdentity
	Reason     string
	StatusCode int
	NewUser    bool
}

// Terminal reports whether no further coordinator operation applies
func (s State) Terminal() bool {
	return s.Kind == StateInvalid || s.Kind == StateAccepted
}

func loadingState() State {
	return State{Kind: StateLoading}
}

func invalidState(reason string, statusCode int) State {
	return State{Kind: StateInvalid, Reason: reason, StatusCode: statusCode}
}

func needsDecisionState(invite *idmclient.InviteDetails, session *idmclient.SessionIdentity) State {
	return State{Kind: StateNeedsDecision, Invite: invite, Session: session}
}

func accountMismatchState(invite *idmclient.InviteDetails, session *idmclient.SessionIdentity) State {
	return State{Kind: StateAccountMismatch, Invite: invite, Session: session}
}

func acceptingState(prev State) State {
	return State{Kind: StateAccepting, Invite: prev.Invite, Session: prev.Session}
}

func acceptedState(prev State, newUser bool) State {
	return State{Kind: StateAccepted, Invite: prev.Invite, Session: prev.Session, NewUser: newUser}
}
