// Package inviteflow drives workspace invitation acceptance.
//
// The coordinator reconciles an invite token against the current session and
// decides what request to send and what state to transition to next. It covers
// three entry situations: no session, a session belonging to the invited
// email, and a session belonging to a different account.
//
// # Overview
//
// The inviteflow package provides:
//   - Coordinator: the invite acceptance state machine
//   - IntentStore: cross-navigation carrier for a pending invite, with
//     in-memory and file-backed implementations
//   - ResumeFlow: login/registration sub-flows that resume a stashed invite
//
// # Basic Usage
//
//	import "github.com/zunohq/zuno-gateway/pkg/inviteflow"
//
//	// Create a coordinator for the token from the entry URL
//	coord := inviteflow.NewCoordinator(token, client.WithSession(sessionToken),
//		inviteflow.WithIntentStore(store),
//		inviteflow.WithNavigator(nav),
//	)
//	defer coord.Close()
//
//	state := coord.Resolve(ctx)
//	switch state.Kind {
//	case inviteflow.StateNeedsDecision:
//		outcome, err := coord.AcceptAsIs(ctx)
//	case inviteflow.StateAccountMismatch:
//		err := coord.ChooseSwitchAccount(ctx)
//	}
//
// # State Machine
//
// loading -> invalid | needs_decision | account_mismatch via Resolve;
// needs_decision/account_mismatch -> accepting -> accepted on a successful
// accept, or back to the prior state with an AcceptError on failure. invalid
// and accepted are terminal.
//
// # Related Packages
//
//   - pkg/idmclient - Identity & Workspace API client
//   - pkg/inviteflow/api - HTTP handlers over the coordinator
package inviteflow
