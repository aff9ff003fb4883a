package inviteflow

import "context"

// PendingInviteIntent carries an invite across a navigation boundary into the
// login or registration sub-flow. It is created when the user chooses to
// switch accounts or create a new one, and deleted after one accept attempt
// regardless of outcome.
type PendingInviteIntent struct {
	Token             string `json:"token"`
	Email             string `json:"email"`
	SuggestedFullName string `json:"suggested_full_name,omitempty"`
}

// IsZero reports whether no intent is stored
func (i PendingInviteIntent) IsZero() bool {
	return i.Token == "" && i.Email == "" && i.SuggestedFullName == ""
}

// IntentStore holds at most one PendingInviteIntent shared across the invite,
// login and registration sub-flows. Put overwrites the record wholesale.
type IntentStore interface {
	// Get returns the stored intent, reporting whether one exists
	Get(ctx context.Context) (PendingInviteIntent, bool, error)

	// Put stores the intent, replacing any previous record
	Put(ctx context.Context, intent PendingInviteIntent) error

	// Clear deletes the stored intent. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}
