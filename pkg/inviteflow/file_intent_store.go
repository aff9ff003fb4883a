package inviteflow

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const intentFileName = "pending_invite.json"

// FileIntentStore implements IntentStore using file-based storage, so a
// pending invite survives a gateway restart between the navigation and the
// sub-flow completing.
type FileIntentStore struct {
	path  string
	mutex sync.Mutex
}

// NewFileIntentStore creates a new file-based intent store under dataDir
func NewFileIntentStore(dataDir string) (*FileIntentStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileIntentStore{path: filepath.Join(dataDir, intentFileName)}, nil
}

// Get returns the stored intent, reporting whether one exists
func (s *FileIntentStore) Get(ctx context.Context) (PendingInviteIntent, bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return PendingInviteIntent{}, false, nil
	}
	if err != nil {
		return PendingInviteIntent{}, false, fmt.Errorf("failed to read intent file: %w", err)
	}

	var intent PendingInviteIntent
	if err := json.Unmarshal(data, &intent); err != nil {
		return PendingInviteIntent{}, false, fmt.Errorf("failed to parse intent file: %w", err)
	}
	return intent, true, nil
}

// Put stores the intent, replacing any previous record wholesale
func (s *FileIntentStore) Put(ctx context.Context, intent PendingInviteIntent) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	data, err := json.MarshalIndent(intent, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal intent: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write intent file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace intent file: %w", err)
	}
	return nil
}

// Clear deletes the stored intent
func (s *FileIntentStore) Clear(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove intent file: %w", err)
	}
	return nil
}
