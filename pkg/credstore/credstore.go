// Package credstore adapts the host application's key-value settings store
// to the credential fields the ticketing module works with. The module never
// persists credentials itself; the caller decides when to Save.
package credstore

import (
	"fmt"
	"sync"

	"github.com/bugseam/ticketing/pkg/ticketing"
)

// Store is the key-value interface the host application injects.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool)

	// Set writes the value for key.
	Set(key, value string) error
}

// Well-known keys in the host settings store.
const (
	KeyAPIKey      = "ticketing.api_key"
	KeyTeamID      = "ticketing.team_id"
	KeyWorkspaceID = "ticketing.workspace_id"
)

// Adapter reads and writes credentials through an injected Store.
type Adapter struct {
	store Store
}

// New creates an adapter over the given store.
func New(store Store) *Adapter {
	return &Adapter{store: store}
}

// Load reads the stored credential fields. Missing keys come back as empty
// strings; the caller decides whether that is an error.
func (a *Adapter) Load() ticketing.Credentials {
	creds := ticketing.Credentials{}
	if v, ok := a.store.Get(KeyAPIKey); ok {
		creds.APIKey = v
	}
	if v, ok := a.store.Get(KeyTeamID); ok {
		creds.TeamID = v
	}
	if v, ok := a.store.Get(KeyWorkspaceID); ok {
		creds.WorkspaceID = v
	}
	return creds
}

// Save writes all three credential fields to the store.
func (a *Adapter) Save(creds ticketing.Credentials) error {
	if err := a.store.Set(KeyAPIKey, creds.APIKey); err != nil {
		return fmt.Errorf("failed to store api key: %w", err)
	}
	if err := a.store.Set(KeyTeamID, creds.TeamID); err != nil {
		return fmt.Errorf("failed to store team id: %w", err)
	}
	if err := a.store.Set(KeyWorkspaceID, creds.WorkspaceID); err != nil {
		return fmt.Errorf("failed to store workspace id: %w", err)
	}
	return nil
}

// MemoryStore is an in-process Store used by tests and by the CLI, where it
// stands in for the desktop application's settings database.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get returns the value for key and whether it was present.
func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

// Set writes the value for key.
func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
