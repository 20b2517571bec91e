package credstore

import (
	"errors"
	"testing"

	"github.com/bugseam/ticketing/pkg/ticketing"
)

func TestSaveLoad_Roundtrip(t *testing.T) {
	adapter := New(NewMemoryStore())

	creds := ticketing.Credentials{
		APIKey:      "lin_api_x",
		TeamID:      "team-1",
		WorkspaceID: "workspace-1",
	}
	if err := adapter.Save(creds); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded := adapter.Load()
	if loaded != creds {
		t.Errorf("Expected %+v, got %+v", creds, loaded)
	}
}

func TestLoad_MissingKeys(t *testing.T) {
	adapter := New(NewMemoryStore())

	loaded := adapter.Load()
	if loaded.APIKey != "" || loaded.TeamID != "" || loaded.WorkspaceID != "" {
		t.Errorf("Expected empty credentials from empty store, got %+v", loaded)
	}
}

func TestLoad_PartialKeys(t *testing.T) {
	store := NewMemoryStore()
	store.Set(KeyAPIKey, "lin_api_x")

	loaded := New(store).Load()
	if loaded.APIKey != "lin_api_x" {
		t.Errorf("Expected api key 'lin_api_x', got %q", loaded.APIKey)
	}
	if loaded.TeamID != "" {
		t.Errorf("Expected empty team id, got %q", loaded.TeamID)
	}
}

type failingStore struct{}

func (failingStore) Get(string) (string, bool) { return "", false }
func (failingStore) Set(string, string) error  { return errors.New("disk full") }

func TestSave_StoreError(t *testing.T) {
	adapter := New(failingStore{})

	err := adapter.Save(ticketing.Credentials{APIKey: "lin_api_x"})
	if err == nil {
		t.Fatal("Expected error when the underlying store fails")
	}
}
