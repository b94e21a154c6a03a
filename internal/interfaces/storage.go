package interfaces

import (
	"errors"

	"github.com/ternarybob/clipper/internal/models"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// CredentialStorage - interface for tracker credential persistence.
// A single credential is stored; writing replaces any existing one.
type CredentialStorage interface {
	StoreCredential(credential *models.Credential) error
	GetCredential() (*models.Credential, error)
	ClearCredential() error
}

// PreferenceStorage - interface for clip form preference persistence.
// Saving overwrites the full record each time.
type PreferenceStorage interface {
	SavePreferences(prefs *models.Preferences) error
	GetPreferences() (*models.Preferences, error)
}

// StorageManager - composite interface for all storage operations
type StorageManager interface {
	CredentialStorage() CredentialStorage
	PreferenceStorage() PreferenceStorage
	DB() interface{}
	Close() error
}
