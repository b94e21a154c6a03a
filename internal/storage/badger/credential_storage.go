package badger

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/clipper/internal/interfaces"
	"github.com/ternarybob/clipper/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// credentialKey is the fixed record key for the single stored credential
const credentialKey = "tracker_credential"

// CredentialStorage implements the CredentialStorage interface for Badger
type CredentialStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewCredentialStorage creates a new CredentialStorage instance
func NewCredentialStorage(db *BadgerDB, logger arbor.ILogger) interfaces.CredentialStorage {
	return &CredentialStorage{
		db:     db,
		logger: logger,
	}
}

// StoreCredential persists the credential, replacing any existing one
func (s *CredentialStorage) StoreCredential(credential *models.Credential) error {
	now := time.Now()
	credential.UpdatedAt = now
	if credential.CreatedAt.IsZero() {
		credential.CreatedAt = now
	}

	if err := s.db.Store().Upsert(credentialKey, credential); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}

	s.logger.Debug().Str("expires_at", credential.ExpiresAt.Format(time.RFC3339)).Msg("Credential stored")
	return nil
}

// GetCredential retrieves the stored credential
func (s *CredentialStorage) GetCredential() (*models.Credential, error) {
	var credential models.Credential
	err := s.db.Store().Get(credentialKey, &credential)
	if err == badgerhold.ErrNotFound {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}

	return &credential, nil
}

// ClearCredential removes the stored credential. Clearing an absent
// credential is not an error.
func (s *CredentialStorage) ClearCredential() error {
	err := s.db.Store().Delete(credentialKey, &models.Credential{})
	if err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to clear credential: %w", err)
	}

	s.logger.Debug().Msg("Credential cleared")
	return nil
}
