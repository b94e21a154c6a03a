package badger

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/clipper/internal/interfaces"
	"github.com/ternarybob/clipper/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// preferencesKey is the fixed record key for the clip form preferences
const preferencesKey = "clipper_prefs"

// PreferenceStorage implements the PreferenceStorage interface for Badger
type PreferenceStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewPreferenceStorage creates a new PreferenceStorage instance
func NewPreferenceStorage(db *BadgerDB, logger arbor.ILogger) interfaces.PreferenceStorage {
	return &PreferenceStorage{
		db:     db,
		logger: logger,
	}
}

// SavePreferences writes the full preference record, replacing any
// previously saved selections.
func (s *PreferenceStorage) SavePreferences(prefs *models.Preferences) error {
	prefs.UpdatedAt = time.Now()
	if prefs.LabelIDs == nil {
		prefs.LabelIDs = []string{}
	}

	if err := s.db.Store().Upsert(preferencesKey, prefs); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}

	s.logger.Debug().Str("team_id", prefs.TeamID).Msg("Preferences saved")
	return nil
}

// GetPreferences retrieves the saved preferences, returning an empty
// default set when none have been saved yet.
func (s *PreferenceStorage) GetPreferences() (*models.Preferences, error) {
	var prefs models.Preferences
	err := s.db.Store().Get(preferencesKey, &prefs)
	if err == badgerhold.ErrNotFound {
		return models.NewDefaultPreferences(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}

	if prefs.LabelIDs == nil {
		prefs.LabelIDs = []string{}
	}

	return &prefs, nil
}
