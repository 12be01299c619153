package storage

import (
	"github.com/nudge-cli/nudge/internal/model"
)

// PreferencesRepo provides operations for the Preferences singleton.
type PreferencesRepo struct {
	db *DB
}

// NewPreferencesRepo creates a new preferences repository.
func NewPreferencesRepo(db *DB) *PreferencesRepo {
	return &PreferencesRepo{db: db}
}

// Get retrieves the preferences, returning defaults if none were saved.
func (r *PreferencesRepo) Get() (*model.Preferences, error) {
	prefs := &model.Preferences{}
	err := r.db.Get(model.KeyPreferences, prefs)
	if err == nil {
		return prefs, nil
	}

	if !IsErrKeyNotFound(err) {
		return nil, err
	}

	// Defaults are not persisted until explicitly set
	return model.DefaultPreferences(), nil
}

// Set validates and stores the preferences.
func (r *PreferencesRepo) Set(prefs *model.Preferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}
	prefs.Key = model.KeyPreferences
	return r.db.Set(prefs)
}

// Reset removes saved preferences so defaults apply again.
func (r *PreferencesRepo) Reset() error {
	err := r.db.Delete(model.KeyPreferences)
	if IsErrKeyNotFound(err) {
		return nil
	}
	return err
}
