package database

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a preference key has never been stored.
var ErrNotFound = errors.New("preference not found")

// PreferenceRepository provides database operations for preferences
type PreferenceRepository struct {
	db *gorm.DB
}

// NewPreferenceRepository creates a new repository instance
func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// Get returns the stored preference for key, or ErrNotFound.
func (r *PreferenceRepository) Get(key string) (*Preference, error) {
	var pref Preference
	err := r.db.Where("pref_key = ?", key).First(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pref, nil
}

// Set creates or replaces the value stored under key
func (r *PreferenceRepository) Set(key, value string) error {
	pref := Preference{Key: key, Value: value}
	pref.SanitizeFields()

	if !pref.IsValid() {
		return fmt.Errorf("preference key cannot be empty")
	}
	pref.UpdatedAt = time.Now()

	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "pref_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&pref).Error
}

// Delete removes key. Deleting a missing key is not an error.
func (r *PreferenceRepository) Delete(key string) error {
	return r.db.Where("pref_key = ?", key).Delete(&Preference{}).Error
}
