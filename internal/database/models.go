package database

import (
	"strings"
	"time"
)

// Preference is a single persisted user preference, e.g. the UI language.
type Preference struct {
	Key       string    `gorm:"column:pref_key;primarykey;size:64;not null" json:"key"`
	Value     string    `gorm:"size:255" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Preference) TableName() string {
	return "preferences"
}

// IsValid checks if the preference has a usable key
func (p Preference) IsValid() bool {
	return strings.TrimSpace(p.Key) != ""
}

// SanitizeFields trims surrounding whitespace from key and value
func (p *Preference) SanitizeFields() {
	p.Key = strings.TrimSpace(p.Key)
	p.Value = strings.TrimSpace(p.Value)
}
