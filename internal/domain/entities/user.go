package entities

import (
	"time"
)

// PreferredLocation is a city/state pair a user wants events near
type PreferredLocation struct {
	City  string `json:"city"`
	State string `json:"state"`
}

// UserPreferences holds the stored personalization inputs
type UserPreferences struct {
	Categories         []string            `json:"categories"`
	PreferredLocations []PreferredLocation `json:"preferred_locations"`
}

// User represents a user in the system
type User struct {
	ID          string          `json:"id" db:"id"`
	Email       string          `json:"email" db:"email"`
	DisplayName string          `json:"display_name" db:"display_name"`
	SavedEvents []string        `json:"saved_events"`
	Preferences UserPreferences `json:"preferences"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// HasSaved reports whether the user has saved the given event
func (u *User) HasSaved(eventID string) bool {
	for _, id := range u.SavedEvents {
		if id == eventID {
			return true
		}
	}
	return false
}
