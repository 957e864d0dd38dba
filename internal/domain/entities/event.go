package entities

import (
	"time"
)

// Visibility controls whether an event is discoverable in search
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Coordinates represents a geographic point
type Coordinates struct {
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
}

// Location represents where an event takes place
type Location struct {
	City        string       `json:"city" db:"city"`
	State       string       `json:"state" db:"state"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// Event represents an event in the system. Price is in the smallest
// currency unit; 0 means free admission.
type Event struct {
	ID              string     `json:"id" db:"id"`
	Title           string     `json:"title" db:"title"`
	Description     string     `json:"description" db:"description"`
	Category        string     `json:"category" db:"category"`
	StartDateTime   time.Time  `json:"start_date_time" db:"start_date_time"`
	EndDateTime     time.Time  `json:"end_date_time" db:"end_date_time"`
	Location        Location   `json:"location"`
	Price           float64    `json:"price" db:"price"`
	Visibility      Visibility `json:"visibility" db:"visibility"`
	IsUserSubmitted bool       `json:"is_user_submitted" db:"is_user_submitted"`
	CreatedBy       string     `json:"created_by,omitempty" db:"created_by"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// IsFree reports whether the event has no admission charge
func (e *Event) IsFree() bool {
	return e.Price == 0
}
