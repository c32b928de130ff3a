// Package domain contains the core data types for the Trip Companion application.
// It is imported by every other internal package (repo, service, feed, handler)
// and depends on nothing internal.
package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Trip is a published trip: a named outing to a city on a single calendar day.
//
// CreatorName and CreatorPhoto are a snapshot of the creator's profile taken when
// the trip was created. Later profile edits do not update existing trips.
//
// Participants always contains CreatorID. The store enforces this with a CHECK
// constraint; the membership service never removes the creator.
type Trip struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	City         string    `json:"city"`
	Date         time.Time `json:"date"` // UTC midnight of the trip day
	Description  string    `json:"description,omitempty"`
	Image        string    `json:"image"`
	CreatorID    string    `json:"creator_id"`
	CreatorName  string    `json:"creator_name"`
	CreatorPhoto string    `json:"creator_photo"`
	Participants []string  `json:"participants"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsParticipant reports whether userID is in the trip's participant set.
func (t Trip) IsParticipant(userID string) bool {
	return slices.Contains(t.Participants, userID)
}

// IsCreator reports whether userID created the trip.
func (t Trip) IsCreator(userID string) bool {
	return t.CreatorID == userID
}

// TripFields holds the creator-editable fields of a trip.
//
// Date may be a calendar.Timestamp, a time.Time, a free-text string or a
// calendar.Value. The service layer reduces it to a calendar day.
type TripFields struct {
	Title       string
	City        string
	Date        any
	Description string
	Image       string
}

// TripStatus is a trip as seen by one user.
type TripStatus struct {
	Trip      Trip
	IsMember  bool
	IsCreator bool
	IsExpired bool
}
