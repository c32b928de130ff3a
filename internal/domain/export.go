package domain

import (
	"time"

	"github.com/google/uuid"
)

// ExportRole describes how the exporting user relates to a trip.
type ExportRole string

const (
	RoleCreator     ExportRole = "creator"
	RoleParticipant ExportRole = "participant"
)

// ExportRow is a single row of a user's trip export: one row per trip the user
// created or joined, flattened for CSV.
type ExportRow struct {
	TripID       uuid.UUID
	Title        string
	City         string
	Day          string // "2006-01-02"
	Role         ExportRole
	CreatorName  string
	Participants int
	CreatedAt    time.Time
}
