package service

import (
	"context"
	"fmt"

	"github.com/pkordes/trip-companion/backend/internal/calendar"
	"github.com/pkordes/trip-companion/backend/internal/domain"
	"github.com/pkordes/trip-companion/backend/internal/repo"
)

// ExportService assembles a flat export of the trips a user created or joined.
type ExportService struct {
	trips repo.TripRepo
}

// NewExportService constructs an ExportService backed by the provided TripRepo.
func NewExportService(trips repo.TripRepo) *ExportService {
	return &ExportService{trips: trips}
}

// Export returns one ExportRow per trip userID participates in, newest first.
// Expired trips are included.
func (s *ExportService) Export(ctx context.Context, userID string) ([]domain.ExportRow, error) {
	trips, err := s.trips.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	rows := make([]domain.ExportRow, 0, len(trips))
	for _, t := range trips {
		role := domain.RoleParticipant
		if t.IsCreator(userID) {
			role = domain.RoleCreator
		}
		day, _ := calendar.Normalize(t.Date)
		rows = append(rows, domain.ExportRow{
			TripID:       t.ID,
			Title:        t.Title,
			City:         t.City,
			Day:          day.String(),
			Role:         role,
			CreatorName:  t.CreatorName,
			Participants: len(t.Participants),
			CreatedAt:    t.CreatedAt,
		})
	}
	return rows, nil
}
