package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/trip-companion/backend/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"trip_id", "title", "city", "date", "role",
	"creator_name", "participants", "created_at",
}

// ExportRow is one row of GET /me/export.
type ExportRow struct {
	TripID       uuid.UUID         `json:"trip_id"`
	Title        string            `json:"title"`
	City         string            `json:"city"`
	Date         string            `json:"date"`
	Role         domain.ExportRole `json:"role"`
	CreatorName  string            `json:"creator_name"`
	Participants int               `json:"participants"`
	CreatedAt    time.Time         `json:"created_at"`
}

// GetExport handles GET /me/export.
// It returns one row per trip the caller created or joined.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	acct, ok := actor(w, r)
	if !ok {
		return
	}
	var format *string
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &format); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid parameter format")
		return
	}

	rows, err := s.export.Export(r.Context(), acct.ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	switch {
	case format == nil || *format == "json":
		writeJSON(w, http.StatusOK, buildJSONResponse(rows))
	case *format == "csv":
		writeCSV(w, rows)
	default:
		writeError(w, http.StatusBadRequest, "bad_request", "format must be json or csv")
	}
}

func buildJSONResponse(rows []domain.ExportRow) []ExportRow {
	out := make([]ExportRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, ExportRow{
			TripID:       r.TripID,
			Title:        r.Title,
			City:         r.City,
			Date:         r.Day,
			Role:         r.Role,
			CreatorName:  r.CreatorName,
			Participants: r.Participants,
			CreatedAt:    r.CreatedAt,
		})
	}
	return out
}

// writeCSV encodes rows as an attachment. The body is buffered so the
// Content-Length is known before anything is sent.
func writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	cw.Write(csvHeaders)
	for _, r := range rows {
		//nolint:errcheck
		cw.Write(rowToCSVRecord(r))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="trips.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func rowToCSVRecord(r domain.ExportRow) []string {
	return []string{
		r.TripID.String(),
		r.Title,
		r.City,
		r.Day,
		string(r.Role),
		r.CreatorName,
		strconv.Itoa(r.Participants),
		r.CreatedAt.UTC().Format(time.RFC3339),
	}
}
