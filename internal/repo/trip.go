// Package repo contains all database access logic for the Trip Companion API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/trip-companion/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TripRepo defines the persistence operations for Trips.
// The service layer depends on this interface, not the concrete Postgres implementation.
// All list methods order by created_at descending, then id, so repeated reads of an
// unchanged table return trips in the same order.
type TripRepo interface {
	// Create inserts a new trip and returns the persisted record (with
	// store-generated id, created_at, and updated_at populated).
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip. Returns domain.ErrNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// List returns all trips.
	List(ctx context.Context) ([]domain.Trip, error)

	// ListByCreator returns the trips created by userID.
	ListByCreator(ctx context.Context, userID string) ([]domain.Trip, error)

	// ListByParticipant returns the trips whose participants contain userID,
	// including the ones userID created.
	ListByParticipant(ctx context.Context, userID string) ([]domain.Trip, error)

	// UpdateFields overwrites title, city, date, description and image.
	// Participants and creator fields are never touched.
	// Returns domain.ErrNotFound if the trip does not exist.
	UpdateFields(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// AddParticipant adds userID to the participant set in a single statement.
	// Adding an existing participant leaves the set unchanged.
	AddParticipant(ctx context.Context, id uuid.UUID, userID string) (domain.Trip, error)

	// RemoveParticipant removes userID from the participant set in a single statement.
	// Removing the creator violates a store constraint and yields domain.ErrForbidden.
	RemoveParticipant(ctx context.Context, id uuid.UUID, userID string) (domain.Trip, error)

	// Delete removes a trip and its messages. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `id, title, city, trip_date, description, image,
	creator_id, creator_name, creator_photo, participants, created_at, updated_at`

// Create inserts a new trip row and returns the full persisted record.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (title, city, trip_date, description, image,
		                   creator_id, creator_name, creator_photo, participants)
		VALUES (@title, @city, @trip_date, @description, @image,
		        @creator_id, @creator_name, @creator_photo, @participants)
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"title":         trip.Title,
		"city":          trip.City,
		"trip_date":     trip.Date,
		"description":   trip.Description,
		"image":         trip.Image,
		"creator_id":    trip.CreatorID,
		"creator_name":  trip.CreatorName,
		"creator_photo": trip.CreatorPhoto,
		"participants":  trip.Participants,
	}

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, classify("repo.TripRepo.Create", err)
	}
	return result, nil
}

// GetByID retrieves a trip by primary key.
func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips WHERE id = @id`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, classify("repo.TripRepo.GetByID", err)
	}
	return result, nil
}

// List returns every trip, newest first.
func (r *pgTripRepo) List(ctx context.Context) ([]domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips ORDER BY created_at DESC, id`
	return r.list(ctx, "repo.TripRepo.List", q, nil)
}

// ListByCreator returns the trips created by userID, newest first.
func (r *pgTripRepo) ListByCreator(ctx context.Context, userID string) ([]domain.Trip, error) {
	const q = `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE creator_id = @user_id
		ORDER BY created_at DESC, id`
	return r.list(ctx, "repo.TripRepo.ListByCreator", q, pgx.NamedArgs{"user_id": userID})
}

// ListByParticipant returns the trips userID belongs to, newest first.
// The containment operator lets the GIN index on participants serve the query.
func (r *pgTripRepo) ListByParticipant(ctx context.Context, userID string) ([]domain.Trip, error) {
	const q = `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE participants @> ARRAY[@user_id::text]
		ORDER BY created_at DESC, id`
	return r.list(ctx, "repo.TripRepo.ListByParticipant", q, pgx.NamedArgs{"user_id": userID})
}

func (r *pgTripRepo) list(ctx context.Context, op, q string, args pgx.NamedArgs) ([]domain.Trip, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if args == nil {
		rows, err = r.db.Query(ctx, q)
	} else {
		rows, err = r.db.Query(ctx, q, args)
	}
	if err != nil {
		return nil, classify(op, err)
	}
	defer rows.Close()

	trips := []domain.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, classify(op+": scan", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(op+": rows", err)
	}
	return trips, nil
}

// UpdateFields overwrites the mutable fields of a trip and returns the updated record.
func (r *pgTripRepo) UpdateFields(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET title       = @title,
		    city        = @city,
		    trip_date   = @trip_date,
		    description = @description,
		    image       = @image,
		    updated_at  = now()
		WHERE id = @id
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"id":          trip.ID,
		"title":       trip.Title,
		"city":        trip.City,
		"trip_date":   trip.Date,
		"description": trip.Description,
		"image":       trip.Image,
	}

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, classify("repo.TripRepo.UpdateFields", err)
	}
	return result, nil
}

// AddParticipant performs a set union of {userID} into participants.
func (r *pgTripRepo) AddParticipant(ctx context.Context, id uuid.UUID, userID string) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET participants = CASE
		        WHEN @user_id::text = ANY (participants) THEN participants
		        ELSE array_append(participants, @user_id::text)
		    END,
		    updated_at = now()
		WHERE id = @id
		RETURNING ` + tripColumns

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "user_id": userID}))
	if err != nil {
		return domain.Trip{}, classify("repo.TripRepo.AddParticipant", err)
	}
	return result, nil
}

// RemoveParticipant removes every occurrence of userID from participants.
func (r *pgTripRepo) RemoveParticipant(ctx context.Context, id uuid.UUID, userID string) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET participants = array_remove(participants, @user_id::text),
		    updated_at   = now()
		WHERE id = @id
		RETURNING ` + tripColumns

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "user_id": userID}))
	if err != nil {
		return domain.Trip{}, classify("repo.TripRepo.RemoveParticipant", err)
	}
	return result, nil
}

// Delete removes a trip by primary key. Its messages go with it (ON DELETE CASCADE).
func (r *pgTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM trips WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return classify("repo.TripRepo.Delete", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanTrip to be
// reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a single database row (in tripColumns order) into a domain.Trip.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t    domain.Trip
		id   pgtype.UUID
		date pgtype.Date
	)

	err := s.Scan(&id, &t.Title, &t.City, &date, &t.Description, &t.Image,
		&t.CreatorID, &t.CreatorName, &t.CreatorPhoto, &t.Participants,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.Date = date.Time
	if t.Participants == nil {
		t.Participants = []string{}
	}
	return t, nil
}
