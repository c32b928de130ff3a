package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/trip-companion/backend/internal/domain"
)

// MessageRepo defines the persistence operations for trip chat messages.
type MessageRepo interface {
	// Create appends a message to a trip's chat.
	// Returns domain.ErrNotFound if the trip does not exist.
	Create(ctx context.Context, msg domain.ChatMessage) (domain.ChatMessage, error)

	// ListByTrip returns a trip's messages, oldest first.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.ChatMessage, error)
}

type pgMessageRepo struct {
	db db
}

// NewMessageRepo constructs a MessageRepo backed by the provided db connection.
func NewMessageRepo(db db) MessageRepo {
	return &pgMessageRepo{db: db}
}

const messageColumns = `id, trip_id, text, sender_id, sender_name, created_at`

func (r *pgMessageRepo) Create(ctx context.Context, msg domain.ChatMessage) (domain.ChatMessage, error) {
	const q = `
		INSERT INTO trip_messages (trip_id, text, sender_id, sender_name)
		VALUES (@trip_id, @text, @sender_id, @sender_name)
		RETURNING ` + messageColumns

	args := pgx.NamedArgs{
		"trip_id":     msg.TripID,
		"text":        msg.Text,
		"sender_id":   msg.SenderID,
		"sender_name": msg.SenderName,
	}

	result, err := scanMessage(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.ChatMessage{}, classify("repo.MessageRepo.Create", err)
	}
	return result, nil
}

func (r *pgMessageRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.ChatMessage, error) {
	const q = `
		SELECT ` + messageColumns + `
		FROM trip_messages
		WHERE trip_id = @trip_id
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, classify("repo.MessageRepo.ListByTrip", err)
	}
	defer rows.Close()

	msgs := []domain.ChatMessage{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, classify("repo.MessageRepo.ListByTrip: scan", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("repo.MessageRepo.ListByTrip: rows", err)
	}
	return msgs, nil
}

func scanMessage(s scanner) (domain.ChatMessage, error) {
	var (
		m      domain.ChatMessage
		id     pgtype.UUID
		tripID pgtype.UUID
	)
	if err := s.Scan(&id, &tripID, &m.Text, &m.SenderID, &m.SenderName, &m.CreatedAt); err != nil {
		return domain.ChatMessage{}, err
	}
	m.ID = uuid.UUID(id.Bytes)
	m.TripID = uuid.UUID(tripID.Bytes)
	return m, nil
}
