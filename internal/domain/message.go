package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is a single append-only message in a trip's chat.
// Messages are listed in CreatedAt ascending order.
type ChatMessage struct {
	ID         uuid.UUID `json:"id"`
	TripID     uuid.UUID `json:"trip_id"`
	Text       string    `json:"text"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	CreatedAt  time.Time `json:"created_at"`
}
