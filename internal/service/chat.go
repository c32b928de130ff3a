package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/trip-companion/backend/internal/domain"
	"github.com/pkordes/trip-companion/backend/internal/repo"
)

// maxMessageLen caps a chat message, counted in runes.
const maxMessageLen = 2000

// ChatService implements the per-trip group chat.
type ChatService struct {
	trips    repo.TripRepo
	messages repo.MessageRepo
}

// NewChatService constructs a ChatService backed by the provided repos.
func NewChatService(trips repo.TripRepo, messages repo.MessageRepo) *ChatService {
	return &ChatService{trips: trips, messages: messages}
}

// Send appends a message from actor to the trip's chat.
// Returns domain.ErrValidation for blank or oversized text and domain.ErrNotFound
// if the trip does not exist.
func (s *ChatService) Send(ctx context.Context, actor domain.Account, tripID uuid.UUID, text string) (domain.ChatMessage, error) {
	if err := requireActor(actor); err != nil {
		return domain.ChatMessage{}, fmt.Errorf("service.ChatService.Send: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.ChatMessage{}, fmt.Errorf("service.ChatService.Send: %w: text is required", domain.ErrValidation)
	}
	if len([]rune(text)) > maxMessageLen {
		return domain.ChatMessage{}, fmt.Errorf("service.ChatService.Send: %w: text longer than %d characters", domain.ErrValidation, maxMessageLen)
	}

	if _, err := s.trips.GetByID(ctx, tripID); err != nil {
		return domain.ChatMessage{}, fmt.Errorf("service.ChatService.Send: %w", err)
	}

	msg, err := s.messages.Create(ctx, domain.ChatMessage{
		TripID:     tripID,
		Text:       text,
		SenderID:   actor.ID,
		SenderName: actor.Name(),
	})
	if err != nil {
		return domain.ChatMessage{}, fmt.Errorf("service.ChatService.Send: %w", err)
	}
	return msg, nil
}

// List returns the trip's messages, oldest first.
// Always returns a non-nil slice so callers can safely range over it.
func (s *ChatService) List(ctx context.Context, tripID uuid.UUID) ([]domain.ChatMessage, error) {
	if _, err := s.trips.GetByID(ctx, tripID); err != nil {
		return nil, fmt.Errorf("service.ChatService.List: %w", err)
	}
	msgs, err := s.messages.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ChatService.List: %w", err)
	}
	if msgs == nil {
		return []domain.ChatMessage{}, nil
	}
	return msgs, nil
}
