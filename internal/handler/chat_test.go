package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-companion/backend/internal/domain"
	"github.com/pkordes/trip-companion/backend/internal/handler"
)

func TestListMessages_200(t *testing.T) {
	tripID := uuid.New()
	msgs := []domain.ChatMessage{
		{ID: uuid.New(), TripID: tripID, Text: "Selam", SenderID: bora.ID, SenderName: "Bora", CreatedAt: now},
		{ID: uuid.New(), TripID: tripID, Text: "Merhaba", SenderID: ada.ID, SenderName: "Ada", CreatedAt: now.Add(time.Minute)},
	}
	chat := &mockChatServicer{
		list: func(_ context.Context, id uuid.UUID) ([]domain.ChatMessage, error) {
			assert.Equal(t, tripID, id)
			return msgs, nil
		},
	}

	rec := do(t, newHTTPHandler(handler.Deps{Chat: chat}, ada), http.MethodGet, tripPath(tripID, "/messages"), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[handler.MessageList](t, rec)
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "Selam", resp.Messages[0].Text)
	assert.Equal(t, "Merhaba", resp.Messages[1].Text)
}

func TestListMessages_404(t *testing.T) {
	chat := &mockChatServicer{
		list: func(context.Context, uuid.UUID) ([]domain.ChatMessage, error) {
			return nil, fmt.Errorf("service.ChatService.List: %w", domain.ErrNotFound)
		},
	}

	rec := do(t, newHTTPHandler(handler.Deps{Chat: chat}, ada), http.MethodGet, tripPath(uuid.New(), "/messages"), nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSendMessage_201(t *testing.T) {
	tripID := uuid.New()
	chat := &mockChatServicer{
		send: func(_ context.Context, actor domain.Account, id uuid.UUID, text string) (domain.ChatMessage, error) {
			return domain.ChatMessage{ID: uuid.New(), TripID: id, Text: text, SenderID: actor.ID, SenderName: actor.Name(), CreatedAt: now}, nil
		},
	}

	rec := do(t, newHTTPHandler(handler.Deps{Chat: chat}, ada), http.MethodPost, tripPath(tripID, "/messages"),
		handler.MessageRequest{Text: "Saat kaçta?"})

	require.Equal(t, http.StatusCreated, rec.Code)
	msg := decode[domain.ChatMessage](t, rec)
	assert.Equal(t, tripID, msg.TripID)
	assert.Equal(t, "Saat kaçta?", msg.Text)
	assert.Equal(t, "Ada", msg.SenderName)
}

func TestSendMessage_422_Blank(t *testing.T) {
	chat := &mockChatServicer{
		send: func(context.Context, domain.Account, uuid.UUID, string) (domain.ChatMessage, error) {
			return domain.ChatMessage{}, fmt.Errorf("service.ChatService.Send: %w: text is required", domain.ErrValidation)
		},
	}

	rec := do(t, newHTTPHandler(handler.Deps{Chat: chat}, ada), http.MethodPost, tripPath(uuid.New(), "/messages"),
		handler.MessageRequest{Text: "  "})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "text is required", decode[handler.ErrorResponse](t, rec).Error.Message)
}
