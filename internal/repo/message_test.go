package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-companion/backend/internal/domain"
	"github.com/pkordes/trip-companion/backend/internal/repo"
)

func TestMessageRepo_CreateAndList(t *testing.T) {
	tx := newTestTx(t)
	trips := repo.NewTripRepo(tx)
	messages := repo.NewMessageRepo(tx)
	ctx := context.Background()

	trip, err := trips.Create(ctx, tripFixture("user-a"))
	require.NoError(t, err)

	first, err := messages.Create(ctx, domain.ChatMessage{TripID: trip.ID, Text: "who brings chains?", SenderID: "user-a", SenderName: "Ada"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, first.ID)
	assert.Equal(t, trip.ID, first.TripID)
	assert.False(t, first.CreatedAt.IsZero())

	_, err = messages.Create(ctx, domain.ChatMessage{TripID: trip.ID, Text: "me", SenderID: "user-b", SenderName: "Bo"})
	require.NoError(t, err)

	got, err := messages.ListByTrip(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "who brings chains?", got[0].Text)
	assert.Equal(t, "me", got[1].Text)
}

func TestMessageRepo_Create_UnknownTrip(t *testing.T) {
	messages := repo.NewMessageRepo(newTestTx(t))

	_, err := messages.Create(context.Background(), domain.ChatMessage{TripID: uuid.New(), Text: "hello", SenderID: "user-a"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
