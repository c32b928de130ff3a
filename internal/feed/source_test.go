package feed_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-companion/backend/internal/domain"
	"github.com/pkordes/trip-companion/backend/internal/feed"
)

// recordingSource records which query a scope ran.
type recordingSource struct {
	called string
	userID string
}

var _ feed.TripSource = (*recordingSource)(nil)

func (s *recordingSource) List(_ context.Context) ([]domain.Trip, error) {
	s.called = "List"
	return nil, nil
}

func (s *recordingSource) ListByCreator(_ context.Context, userID string) ([]domain.Trip, error) {
	s.called, s.userID = "ListByCreator", userID
	return nil, nil
}

func (s *recordingSource) ListByParticipant(_ context.Context, userID string) ([]domain.Trip, error) {
	s.called, s.userID = "ListByParticipant", userID
	return nil, nil
}

func TestScope_Load(t *testing.T) {
	tests := []struct {
		mode feed.Mode
		want string
	}{
		{feed.Browse, "List"},
		{feed.Created, "ListByCreator"},
		{feed.Joined, "ListByParticipant"},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			src := &recordingSource{}

			_, err := feed.Scope{Mode: tt.mode, UserID: "user-a"}.Load(context.Background(), src)

			require.NoError(t, err)
			assert.Equal(t, tt.want, src.called)
			if tt.mode != feed.Browse {
				assert.Equal(t, "user-a", src.userID)
			}
		})
	}
}
