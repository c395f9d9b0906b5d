package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/MStepRom/kursova2025/internal/storage"
	"github.com/MStepRom/kursova2025/internal/storage/storagetest"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Set TEST_MONGO_URI to a reachable server to run these tests. Each store gets its own database.
func setupStorage(t *testing.T) *Storage {
	t.Helper()

	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	database := fmt.Sprintf("priolist_test_%d", time.Now().UnixNano())
	s, err := New(ctx, uri, database)
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.db.Drop(ctx)
		_ = s.Close(ctx)
	})

	return s
}

func TestStorage_Contract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storagetest.Store {
		return setupStorage(t)
	})
}

func TestStorage_MalformedIDs(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	_, err := s.Poll(ctx, "not-an-object-id")
	assert.ErrorIs(t, err, storage.ErrPollNotFound)

	assert.ErrorIs(t, s.DeleteTask(ctx, gofakeit.UUID(), "zzz"), storage.ErrTaskNotFound)

	poll, err := s.SavePoll(ctx, "Lunch?", []string{"Pizza", "Sushi"}, gofakeit.UUID())
	require.NoError(t, err)

	_, err = s.RecordVote(ctx, gofakeit.UUID(), poll.ID, "zzz")
	assert.ErrorIs(t, err, storage.ErrOptionNotFound)
}

func TestStorage_SweepOrphanVotes(t *testing.T) {
	s := setupStorage(t)
	ctx := context.Background()

	kept, err := s.SavePoll(ctx, "Kept", []string{"a", "b"}, gofakeit.UUID())
	require.NoError(t, err)
	_, err = s.RecordVote(ctx, gofakeit.UUID(), kept.ID, kept.Options[0].ID)
	require.NoError(t, err)

	gone, err := s.SavePoll(ctx, "Gone", []string{"a", "b"}, gofakeit.UUID())
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = s.RecordVote(ctx, gofakeit.UUID(), gone.ID, gone.Options[1].ID)
		require.NoError(t, err)
	}

	require.NoError(t, s.DeletePoll(ctx, gone.ID))

	swept, err := s.SweepOrphanVotes(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, swept)

	count, err := s.CountVotes(ctx, kept.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
