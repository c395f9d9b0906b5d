// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MStepRom/kursova2025/internal/domain/models"
	"github.com/MStepRom/kursova2025/internal/storage"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Store interface {
	SaveUser(ctx context.Context, email, name string, passHash []byte) (string, error)
	User(ctx context.Context, email string) (models.User, error)

	SaveTask(ctx context.Context, task models.Task) (models.Task, error)
	Tasks(ctx context.Context, ownerID string) ([]models.Task, error)
	UpdateTask(ctx context.Context, ownerID, id string, upd models.TaskUpdate) (models.Task, error)
	DeleteTask(ctx context.Context, ownerID, id string) error

	SavePoll(ctx context.Context, title string, options []string, authorID string) (models.Poll, error)
	Poll(ctx context.Context, id string) (models.Poll, error)
	Polls(ctx context.Context) ([]models.Poll, error)
	DeletePoll(ctx context.Context, id string) error

	HasVoted(ctx context.Context, userID, pollID string) (bool, error)
	RecordVote(ctx context.Context, userID, pollID, optionID string) (models.Poll, error)
	DeleteVotesByPoll(ctx context.Context, pollID string) (int64, error)
	SweepOrphanVotes(ctx context.Context) (int64, error)
	CountVotes(ctx context.Context, pollID string) (int64, error)
}

// Run executes the shared contract against a fresh store per subtest.
func Run(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("tasks", func(t *testing.T) { testTasks(t, newStore(t)) })
	t.Run("task ownership", func(t *testing.T) { testTaskOwnership(t, newStore(t)) })
	t.Run("task due date", func(t *testing.T) { testTaskDueDate(t, newStore(t)) })
	t.Run("polls", func(t *testing.T) { testPolls(t, newStore(t)) })
	t.Run("vote scenario", func(t *testing.T) { testVoteScenario(t, newStore(t)) })
	t.Run("vote bad option", func(t *testing.T) { testVoteBadOption(t, newStore(t)) })
	t.Run("vote missing poll", func(t *testing.T) { testVoteMissingPoll(t, newStore(t)) })
	t.Run("concurrent same user", func(t *testing.T) { testConcurrentSameUser(t, newStore(t)) })
	t.Run("concurrent many users", func(t *testing.T) { testConcurrentManyUsers(t, newStore(t)) })
	t.Run("delete cascade", func(t *testing.T) { testDeleteCascade(t, newStore(t)) })
}

func testUsers(t *testing.T, s Store) {
	ctx := context.Background()
	email := gofakeit.Email()

	uid, err := s.SaveUser(ctx, email, gofakeit.Name(), []byte("hash"))
	require.NoError(t, err)
	require.NotEmpty(t, uid)

	_, err = s.SaveUser(ctx, email, gofakeit.Name(), []byte("other"))
	assert.ErrorIs(t, err, storage.ErrUserExists)

	user, err := s.User(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, uid, user.ID)
	assert.Equal(t, []byte("hash"), user.PassHash)

	_, err = s.User(ctx, gofakeit.Email())
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func testTasks(t *testing.T, s Store) {
	ctx := context.Background()
	owner := gofakeit.UUID()

	due := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	first, err := s.SaveTask(ctx, models.Task{
		Title:    "first",
		Priority: models.PriorityHigh,
		DueDate:  &due,
		OwnerID:  owner,
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	time.Sleep(5 * time.Millisecond)

	second, err := s.SaveTask(ctx, models.Task{Title: "second", Priority: models.PriorityLow, OwnerID: owner})
	require.NoError(t, err)

	tasks, err := s.Tasks(ctx, owner)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, second.ID, tasks[0].ID)
	assert.Equal(t, first.ID, tasks[1].ID)
	require.NotNil(t, tasks[1].DueDate)
	assert.True(t, due.Equal(*tasks[1].DueDate))

	completed := true
	title := "first, renamed"
	updated, err := s.UpdateTask(ctx, owner, first.ID, models.TaskUpdate{Title: &title, Completed: &completed})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.True(t, updated.Completed)
	assert.Equal(t, models.PriorityHigh, updated.Priority)
	assert.False(t, updated.UpdatedAt.Before(first.UpdatedAt))

	require.NoError(t, s.DeleteTask(ctx, owner, first.ID))
	tasks, err = s.Tasks(ctx, owner)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	assert.ErrorIs(t, s.DeleteTask(ctx, owner, first.ID), storage.ErrTaskNotFound)
}

func testTaskOwnership(t *testing.T, s Store) {
	ctx := context.Background()
	owner, stranger := gofakeit.UUID(), gofakeit.UUID()

	task, err := s.SaveTask(ctx, models.Task{Title: "mine", Priority: models.PriorityMedium, OwnerID: owner})
	require.NoError(t, err)

	title := "stolen"
	_, err = s.UpdateTask(ctx, stranger, task.ID, models.TaskUpdate{Title: &title})
	assert.ErrorIs(t, err, storage.ErrTaskNotFound)

	assert.ErrorIs(t, s.DeleteTask(ctx, stranger, task.ID), storage.ErrTaskNotFound)

	tasks, err := s.Tasks(ctx, stranger)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	tasks, err = s.Tasks(ctx, owner)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "mine", tasks[0].Title)
}

func testTaskDueDate(t *testing.T, s Store) {
	ctx := context.Background()
	owner := gofakeit.UUID()

	due := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	task, err := s.SaveTask(ctx, models.Task{Title: "dated", Priority: models.PriorityMedium, DueDate: &due, OwnerID: owner})
	require.NoError(t, err)

	title := "still dated"
	updated, err := s.UpdateTask(ctx, owner, task.ID, models.TaskUpdate{Title: &title})
	require.NoError(t, err)
	require.NotNil(t, updated.DueDate)
	assert.True(t, due.Equal(*updated.DueDate))

	later := due.AddDate(0, 1, 0)
	updated, err = s.UpdateTask(ctx, owner, task.ID, models.TaskUpdate{DueDate: &later})
	require.NoError(t, err)
	require.NotNil(t, updated.DueDate)
	assert.True(t, later.Equal(*updated.DueDate))

	updated, err = s.UpdateTask(ctx, owner, task.ID, models.TaskUpdate{ClearDueDate: true})
	require.NoError(t, err)
	assert.Nil(t, updated.DueDate)
	assert.Equal(t, title, updated.Title)

	tasks, err := s.Tasks(ctx, owner)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Nil(t, tasks[0].DueDate)

	undated, err := s.SaveTask(ctx, models.Task{Title: "undated", Priority: models.PriorityLow, OwnerID: owner})
	require.NoError(t, err)
	assert.Nil(t, undated.DueDate)

	updated, err = s.UpdateTask(ctx, owner, undated.ID, models.TaskUpdate{ClearDueDate: true})
	require.NoError(t, err)
	assert.Nil(t, updated.DueDate)
}

func testPolls(t *testing.T, s Store) {
	ctx := context.Background()
	author := gofakeit.UUID()

	older, err := s.SavePoll(ctx, "Older", []string{"a", "b"}, author)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	newer, err := s.SavePoll(ctx, "Newer", []string{"x", "y", "z"}, author)
	require.NoError(t, err)
	require.Len(t, newer.Options, 3)
	for i, text := range []string{"x", "y", "z"} {
		assert.NotEmpty(t, newer.Options[i].ID)
		assert.Equal(t, text, newer.Options[i].Text)
		assert.Zero(t, newer.Options[i].VoteCount)
	}

	polls, err := s.Polls(ctx)
	require.NoError(t, err)
	require.Len(t, polls, 2)
	assert.Equal(t, newer.ID, polls[0].ID)
	assert.Equal(t, older.ID, polls[1].ID)

	got, err := s.Poll(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "Older", got.Title)
	assert.Equal(t, author, got.AuthorID)

	require.NoError(t, s.DeletePoll(ctx, older.ID))
	_, err = s.Poll(ctx, older.ID)
	assert.ErrorIs(t, err, storage.ErrPollNotFound)
	assert.ErrorIs(t, s.DeletePoll(ctx, older.ID), storage.ErrPollNotFound)
}

// Lunch?: Pizza, Sushi. Two users vote Pizza, the first user tries again.
func testVoteScenario(t *testing.T, s Store) {
	ctx := context.Background()
	u1, u2 := gofakeit.UUID(), gofakeit.UUID()

	poll, err := s.SavePoll(ctx, "Lunch?", []string{"Pizza", "Sushi"}, u1)
	require.NoError(t, err)
	pizza := poll.Options[0].ID

	voted, err := s.HasVoted(ctx, u1, poll.ID)
	require.NoError(t, err)
	assert.False(t, voted)

	updated, err := s.RecordVote(ctx, u1, poll.ID, pizza)
	require.NoError(t, err)
	assert.EqualValues(t, 1, updated.Options[0].VoteCount)
	assert.EqualValues(t, 0, updated.Options[1].VoteCount)

	updated, err = s.RecordVote(ctx, u2, poll.ID, pizza)
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated.Options[0].VoteCount)

	_, err = s.RecordVote(ctx, u1, poll.ID, poll.Options[1].ID)
	assert.ErrorIs(t, err, storage.ErrVoteExists)

	voted, err = s.HasVoted(ctx, u1, poll.ID)
	require.NoError(t, err)
	assert.True(t, voted)

	assertTallyMatchesLedger(t, s, poll.ID, 2)
}

func testVoteBadOption(t *testing.T, s Store) {
	ctx := context.Background()
	user := gofakeit.UUID()

	poll, err := s.SavePoll(ctx, "Color", []string{"red", "blue"}, gofakeit.UUID())
	require.NoError(t, err)

	_, err = s.RecordVote(ctx, user, poll.ID, missingOptionID(poll))
	assert.ErrorIs(t, err, storage.ErrOptionNotFound)

	voted, err := s.HasVoted(ctx, user, poll.ID)
	require.NoError(t, err)
	assert.False(t, voted, "failed vote must not leave a ledger entry")
	assertTallyMatchesLedger(t, s, poll.ID, 0)

	_, err = s.RecordVote(ctx, user, poll.ID, poll.Options[1].ID)
	require.NoError(t, err)
	assertTallyMatchesLedger(t, s, poll.ID, 1)
}

func testVoteMissingPoll(t *testing.T, s Store) {
	ctx := context.Background()

	poll, err := s.SavePoll(ctx, "Gone", []string{"a", "b"}, gofakeit.UUID())
	require.NoError(t, err)
	require.NoError(t, s.DeletePoll(ctx, poll.ID))

	_, err = s.RecordVote(ctx, gofakeit.UUID(), poll.ID, poll.Options[0].ID)
	assert.ErrorIs(t, err, storage.ErrPollNotFound)

	count, err := s.CountVotes(ctx, poll.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func testConcurrentSameUser(t *testing.T, s Store) {
	ctx := context.Background()
	user := gofakeit.UUID()

	poll, err := s.SavePoll(ctx, "Race", []string{"a", "b"}, gofakeit.UUID())
	require.NoError(t, err)

	const attempts = 16
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		conflicts atomic.Int32
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			_, err := s.RecordVote(ctx, user, poll.ID, poll.Options[i%2].ID)
			switch {
			case err == nil:
				successes.Add(1)
			case assert.ErrorIs(t, err, storage.ErrVoteExists):
				conflicts.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, successes.Load())
	assert.EqualValues(t, attempts-1, conflicts.Load())
	assertTallyMatchesLedger(t, s, poll.ID, 1)
}

func testConcurrentManyUsers(t *testing.T, s Store) {
	ctx := context.Background()

	poll, err := s.SavePoll(ctx, "Crowd", []string{"a", "b", "c"}, gofakeit.UUID())
	require.NoError(t, err)

	const voters = 20
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.RecordVote(ctx, gofakeit.UUID(), poll.ID, poll.Options[i%3].ID)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assertTallyMatchesLedger(t, s, poll.ID, voters)
}

func testDeleteCascade(t *testing.T, s Store) {
	ctx := context.Background()
	user := gofakeit.UUID()

	poll, err := s.SavePoll(ctx, "Short lived", []string{"a", "b"}, user)
	require.NoError(t, err)
	_, err = s.RecordVote(ctx, user, poll.ID, poll.Options[0].ID)
	require.NoError(t, err)

	require.NoError(t, s.DeletePoll(ctx, poll.ID))
	_, err = s.DeleteVotesByPoll(ctx, poll.ID)
	require.NoError(t, err)

	count, err := s.CountVotes(ctx, poll.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = s.SweepOrphanVotes(ctx)
	require.NoError(t, err)

	again, err := s.SavePoll(ctx, "Short lived", []string{"a", "b"}, user)
	require.NoError(t, err)
	_, err = s.RecordVote(ctx, user, again.ID, again.Options[0].ID)
	require.NoError(t, err, "a vote on a deleted poll must not block the same user elsewhere")
}

func assertTallyMatchesLedger(t *testing.T, s Store, pollID string, want int64) {
	t.Helper()

	poll, err := s.Poll(context.Background(), pollID)
	require.NoError(t, err)

	count, err := s.CountVotes(context.Background(), pollID)
	require.NoError(t, err)

	assert.Equal(t, want, poll.TotalVotes())
	assert.Equal(t, want, count)
}

// missingOptionID returns an id shaped like the backend's option ids that belongs to no option of p.
func missingOptionID(p models.Poll) string {
	id := []byte(p.Options[0].ID)
	for {
		last := len(id) - 1
		if id[last] == '0' {
			id[last] = '1'
		} else {
			id[last] = '0'
		}
		candidate := string(id)
		if candidate != p.Options[0].ID && candidate != p.Options[1].ID {
			return candidate
		}
		id[last-1] = '0'
	}
}
