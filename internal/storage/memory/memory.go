package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/MStepRom/kursova2025/internal/domain/models"
	"github.com/MStepRom/kursova2025/internal/storage"
	"github.com/google/uuid"
)

// Storage keeps everything in maps behind a single mutex. Used for local runs and tests.
type Storage struct {
	mu    sync.Mutex
	seq   int64
	users map[string]models.User
	tasks map[string]taskRecord
	polls map[string]pollRecord
	votes map[voteKey]models.Vote
}

type taskRecord struct {
	task models.Task
	seq  int64
}

type pollRecord struct {
	poll models.Poll
	seq  int64
}

type voteKey struct {
	userID string
	pollID string
}

func New() *Storage {
	return &Storage{
		users: make(map[string]models.User),
		tasks: make(map[string]taskRecord),
		polls: make(map[string]pollRecord),
		votes: make(map[voteKey]models.Vote),
	}
}

func (s *Storage) Close(_ context.Context) error {
	return nil
}

func (s *Storage) SaveUser(_ context.Context, email, name string, passHash []byte) (string, error) {
	const op = "storage.memory.SaveUser"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[email]; exists {
		return "", fmt.Errorf("%s: %w", op, storage.ErrUserExists)
	}

	user := models.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      name,
		PassHash:  passHash,
		CreatedAt: time.Now().UTC(),
	}
	s.users[email] = user

	return user.ID, nil
}

func (s *Storage) User(_ context.Context, email string) (models.User, error) {
	const op = "storage.memory.User"

	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.users[email]
	if !exists {
		return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	return user, nil
}

func (s *Storage) SaveTask(_ context.Context, task models.Task) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	task.ID = uuid.NewString()
	task.CreatedAt = now
	task.UpdatedAt = now

	s.seq++
	s.tasks[task.ID] = taskRecord{task: task, seq: s.seq}

	return task, nil
}

func (s *Storage) Tasks(_ context.Context, ownerID string) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]taskRecord, 0)
	for _, rec := range s.tasks {
		if rec.task.OwnerID == ownerID {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].seq > records[j].seq })

	tasks := make([]models.Task, 0, len(records))
	for _, rec := range records {
		tasks = append(tasks, rec.task)
	}
	return tasks, nil
}

func (s *Storage) UpdateTask(_ context.Context, ownerID, id string, upd models.TaskUpdate) (models.Task, error) {
	const op = "storage.memory.UpdateTask"

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.tasks[id]
	if !exists || rec.task.OwnerID != ownerID {
		return models.Task{}, fmt.Errorf("%s: %w", op, storage.ErrTaskNotFound)
	}

	task := rec.task
	if upd.Title != nil {
		task.Title = *upd.Title
	}
	if upd.Description != nil {
		task.Description = *upd.Description
	}
	if upd.Priority != nil {
		task.Priority = *upd.Priority
	}
	switch {
	case upd.ClearDueDate:
		task.DueDate = nil
	case upd.DueDate != nil:
		due := *upd.DueDate
		task.DueDate = &due
	}
	if upd.Completed != nil {
		task.Completed = *upd.Completed
	}
	task.UpdatedAt = time.Now().UTC()

	rec.task = task
	s.tasks[id] = rec

	return task, nil
}

func (s *Storage) DeleteTask(_ context.Context, ownerID, id string) error {
	const op = "storage.memory.DeleteTask"

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.tasks[id]
	if !exists || rec.task.OwnerID != ownerID {
		return fmt.Errorf("%s: %w", op, storage.ErrTaskNotFound)
	}
	delete(s.tasks, id)
	return nil
}

func (s *Storage) SavePoll(_ context.Context, title string, options []string, authorID string) (models.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll := models.Poll{
		ID:        uuid.NewString(),
		Title:     title,
		Options:   make([]models.Option, 0, len(options)),
		AuthorID:  authorID,
		CreatedAt: time.Now().UTC(),
	}
	for _, text := range options {
		poll.Options = append(poll.Options, models.Option{ID: uuid.NewString(), Text: text})
	}

	s.seq++
	s.polls[poll.ID] = pollRecord{poll: poll, seq: s.seq}

	return clonePoll(poll), nil
}

func (s *Storage) Poll(_ context.Context, id string) (models.Poll, error) {
	const op = "storage.memory.Poll"

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.polls[id]
	if !exists {
		return models.Poll{}, fmt.Errorf("%s: %w", op, storage.ErrPollNotFound)
	}
	return clonePoll(rec.poll), nil
}

func (s *Storage) Polls(_ context.Context) ([]models.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]pollRecord, 0, len(s.polls))
	for _, rec := range s.polls {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].seq > records[j].seq })

	polls := make([]models.Poll, 0, len(records))
	for _, rec := range records {
		polls = append(polls, clonePoll(rec.poll))
	}
	return polls, nil
}

func (s *Storage) DeletePoll(_ context.Context, id string) error {
	const op = "storage.memory.DeletePoll"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.polls[id]; !exists {
		return fmt.Errorf("%s: %w", op, storage.ErrPollNotFound)
	}
	delete(s.polls, id)
	return nil
}

func (s *Storage) HasVoted(_ context.Context, userID, pollID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.votes[voteKey{userID: userID, pollID: pollID}]
	return exists, nil
}

// RecordVote checks uniqueness, writes the ledger entry and bumps the tally under one lock.
func (s *Storage) RecordVote(_ context.Context, userID, pollID, optionID string) (models.Poll, error) {
	const op = "storage.memory.RecordVote"

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.polls[pollID]
	if !exists {
		return models.Poll{}, fmt.Errorf("%s: %w", op, storage.ErrPollNotFound)
	}

	key := voteKey{userID: userID, pollID: pollID}
	if _, voted := s.votes[key]; voted {
		return models.Poll{}, fmt.Errorf("%s: %w", op, storage.ErrVoteExists)
	}

	idx := -1
	for i, opt := range rec.poll.Options {
		if opt.ID == optionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.Poll{}, fmt.Errorf("%s: %w", op, storage.ErrOptionNotFound)
	}

	s.votes[key] = models.Vote{
		ID:        uuid.NewString(),
		UserID:    userID,
		PollID:    pollID,
		CreatedAt: time.Now().UTC(),
	}
	rec.poll.Options[idx].VoteCount++
	s.polls[pollID] = rec

	return clonePoll(rec.poll), nil
}

func (s *Storage) DeleteVotesByPoll(_ context.Context, pollID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for key := range s.votes {
		if key.pollID == pollID {
			delete(s.votes, key)
			deleted++
		}
	}
	return deleted, nil
}

func (s *Storage) SweepOrphanVotes(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for key := range s.votes {
		if _, exists := s.polls[key.pollID]; !exists {
			delete(s.votes, key)
			deleted++
		}
	}
	return deleted, nil
}

func (s *Storage) CountVotes(_ context.Context, pollID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for key := range s.votes {
		if key.pollID == pollID {
			count++
		}
	}
	return count, nil
}

func clonePoll(p models.Poll) models.Poll {
	options := make([]models.Option, len(p.Options))
	copy(options, p.Options)
	p.Options = options
	return p
}
