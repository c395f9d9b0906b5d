package polls

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sl "github.com/14kear/sso-prettyslog/slogpretty/errors"
	"github.com/MStepRom/kursova2025/internal/domain/models"
	"github.com/MStepRom/kursova2025/internal/services"
	"github.com/MStepRom/kursova2025/internal/storage"
	"github.com/sony/gobreaker"
)

//go:generate mockgen -source=polls.go -destination=../mocks/polls_mock.go -package=mocks

var (
	ErrPollNotFound = errors.New("poll not found")
	ErrAlreadyVoted = errors.New("user already voted in this poll")
	ErrNotAuthor    = errors.New("user is not the author of the poll")
)

const (
	cascadeAttempts = 3
	cascadeTimeout  = 10 * time.Second
)

type PollStorage interface {
	SavePoll(ctx context.Context, title string, options []string, authorID string) (models.Poll, error)
	Poll(ctx context.Context, id string) (models.Poll, error)
	Polls(ctx context.Context) ([]models.Poll, error)
	DeletePoll(ctx context.Context, id string) error
}

type VoteStorage interface {
	HasVoted(ctx context.Context, userID, pollID string) (bool, error)
	RecordVote(ctx context.Context, userID, pollID, optionID string) (models.Poll, error)
	DeleteVotesByPoll(ctx context.Context, pollID string) (int64, error)
	SweepOrphanVotes(ctx context.Context) (int64, error)
}

type Polls struct {
	log         *slog.Logger
	pollStorage PollStorage
	voteStorage VoteStorage
	cascade     *gobreaker.CircuitBreaker
	retryDelay  time.Duration
}

func NewPolls(log *slog.Logger, pollStorage PollStorage, voteStorage VoteStorage, cascade *gobreaker.CircuitBreaker) *Polls {
	return &Polls{
		log:         log,
		pollStorage: pollStorage,
		voteStorage: voteStorage,
		cascade:     cascade,
		retryDelay:  200 * time.Millisecond,
	}
}

// NewCascadeBreaker guards ledger cleanup after a poll is deleted.
func NewCascadeBreaker(log *slog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "vote-cascade",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				slog.String("name", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})
}

// CreatePoll trims the title and options, drops blank options and rejects duplicates.
func (p *Polls) CreatePoll(ctx context.Context, title string, optionTexts []string, authorID string) (models.Poll, error) {
	const op = "Polls.CreatePoll"

	log := p.log.With(slog.String("op", op), slog.String("user_id", authorID))

	title = strings.TrimSpace(title)
	opts := make([]string, 0, len(optionTexts))
	seen := make(map[string]struct{}, len(optionTexts))
	for _, text := range optionTexts {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		key := strings.ToLower(text)
		if _, dup := seen[key]; dup {
			return models.Poll{}, fmt.Errorf("%s: %w", op, services.Invalid("option %q is listed twice", text))
		}
		seen[key] = struct{}{}
		opts = append(opts, text)
	}

	if title == "" || len(opts) < 2 {
		return models.Poll{}, fmt.Errorf("%s: %w", op, services.Invalid("please provide a title and at least two options"))
	}

	poll, err := p.pollStorage.SavePoll(ctx, title, opts, authorID)
	if err != nil {
		log.Error("failed to save poll", sl.Err(err))
		return models.Poll{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("poll created", slog.String("poll_id", poll.ID))
	return poll, nil
}

func (p *Polls) ListPolls(ctx context.Context) ([]models.Poll, error) {
	const op = "Polls.ListPolls"

	polls, err := p.pollStorage.Polls(ctx)
	if err != nil {
		p.log.Error("failed to list polls", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return polls, nil
}

func (p *Polls) Poll(ctx context.Context, id string) (models.Poll, error) {
	const op = "Polls.Poll"

	poll, err := p.pollStorage.Poll(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrPollNotFound) {
			return models.Poll{}, fmt.Errorf("%s: %w", op, ErrPollNotFound)
		}
		p.log.Error("failed to get poll", slog.String("op", op), sl.Err(err))
		return models.Poll{}, fmt.Errorf("%s: %w", op, err)
	}
	return poll, nil
}

// Vote records one vote of userID in the poll. The ledger lookup is only a fast path;
// the storage uniqueness constraint decides races, and a lost race is reported as ErrAlreadyVoted too.
func (p *Polls) Vote(ctx context.Context, pollID, optionID, userID string) (models.Poll, error) {
	const op = "Polls.Vote"

	log := p.log.With(
		slog.String("op", op),
		slog.String("user_id", userID),
		slog.String("poll_id", pollID),
	)

	if strings.TrimSpace(optionID) == "" {
		return models.Poll{}, fmt.Errorf("%s: %w", op, services.Invalid("optionId is required"))
	}

	voted, err := p.voteStorage.HasVoted(ctx, userID, pollID)
	if err != nil {
		log.Error("failed to check vote ledger", sl.Err(err))
		return models.Poll{}, fmt.Errorf("%s: %w", op, err)
	}
	if voted {
		log.Info("user already voted")
		return models.Poll{}, fmt.Errorf("%s: %w", op, ErrAlreadyVoted)
	}

	poll, err := p.voteStorage.RecordVote(ctx, userID, pollID, optionID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrVoteExists):
			log.Warn("concurrent vote lost the uniqueness race", sl.Err(err))
			return models.Poll{}, fmt.Errorf("%s: %w", op, ErrAlreadyVoted)
		case errors.Is(err, storage.ErrPollNotFound), errors.Is(err, storage.ErrOptionNotFound):
			log.Warn("poll or option not found", slog.String("option_id", optionID), sl.Err(err))
			return models.Poll{}, fmt.Errorf("%s: %w", op, ErrPollNotFound)
		}
		log.Error("failed to record vote", sl.Err(err))
		return models.Poll{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("vote recorded", slog.String("option_id", optionID))
	return poll, nil
}

// DeletePoll removes the poll if callerID is its author, then clears its ledger.
// Ledger cleanup failures are logged and left to SweepOrphanVotes.
func (p *Polls) DeletePoll(ctx context.Context, pollID, callerID string) error {
	const op = "Polls.DeletePoll"

	log := p.log.With(slog.String("op", op), slog.String("user_id", callerID), slog.String("poll_id", pollID))

	poll, err := p.pollStorage.Poll(ctx, pollID)
	if err != nil {
		if errors.Is(err, storage.ErrPollNotFound) {
			return fmt.Errorf("%s: %w", op, ErrPollNotFound)
		}
		log.Error("failed to get poll", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if poll.AuthorID != callerID {
		log.Warn("delete attempted by non-author")
		return fmt.Errorf("%s: %w", op, ErrNotAuthor)
	}

	if err := p.pollStorage.DeletePoll(ctx, pollID); err != nil {
		if errors.Is(err, storage.ErrPollNotFound) {
			return fmt.Errorf("%s: %w", op, ErrPollNotFound)
		}
		log.Error("failed to delete poll", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	p.clearLedger(ctx, log, pollID)

	log.Info("poll deleted")
	return nil
}

func (p *Polls) clearLedger(ctx context.Context, log *slog.Logger, pollID string) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cascadeTimeout)
	defer cancel()

	var lastErr error
	for attempt := 1; attempt <= cascadeAttempts; attempt++ {
		res, err := p.cascade.Execute(func() (interface{}, error) {
			return p.voteStorage.DeleteVotesByPoll(cctx, pollID)
		})
		if err == nil {
			log.Debug("poll votes removed", slog.Int64("count", res.(int64)))
			return
		}

		lastErr = err
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			break
		}

		select {
		case <-cctx.Done():
			attempt = cascadeAttempts
		case <-time.After(p.retryDelay * time.Duration(attempt)):
		}
	}

	log.Error("failed to remove poll votes, leaving them to the orphan sweep", sl.Err(lastErr))
}

// SweepOrphanVotes removes ledger entries of polls that no longer exist.
func (p *Polls) SweepOrphanVotes(ctx context.Context) (int64, error) {
	const op = "Polls.SweepOrphanVotes"

	n, err := p.voteStorage.SweepOrphanVotes(ctx)
	if err != nil {
		p.log.Error("failed to sweep orphan votes", slog.String("op", op), sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	p.log.Info("orphan votes swept", slog.String("op", op), slog.Int64("count", n))
	return n, nil
}
