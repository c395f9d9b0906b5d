package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MStepRom/kursova2025/internal/domain/models"
	"github.com/MStepRom/kursova2025/internal/storage"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

type Storage struct {
	db *sql.DB
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func New(postgresURL string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", postgresURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close(_ context.Context) error {
	return s.db.Close()
}

func (s *Storage) SaveUser(ctx context.Context, email, name string, passHash []byte) (string, error) {
	const op = "storage.postgres.SaveUser"

	stmt, err := s.db.PrepareContext(ctx, "INSERT INTO users(id, email, name, pass_hash) VALUES($1, $2, $3, $4) RETURNING id")
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	var id string
	err = stmt.QueryRowContext(ctx, uuid.NewString(), email, name, passHash).Scan(&id)
	if err != nil {
		if pqCode(err) == codeUniqueViolation {
			return "", fmt.Errorf("%s: %w", op, storage.ErrUserExists)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) User(ctx context.Context, email string) (models.User, error) {
	const op = "storage.postgres.User"

	const query = `SELECT id, email, name, pass_hash, created_at FROM users WHERE LOWER(email) = LOWER($1)`

	var user models.User
	err := s.db.QueryRowContext(ctx, query, email).Scan(&user.ID, &user.Email, &user.Name, &user.PassHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

const taskColumns = `id, title, description, priority, due_date, completed, owner_id, created_at, updated_at`

func (s *Storage) SaveTask(ctx context.Context, task models.Task) (models.Task, error) {
	const op = "storage.postgres.SaveTask"

	const query = `INSERT INTO tasks (id, title, description, priority, due_date, completed, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING ` + taskColumns

	saved, err := scanTask(s.db.QueryRowContext(ctx, query,
		uuid.NewString(), task.Title, task.Description, task.Priority, task.DueDate, task.Completed, task.OwnerID))
	if err != nil {
		return models.Task{}, fmt.Errorf("%s: %w", op, err)
	}
	return saved, nil
}

func (s *Storage) Tasks(ctx context.Context, ownerID string) ([]models.Task, error) {
	const op = "storage.postgres.Tasks"

	const query = `SELECT ` + taskColumns + ` FROM tasks WHERE owner_id = $1 ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows error: %w", op, err)
	}

	return tasks, nil
}

func (s *Storage) UpdateTask(ctx context.Context, ownerID, id string, upd models.TaskUpdate) (models.Task, error) {
	const op = "storage.postgres.UpdateTask"

	const query = `UPDATE tasks SET
			title       = COALESCE($3, title),
			description = COALESCE($4, description),
			priority    = COALESCE($5, priority),
			due_date    = CASE WHEN $8 THEN NULL ELSE COALESCE($6, due_date) END,
			completed   = COALESCE($7, completed),
			updated_at  = NOW()
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + taskColumns

	task, err := scanTask(s.db.QueryRowContext(ctx, query,
		id, ownerID, upd.Title, upd.Description, upd.Priority, upd.DueDate, upd.Completed, upd.ClearDueDate))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Task{}, fmt.Errorf("%s: %w", op, storage.ErrTaskNotFound)
		}
		return models.Task{}, fmt.Errorf("%s: %w", op, err)
	}
	return task, nil
}

func (s *Storage) DeleteTask(ctx context.Context, ownerID, id string) error {
	const op = "storage.postgres.DeleteTask"

	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrTaskNotFound)
	}
	return nil
}

// SavePoll writes the poll and all of its options in one transaction.
func (s *Storage) SavePoll(ctx context.Context, title string, options []string, authorID string) (models.Poll, error) {
	const op = "storage.postgres.SavePoll"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Poll{}, fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	poll := models.Poll{
		ID:       uuid.NewString(),
		Title:    title,
		AuthorID: authorID,
		Options:  make([]models.Option, 0, len(options)),
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO polls (id, title, author_id) VALUES ($1, $2, $3) RETURNING created_at`,
		poll.ID, title, authorID,
	).Scan(&poll.CreatedAt)
	if err != nil {
		return models.Poll{}, fmt.Errorf("%s: %w", op, err)
	}

	for i, text := range options {
		opt := models.Option{ID: uuid.NewString(), Text: text}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO poll_options (id, poll_id, position, text) VALUES ($1, $2, $3, $4)`,
			opt.ID, poll.ID, i, text,
		)
		if err != nil {
			return models.Poll{}, fmt.Errorf("%s: option: %w", op, err)
		}
		poll.Options = append(poll.Options, opt)
	}

	if err := tx.Commit(); err != nil {
		return models.Poll{}, fmt.Errorf("%s: commit: %w", op, err)
	}

	return poll, nil
}

func (s *Storage) Poll(ctx context.Context, id string) (models.Poll, error) {
	const op = "storage.postgres.Poll"

	poll, err := loadPoll(ctx, s.db, id)
	if err != nil {
		return models.Poll{}, fmt.Errorf("%s: %w", op, err)
	}
	return poll, nil
}

func (s *Storage) Polls(ctx context.Context) ([]models.Poll, error) {
	const op = "storage.postgres.Polls"

	rows, err := s.db.QueryContext(ctx, `SELECT id, title, author_id, created_at FROM polls ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	polls := make([]models.Poll, 0)
	ids := make([]string, 0)
	for rows.Next() {
		var poll models.Poll
		if err := rows.Scan(&poll.ID, &poll.Title, &poll.AuthorID, &poll.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		poll.Options = make([]models.Option, 0)
		polls = append(polls, poll)
		ids = append(ids, poll.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows error: %w", op, err)
	}

	options, err := loadOptions(ctx, s.db, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i := range polls {
		if opts, ok := options[polls[i].ID]; ok {
			polls[i].Options = opts
		}
	}

	return polls, nil
}

// DeletePoll removes the poll; options and ledger rows go with it through ON DELETE CASCADE.
func (s *Storage) DeletePoll(ctx context.Context, id string) error {
	const op = "storage.postgres.DeletePoll"

	res, err := s.db.ExecContext(ctx, `DELETE FROM polls WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrPollNotFound)
	}

	return nil
}

func (s *Storage) HasVoted(ctx context.Context, userID, pollID string) (bool, error) {
	const op = "storage.postgres.HasVoted"

	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM votes WHERE user_id = $1 AND poll_id = $2)`, userID, pollID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// RecordVote inserts the ledger row and increments the option tally in one transaction.
// A lost uniqueness race surfaces as storage.ErrVoteExists.
func (s *Storage) RecordVote(ctx context.Context, userID, pollID, optionID string) (models.Poll, error) {
	const op = "storage.postgres.RecordVote"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Poll{}, fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO votes (id, user_id, poll_id) VALUES ($1, $2, $3)`,
		uuid.NewString(), userID, pollID,
	)
	if err != nil {
		switch pqCode(err) {
		case codeUniqueViolation:
			return models.Poll{}, fmt.Errorf("%s: %w", op, storage.ErrVoteExists)
		case codeForeignKeyViolation:
			return models.Poll{}, fmt.Errorf("%s: %w", op, storage.ErrPollNotFound)
		}
		return models.Poll{}, fmt.Errorf("%s: %w", op, err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE poll_options SET votes = votes + 1 WHERE id = $1 AND poll_id = $2`,
		optionID, pollID,
	)
	if err != nil {
		return models.Poll{}, fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Poll{}, fmt.Errorf("%s: %w", op, storage.ErrOptionNotFound)
	}

	poll, err := loadPoll(ctx, tx, pollID)
	if err != nil {
		return models.Poll{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return models.Poll{}, fmt.Errorf("%s: commit: %w", op, err)
	}

	return poll, nil
}

func (s *Storage) DeleteVotesByPoll(ctx context.Context, pollID string) (int64, error) {
	const op = "storage.postgres.DeleteVotesByPoll"

	res, err := s.db.ExecContext(ctx, `DELETE FROM votes WHERE poll_id = $1`, pollID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *Storage) SweepOrphanVotes(ctx context.Context) (int64, error) {
	const op = "storage.postgres.SweepOrphanVotes"

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM votes v WHERE NOT EXISTS (SELECT 1 FROM polls p WHERE p.id = v.poll_id)`)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *Storage) CountVotes(ctx context.Context, pollID string) (int64, error) {
	const op = "storage.postgres.CountVotes"

	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM votes WHERE poll_id = $1`, pollID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

func loadPoll(ctx context.Context, q querier, id string) (models.Poll, error) {
	var poll models.Poll
	err := q.QueryRowContext(ctx,
		`SELECT id, title, author_id, created_at FROM polls WHERE id = $1`, id,
	).Scan(&poll.ID, &poll.Title, &poll.AuthorID, &poll.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Poll{}, storage.ErrPollNotFound
		}
		return models.Poll{}, err
	}

	options, err := loadOptions(ctx, q, []string{id})
	if err != nil {
		return models.Poll{}, err
	}
	poll.Options = options[id]
	if poll.Options == nil {
		poll.Options = make([]models.Option, 0)
	}

	return poll, nil
}

// loadOptions returns the options of the given polls keyed by poll id, in creation order.
func loadOptions(ctx context.Context, q querier, pollIDs []string) (map[string][]models.Option, error) {
	result := make(map[string][]models.Option, len(pollIDs))
	if len(pollIDs) == 0 {
		return result, nil
	}

	rows, err := q.QueryContext(ctx,
		`SELECT poll_id, id, text, votes FROM poll_options WHERE poll_id = ANY($1) ORDER BY poll_id, position`,
		pq.Array(pollIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("options: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			pollID string
			opt    models.Option
		)
		if err := rows.Scan(&pollID, &opt.ID, &opt.Text, &opt.VoteCount); err != nil {
			return nil, fmt.Errorf("options scan: %w", err)
		}
		result[pollID] = append(result[pollID], opt)
	}

	return result, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var (
		task    models.Task
		dueDate sql.NullTime
	)
	err := row.Scan(&task.ID, &task.Title, &task.Description, &task.Priority, &dueDate,
		&task.Completed, &task.OwnerID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return models.Task{}, err
	}
	if dueDate.Valid {
		due := dueDate.Time.UTC()
		task.DueDate = &due
	}
	task.CreatedAt = task.CreatedAt.UTC()
	task.UpdatedAt = task.UpdatedAt.UTC()
	return task, nil
}

func pqCode(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}
