package tasks

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
)

//go:generate mockgen -source=tasks.go -destination=../mocks/tasks_mock.go -package=mocks

var ErrTaskNotFound = errors.New("task not found")

type TaskStorage interface {
	SaveTask(ctx context.Context, task models.Task) (models.Task, error)
	Tasks(ctx context.Context, ownerID string) ([]models.Task, error)
	UpdateTask(ctx context.Context, ownerID, id string, upd models.TaskUpdate) (models.Task, error)
	DeleteTask(ctx context.Context, ownerID, id string) error
}

type Tasks struct {
	log     *slog.Logger
	storage TaskStorage
}

// TaskInput is what a caller may set when creating a task.
type TaskInput struct {
	Title       string
	Description string
	Priority    models.Priority
	DueDate     *time.Time
	Completed   bool
}

func NewTasks(log *slog.Logger, storage TaskStorage) *Tasks {
	return &Tasks{log: log, storage: storage}
}

func (t *Tasks) Create(ctx context.Context, ownerID string, in TaskInput) (models.Task, error) {
	const op = "Tasks.Create"

	log := t.log.With(slog.String("op", op), slog.String("user_id", ownerID))

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.Task{}, fmt.Errorf("%s: %w", op, services.Invalid("title is required"))
	}

	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return models.Task{}, fmt.Errorf("%s: %w", op, services.Invalid("priority must be High, Medium or Low"))
	}

	task, err := t.storage.SaveTask(ctx, models.Task{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Priority:    priority,
		DueDate:     in.DueDate,
		Completed:   in.Completed,
		OwnerID:     ownerID,
	})
	if err != nil {
		log.Error("failed to save task", sl.Err(err))
		return models.Task{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("task created", slog.String("task_id", task.ID))
	return task, nil
}

// List returns the caller's tasks, newest first.
func (t *Tasks) List(ctx context.Context, ownerID string) ([]models.Task, error) {
	const op = "Tasks.List"

	tasks, err := t.storage.Tasks(ctx, ownerID)
	if err != nil {
		t.log.Error("failed to list tasks", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tasks, nil
}

// Update applies the non-nil fields of upd. A task owned by someone else is reported as not found.
func (t *Tasks) Update(ctx context.Context, ownerID, id string, upd models.TaskUpdate) (models.Task, error) {
	const op = "Tasks.Update"

	log := t.log.With(slog.String("op", op), slog.String("user_id", ownerID), slog.String("task_id", id))

	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return models.Task{}, fmt.Errorf("%s: %w", op, services.Invalid("title must not be empty"))
		}
		upd.Title = &title
	}
	if upd.Priority != nil && !upd.Priority.Valid() {
		return models.Task{}, fmt.Errorf("%s: %w", op, services.Invalid("priority must be High, Medium or Low"))
	}
	if upd.Description != nil {
		description := strings.TrimSpace(*upd.Description)
		upd.Description = &description
	}
	if upd.ClearDueDate {
		upd.DueDate = nil
	}

	task, err := t.storage.UpdateTask(ctx, ownerID, id, upd)
	if err != nil {
		if errors.Is(err, storage.ErrTaskNotFound) {
			log.Warn("task not found or not owned", sl.Err(err))
			return models.Task{}, fmt.Errorf("%s: %w", op, ErrTaskNotFound)
		}
		log.Error("failed to update task", sl.Err(err))
		return models.Task{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("task updated")
	return task, nil
}

func (t *Tasks) Delete(ctx context.Context, ownerID, id string) error {
	const op = "Tasks.Delete"

	log := t.log.With(slog.String("op", op), slog.String("user_id", ownerID), slog.String("task_id", id))

	if err := t.storage.DeleteTask(ctx, ownerID, id); err != nil {
		if errors.Is(err, storage.ErrTaskNotFound) {
			log.Warn("task not found or not owned", sl.Err(err))
			return fmt.Errorf("%s: %w", op, ErrTaskNotFound)
		}
		log.Error("failed to delete task", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("task deleted")
	return nil
}
