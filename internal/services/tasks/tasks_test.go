package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MStepRom/kursova2025/internal/domain/models"
	"github.com/MStepRom/kursova2025/internal/services"
	"github.com/MStepRom/kursova2025/internal/services/mocks"
	"github.com/MStepRom/kursova2025/internal/storage"
	"github.com/MStepRom/kursova2025/utils"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func TestTasks_Create_DefaultsPriority(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ts := mocks.NewMockTaskStorage(ctrl)
	owner := gofakeit.UUID()

	ts.EXPECT().SaveTask(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, task models.Task) (models.Task, error) {
			assert.Equal(t, "Buy milk", task.Title)
			assert.Equal(t, models.PriorityMedium, task.Priority)
			assert.False(t, task.Completed)
			assert.Equal(t, owner, task.OwnerID)
			task.ID = "t1"
			return task, nil
		})

	task, err := NewTasks(utils.Discard(), ts).Create(context.Background(), owner, TaskInput{Title: "  Buy milk  "})
	require.NoError(t, err)
	assert.Equal(t, "t1", task.ID)
}

func TestTasks_Create_KeepsFields(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	due := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	in := TaskInput{
		Title:       gofakeit.Sentence(3),
		Description: "details",
		Priority:    models.PriorityHigh,
		DueDate:     &due,
		Completed:   true,
	}

	ts := mocks.NewMockTaskStorage(ctrl)
	ts.EXPECT().SaveTask(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, task models.Task) (models.Task, error) {
			return task, nil
		})

	task, err := NewTasks(utils.Discard(), ts).Create(context.Background(), "owner", in)
	require.NoError(t, err)
	assert.Equal(t, models.PriorityHigh, task.Priority)
	assert.Equal(t, "details", task.Description)
	assert.True(t, task.Completed)
	require.NotNil(t, task.DueDate)
	assert.True(t, due.Equal(*task.DueDate))
}

func TestTasks_Create_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   TaskInput
	}{
		{name: "blank title", in: TaskInput{Title: "   "}},
		{name: "unknown priority", in: TaskInput{Title: "x", Priority: "Urgent"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			ts := mocks.NewMockTaskStorage(ctrl)

			_, err := NewTasks(utils.Discard(), ts).Create(context.Background(), "owner", tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, services.ErrValidation)
		})
	}
}

func TestTasks_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	want := []models.Task{{ID: "b"}, {ID: "a"}}

	ts := mocks.NewMockTaskStorage(ctrl)
	ts.EXPECT().Tasks(gomock.Any(), "owner").Return(want, nil)

	got, err := NewTasks(utils.Discard(), ts).List(context.Background(), "owner")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestTasks_Update_TrimsTitle(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ts := mocks.NewMockTaskStorage(ctrl)
	ts.EXPECT().UpdateTask(gomock.Any(), "owner", "t1", gomock.Any()).DoAndReturn(
		func(_ context.Context, _, _ string, upd models.TaskUpdate) (models.Task, error) {
			require.NotNil(t, upd.Title)
			assert.Equal(t, "new title", *upd.Title)
			assert.Nil(t, upd.Priority)
			return models.Task{ID: "t1", Title: *upd.Title, Completed: true}, nil
		})

	task, err := NewTasks(utils.Discard(), ts).Update(context.Background(), "owner", "t1", models.TaskUpdate{
		Title:     ptr(" new title "),
		Completed: ptr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "new title", task.Title)
}

func TestTasks_Update_ClearDueDate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ts := mocks.NewMockTaskStorage(ctrl)
	ts.EXPECT().UpdateTask(gomock.Any(), "owner", "t1", gomock.Any()).DoAndReturn(
		func(_ context.Context, _, _ string, upd models.TaskUpdate) (models.Task, error) {
			assert.True(t, upd.ClearDueDate)
			assert.Nil(t, upd.DueDate)
			return models.Task{ID: "t1", Title: "t"}, nil
		})

	task, err := NewTasks(utils.Discard(), ts).Update(context.Background(), "owner", "t1", models.TaskUpdate{
		DueDate:      ptr(time.Now()),
		ClearDueDate: true,
	})
	require.NoError(t, err)
	assert.Nil(t, task.DueDate)
}

func TestTasks_Update_Invalid(t *testing.T) {
	tests := []struct {
		name string
		upd  models.TaskUpdate
	}{
		{name: "blank title", upd: models.TaskUpdate{Title: ptr("  ")}},
		{name: "unknown priority", upd: models.TaskUpdate{Priority: ptr(models.Priority("low"))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			ts := mocks.NewMockTaskStorage(ctrl)

			_, err := NewTasks(utils.Discard(), ts).Update(context.Background(), "owner", "t1", tt.upd)
			assert.ErrorIs(t, err, services.ErrValidation)
		})
	}
}

func TestTasks_Update_NotOwned(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ts := mocks.NewMockTaskStorage(ctrl)
	ts.EXPECT().UpdateTask(gomock.Any(), "stranger", "t1", gomock.Any()).
		Return(models.Task{}, storage.ErrTaskNotFound)

	_, err := NewTasks(utils.Discard(), ts).Update(context.Background(), "stranger", "t1", models.TaskUpdate{Completed: ptr(true)})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTasks_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dbErr := errors.New("boom")

	ts := mocks.NewMockTaskStorage(ctrl)
	gomock.InOrder(
		ts.EXPECT().DeleteTask(gomock.Any(), "owner", "t1").Return(nil),
		ts.EXPECT().DeleteTask(gomock.Any(), "owner", "t1").Return(storage.ErrTaskNotFound),
		ts.EXPECT().DeleteTask(gomock.Any(), "owner", "t2").Return(dbErr),
	)

	svc := NewTasks(utils.Discard(), ts)

	require.NoError(t, svc.Delete(context.Background(), "owner", "t1"))
	assert.ErrorIs(t, svc.Delete(context.Background(), "owner", "t1"), ErrTaskNotFound)

	err := svc.Delete(context.Background(), "owner", "t2")
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrTaskNotFound)
}
