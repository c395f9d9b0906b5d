package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	sl "github.com/14kear/sso-prettyslog/slogpretty/errors"
	"github.com/MStepRom/kursova2025/internal/domain/models"
	"github.com/MStepRom/kursova2025/internal/services/tasks"
	"github.com/gin-gonic/gin"
)

type TaskService interface {
	Create(ctx context.Context, ownerID string, in tasks.TaskInput) (models.Task, error)
	List(ctx context.Context, ownerID string) ([]models.Task, error)
	Update(ctx context.Context, ownerID, id string, upd models.TaskUpdate) (models.Task, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type TaskHandler struct {
	tasks TaskService
	log   *slog.Logger
}

type CreateTaskRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    models.Priority `json:"priority"`
	DueDate     Date            `json:"dueDate"`
	Completed   bool            `json:"completed"`
}

type UpdateTaskRequest struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Priority    *models.Priority `json:"priority"`
	DueDate     Date             `json:"dueDate"`
	Completed   *bool            `json:"completed"`
}

const msgTaskNotFound = "Task not found or access denied"

func NewTaskHandler(tasks TaskService, log *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, log: log}
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := bindJSON(c, &req); err != nil {
		errorResponse(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), uid, tasks.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate.ptr(),
		Completed:   req.Completed,
	})
	if err != nil {
		if validationError(c, err) {
			return
		}
		h.log.Error("create task failed", sl.Err(err))
		errorResponse(c, http.StatusInternalServerError, msgServerError)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) GetTasks(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	list, err := h.tasks.List(c.Request.Context(), uid)
	if err != nil {
		h.log.Error("list tasks failed", sl.Err(err))
		errorResponse(c, http.StatusInternalServerError, msgServerError)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := bindJSON(c, &req); err != nil {
		errorResponse(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), uid, c.Param("id"), models.TaskUpdate{
		Title:        req.Title,
		Description:  req.Description,
		Priority:     req.Priority,
		DueDate:      req.DueDate.ptr(),
		ClearDueDate: req.DueDate.cleared(),
		Completed:    req.Completed,
	})
	if err != nil {
		switch {
		case validationError(c, err):
		case errors.Is(err, tasks.ErrTaskNotFound):
			errorResponse(c, http.StatusNotFound, msgTaskNotFound)
		default:
			h.log.Error("update task failed", sl.Err(err))
			errorResponse(c, http.StatusInternalServerError, msgServerError)
		}
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), uid, c.Param("id")); err != nil {
		if errors.Is(err, tasks.ErrTaskNotFound) {
			errorResponse(c, http.StatusNotFound, msgTaskNotFound)
			return
		}
		h.log.Error("delete task failed", sl.Err(err))
		errorResponse(c, http.StatusInternalServerError, msgServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "Task deleted"})
}
