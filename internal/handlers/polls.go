package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	sl "github.com/14kear/sso-prettyslog/slogpretty/errors"
	"github.com/MStepRom/kursova2025/internal/domain/models"
	"github.com/MStepRom/kursova2025/internal/services/polls"
	"github.com/gin-gonic/gin"
)

type PollService interface {
	CreatePoll(ctx context.Context, title string, optionTexts []string, authorID string) (models.Poll, error)
	ListPolls(ctx context.Context) ([]models.Poll, error)
	Poll(ctx context.Context, id string) (models.Poll, error)
	Vote(ctx context.Context, pollID, optionID, userID string) (models.Poll, error)
	DeletePoll(ctx context.Context, pollID, callerID string) error
}

type PollHandler struct {
	polls PollService
	log   *slog.Logger
}

type CreatePollRequest struct {
	Title   string   `json:"title"`
	Options []string `json:"options"`
}

type VoteRequest struct {
	OptionID string `json:"optionId"`
}

const msgPollNotFound = "Poll not found"

func NewPollHandler(polls PollService, log *slog.Logger) *PollHandler {
	return &PollHandler{polls: polls, log: log}
}

func (h *PollHandler) CreatePoll(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	var req CreatePollRequest
	if err := bindJSON(c, &req); err != nil {
		errorResponse(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	poll, err := h.polls.CreatePoll(c.Request.Context(), req.Title, req.Options, uid)
	if err != nil {
		if validationError(c, err) {
			return
		}
		h.log.Error("create poll failed", sl.Err(err))
		errorResponse(c, http.StatusInternalServerError, msgServerError)
		return
	}

	c.JSON(http.StatusOK, poll)
}

func (h *PollHandler) GetPolls(c *gin.Context) {
	list, err := h.polls.ListPolls(c.Request.Context())
	if err != nil {
		h.log.Error("list polls failed", sl.Err(err))
		errorResponse(c, http.StatusInternalServerError, msgServerError)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *PollHandler) GetPollByID(c *gin.Context) {
	poll, err := h.polls.Poll(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, polls.ErrPollNotFound) {
			errorResponse(c, http.StatusNotFound, msgPollNotFound)
			return
		}
		h.log.Error("get poll failed", sl.Err(err))
		errorResponse(c, http.StatusInternalServerError, msgServerError)
		return
	}
	c.JSON(http.StatusOK, poll)
}

func (h *PollHandler) Vote(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	var req VoteRequest
	if err := bindJSON(c, &req); err != nil {
		errorResponse(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	poll, err := h.polls.Vote(c.Request.Context(), c.Param("id"), req.OptionID, uid)
	if err != nil {
		switch {
		case validationError(c, err):
		case errors.Is(err, polls.ErrAlreadyVoted):
			errorResponse(c, http.StatusBadRequest, "You have already voted in this poll")
		case errors.Is(err, polls.ErrPollNotFound):
			errorResponse(c, http.StatusNotFound, "Poll or option not found")
		default:
			h.log.Error("vote failed", sl.Err(err))
			errorResponse(c, http.StatusInternalServerError, msgServerError)
		}
		return
	}

	c.JSON(http.StatusOK, poll)
}

func (h *PollHandler) DeletePoll(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	err := h.polls.DeletePoll(c.Request.Context(), c.Param("id"), uid)
	if err != nil {
		switch {
		case errors.Is(err, polls.ErrPollNotFound):
			errorResponse(c, http.StatusNotFound, msgPollNotFound)
		case errors.Is(err, polls.ErrNotAuthor):
			errorResponse(c, http.StatusUnauthorized, msgUnauthorized)
		default:
			h.log.Error("delete poll failed", sl.Err(err))
			errorResponse(c, http.StatusInternalServerError, msgServerError)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "Poll deleted"})
}
