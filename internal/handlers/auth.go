package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	sl "github.com/14kear/sso-prettyslog/slogpretty/errors"
	"github.com/MStepRom/kursova2025/internal/services/auth"
	"github.com/gin-gonic/gin"
)

type Authenticator interface {
	Register(ctx context.Context, name, email, password string) (token string, userID string, err error)
	Login(ctx context.Context, email, password string) (token string, userID string, err error)
}

type AuthHandler struct {
	auth Authenticator
	log  *slog.Logger
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewAuthHandler(auth Authenticator, log *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		errorResponse(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	token, uid, err := h.auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case validationError(c, err):
		case errors.Is(err, auth.ErrUserExists):
			errorResponse(c, http.StatusBadRequest, "User already exists")
		default:
			h.log.Error("register failed", sl.Err(err))
			errorResponse(c, http.StatusInternalServerError, msgServerError)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token":  token,
		"userId": uid,
		"msg":    "User registered successfully",
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := bindJSON(c, &req); err != nil {
		errorResponse(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	token, uid, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			errorResponse(c, http.StatusBadRequest, "Invalid credentials")
			return
		}
		h.log.Error("login failed", sl.Err(err))
		errorResponse(c, http.StatusInternalServerError, msgServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":  token,
		"userId": uid,
		"msg":    "Logged in successfully",
	})
}
