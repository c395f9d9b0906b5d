package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MStepRom/kursova2025/internal/middleware"
	"github.com/MStepRom/kursova2025/internal/services"
	"github.com/gin-gonic/gin"
)

const (
	msgInvalidBody  = "Invalid request body"
	msgServerError  = "Server error"
	msgUnauthorized = "User not authorized"
)

func errorResponse(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"msg": msg})
}

// validationError writes a 400 with the reason if err is a validation failure.
func validationError(c *gin.Context, err error) bool {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		errorResponse(c, http.StatusBadRequest, verr.Reason)
		return true
	}
	return false
}

func userID(c *gin.Context) (string, bool) {
	uid, ok := middleware.UserID(c)
	if !ok {
		errorResponse(c, http.StatusUnauthorized, msgUnauthorized)
	}
	return uid, ok
}

// Date accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
// An empty string or null means no date; set records that the field was sent at all.
type Date struct {
	t   *time.Time
	set bool
}

func (d *Date) UnmarshalJSON(data []byte) error {
	d.set = true
	d.t = nil

	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if raw == "" {
		return nil
	}

	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			d.t = &t
			return nil
		}
	}
	return fmt.Errorf("date %q must be RFC 3339 or YYYY-MM-DD", raw)
}

func (d Date) ptr() *time.Time {
	if d.t == nil {
		return nil
	}
	t := *d.t
	return &t
}

// cleared reports whether the field was sent without a date.
func (d Date) cleared() bool {
	return d.set && d.t == nil
}
