package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	sl "github.com/14kear/sso-prettyslog/slogpretty/errors"
	"github.com/MStepRom/kursova2025/internal/domain/models"
	"github.com/MStepRom/kursova2025/internal/lib/jwt"
	"github.com/MStepRom/kursova2025/internal/services"
	"github.com/MStepRom/kursova2025/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

//go:generate mockgen -source=auth.go -destination=../mocks/auth_mock.go -package=mocks

type Auth struct {
	log          *slog.Logger
	userSaver    UserSaver
	userProvider UserProvider
	secret       string
	tokenTTL     time.Duration
	bcryptCost   int
	dummyHash    []byte
}

type UserSaver interface {
	SaveUser(ctx context.Context, email, name string, passHash []byte) (uid string, err error)
}

type UserProvider interface {
	User(ctx context.Context, email string) (models.User, error)
}

// bcrypt only hashes the first 72 bytes and refuses anything longer.
const maxPasswordBytes = 72

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
)

// NewAuth returns a new instance of the Auth service.
func NewAuth(
	log *slog.Logger,
	userSaver UserSaver,
	userProvider UserProvider,
	secret string,
	tokenTTL time.Duration,
	bcryptCost int,
) *Auth {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}

	// compared against when the email is unknown so both login failures cost one bcrypt run
	dummyHash, err := bcrypt.GenerateFromPassword([]byte("dummy-password"), bcryptCost)
	if err != nil {
		panic(fmt.Sprintf("auth.NewAuth: %v", err))
	}

	return &Auth{
		log:          log,
		userSaver:    userSaver,
		userProvider: userProvider,
		secret:       secret,
		tokenTTL:     tokenTTL,
		bcryptCost:   bcryptCost,
		dummyHash:    dummyHash,
	}
}

// Register creates a user and returns a token bound to the new user id.
// If a user with the same email already exists, returns ErrUserExists.
func (a *Auth) Register(ctx context.Context, name, email, password string) (string, string, error) {
	const op = "auth.Register"

	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	log := a.log.With(slog.String("op", op))
	log.Info("registering user")

	if name == "" || email == "" || password == "" {
		return "", "", fmt.Errorf("%s: %w", op, services.Invalid("name, email and password are required"))
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", "", fmt.Errorf("%s: %w", op, services.Invalid("email is malformed"))
	}
	if len(password) > maxPasswordBytes {
		return "", "", fmt.Errorf("%s: %w", op, services.Invalid("password must be at most %d bytes", maxPasswordBytes))
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), a.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", "", fmt.Errorf("%s: %w", op, services.Invalid("password is too long"))
		}
		log.Error("failed to generate password hash", sl.Err(err))
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	uid, err := a.userSaver.SaveUser(ctx, email, name, passHash)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("user already exists", sl.Err(err))
			return "", "", fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		log.Error("failed to save user", sl.Err(err))
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := jwt.NewToken(uid, a.secret, a.tokenTTL)
	if err != nil {
		log.Error("failed to generate token", sl.Err(err))
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered", slog.String("user_id", uid))
	return token, uid, nil
}

// Login checks the credentials and returns a token for the user.
// Unknown email and wrong password both return ErrInvalidCredentials.
func (a *Auth) Login(ctx context.Context, email, password string) (string, string, error) {
	const op = "auth.Login"

	email = normalizeEmail(email)

	log := a.log.With(slog.String("op", op))
	log.Info("attempting to login user")

	if email == "" || password == "" {
		return "", "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	user, err := a.userProvider.User(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(a.dummyHash, []byte(password))
			log.Warn("user not found", sl.Err(err))
			return "", "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		log.Error("failed to get user", sl.Err(err))
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		log.Warn("invalid credentials", sl.Err(err))
		return "", "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := jwt.NewToken(user.ID, a.secret, a.tokenTTL)
	if err != nil {
		log.Error("failed to generate token", sl.Err(err))
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	log.Info("successfully logged in", slog.String("user_id", user.ID))
	return token, user.ID, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
