package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MStepRom/kursova2025/internal/domain/models"
	"github.com/MStepRom/kursova2025/internal/lib/jwt"
	"github.com/MStepRom/kursova2025/internal/services"
	"github.com/MStepRom/kursova2025/internal/services/mocks"
	"github.com/MStepRom/kursova2025/internal/storage"
	"github.com/MStepRom/kursova2025/utils"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func newTestAuth(us *mocks.MockUserSaver, up *mocks.MockUserProvider) *Auth {
	return NewAuth(utils.Discard(), us, up, testSecret, time.Hour, bcrypt.MinCost)
}

func mustHash(s string) []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte(s), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return hash
}

func randomPassword() string {
	return gofakeit.Password(true, true, true, true, false, 10)
}

func TestAuth_Register_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	us := mocks.NewMockUserSaver(ctrl)

	name := gofakeit.Name()
	email := gofakeit.Email()
	password := randomPassword()
	uid := gofakeit.UUID()

	us.EXPECT().
		SaveUser(gomock.Any(), strings.ToLower(email), name, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, passHash []byte) (string, error) {
			assert.NoError(t, bcrypt.CompareHashAndPassword(passHash, []byte(password)))
			return uid, nil
		})

	authTest := newTestAuth(us, nil)

	token, gotUID, err := authTest.Register(context.Background(), name, email, password)
	require.NoError(t, err)
	assert.Equal(t, uid, gotUID)

	claims, err := jwt.ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uid, claims.User.ID)
}

func TestAuth_Register_NormalizesEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	us := mocks.NewMockUserSaver(ctrl)
	us.EXPECT().SaveUser(gomock.Any(), "ann@example.com", "Ann", gomock.Any()).Return("u1", nil)

	_, _, err := newTestAuth(us, nil).Register(context.Background(), "  Ann ", "  Ann@Example.COM ", "secret")
	require.NoError(t, err)
}

func TestAuth_Register_UserExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	us := mocks.NewMockUserSaver(ctrl)
	us.EXPECT().SaveUser(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", storage.ErrUserExists)

	_, _, err := newTestAuth(us, nil).Register(context.Background(), gofakeit.Name(), gofakeit.Email(), randomPassword())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestAuth_Register_InvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		userName string
		email    string
		password string
	}{
		{name: "empty name", userName: " ", email: gofakeit.Email(), password: "p"},
		{name: "empty email", userName: "Ann", email: "", password: "p"},
		{name: "empty password", userName: "Ann", email: gofakeit.Email(), password: ""},
		{name: "malformed email", userName: "Ann", email: "not-an-email", password: "p"},
		{name: "password over 72 bytes", userName: "Ann", email: gofakeit.Email(), password: strings.Repeat("x", 80)},
		{name: "multibyte password over 72 bytes", userName: "Ann", email: gofakeit.Email(), password: strings.Repeat("ж", 37)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			// no storage call is expected
			us := mocks.NewMockUserSaver(ctrl)

			_, _, err := newTestAuth(us, nil).Register(context.Background(), tt.userName, tt.email, tt.password)
			require.Error(t, err)
			assert.ErrorIs(t, err, services.ErrValidation)
		})
	}
}

func TestAuth_Register_StorageError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dbErr := errors.New("connection reset")

	us := mocks.NewMockUserSaver(ctrl)
	us.EXPECT().SaveUser(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("", dbErr)

	_, _, err := newTestAuth(us, nil).Register(context.Background(), gofakeit.Name(), gofakeit.Email(), randomPassword())
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrUserExists)
}

func TestAuth_Login_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	password := randomPassword()
	user := models.User{
		ID:       gofakeit.UUID(),
		Email:    strings.ToLower(gofakeit.Email()),
		PassHash: mustHash(password),
	}

	up := mocks.NewMockUserProvider(ctrl)
	up.EXPECT().User(gomock.Any(), user.Email).Return(user, nil)

	token, uid, err := newTestAuth(nil, up).Login(context.Background(), strings.ToUpper(user.Email), password)
	require.NoError(t, err)
	assert.Equal(t, user.ID, uid)

	claims, err := jwt.ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.User.ID)
}

func TestAuth_Login_UserNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	up := mocks.NewMockUserProvider(ctrl)
	up.EXPECT().User(gomock.Any(), "kaban@mail.ru").Return(models.User{}, storage.ErrUserNotFound)

	_, _, err := newTestAuth(nil, up).Login(context.Background(), "kaban@mail.ru", "test")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuth_Login_WrongPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	user := models.User{
		ID:       gofakeit.UUID(),
		Email:    "test@test.com",
		PassHash: mustHash("test"),
	}

	up := mocks.NewMockUserProvider(ctrl)
	up.EXPECT().User(gomock.Any(), user.Email).Return(user, nil)

	_, _, err := newTestAuth(nil, up).Login(context.Background(), user.Email, "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuth_Login_FailuresLookAlike(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	user := models.User{ID: "u1", Email: "known@test.com", PassHash: mustHash("right")}

	up := mocks.NewMockUserProvider(ctrl)
	up.EXPECT().User(gomock.Any(), "unknown@test.com").Return(models.User{}, storage.ErrUserNotFound)
	up.EXPECT().User(gomock.Any(), user.Email).Return(user, nil)

	authTest := newTestAuth(nil, up)

	_, _, errUnknown := authTest.Login(context.Background(), "unknown@test.com", "whatever")
	_, _, errWrong := authTest.Login(context.Background(), user.Email, "wrong")

	require.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	require.ErrorIs(t, errWrong, ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
}

func TestAuth_Login_StorageError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dbErr := errors.New("db is down")

	up := mocks.NewMockUserProvider(ctrl)
	up.EXPECT().User(gomock.Any(), gomock.Any()).Return(models.User{}, dbErr)

	_, _, err := newTestAuth(nil, up).Login(context.Background(), gofakeit.Email(), "pass")
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuth_Login_EmptyFields(t *testing.T) {
	_, _, err := newTestAuth(nil, nil).Login(context.Background(), "", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
