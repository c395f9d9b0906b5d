package jwt

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	jwtGo "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestNewToken_PayloadShape(t *testing.T) {
	userID := gofakeit.UUID()
	issued := time.Now()

	token, err := NewToken(userID, testSecret, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := jwtGo.Parse(token, func(token *jwtGo.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)

	claims, ok := parsed.Claims.(jwtGo.MapClaims)
	require.True(t, ok)

	user, ok := claims["user"].(map[string]interface{})
	require.True(t, ok, "token must carry a user object")
	assert.Equal(t, userID, user["id"])

	const deltaSeconds = 1
	assert.InDelta(t, issued.Add(time.Hour).Unix(), claims["exp"].(float64), deltaSeconds)
}

func TestParseToken_RoundTrip(t *testing.T) {
	userID := gofakeit.UUID()

	token, err := NewToken(userID, testSecret, time.Minute)
	require.NoError(t, err)

	claims, err := ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.User.ID)
}

func TestParseToken_FailCases(t *testing.T) {
	valid, err := NewToken("user-1", testSecret, time.Minute)
	require.NoError(t, err)

	expired, err := NewToken("user-1", testSecret, -time.Minute)
	require.NoError(t, err)

	noUser, err := NewToken("", testSecret, time.Minute)
	require.NoError(t, err)

	noneAlg, err := jwtGo.NewWithClaims(jwtGo.SigningMethodNone, Claims{
		User: UserClaim{ID: "user-1"},
		RegisteredClaims: jwtGo.RegisteredClaims{
			ExpiresAt: jwtGo.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString(jwtGo.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{name: "wrong secret", token: valid, secret: "other-secret"},
		{name: "expired", token: expired, secret: testSecret},
		{name: "empty user id", token: noUser, secret: testSecret},
		{name: "none algorithm", token: noneAlg, secret: testSecret},
		{name: "garbage", token: "not.a.token", secret: testSecret},
		{name: "empty", token: "", secret: testSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.token, tt.secret)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
