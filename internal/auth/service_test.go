package auth

import (
	"testing"
	"time"

	apperrors "whiteboard/internal/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-key")

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestService_IssueAndVerify(t *testing.T) {
	req := require.New(t)
	svc := NewService(testSecret)

	token, err := svc.IssueToken("user-1", "Alice", time.Hour)
	req.NoError(err)

	identity, err := svc.Verify(token)
	req.NoError(err)
	req.Equal(&Identity{UserID: "user-1", Name: "Alice"}, identity)
}

func TestService_VerifyRejects(t *testing.T) {
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))
	past := jwt.NewNumericDate(time.Now().Add(-time.Hour))

	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{
			name:  "empty token",
			token: func(t *testing.T) string { return "" },
		},
		{
			name:  "garbage",
			token: func(t *testing.T) string { return "not.a.jwt" },
		},
		{
			name: "expired",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, testSecret, &Claims{
					UserID:           "user-1",
					RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: past},
				})
			},
		},
		{
			name: "missing expiry",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, testSecret, &Claims{UserID: "user-1"})
			},
		},
		{
			name: "wrong secret",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, []byte("another-secret"), &Claims{
					UserID:           "user-1",
					RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: future},
				})
			},
		},
		{
			name: "unsigned",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, &Claims{
					UserID:           "user-1",
					RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: future},
				})
			},
		},
		{
			name: "no user id",
			token: func(t *testing.T) string {
				return sign(t, jwt.SigningMethodHS256, testSecret, &Claims{
					Name:             "Alice",
					RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: future},
				})
			},
		},
	}

	svc := NewService(testSecret)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := svc.Verify(tt.token(t))

			assert.Nil(t, identity)
			assert.ErrorIs(t, err, apperrors.ErrAuthFailure)
		})
	}
}

func TestService_VerifyFallsBackToSubject(t *testing.T) {
	exp := jwt.NewNumericDate(time.Now().Add(time.Minute))

	tests := []struct {
		name   string
		method jwt.SigningMethod
		claims jwt.Claims
		want   string
	}{
		{
			name:   "camel case claim",
			method: jwt.SigningMethodHS256,
			claims: &Claims{UserID: "u-1", UserIDSnake: "u-2", RegisteredClaims: jwt.RegisteredClaims{Subject: "u-3", ExpiresAt: exp}},
			want:   "u-1",
		},
		{
			name:   "snake case claim",
			method: jwt.SigningMethodHS256,
			claims: jwt.MapClaims{"user_id": "u-9", "exp": exp.Unix()},
			want:   "u-9",
		},
		{
			name:   "snake case wins over subject",
			method: jwt.SigningMethodHS512,
			claims: &Claims{UserIDSnake: "u-2", RegisteredClaims: jwt.RegisteredClaims{Subject: "u-3", ExpiresAt: exp}},
			want:   "u-2",
		},
		{
			name:   "subject only",
			method: jwt.SigningMethodHS384,
			claims: &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-9", ExpiresAt: exp}},
			want:   "user-9",
		},
	}

	svc := NewService(testSecret)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := svc.Verify(sign(t, tt.method, testSecret, tt.claims))

			require.NoError(t, err)
			assert.Equal(t, tt.want, identity.UserID)
			assert.Empty(t, identity.Name)
		})
	}
}

func TestService_VerifyUsesClock(t *testing.T) {
	svc := NewService(testSecret)
	token, err := svc.IssueToken("user-1", "", time.Minute)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, apperrors.ErrAuthFailure)
}
