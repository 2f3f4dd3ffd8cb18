package auth

import (
	"fmt"
	"time"

	apperrors "whiteboard/internal/errors"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload carried by a bearer credential.
type Claims struct {
	UserID      string `json:"userId,omitempty"`
	UserIDSnake string `json:"user_id,omitempty"`
	Name        string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// subject returns the first non-empty of userId, user_id and sub.
func (c *Claims) subject() string {
	switch {
	case c.UserID != "":
		return c.UserID
	case c.UserIDSnake != "":
		return c.UserIDSnake
	default:
		return c.Subject
	}
}

// Identity is the verified caller behind a credential.
type Identity struct {
	UserID string
	Name   string
}

type Service struct {
	secret []byte
	now    func() time.Time
}

func NewService(secret []byte) *Service {
	return &Service{
		secret: secret,
		now:    time.Now,
	}
}

// Verify checks signature, algorithm and expiry, and extracts the user id
// from userId, user_id or sub, in that order.
// Tokens without an expiry are rejected.
func (s *Service) Verify(tokenString string) (*Identity, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: missing token", apperrors.ErrAuthFailure)
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrAuthFailure, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", apperrors.ErrAuthFailure)
	}

	userID := claims.subject()
	if userID == "" {
		return nil, fmt.Errorf("%w: invalid user ID in token", apperrors.ErrAuthFailure)
	}

	return &Identity{UserID: userID, Name: claims.Name}, nil
}

// IssueToken signs a credential for userID valid for ttl.
func (s *Service) IssueToken(userID, name string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: userID,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
