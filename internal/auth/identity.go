package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pbaille/moodlog/internal/domain"
)

// Claims are the ID token fields the client cares about
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// ParseIdentity decodes an ID token without verifying its signature.
// The backend verifies every token it receives; the client only reads claims.
func ParseIdentity(token string) (*domain.Identity, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("parse id token: %w", err)
	}

	uid := claims.UserID
	if uid == "" {
		uid = claims.Subject
	}
	if uid == "" {
		return nil, fmt.Errorf("parse id token: no subject")
	}

	id := &domain.Identity{
		UID:         uid,
		Email:       claims.Email,
		DisplayName: claims.Name,
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}

// ExpiringSoon reports whether expiry falls within buffer of now.
// A zero expiry counts as expired.
func ExpiringSoon(expiry int64, buffer time.Duration, now time.Time) bool {
	if expiry == 0 {
		return true
	}
	return time.Unix(expiry, 0).Sub(now) <= buffer
}
