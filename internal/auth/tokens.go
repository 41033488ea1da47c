package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pbaille/moodlog/internal/config"
	"github.com/pbaille/moodlog/internal/domain"
	"go.uber.org/zap"
)

// TokenExpiryBuffer is how long before expiry a token gets refreshed
const TokenExpiryBuffer = 5 * time.Minute

// Refresher renews an ID token from a refresh token
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
}

// TokenSource hands out a valid bearer token for each backend call,
// refreshing and persisting it when it is close to expiry.
type TokenSource struct {
	mu        sync.Mutex
	cfg       *config.Config
	refresher Refresher
	log       *zap.SugaredLogger
	now       func() time.Time
}

// NewTokenSource creates a TokenSource over the session stored in cfg
func NewTokenSource(cfg *config.Config, refresher Refresher, log *zap.SugaredLogger) *TokenSource {
	return &TokenSource{
		cfg:       cfg,
		refresher: refresher,
		log:       log,
		now:       time.Now,
	}
}

// Token returns the current ID token, refreshing it first when needed
func (t *TokenSource) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	a := t.cfg.Auth
	if !a.SignedIn() {
		return "", domain.ErrNotAuthenticated
	}

	if a.IDToken != "" && !ExpiringSoon(a.TokenExpiry, TokenExpiryBuffer, t.now()) {
		return a.IDToken, nil
	}

	t.log.Debugw("refreshing id token", "user_id", a.UserID, "expiry", a.TokenExpiry)
	s, err := t.refresher.Refresh(ctx, a.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}

	t.apply(s)
	if err := config.Save(t.cfg); err != nil {
		// The refreshed token is still usable for this process
		t.log.Warnw("failed to persist refreshed token", "error", err)
	}
	return s.IDToken, nil
}

// Identity reports who is signed in, from the stored session
func (t *TokenSource) Identity() (*domain.Identity, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	a := t.cfg.Auth
	if !a.SignedIn() {
		return nil, domain.ErrNotAuthenticated
	}

	id := &domain.Identity{
		UID:         a.UserID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		ExpiresAt:   time.Unix(a.TokenExpiry, 0),
	}
	if a.IDToken != "" {
		if claims, err := ParseIdentity(a.IDToken); err == nil {
			if id.UID == "" {
				id.UID = claims.UID
			}
			if id.Email == "" {
				id.Email = claims.Email
			}
			if id.DisplayName == "" {
				id.DisplayName = claims.DisplayName
			}
		}
	}
	return id, nil
}

// Store saves a freshly issued session
func (t *TokenSource) Store(s *Session) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cfg.Auth = config.AuthConfig{}
	t.apply(s)
	return config.Save(t.cfg)
}

// Clear signs out
func (t *TokenSource) Clear() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return config.ClearAuth(t.cfg)
}

func (t *TokenSource) apply(s *Session) {
	a := &t.cfg.Auth
	a.IDToken = s.IDToken
	if s.RefreshToken != "" {
		a.RefreshToken = s.RefreshToken
	}
	a.TokenExpiry = s.ExpiresAt.Unix()
	if s.UserID != "" {
		a.UserID = s.UserID
	}
	if s.Email != "" {
		a.Email = s.Email
	}
	if s.DisplayName != "" {
		a.DisplayName = s.DisplayName
	}
}
