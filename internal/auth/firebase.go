package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pbaille/moodlog/internal/domain"
)

// Session is the token set issued by the identity provider
type Session struct {
	IDToken      string
	RefreshToken string
	ExpiresAt    time.Time
	UserID       string
	Email        string
	DisplayName  string
}

// Provider talks to an Identity Toolkit compatible REST endpoint
type Provider struct {
	apiKey      string
	accountsURL string
	tokenURL    string
	httpClient  *http.Client
	now         func() time.Time
}

// NewProvider creates a Provider; accountsURL and tokenURL point at the
// identity toolkit and secure token services.
func NewProvider(apiKey, accountsURL, tokenURL string) *Provider {
	return &Provider{
		apiKey:      apiKey,
		accountsURL: strings.TrimSuffix(accountsURL, "/"),
		tokenURL:    tokenURL,
		httpClient:  http.DefaultClient,
		now:         time.Now,
	}
}

// SignIn exchanges email and password for a session
func (p *Provider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, domain.Validation("sign in", "Email and password are required")
	}

	var resp accountResponse
	err := p.postJSON(ctx, p.accountsURL+"/accounts:signInWithPassword", map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.session(p.now())
}

// SignUp creates an account and sets its display name
func (p *Provider) SignUp(ctx context.Context, email, password, displayName string) (*Session, error) {
	if strings.TrimSpace(displayName) == "" {
		return nil, domain.Validation("sign up", "Username is required for signup")
	}
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, domain.Validation("sign up", "Email and password are required")
	}

	var created accountResponse
	err := p.postJSON(ctx, p.accountsURL+"/accounts:signUp", map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &created)
	if err != nil {
		return nil, err
	}

	var updated accountResponse
	err = p.postJSON(ctx, p.accountsURL+"/accounts:update", map[string]interface{}{
		"idToken":           created.IDToken,
		"displayName":       displayName,
		"returnSecureToken": true,
	}, &updated)
	if err != nil {
		return nil, fmt.Errorf("set display name: %w", err)
	}

	// update may omit tokens when they did not rotate
	if updated.IDToken == "" {
		updated.IDToken = created.IDToken
		updated.RefreshToken = created.RefreshToken
		updated.ExpiresIn = created.ExpiresIn
	}
	if updated.LocalID == "" {
		updated.LocalID = created.LocalID
	}
	if updated.Email == "" {
		updated.Email = created.Email
	}
	updated.DisplayName = displayName

	return updated.session(p.now())
}

// Refresh trades a refresh token for a fresh ID token
func (p *Provider) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, domain.ErrNotAuthenticated
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.withKey(p.tokenURL), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp tokenResponse
	if err := p.do(req, "refresh token", &resp); err != nil {
		return nil, err
	}

	secs, err := strconv.Atoi(resp.ExpiresIn)
	if err != nil {
		return nil, fmt.Errorf("parse expires_in %q: %w", resp.ExpiresIn, err)
	}

	s := &Session{
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    p.now().Add(time.Duration(secs) * time.Second),
		UserID:       resp.UserID,
	}
	if id, err := ParseIdentity(resp.IDToken); err == nil {
		s.Email = id.Email
		s.DisplayName = id.DisplayName
	}
	return s, nil
}

type accountResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
}

func (r accountResponse) session(now time.Time) (*Session, error) {
	if r.IDToken == "" {
		return nil, errors.New("identity provider returned no token")
	}
	secs, err := strconv.Atoi(r.ExpiresIn)
	if err != nil {
		return nil, fmt.Errorf("parse expiresIn %q: %w", r.ExpiresIn, err)
	}
	return &Session{
		IDToken:      r.IDToken,
		RefreshToken: r.RefreshToken,
		ExpiresAt:    now.Add(time.Duration(secs) * time.Second),
		UserID:       r.LocalID,
		Email:        r.Email,
		DisplayName:  r.DisplayName,
	}, nil
}

type tokenResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
	UserID       string `json:"user_id"`
}

type providerError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *Provider) withKey(endpoint string) string {
	if p.apiKey == "" {
		return endpoint
	}
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	return endpoint + sep + "key=" + url.QueryEscape(p.apiKey)
}

func (p *Provider) postJSON(ctx context.Context, endpoint string, body interface{}, out interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.withKey(endpoint), bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	op := endpoint[strings.LastIndex(endpoint, ":")+1:]
	return p.do(req, op, out)
}

func (p *Provider) do(req *http.Request, op string, out interface{}) error {
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return domain.Network(op, "Could not reach the sign-in service", 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Network(op, "Could not read the sign-in response", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		var pe providerError
		msg := fmt.Sprintf("sign-in service error (status %d)", resp.StatusCode)
		if json.Unmarshal(body, &pe) == nil && pe.Error.Message != "" {
			msg = humanize(pe.Error.Message)
		}
		return domain.Network(op, msg, resp.StatusCode, nil)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// humanize turns provider codes like EMAIL_NOT_FOUND into readable text
func humanize(code string) string {
	switch {
	case strings.HasPrefix(code, "EMAIL_NOT_FOUND"), strings.HasPrefix(code, "INVALID_PASSWORD"),
		strings.HasPrefix(code, "INVALID_LOGIN_CREDENTIALS"):
		return "Invalid email or password"
	case strings.HasPrefix(code, "EMAIL_EXISTS"):
		return "An account with this email already exists"
	case strings.HasPrefix(code, "WEAK_PASSWORD"):
		return "Password should be at least 6 characters"
	case strings.HasPrefix(code, "TOKEN_EXPIRED"), strings.HasPrefix(code, "INVALID_REFRESH_TOKEN"):
		return "Your session has expired, please sign in again"
	}
	return code
}
