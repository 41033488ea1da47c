package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pbaille/moodlog/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// TokenSource supplies the bearer token for each request
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// ResponseError is a non-2xx answer from the backend
type ResponseError struct {
	Status  int
	Message string
}

func (e *ResponseError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("status %d", e.Status)
}

// Client calls the journaling backend
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *zap.SugaredLogger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit throttles outgoing requests
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

// New creates a backend Client
func New(baseURL string, tokens TokenSource, log *zap.SugaredLogger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		tokens:     tokens,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Inf, 1),
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListJournals fetches every entry of the signed-in user
func (c *Client) ListJournals(ctx context.Context) ([]Journal, error) {
	var journals []Journal
	if err := c.call(ctx, "list journals", http.MethodGet, "/journals", nil, &journals); err != nil {
		return nil, err
	}
	return journals, nil
}

// SaveJournal persists a scored entry
func (c *Client) SaveJournal(ctx context.Context, req SaveRequest) (*SaveResponse, error) {
	var resp SaveResponse
	if err := c.call(ctx, "save journal", http.MethodPost, "/save", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Generate asks the summarizer for a mood score and summary
func (c *Client) Generate(ctx context.Context, content string) (*GenerateResponse, error) {
	var resp GenerateResponse
	body := map[string]string{"journal": content}
	if err := c.call(ctx, "generate summary", http.MethodPost, "/generate", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Chat sends one user turn and returns the assistant reply
func (c *Client) Chat(ctx context.Context, req ChatRequest) (string, error) {
	if req.ConversationHistory == nil {
		req.ConversationHistory = []HistoryTurn{}
	}
	var resp chatResponse
	if err := c.call(ctx, "chat", http.MethodPost, "/chat", req, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

// DeleteJournal removes an entry by id
func (c *Client) DeleteJournal(ctx context.Context, id string) error {
	return c.call(ctx, "delete journal", http.MethodDelete, "/journals/"+url.PathEscape(id), nil, nil)
}

func (c *Client) call(ctx context.Context, op, method, path string, in, out interface{}) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var body io.Reader
	if in != nil {
		jsonBody, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.New().String()
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return domain.Network(op, "request cancelled", 0, err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warnw("backend request failed", "op", op, "request_id", requestID, "error", err)
		return domain.Network(op, "backend unreachable", 0, err)
	}
	defer resp.Body.Close()

	c.log.Debugw("backend request",
		"op", op,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", requestID,
	)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Network(op, "read response", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		re := &ResponseError{Status: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(respBody, &eb) == nil {
			re.Message = eb.Message
			if re.Message == "" {
				re.Message = eb.Error
			}
		}
		return domain.Network(op, "backend error", resp.StatusCode, re)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return domain.Network(op, "unexpected response", resp.StatusCode, fmt.Errorf("unmarshal response: %w", err))
	}
	return nil
}

// ServerMessage extracts the message the backend attached to a failure, if any
func ServerMessage(err error) string {
	var re *ResponseError
	if errors.As(err, &re) {
		return re.Message
	}
	return ""
}
