// Package server exposes one journal session as local JSON, so a browser
// or script can drive the same state the terminal UI uses.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/pbaille/moodlog/internal/domain"
	"github.com/pbaille/moodlog/internal/journal"
	"go.uber.org/zap"
)

// Server handles HTTP requests for one session
type Server struct {
	session *journal.Session
	backend journal.Backend
	log     *zap.SugaredLogger
	addr    string
	now     func() time.Time
}

// New creates a server over session; backend feeds the dashboard
func New(session *journal.Session, backend journal.Backend, log *zap.SugaredLogger, addr string) *Server {
	return &Server{session: session, backend: backend, log: log, addr: addr, now: time.Now}
}

// Handler builds the router
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))
	r.Use(s.logRequests)

	r.Get("/health", s.health)
	r.Get("/dashboard", s.dashboard)

	r.Route("/entries", func(r chi.Router) {
		r.Get("/", s.listEntries)
		r.Post("/refresh", s.refreshEntries)
		r.Delete("/{id}", s.deleteEntry)
	})

	r.Route("/draft", func(r chi.Router) {
		r.Put("/", s.updateDraft)
		r.Post("/generate", s.generateDraft)
		r.Post("/save", s.saveDraft)
	})

	r.Route("/chat", func(r chi.Router) {
		r.Get("/", s.getChat)
		r.Delete("/", s.closeChat)
		r.Post("/{id}/open", s.openChat)
		r.Post("/messages", s.sendChat)
	})

	return r
}

// Run serves until ctx is canceled
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Infow("companion server listening", "addr", s.addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debugw("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := journal.LoadDashboard(r.Context(), s.backend, s.session, s.now())
	if err != nil {
		writeFailure(w, err, "Failed to load journal entries")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// EntriesResponse is the journal list with the session's view state
type EntriesResponse struct {
	Entries  []domain.JournalEntry `json:"entries"`
	Selected string                `json:"selected,omitempty"`
	Notice   *journal.Notice       `json:"notice,omitempty"`
}

func (s *Server) entriesResponse() EntriesResponse {
	resp := EntriesResponse{
		Entries: s.session.Entries.Entries(),
		Notice:  s.session.Notice(),
	}
	if sel := s.session.Selected(); sel != nil {
		resp.Selected = sel.ID
	}
	return resp
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.entriesResponse())
}

func (s *Server) refreshEntries(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Refresh(r.Context()); err != nil {
		writeFailure(w, err, "Failed to load journal entries")
		return
	}
	writeJSON(w, http.StatusOK, s.entriesResponse())
}

func (s *Server) deleteEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.session.Delete(r.Context(), id); err != nil {
		writeFailure(w, err, "Failed to delete journal entry")
		return
	}
	writeJSON(w, http.StatusOK, s.entriesResponse())
}

// DraftRequest replaces the draft text
type DraftRequest struct {
	Content string `json:"content"`
}

// DraftResponse is the draft as the editor shows it
type DraftResponse struct {
	Content   string `json:"content"`
	MoodScore *int   `json:"mood_score"`
	Summary   string `json:"summary"`
	Stale     bool   `json:"stale"`
}

func (s *Server) draftResponse() DraftResponse {
	d := s.session.Draft
	return DraftResponse{
		Content:   d.Content(),
		MoodScore: d.MoodScore(),
		Summary:   d.Summary(),
		Stale:     d.Stale(),
	}
}

func (s *Server) updateDraft(w http.ResponseWriter, r *http.Request) {
	var req DraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.session.Draft.SetContent(req.Content)
	writeJSON(w, http.StatusOK, s.draftResponse())
}

func (s *Server) generateDraft(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Generate(r.Context()); err != nil {
		writeFailure(w, err, "Failed to generate summary")
		return
	}
	writeJSON(w, http.StatusOK, s.draftResponse())
}

func (s *Server) saveDraft(w http.ResponseWriter, r *http.Request) {
	entry, err := s.session.Save(r.Context())
	if err != nil {
		msg := "Failed to save journal entry"
		if n := s.session.Notice(); n != nil {
			msg = n.Text
		}
		writeFailure(w, err, msg)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// ChatResponse is the open conversation
type ChatResponse struct {
	Open       bool                 `json:"open"`
	EntryID    string               `json:"entry_id,omitempty"`
	Busy       bool                 `json:"busy"`
	Transcript []domain.ChatMessage `json:"transcript"`
}

func (s *Server) chatResponse() ChatResponse {
	c := s.session.Chat
	return ChatResponse{
		Open:       c.IsOpen(),
		EntryID:    c.EntryID(),
		Busy:       c.Busy(),
		Transcript: c.Transcript(),
	}
}

func (s *Server) getChat(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.chatResponse())
}

func (s *Server) openChat(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.session.Select(id); err != nil {
		writeFailure(w, err, "Entry not found")
		return
	}
	if err := s.session.OpenChat(); err != nil {
		writeFailure(w, err, "Could not open chat")
		return
	}
	writeJSON(w, http.StatusOK, s.chatResponse())
}

// ChatMessageRequest is one user turn
type ChatMessageRequest struct {
	Message string `json:"message"`
}

func (s *Server) sendChat(w http.ResponseWriter, r *http.Request) {
	var req ChatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	if _, err := s.session.SendChat(r.Context(), req.Message); err != nil {
		writeFailure(w, err, journal.FallbackReply)
		return
	}
	writeJSON(w, http.StatusOK, s.chatResponse())
}

func (s *Server) closeChat(w http.ResponseWriter, r *http.Request) {
	s.session.CloseChat()
	w.WriteHeader(http.StatusNoContent)
}

// statusFor maps a session error to its HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case domain.IsValidation(err):
		return http.StatusBadRequest
	case domain.IsNetwork(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeFailure(w http.ResponseWriter, err error, fallback string) {
	status := statusFor(err)
	msg := fallback
	if status == http.StatusBadRequest || status == http.StatusUnauthorized {
		msg = domain.UserMessage(err, fallback)
	}
	writeError(w, status, msg)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
