package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/simplebot/internal/logging"
	"github.com/aretw0/simplebot/pkg/domain"
	"github.com/aretw0/simplebot/pkg/runner"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// MaxBodyBytes bounds the size of an inbound activity.
const MaxBodyBytes = 1 << 20

// Bot is the conversation core driven by the server.
type Bot interface {
	ProcessActivity(ctx context.Context, activity domain.Activity) ([]domain.Reply, error)
}

// MessagesResponse is the body returned by POST /api/messages.
type MessagesResponse struct {
	Replies []domain.Reply `json:"replies"`
}

// Server exposes the bot over HTTP.
type Server struct {
	Bot     Bot
	Version string

	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics mounts h (usually promhttp.HandlerFor) on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithVersion sets the version reported by GET /info.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.Version = version
	}
}

// NewHandler creates the HTTP handler for the bot.
func NewHandler(bot Bot, opts ...Option) http.Handler {
	s := &Server{
		Bot:     bot,
		Version: "unknown",
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/api/messages", s.PostMessages)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// PostMessages handles the POST /api/messages request.
// A failed turn still answers 200: the replies carry the apology for the user.
func (s *Server) PostMessages(w http.ResponseWriter, r *http.Request) {
	var activity domain.Activity
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(&activity); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		s.logger.Warn("PostMessages: Invalid request body", "err", err)
		writeError(w, status, "invalid request body")
		return
	}

	if strings.TrimSpace(string(activity.Type)) == "" {
		writeError(w, http.StatusBadRequest, "activity type is required")
		return
	}

	text, err := runner.SanitizeInput(activity.Text)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, runner.ErrInputTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, status, err.Error())
		return
	}
	activity.Text = text

	replies, err := s.Bot.ProcessActivity(r.Context(), activity)
	if err != nil {
		s.logger.Error("Turn failed",
			"request_id", middleware.GetReqID(r.Context()),
			"conversation_id", activity.ConversationID,
			"err", err,
		)
	}
	if replies == nil {
		replies = []domain.Reply{}
	}

	writeJSON(w, http.StatusOK, MessagesResponse{Replies: replies})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "simplebot-http",
		"version": strings.TrimSpace(s.Version),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
