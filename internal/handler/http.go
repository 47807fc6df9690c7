package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/serpent-showdown/internal/domain"
	"github.com/serpent-showdown/internal/websocket"
)

// AccountService is the account directory surface exposed over HTTP.
type AccountService interface {
	Register(ctx context.Context, creds domain.Credentials) (*domain.Account, error)
	Authenticate(ctx context.Context, email, password string) (*domain.Account, error)
	CurrentSession(ctx context.Context) (*domain.Account, error)
}

// LeaderboardService is the ranking engine surface exposed over HTTP.
type LeaderboardService interface {
	List(ctx context.Context, mode *domain.GameMode) ([]domain.LeaderboardEntry, error)
	Submit(ctx context.Context, sub domain.ScoreSubmission) (*domain.LeaderboardEntry, error)
}

// LiveService is the live session registry surface exposed over HTTP.
type LiveService interface {
	ListActive(ctx context.Context) ([]domain.LivePlayer, error)
	GetByID(ctx context.Context, id string) (*domain.LivePlayer, error)
}

// Handler provides HTTP handlers for the Serpent Showdown API
type Handler struct {
	accounts    AccountService
	leaderboard LeaderboardService
	live        LiveService
	hub         *websocket.Hub
	logger      *slog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(accounts AccountService, leaderboard LeaderboardService, live LiveService, hub *websocket.Hub, logger *slog.Logger) *Handler {
	return &Handler{
		accounts:    accounts,
		leaderboard: leaderboard,
		live:        live,
		hub:         hub,
		logger:      logger,
	}
}

// APIResponse represents the uniform response envelope. Failure is signaled
// by Success=false plus an error string; callers branch on Success, not on
// the transport status.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Router creates and configures the HTTP router
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(corsMiddleware)

	r.Get("/", h.Root)
	r.Get("/health", h.HealthCheck)
	r.Get("/ready", h.ReadyCheck)

	// Spectator WebSocket
	r.Get("/ws", h.HandleWebSocket)
	r.Get("/ws/stats", h.GetWebSocketStats)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Get("/me", h.CurrentSession)
	})

	r.Route("/leaderboard", func(r chi.Router) {
		r.Get("/", h.GetLeaderboard)
		r.Post("/", h.SubmitScore)
	})

	r.Route("/live", func(r chi.Router) {
		r.Get("/players", h.GetLivePlayers)
		r.Get("/players/{playerID}", h.GetLivePlayer)
	})

	return r
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeSuccess writes a successful envelope
func (h *Handler) writeSuccess(w http.ResponseWriter, data interface{}) {
	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

// writeFailure writes a recoverable domain failure: HTTP 200 with
// success:false so the client has one uniform failure-handling path.
func (h *Handler) writeFailure(w http.ResponseWriter, err error) {
	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: false,
		Error:   err.Error(),
	})
}

// writeInternalError writes an unrecoverable failure envelope
func (h *Handler) writeInternalError(w http.ResponseWriter) {
	h.writeJSON(w, http.StatusInternalServerError, APIResponse{
		Success: false,
		Error:   domain.ErrInternal.Error(),
	})
}

// Root returns the API welcome payload
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to Serpent Showdown API"})
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]string{"status": "healthy"})
}

// ReadyCheck returns service readiness status
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]string{"status": "ready"})
}

// HandleWebSocket handles WebSocket upgrade requests
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWs(h.hub, h.logger, w, r)
}

// GetWebSocketStats returns WebSocket connection statistics
func (h *Handler) GetWebSocketStats(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]interface{}{
		"total_connections": h.hub.GetTotalConnections(),
	})
}

// Signup handles account registration
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		h.writeFailure(w, domain.ErrInvalidInput)
		return
	}

	account, err := h.accounts.Register(r.Context(), creds)
	if err != nil {
		if domain.IsDomainError(err) {
			h.writeFailure(w, err)
			return
		}
		h.logger.Error("failed to register account", "error", err)
		h.writeInternalError(w)
		return
	}

	h.writeSuccess(w, account)
}

// Login handles credential authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		h.writeFailure(w, domain.ErrInvalidCredentials)
		return
	}

	account, err := h.accounts.Authenticate(r.Context(), creds.Email, creds.Password)
	if err != nil {
		if domain.IsDomainError(err) {
			h.writeFailure(w, err)
			return
		}
		h.logger.Error("failed to authenticate", "error", err)
		h.writeInternalError(w)
		return
	}

	h.writeSuccess(w, account)
}

// Logout is a stateless no-op success; there is no session to tear down.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, nil)
}

// CurrentSession returns the authenticated account, which is always null:
// no token mechanism exists.
func (h *Handler) CurrentSession(w http.ResponseWriter, r *http.Request) {
	account, err := h.accounts.CurrentSession(r.Context())
	if err != nil {
		h.logger.Error("failed to resolve session", "error", err)
		h.writeInternalError(w)
		return
	}
	h.writeSuccess(w, account)
}

// GetLeaderboard returns entries ordered by rank, optionally filtered by mode
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	var mode *domain.GameMode
	if modeStr := r.URL.Query().Get("mode"); modeStr != "" {
		m := domain.GameMode(modeStr)
		mode = &m
	}

	entries, err := h.leaderboard.List(r.Context(), mode)
	if err != nil {
		if domain.IsDomainError(err) {
			h.writeFailure(w, err)
			return
		}
		h.logger.Error("failed to list leaderboard", "error", err)
		h.writeInternalError(w)
		return
	}

	h.writeSuccess(w, entries)
}

// SubmitScore handles score submission
func (h *Handler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	var sub domain.ScoreSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		h.writeFailure(w, domain.ErrInvalidInput)
		return
	}

	entry, err := h.leaderboard.Submit(r.Context(), sub)
	if err != nil {
		if domain.IsDomainError(err) {
			h.writeFailure(w, err)
			return
		}
		h.logger.Error("failed to submit score", "error", err)
		h.writeInternalError(w)
		return
	}

	h.writeSuccess(w, entry)
}

// GetLivePlayers returns snapshots of all active sessions
func (h *Handler) GetLivePlayers(w http.ResponseWriter, r *http.Request) {
	players, err := h.live.ListActive(r.Context())
	if err != nil {
		h.logger.Error("failed to list live players", "error", err)
		h.writeInternalError(w)
		return
	}

	h.writeSuccess(w, players)
}

// GetLivePlayer returns one session's snapshot. An unknown id is a soft
// miss: success with null data, never an error.
func (h *Handler) GetLivePlayer(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")

	player, err := h.live.GetByID(r.Context(), playerID)
	if err != nil {
		h.logger.Error("failed to get live player", "error", err, "player_id", playerID)
		h.writeInternalError(w)
		return
	}

	if player == nil {
		h.writeSuccess(w, nil)
		return
	}
	h.writeSuccess(w, player)
}
