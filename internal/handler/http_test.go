package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/serpent-showdown/internal/domain"
	"github.com/serpent-showdown/internal/websocket"
	"github.com/stretchr/testify/require"
)

type fakeAccounts struct {
	registered *domain.Account
	authed     *domain.Account
	err        error
}

func (f *fakeAccounts) Register(ctx context.Context, creds domain.Credentials) (*domain.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.registered, nil
}

func (f *fakeAccounts) Authenticate(ctx context.Context, email, password string) (*domain.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.authed, nil
}

func (f *fakeAccounts) CurrentSession(ctx context.Context) (*domain.Account, error) {
	return nil, nil
}

type fakeLeaderboard struct {
	entries []domain.LeaderboardEntry
	created *domain.LeaderboardEntry
	err     error
}

func (f *fakeLeaderboard) List(ctx context.Context, mode *domain.GameMode) ([]domain.LeaderboardEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	if mode == nil {
		return f.entries, nil
	}
	filtered := []domain.LeaderboardEntry{}
	for _, e := range f.entries {
		if e.Mode == *mode {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

func (f *fakeLeaderboard) Submit(ctx context.Context, sub domain.ScoreSubmission) (*domain.LeaderboardEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.created, nil
}

type fakeLive struct {
	players []domain.LivePlayer
	byID    map[string]*domain.LivePlayer
	err     error
}

func (f *fakeLive) ListActive(ctx context.Context) ([]domain.LivePlayer, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.players, nil
}

func (f *fakeLive) GetByID(ctx context.Context, id string) (*domain.LivePlayer, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byID[id], nil
}

func newTestHandler(accounts AccountService, leaderboard LeaderboardService, live LiveService) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := websocket.NewHub(logger)
	if accounts == nil {
		accounts = &fakeAccounts{}
	}
	if leaderboard == nil {
		leaderboard = &fakeLeaderboard{}
	}
	if live == nil {
		live = &fakeLive{}
	}
	return NewHandler(accounts, leaderboard, live, hub, logger).Router()
}

func doRequest(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestRoot(t *testing.T) {
	router := newTestHandler(nil, nil, nil)
	rec := doRequest(t, router, http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Welcome to Serpent Showdown API", body["message"])
}

func TestHealthAndReady(t *testing.T) {
	router := newTestHandler(nil, nil, nil)

	for _, path := range []string{"/health", "/ready"} {
		rec := doRequest(t, router, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, decodeEnvelope(t, rec).Success)
	}
}

func TestSignup(t *testing.T) {
	accounts := &fakeAccounts{registered: &domain.Account{
		ID: "acc-1", Username: "snakefan", Email: "snake@example.com",
	}}
	router := newTestHandler(accounts, nil, nil)

	rec := doRequest(t, router, http.MethodPost, "/auth/signup", domain.Credentials{
		Email: "snake@example.com", Password: "password123", Username: "snakefan",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	require.Equal(t, "snakefan", data["username"])
	// The password never appears in the payload.
	require.NotContains(t, data, "password")
}

func TestSignup_DuplicateEmail(t *testing.T) {
	router := newTestHandler(&fakeAccounts{err: domain.ErrDuplicateEmail}, nil, nil)

	rec := doRequest(t, router, http.MethodPost, "/auth/signup", domain.Credentials{
		Email: "snake@example.com", Password: "pw", Username: "snakefan",
	})

	// Domain failures keep HTTP 200; the envelope carries the failure.
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.False(t, resp.Success)
	require.Equal(t, "Email already registered", resp.Error)
}

func TestSignup_MissingUsername(t *testing.T) {
	router := newTestHandler(&fakeAccounts{err: domain.ErrMissingField}, nil, nil)

	rec := doRequest(t, router, http.MethodPost, "/auth/signup", domain.Credentials{
		Email: "snake@example.com", Password: "pw",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.False(t, resp.Success)
	require.Equal(t, "Username is required", resp.Error)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	router := newTestHandler(&fakeAccounts{err: domain.ErrInvalidCredentials}, nil, nil)

	rec := doRequest(t, router, http.MethodPost, "/auth/login", domain.Credentials{
		Email: "snake@example.com", Password: "wrong",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.False(t, resp.Success)
	require.Equal(t, "Invalid email or password", resp.Error)
}

func TestLogout(t *testing.T) {
	router := newTestHandler(nil, nil, nil)
	rec := doRequest(t, router, http.MethodPost, "/auth/logout", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, decodeEnvelope(t, rec).Success)
}

func TestCurrentSession_AlwaysNull(t *testing.T) {
	router := newTestHandler(nil, nil, nil)
	rec := doRequest(t, router, http.MethodGet, "/auth/me", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.True(t, resp.Success)
	require.Nil(t, resp.Data)
}

func TestGetLeaderboard(t *testing.T) {
	leaderboard := &fakeLeaderboard{entries: []domain.LeaderboardEntry{
		{ID: "e1", Rank: 1, Username: "PixelMaster", Score: 2450, Mode: domain.ModeWalls, Date: "2026-08-30"},
		{ID: "e2", Rank: 2, Username: "SnakeCharmer", Score: 1800, Mode: domain.ModePassThrough, Date: "2026-08-30"},
	}}
	router := newTestHandler(nil, leaderboard, nil)

	rec := doRequest(t, router, http.MethodGet, "/leaderboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.True(t, resp.Success)
	require.Len(t, resp.Data, 2)
}

func TestGetLeaderboard_FilteredByMode(t *testing.T) {
	leaderboard := &fakeLeaderboard{entries: []domain.LeaderboardEntry{
		{ID: "e1", Rank: 1, Username: "PixelMaster", Score: 2450, Mode: domain.ModeWalls},
		{ID: "e2", Rank: 2, Username: "SnakeCharmer", Score: 1800, Mode: domain.ModePassThrough},
	}}
	router := newTestHandler(nil, leaderboard, nil)

	rec := doRequest(t, router, http.MethodGet, "/leaderboard?mode=walls", nil)
	resp := decodeEnvelope(t, rec)
	require.True(t, resp.Success)
	require.Len(t, resp.Data, 1)
}

func TestSubmitScore(t *testing.T) {
	leaderboard := &fakeLeaderboard{created: &domain.LeaderboardEntry{
		ID: "e1", Rank: 1, Username: "snakefan", Score: 100, Mode: domain.ModeWalls, Date: "2026-08-30",
	}}
	router := newTestHandler(nil, leaderboard, nil)

	score := 100
	rec := doRequest(t, router, http.MethodPost, "/leaderboard", domain.ScoreSubmission{
		Username: "snakefan", Score: &score, Mode: domain.ModeWalls,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	require.Equal(t, float64(1), data["rank"])
}

func TestSubmitScore_InvalidInput(t *testing.T) {
	router := newTestHandler(nil, &fakeLeaderboard{err: domain.ErrInvalidInput}, nil)

	rec := doRequest(t, router, http.MethodPost, "/leaderboard", map[string]any{"mode": "maze"})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.False(t, resp.Success)
	require.NotEmpty(t, resp.Error)
}

func TestSubmitScore_MalformedBody(t *testing.T) {
	router := newTestHandler(nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/leaderboard", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, decodeEnvelope(t, rec).Success)
}

func TestGetLivePlayers(t *testing.T) {
	live := &fakeLive{players: []domain.LivePlayer{
		{ID: "live1", Username: "AIPlayer_Alpha", Score: 150, Mode: domain.ModeWalls,
			Snake: []domain.Position{{X: 10, Y: 10}}, Direction: domain.DirectionRight, Viewers: 23},
	}}
	router := newTestHandler(nil, nil, live)

	rec := doRequest(t, router, http.MethodGet, "/live/players", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.True(t, resp.Success)
	require.Len(t, resp.Data, 1)
}

func TestGetLivePlayer(t *testing.T) {
	live := &fakeLive{byID: map[string]*domain.LivePlayer{
		"live1": {ID: "live1", Username: "AIPlayer_Alpha", Score: 150, Mode: domain.ModeWalls,
			Snake: []domain.Position{{X: 10, Y: 10}}, Direction: domain.DirectionRight},
	}}
	router := newTestHandler(nil, nil, live)

	rec := doRequest(t, router, http.MethodGet, "/live/players/live1", nil)
	resp := decodeEnvelope(t, rec)
	require.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	require.Equal(t, "AIPlayer_Alpha", data["username"])
}

func TestGetLivePlayer_UnknownIsSoftMiss(t *testing.T) {
	router := newTestHandler(nil, nil, &fakeLive{byID: map[string]*domain.LivePlayer{}})

	rec := doRequest(t, router, http.MethodGet, "/live/players/ghost", nil)

	// Unknown ids never fail; the payload is simply null.
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.True(t, resp.Success)
	require.Nil(t, resp.Data)
}

func TestInternalErrorsReturn500(t *testing.T) {
	router := newTestHandler(nil, nil, &fakeLive{err: io.ErrUnexpectedEOF})

	rec := doRequest(t, router, http.MethodGet, "/live/players", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.False(t, decodeEnvelope(t, rec).Success)
}

func TestCORSPreflight(t *testing.T) {
	router := newTestHandler(nil, nil, nil)

	rec := doRequest(t, router, http.MethodOptions, "/leaderboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestWebSocketStats(t *testing.T) {
	router := newTestHandler(nil, nil, nil)

	rec := doRequest(t, router, http.MethodGet, "/ws/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	require.Equal(t, float64(0), data["total_connections"])
}
