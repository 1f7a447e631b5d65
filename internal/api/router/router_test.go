package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookwise-ai/bookwise/internal/availability"
	"github.com/bookwise-ai/bookwise/internal/booking"
	"github.com/bookwise-ai/bookwise/internal/calendar"
	"github.com/bookwise-ai/bookwise/internal/dialogue"
	"github.com/bookwise-ai/bookwise/internal/http/handlers"
	"github.com/bookwise-ai/bookwise/internal/nlu"
	"github.com/bookwise-ai/bookwise/pkg/logging"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	backend := calendar.NewMemoryBackend()
	executor := booking.NewExecutor(backend, time.UTC, nil)
	svc := dialogue.NewService(dialogue.Config{
		Extractor: nlu.NewExtractor(time.UTC, 60, "Meeting"),
		Engine:    availability.NewEngine(availability.BusinessHours{StartHour: 9, EndHour: 21}, 30, time.UTC),
		Executor:  executor,
		Backend:   backend,
		Logger:    logging.New("error"),
	})

	return New(&Config{
		Logger:         logging.New("error"),
		Chat:           handlers.NewChatHandler(svc, nil, nil),
		Book:           handlers.NewBookHandler(executor, nil, 60, "Meeting", nil),
		Health:         handlers.NewHealthHandler("test"),
		MetricsHandler: promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{}),
	})
}

func TestRouterServesHealth(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "ok", payload["status"])
}

func TestRouterServesBanner(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Bookwise")
}

func TestRouterServesChat(t *testing.T) {
	r := newTestRouter(t)

	body, _ := json.Marshal(map[string]string{
		"message":    "What times are free 2025-06-26?",
		"session_id": "session-r",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		SessionID string `json:"session_id"`
		Response  string `json:"response"`
		Intent    string `json:"intent"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "session-r", resp.SessionID)
	assert.Equal(t, "check_availability", resp.Intent)
	assert.NotEmpty(t, resp.Response)
}

func TestRouterServesBook(t *testing.T) {
	r := newTestRouter(t)

	body, _ := json.Marshal(map[string]any{
		"date": "2025-06-26",
		"time": "10:00",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/book", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterServesMetrics(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterUnknownRouteIs404(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
