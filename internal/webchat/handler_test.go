package webchat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/bookwise-ai/bookwise/internal/availability"
	"github.com/bookwise-ai/bookwise/internal/booking"
	"github.com/bookwise-ai/bookwise/internal/calendar"
	"github.com/bookwise-ai/bookwise/internal/dialogue"
	"github.com/bookwise-ai/bookwise/internal/history"
	"github.com/bookwise-ai/bookwise/internal/nlu"
	"github.com/bookwise-ai/bookwise/pkg/logging"
)

func newTestService(t *testing.T) *dialogue.Service {
	t.Helper()
	backend := calendar.NewMemoryBackend()
	return dialogue.NewService(dialogue.Config{
		Extractor: nlu.NewExtractor(time.UTC, 60, "Meeting"),
		Engine:    availability.NewEngine(availability.BusinessHours{StartHour: 9, EndHour: 21}, 30, time.UTC),
		Executor:  booking.NewExecutor(backend, time.UTC, nil),
		Backend:   backend,
		Logger:    logging.New("error"),
	})
}

func newTestStore(t *testing.T) *history.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return history.NewStore(client)
}

func dialWS(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	conn, err := websocket.Dial(wsURL, "", "http://localhost/")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func recvOutbound(t *testing.T, conn *websocket.Conn) OutboundMessage {
	t.Helper()
	var msg OutboundMessage
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, websocket.JSON.Receive(conn, &msg))
	return msg
}

func TestGenerateSessionID(t *testing.T) {
	s1 := generateSessionID()
	s2 := generateSessionID()
	assert.NotEmpty(t, s1)
	assert.NotEqual(t, s1, s2)
	assert.Len(t, s1, 32) // 16 bytes = 32 hex chars
}

func TestWebSocketChatBooksAppointment(t *testing.T) {
	h := NewHandler(newTestService(t), nil, logging.New("error"))
	srv := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	defer srv.Close()

	conn := dialWS(t, srv, "")

	session := recvOutbound(t, conn)
	require.Equal(t, "session", session.Type)
	assert.NotEmpty(t, session.SessionID)

	require.NoError(t, websocket.JSON.Send(conn, InboundMessage{
		Type: "message",
		Text: "Book a meeting 2025-06-26 at 2pm",
	}))

	typing := recvOutbound(t, conn)
	require.Equal(t, "typing", typing.Type)

	reply := recvOutbound(t, conn)
	require.Equal(t, "message", reply.Type)
	assert.Equal(t, "assistant", reply.Role)
	require.NotNil(t, reply.Booking)
	assert.True(t, reply.Booking.Booked)
	assert.Equal(t, "14:00", reply.Booking.Time)
}

func TestWebSocketPingPong(t *testing.T) {
	h := NewHandler(newTestService(t), nil, logging.New("error"))
	srv := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	defer srv.Close()

	conn := dialWS(t, srv, "")
	_ = recvOutbound(t, conn) // session

	require.NoError(t, websocket.JSON.Send(conn, InboundMessage{Type: "ping"}))
	pong := recvOutbound(t, conn)
	assert.Equal(t, "pong", pong.Type)
}

func TestWebSocketReplaysHistory(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Append(context.Background(), "sess-history", history.Message{
		Role: "user", Text: "hello",
	}))
	require.NoError(t, store.Append(context.Background(), "sess-history", history.Message{
		Role: "assistant", Text: "Hi! I can help you book appointments.",
	}))

	h := NewHandler(newTestService(t), store, logging.New("error"))
	srv := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	defer srv.Close()

	conn := dialWS(t, srv, "?session=sess-history")

	session := recvOutbound(t, conn)
	require.Equal(t, "session", session.Type)
	assert.Equal(t, "sess-history", session.SessionID)

	replay := recvOutbound(t, conn)
	require.Equal(t, "history", replay.Type)
	require.Len(t, replay.Messages, 2)
	assert.Equal(t, "user", replay.Messages[0].Role)
	assert.Equal(t, "hello", replay.Messages[0].Text)
}

func TestSendToSessionUnknownIsNoOp(t *testing.T) {
	h := NewHandler(newTestService(t), nil, logging.New("error"))
	h.SendToSession("missing", OutboundMessage{Type: "message", Text: "x"})
}
