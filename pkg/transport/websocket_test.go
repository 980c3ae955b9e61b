package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/orcdash/pkg/events"
	"github.com/randalmurphal/orcdash/pkg/stream"
)

// testServer accepts one WebSocket connection, captures the subscribe
// frame, and hands the connection to script.
func testServer(t *testing.T, script func(ctx context.Context, conn *websocket.Conn, subscribe []byte)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			t.Logf("websocket accept error: %v", err)
			return
		}
		_, subscribe, err := conn.Read(r.Context())
		if err != nil {
			return
		}
		script(r.Context(), conn, subscribe)
	}))
	t.Cleanup(server.Close)
	return server
}

func writeFrame(t *testing.T, ctx context.Context, conn *websocket.Conn, data []byte) {
	t.Helper()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, data))
}

func encodeEvent(t *testing.T, id string, p events.Payload) []byte {
	t.Helper()
	data, err := events.Encode(events.Event{ID: id, Timestamp: time.Now(), Payload: p})
	require.NoError(t, err)
	return data
}

func TestWebSocket_SubscribeFrame(t *testing.T) {
	frames := make(chan []byte, 1)
	server := testServer(t, func(ctx context.Context, conn *websocket.Conn, subscribe []byte) {
		frames <- subscribe
		<-ctx.Done()
	})

	ws := NewWebSocket(server.URL, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req := stream.SubscribeRequest{
		TaskID:           "TASK-001",
		EventTypes:       []string{"task.updated", "phase.changed"},
		IncludeHeartbeat: true,
	}
	src, err := ws.Open(ctx, req)
	require.NoError(t, err)
	defer src.Close()

	var msg struct {
		Action string `json:"action"`
		stream.SubscribeRequest
	}
	require.NoError(t, json.Unmarshal(<-frames, &msg))
	assert.Equal(t, "subscribe", msg.Action)
	assert.Equal(t, req, msg.SubscribeRequest)
}

func TestWebSocket_RecvDeliversEvents(t *testing.T) {
	server := testServer(t, func(ctx context.Context, conn *websocket.Conn, _ []byte) {
		writeFrame(t, ctx, conn, encodeEvent(t, "ev-1", events.TaskCreated{TaskID: "TASK-001", Title: "Add retries"}))
		writeFrame(t, ctx, conn, encodeEvent(t, "ev-2", events.TaskUpdated{TaskID: "TASK-001", Status: events.TaskStatusRunning}))
		<-ctx.Done()
	})

	ws := NewWebSocket(server.URL, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	src, err := ws.Open(ctx, stream.SubscribeRequest{})
	require.NoError(t, err)
	defer src.Close()

	ev, err := src.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ev-1", ev.ID)
	require.IsType(t, events.TaskCreated{}, ev.Payload)

	ev, err = src.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ev-2", ev.ID)
}

// Frames this build cannot decode are skipped, not fatal: Recv keeps
// reading until it finds a usable event.
func TestWebSocket_RecvSkipsUndecodableFrames(t *testing.T) {
	server := testServer(t, func(ctx context.Context, conn *websocket.Conn, _ []byte) {
		writeFrame(t, ctx, conn, []byte(`{"id":"ev-1","type":"task.teleported","payload":{}}`))
		writeFrame(t, ctx, conn, []byte(`{broken json`))
		writeFrame(t, ctx, conn, encodeEvent(t, "ev-2", events.Heartbeat{Timestamp: time.Now()}))
		<-ctx.Done()
	})

	ws := NewWebSocket(server.URL, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	src, err := ws.Open(ctx, stream.SubscribeRequest{})
	require.NoError(t, err)
	defer src.Close()

	ev, err := src.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ev-2", ev.ID)
}

func TestWebSocket_NormalCloseIsEOF(t *testing.T) {
	server := testServer(t, func(_ context.Context, conn *websocket.Conn, _ []byte) {
		conn.Close(websocket.StatusNormalClosure, "shutting down")
	})

	ws := NewWebSocket(server.URL, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	src, err := ws.Open(ctx, stream.SubscribeRequest{})
	require.NoError(t, err)
	defer src.Close()

	_, err = src.Recv(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestWebSocket_RecvHonorsContext(t *testing.T) {
	server := testServer(t, func(ctx context.Context, _ *websocket.Conn, _ []byte) {
		<-ctx.Done()
	})

	ws := NewWebSocket(server.URL, nil)
	openCtx, cancelOpen := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelOpen()

	src, err := ws.Open(openCtx, stream.SubscribeRequest{})
	require.NoError(t, err)
	defer src.Close()

	recvCtx, cancelRecv := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancelRecv()
	_, err = src.Recv(recvCtx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWebSocket_OpenFailsWhenServerDown(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	ws := NewWebSocket(server.URL, nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := ws.Open(ctx, stream.SubscribeRequest{})
	assert.Error(t, err)
}

func TestWSURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://localhost:8080", "ws://localhost:8080/ws"},
		{"https://orc.example.com", "wss://orc.example.com/ws"},
		{"http://localhost:8080/", "ws://localhost:8080/ws"},
		{"ws://localhost:8080", "ws://localhost:8080/ws"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, wsURL(tt.in), "input %q", tt.in)
	}
}
