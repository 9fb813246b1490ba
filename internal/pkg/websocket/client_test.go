package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frame struct {
	N int `json:"n"`
}

func TestClient_StreamsFramesAndReportsInbound(t *testing.T) {
	frames := make(chan any, 2)
	inbound := make(chan string, 1)
	finished := make(chan struct{})
	var sessionCtx context.Context

	upgrader := NewUpgrader(nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		sessionCtx = ctx
		client := NewClient(conn, zerolog.Nop(), func(ctx context.Context, payload []byte) error {
			inbound <- string(payload)
			return nil
		})
		client.Run(ctx, cancel, frames)
		close(finished)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)

	frames <- frame{N: 1}
	frames <- frame{N: 2}
	for want := 1; want <= 2; want++ {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var got frame
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, want, got.N)
	}

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(" {\"text\":\"hi\"}\n")))
	select {
	case got := <-inbound:
		assert.Equal(t, `{"text":"hi"}`, got)
	case <-time.After(time.Second):
		t.Fatal("inbound frame not delivered")
	}

	require.NoError(t, conn.Close())
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("client did not stop after peer disconnect")
	}
	assert.Error(t, sessionCtx.Err())
}

func TestClient_ClosesWhenFramesEnd(t *testing.T) {
	frames := make(chan any)
	upgrader := NewUpgrader([]string{"*"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		NewClient(conn, zerolog.Nop(), nil).Run(ctx, cancel, frames)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	close(frames)
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
}

func TestNewUpgrader_CheckOrigin(t *testing.T) {
	up := NewUpgrader([]string{"https://portal.uni.lk"})

	req := httptest.NewRequest("GET", "/", nil)
	assert.True(t, up.CheckOrigin(req))

	req.Header.Set("Origin", "https://portal.uni.lk")
	assert.True(t, up.CheckOrigin(req))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, up.CheckOrigin(req))
}
