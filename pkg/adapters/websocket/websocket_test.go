package websocket

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/noteease/pkg/bridge"
)

func dial(t *testing.T, b *bridge.Bridge) *gorilla.Conn {
	t.Helper()
	srv := httptest.NewServer(Handler(b, nil))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestServe_OutboundAsJSON(t *testing.T) {
	ctx := context.Background()
	b := bridge.New(4)
	conn := dial(t, b)

	require.NoError(t, b.PushContent(ctx, "<p>a `quoted` ${x}</p>"))
	require.NoError(t, b.ApplyCommand(ctx, bridge.Bold))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var set bridge.Message
	require.NoError(t, conn.ReadJSON(&set))
	assert.Equal(t, bridge.SetContent("<p>a `quoted` ${x}</p>"), set)

	// Decoding into a used value would keep the previous Content.
	var format bridge.Message
	require.NoError(t, conn.ReadJSON(&format))
	assert.Equal(t, bridge.Format(bridge.Bold), format)
}

func TestServe_ContentChangedReachesBridge(t *testing.T) {
	b := bridge.New(4)
	conn := dial(t, b)

	require.NoError(t, conn.WriteJSON(bridge.Message{Type: bridge.TypeFormat, Command: bridge.Bold}))
	require.NoError(t, conn.WriteJSON(bridge.ContentChanged("<p>typed</p>")))

	select {
	case got := <-b.Changes():
		assert.Equal(t, "<p>typed</p>", got)
	case <-time.After(2 * time.Second):
		t.Fatal("content change not delivered")
	}
}

func TestServe_BridgeCloseEndsConnection(t *testing.T) {
	b := bridge.New(4)
	conn := dial(t, b)

	b.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, gorilla.IsCloseError(err, gorilla.CloseNormalClosure), "got %v", err)
}
