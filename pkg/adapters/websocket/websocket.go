// Package websocket carries bridge messages to a browser editing surface.
//
// Outbound bridge messages are written as JSON text frames. The surface
// answers with CONTENT_CHANGED frames, which are fed into Bridge.Notify.
package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	gorilla "github.com/gorilla/websocket"

	"github.com/aretw0/noteease/pkg/bridge"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMessage = 1 << 20
)

// Upgrader is used by Handler. Same-origin only by default.
var Upgrader = gorilla.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// Handler upgrades the request and serves b on the connection until the
// client goes away or the bridge is closed.
func Handler(b *bridge.Bridge, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", "error", err)
			return
		}
		if err := Serve(r.Context(), conn, b, logger); err != nil {
			logger.Debug("websocket closed", "error", err)
		}
	})
}

// Serve pumps messages between conn and b. It returns when the peer
// disconnects, ctx is done or the bridge is closed, and always closes conn.
func Serve(ctx context.Context, conn *gorilla.Conn, b *bridge.Bridge, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var closeOnce sync.Once
	closeConn := func() { closeOnce.Do(func() { _ = conn.Close() }) }
	defer closeConn()

	logger.Debug("websocket connected", "remote", conn.RemoteAddr().String())

	readErr := make(chan error, 1)
	go func() {
		readErr <- readLoop(ctx, conn, b)
		cancel()
	}()

	err := writeLoop(ctx, conn, b)
	closeConn()
	if rerr := <-readErr; rerr != nil && !isNormalClose(rerr) {
		return rerr
	}
	return err
}

func writeLoop(ctx context.Context, conn *gorilla.Conn, b *bridge.Bridge) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			writeClose(conn)
			return nil
		case <-b.Done():
			writeClose(conn)
			return nil
		case m := <-b.Outbound():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(m); err != nil {
				return fmt.Errorf("write %s: %w", m.Type, err)
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(gorilla.PingMessage, nil); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
		}
	}
}

func readLoop(ctx context.Context, conn *gorilla.Conn, b *bridge.Bridge) error {
	conn.SetReadLimit(maxMessage)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var m bridge.Message
		if err := conn.ReadJSON(&m); err != nil {
			return err
		}
		if m.Type != bridge.TypeContentChanged {
			continue
		}
		if err := b.Notify(ctx, m.Content); err != nil {
			if errors.Is(err, bridge.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

func writeClose(conn *gorilla.Conn) {
	msg := gorilla.FormatCloseMessage(gorilla.CloseNormalClosure, "")
	_ = conn.WriteControl(gorilla.CloseMessage, msg, time.Now().Add(writeWait))
}

func isNormalClose(err error) bool {
	return gorilla.IsCloseError(err, gorilla.CloseNormalClosure, gorilla.CloseGoingAway) ||
		errors.Is(err, net.ErrClosed)
}
