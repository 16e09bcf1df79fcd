// internal/handlers/state_ws.go
package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/jason-s-yu/friendgraph/internal/friends"
	"github.com/jason-s-yu/friendgraph/internal/middleware"
	"github.com/sirupsen/logrus"
)

// SnapshotHub fans provider snapshots out to connected state streams. Each subscriber
// only ever holds the latest snapshot; older undelivered ones are replaced.
type SnapshotHub struct {
	mu   sync.Mutex
	subs map[chan friends.Snapshot]struct{}
}

func NewSnapshotHub() *SnapshotHub {
	return &SnapshotHub{
		subs: make(map[chan friends.Snapshot]struct{}),
	}
}

// Publish is suitable as a friends.WithOnChange callback.
func (h *SnapshotHub) Publish(s friends.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}

func (h *SnapshotHub) subscribe() chan friends.Snapshot {
	ch := make(chan friends.Snapshot, 1)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *SnapshotHub) unsubscribe(ch chan friends.Snapshot) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

// StateWSHandler streams the provider state over a WebSocket using the "friends"
// subprotocol: the current snapshot on connect, then one message per change.
func StateWSHandler(logger *logrus.Logger, hub *SnapshotHub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"friends"},
			OriginPatterns: []string{"localhost:*", "127.0.0.1:*"},
		})
		if err != nil {
			logger.Warnf("WebSocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler exited")

		if c.Subprotocol() != "friends" {
			c.Close(BadSubprotocolError, "client must use the 'friends' subprotocol")
			return
		}
		p, err := friends.FromContext(r.Context())
		if err != nil {
			c.Close(NoProviderError, err.Error())
			return
		}

		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)
		sub := hub.subscribe()
		defer hub.unsubscribe(sub)

		// Nothing is expected from the client; CloseRead handles control frames and
		// cancels ctx once the peer goes away.
		ctx := c.CloseRead(r.Context())
		err = writeSnapshots(ctx, c, p.Snapshot(), sub)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, err)
		if err == nil {
			c.Close(websocket.StatusNormalClosure, "")
		}
	}
}

func writeSnapshots(ctx context.Context, c *websocket.Conn, first friends.Snapshot, sub <-chan friends.Snapshot) error {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	if err := writeSnapshot(ctx, c, first); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case s := <-sub:
			if err := writeSnapshot(ctx, c, s); err != nil {
				return err
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				return err
			}
		}
	}
}

func writeSnapshot(ctx context.Context, c *websocket.Conn, s friends.Snapshot) error {
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return wsjson.Write(writeCtx, c, s)
}
