package app

import (
	"net/http"

	"github.com/gorilla/websocket"

	"bmpmon/internal/model"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// handleWS upgrades HTTP to websocket and registers the client for the
// live sample feed.
func (a *App) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	a.mu.Lock()
	a.clients[conn] = true
	a.mu.Unlock()

	go func() {
		defer func() {
			a.mu.Lock()
			delete(a.clients, conn)
			a.mu.Unlock()
			_ = conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

// wsEvent is the live-feed payload: the accepted reading plus the current
// rolling-window summary.
type wsEvent struct {
	reading
	Stats model.Statistics `json:"stats"`
}

// broadcastSample pushes one accepted reading to every connected client.
// Clients that fail to accept the write are dropped.
func (a *App) broadcastSample(s model.Sample) {
	event := wsEvent{reading: newReading(s), Stats: a.ctrl.Stats()}
	a.mu.Lock()
	defer a.mu.Unlock()
	for c := range a.clients {
		if err := c.WriteJSON(event); err != nil {
			delete(a.clients, c)
			_ = c.Close()
		}
	}
}
