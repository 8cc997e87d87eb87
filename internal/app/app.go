// Package app exposes the acquisition controller over HTTP: a small JSON
// API for history and statistics, a control endpoint covering the runtime
// commands, and a websocket feed that pushes every accepted sample.
package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"bmpmon/internal/core"
	"bmpmon/internal/util"
)

type App struct {
	ctrl *core.Controller
	Mux  *http.ServeMux

	server *http.Server

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// New wires the routes around an acquisition controller and hooks the
// controller's sample callback to the websocket broadcast.
func New(ctrl *core.Controller) *App {
	a := &App{
		ctrl:    ctrl,
		Mux:     http.NewServeMux(),
		clients: map[*websocket.Conn]bool{},
	}
	a.registerRoutes()
	ctrl.SetSampleHook(a.broadcastSample)
	return a
}

// Start launches the web server and blocks until stopped. An empty address
// disables the server entirely.
func (a *App) Start(addr string) error {
	if addr == "" {
		util.Info("[app] web server not started (empty address)")
		return nil
	}

	addr = strings.TrimPrefix(addr, "http://")
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	a.server = &http.Server{
		Addr:    addr,
		Handler: a.Mux,
	}

	util.Info("[app] web server listening at http://%s", addr)

	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("[app] HTTP server error: %w", err)
	}
	return nil
}

// Stop gracefully stops the web server and disconnects websocket clients.
func (a *App) Stop() {
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := a.server.Shutdown(ctx); err != nil {
			util.Error("[app] HTTP server shutdown error: %v", err)
		} else {
			util.Info("[app] web server stopped cleanly")
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	for c := range a.clients {
		_ = c.Close()
	}
	a.clients = map[*websocket.Conn]bool{}
}
