package app

// registerRoutes sets up all HTTP handlers for the application.
func (a *App) registerRoutes() {
	a.Mux.HandleFunc("/api/latest", a.handleLatest)
	a.Mux.HandleFunc("/api/history", a.handleHistory)
	a.Mux.HandleFunc("/api/stats", a.handleStats)
	a.Mux.HandleFunc("/api/status", a.handleStatus)
	a.Mux.HandleFunc("/api/control", a.handleControl)
	a.Mux.HandleFunc("/ws", a.handleWS)
}
