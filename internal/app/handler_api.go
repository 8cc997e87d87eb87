package app

import (
	"encoding/json"
	"net/http"

	"bmpmon/internal/model"
	"bmpmon/internal/util"
)

// reading is a sample enriched with the derived barometric altitude.
type reading struct {
	model.Sample
	Altitude float32 `json:"altitude"`
}

func newReading(s model.Sample) reading {
	return reading{Sample: s, Altitude: model.Altitude(s.Pressure)}
}

// historyResponse carries the retained samples together with the centered
// moving averages used for graph smoothing, index-aligned with Samples.
type historyResponse struct {
	Samples         []model.Sample `json:"samples"`
	SmoothedTemp    []float32      `json:"smoothed_temp"`
	SmoothedPress   []float32      `json:"smoothed_press"`
	SmoothingWindow int            `json:"smoothing_window"`
}

// controlRequest is the command envelope accepted by /api/control.
type controlRequest struct {
	Action   string `json:"action"`
	Filename string `json:"filename,omitempty"`
	Baud     int    `json:"baud,omitempty"`
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		util.Error("[app] failed to write response: %v", err)
	}
}

// handleLatest returns the most recent sample with its derived altitude.
func (a *App) handleLatest(w http.ResponseWriter, r *http.Request) {
	n := a.ctrl.Len()
	if n == 0 {
		http.Error(w, "no data available", http.StatusNotFound)
		return
	}
	s, err := a.ctrl.At(n - 1)
	if err != nil {
		http.Error(w, "no data available", http.StatusNotFound)
		return
	}
	writeJSON(w, newReading(s))
}

// handleHistory returns the full retained buffer, oldest first.
func (a *App) handleHistory(w http.ResponseWriter, r *http.Request) {
	samples := a.ctrl.Snapshot()
	resp := historyResponse{
		Samples:         samples,
		SmoothedTemp:    make([]float32, len(samples)),
		SmoothedPress:   make([]float32, len(samples)),
		SmoothingWindow: model.DefaultSmoothWindow,
	}
	for i := range samples {
		resp.SmoothedTemp[i] = a.ctrl.Smoothed(model.Temperature, i)
		resp.SmoothedPress[i] = a.ctrl.Smoothed(model.Pressure, i)
	}
	writeJSON(w, resp)
}

// handleStats returns the rolling-window summary.
func (a *App) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, a.ctrl.Stats())
}

// handleStatus returns the link, pause and error state.
func (a *App) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, a.ctrl.Status())
}

// handleControl executes one runtime command: pause, clear, save, baud or
// reconnect. These mirror the interactive commands of the console client.
func (a *App) handleControl(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req controlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid control command", http.StatusBadRequest)
		return
	}

	switch req.Action {
	case "pause":
		paused := a.ctrl.TogglePause()
		writeJSON(w, map[string]bool{"paused": paused})
	case "clear":
		a.ctrl.ClearErrors()
		w.WriteHeader(http.StatusOK)
	case "save":
		if err := a.ctrl.Save(req.Filename); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]string{"filename": a.ctrl.Status().Filename})
	case "baud":
		if err := a.ctrl.SetBaud(req.Baud); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]int{"baud_rate": req.Baud})
	case "reconnect":
		a.ctrl.Reconnect()
		w.WriteHeader(http.StatusAccepted)
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
	}
}
