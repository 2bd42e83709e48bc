package bandengine

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"bandstream/config"
	"bandstream/internal/indicator"
)

// handleBands serves GET /bands?stream=X with the current reading of every
// band of that stream.
func (svc *Service) handleBands(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "GET only", http.StatusMethodNotAllowed)
		return
	}
	stream := r.URL.Query().Get("stream")
	if stream == "" {
		svc.mu.RLock()
		streams := svc.engine.Streams()
		svc.mu.RUnlock()
		writeJSON(w, http.StatusOK, map[string]interface{}{"streams": streams})
		return
	}

	svc.mu.RLock()
	results, ok := svc.engine.Lookup(stream)
	svc.mu.RUnlock()
	if !ok {
		http.Error(w, "unknown stream: "+stream, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// handleConfig serves GET /config with the active band configs.
func (svc *Service) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "GET only", http.StatusMethodNotAllowed)
		return
	}
	svc.mu.RLock()
	configs := svc.engine.Configs()
	svc.mu.RUnlock()
	writeJSON(w, http.StatusOK, configs)
}

// handleReload handles POST /reload for live band config updates.
func (svc *Service) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	var newConfigs []indicator.BandConfig
	if err := json.NewDecoder(r.Body).Decode(&newConfigs); err != nil {
		svc.prom.Reloads.WithLabelValues("rejected").Inc()
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := config.NormalizeBands(newConfigs); err != nil {
		svc.prom.Reloads.WithLabelValues("rejected").Inc()
		http.Error(w, "validation: "+err.Error(), http.StatusBadRequest)
		return
	}

	svc.mu.Lock()
	preserved, created, err := svc.engine.ReloadConfigs(newConfigs)
	active := svc.engine.Configs()
	svc.mu.Unlock()
	if err != nil {
		svc.prom.Reloads.WithLabelValues("rejected").Inc()
		http.Error(w, "reload: "+err.Error(), http.StatusBadRequest)
		return
	}

	svc.prom.Reloads.WithLabelValues("ok").Inc()
	svc.health.SetBands(bandNames(active))
	slog.Info("bands reloaded via HTTP", "bands", len(active), "preserved", preserved, "created", created)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"preserved": preserved,
		"created":   created,
		"bands":     active,
	})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write response failed", "err", err)
	}
}
