package api

import (
	"encoding/json"
	"net/http"

	"github.com/riftstats/riftstats/internal/domain"
	"github.com/riftstats/riftstats/internal/stats"
)

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// loadMatches returns the stored matches for the tracked summoner
func (r *Router) loadMatches(req *http.Request) ([]domain.Match, error) {
	summoner, err := r.store.GetSummoner(req.Context())
	if err != nil {
		return nil, err
	}
	if summoner == nil {
		return nil, nil
	}
	return r.store.GetMatches(req.Context(), summoner.PUUID)
}

// handleGetSummoner returns the tracked summoner and collection info
func (r *Router) handleGetSummoner(w http.ResponseWriter, req *http.Request) {
	summoner, err := r.store.GetSummoner(req.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if summoner == nil {
		writeError(w, http.StatusNotFound, "no summoner stored")
		return
	}

	lastUpdate, err := r.store.GetLastUpdate(req.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	total, err := r.store.CountMatches(req.Context(), summoner.PUUID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response := map[string]interface{}{
		"summoner":      summoner,
		"total_matches": total,
	}
	if !lastUpdate.IsZero() {
		response["last_update"] = lastUpdate.UTC().Format("2006-01-02T15:04:05Z")
	}
	writeJSON(w, http.StatusOK, response)
}

// handleGetChampionStats returns per-champion aggregates, optionally filtered
// by period and mode
func (r *Router) handleGetChampionStats(w http.ResponseWriter, req *http.Request) {
	matches, err := r.loadMatches(req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	period := parsePeriod(req)
	mode := parseMode(req)

	writeJSON(w, http.StatusOK, stats.Champions(matches, period, mode, r.now()))
}

// handleGetMatches returns the most recent matches, newest first
func (r *Router) handleGetMatches(w http.ResponseWriter, req *http.Request) {
	matches, err := r.loadMatches(req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	limit := parseLimit(req, 20, 100)
	writeJSON(w, http.StatusOK, stats.Recent(matches, limit))
}

// handleGetPatches returns the patch versions present in the collection
func (r *Router) handleGetPatches(w http.ResponseWriter, req *http.Request) {
	matches, err := r.loadMatches(req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats.AvailablePatches(matches))
}

// handleGetModes returns the queue types present in the collection
func (r *Router) handleGetModes(w http.ResponseWriter, req *http.Request) {
	matches, err := r.loadMatches(req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats.AvailableModes(matches))
}

// handleRefresh triggers an immediate fetch of new matches
func (r *Router) handleRefresh(w http.ResponseWriter, req *http.Request) {
	if r.refresher == nil {
		writeError(w, http.StatusServiceUnavailable, "refresh not available")
		return
	}
	if !r.refresher.RefreshNow() {
		writeError(w, http.StatusConflict, "refresh already in progress")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "refresh started"})
}

// handleHealth returns a simple health check
func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"ws_clients": r.wsHub.ClientCount(),
	})
}
