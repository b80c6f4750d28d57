// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/vechain/parastaking/health"
	"github.com/vechain/parastaking/log"
)

type logLevelRequest struct {
	Level string `json:"level"`
}

type logLevelResponse struct {
	CurrentLevel string `json:"currentLevel"`
}

type apiLogsRequest struct {
	Enabled *bool `json:"enabled"`
}

type apiLogsResponse struct {
	Enabled bool `json:"enabled"`
}

type errorResponse struct {
	ErrorCode    int    `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

func writeError(w http.ResponseWriter, errCode int, errMsg string) {
	writeJSON(w, errCode, errorResponse{
		ErrorCode:    errCode,
		ErrorMessage: errMsg,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func getLogLevelHandler(logLevel *slog.LevelVar) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, logLevelResponse{CurrentLevel: logLevel.Level().String()})
	}
}

func postLogLevelHandler(logLevel *slog.LevelVar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req logLevelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		lvl, ok := log.ParseLevel(req.Level)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid verbosity level")
			return
		}
		logLevel.Set(lvl)
		logger.Info("log level changed", "level", lvl)
		writeJSON(w, http.StatusOK, logLevelResponse{CurrentLevel: logLevel.Level().String()})
	}
}

func getAPILogsHandler(enabled *atomic.Bool) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, apiLogsResponse{Enabled: enabled.Load()})
	}
}

func postAPILogsHandler(enabled *atomic.Bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req apiLogsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		enabled.Store(*req.Enabled)
		logger.Info("api logs toggled", "enabled", *req.Enabled)
		writeJSON(w, http.StatusOK, apiLogsResponse{Enabled: enabled.Load()})
	}
}

func healthHandler(h *health.Health) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		status := h.Status()
		code := http.StatusOK
		if !status.Healthy {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, status)
	}
}
