// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"bytes"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/vechain/parastaking/log"
)

// RequestLoggerMiddleware logs requests when enabled, and any request slower than
// slowQueriesThreshold when the threshold is set.
func RequestLoggerMiddleware(logger log.Logger, enabled *atomic.Bool, slowQueriesThreshold time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled.Load() && slowQueriesThreshold == 0 {
				next.ServeHTTP(w, r)
				return
			}
			// the body is read once here, so hand the handler a fresh reader
			var bodyBytes []byte
			if r.Body != nil {
				var err error
				bodyBytes, err = io.ReadAll(r.Body)
				if err != nil {
					logger.Warn("unexpected body read error", "err", err)
					http.Error(w, "bad request body", http.StatusBadRequest)
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
			}

			start := time.Now()
			next.ServeHTTP(w, r)

			duration := time.Since(start)
			if enabled.Load() || (slowQueriesThreshold > 0 && duration > slowQueriesThreshold) {
				logger.Info("API Request",
					"DurationMs", duration.Milliseconds(),
					"URI", r.URL.String(),
					"Method", r.Method,
					"Body", string(bodyBytes),
				)
			}
		})
	}
}
