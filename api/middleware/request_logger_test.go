// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/parastaking/log"
)

// mockLogger records the context of Info and Warn calls.
type mockLogger struct {
	loggedData []any
}

func (m *mockLogger) New(_ ...any) log.Logger  { return m }
func (m *mockLogger) Trace(_ string, _ ...any) {}
func (m *mockLogger) Debug(_ string, _ ...any) {}
func (m *mockLogger) Error(_ string, _ ...any) {}
func (m *mockLogger) Crit(_ string, _ ...any)  {}

func (m *mockLogger) Info(_ string, ctx ...any) {
	m.loggedData = append(m.loggedData, ctx...)
}

func (m *mockLogger) Warn(_ string, ctx ...any) {
	m.loggedData = append(m.loggedData, ctx...)
}

func TestRequestLoggerHandler(t *testing.T) {
	echo := func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Write(body)
	}
	slow := func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(20 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}

	tests := []struct {
		name      string
		handler   http.HandlerFunc
		enabled   bool
		threshold time.Duration
		shouldLog bool
	}{
		{"enabled", echo, true, 0, true},
		{"disabled", echo, false, 0, false},
		{"fast under threshold", echo, false, time.Second, false},
		{"slow over threshold", slow, false, 5 * time.Millisecond, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &mockLogger{}
			var enabled atomic.Bool
			enabled.Store(tt.enabled)

			handler := RequestLoggerMiddleware(logger, &enabled, tt.threshold)(tt.handler)
			req := httptest.NewRequest(http.MethodPost, "/calls", strings.NewReader(`{"method":"forceNewRound"}`))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
			if tt.shouldLog {
				assert.Contains(t, logger.loggedData, "URI")
				assert.Contains(t, logger.loggedData, "/calls")
				assert.Contains(t, logger.loggedData, `{"method":"forceNewRound"}`)
			} else {
				assert.Empty(t, logger.loggedData)
			}
			if tt.name == "enabled" {
				assert.Equal(t, `{"method":"forceNewRound"}`, rr.Body.String())
			}
		})
	}
}
