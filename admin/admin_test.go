// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/parastaking/chain"
	"github.com/vechain/parastaking/health"
	"github.com/vechain/parastaking/thor"
)

type fixture struct {
	level   slog.LevelVar
	apiLogs atomic.Bool
	health  *health.Health
	handler http.Handler
}

func newFixture() *fixture {
	f := &fixture{health: health.New(time.Minute)}
	f.level.Set(slog.LevelInfo)
	f.handler = HTTPHandler(&f.level, &f.apiLogs, f.health)
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	if out != nil {
		require.NoError(t, json.NewDecoder(rr.Body).Decode(out))
	}
	return rr.Code
}

func TestLogLevel(t *testing.T) {
	f := newFixture()

	var res logLevelResponse
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/admin/loglevel", nil, &res))
	assert.Equal(t, "INFO", res.CurrentLevel)

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/admin/loglevel", logLevelRequest{Level: "debug"}, &res))
	assert.Equal(t, "DEBUG", res.CurrentLevel)
	assert.Equal(t, slog.LevelDebug, f.level.Level())

	var errRes errorResponse
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/admin/loglevel", logLevelRequest{Level: "invalid_body"}, &errRes))
	assert.Equal(t, "Invalid verbosity level", errRes.ErrorMessage)
	assert.Equal(t, slog.LevelDebug, f.level.Level())

	assert.Equal(t, http.StatusMethodNotAllowed, f.do(t, http.MethodPut, "/admin/loglevel", nil, nil))
}

func TestAPILogs(t *testing.T) {
	f := newFixture()

	var res apiLogsResponse
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/admin/apilogs", nil, &res))
	assert.False(t, res.Enabled)

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/admin/apilogs", map[string]bool{"enabled": true}, &res))
	assert.True(t, res.Enabled)
	assert.True(t, f.apiLogs.Load())

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/admin/apilogs", map[string]string{}, nil))
	assert.True(t, f.apiLogs.Load())

	assert.Equal(t, http.StatusMethodNotAllowed, f.do(t, http.MethodDelete, "/admin/apilogs", nil, nil))
}

func TestHealth(t *testing.T) {
	f := newFixture()

	var status health.Status
	assert.Equal(t, http.StatusServiceUnavailable, f.do(t, http.MethodGet, "/admin/health", nil, &status))
	assert.False(t, status.Healthy)

	f.health.NewBestBlock(&chain.Summary{ID: thor.Bytes32{0x01}, Number: 3})
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/admin/health", nil, &status))
	assert.True(t, status.Healthy)
	assert.Equal(t, uint32(3), status.BlockIngestion.BestBlockNumber)

	var errRes errorResponse
	assert.Equal(t, http.StatusMethodNotAllowed, f.do(t, http.MethodPost, "/admin/health", nil, &errRes))
	assert.Equal(t, http.StatusMethodNotAllowed, errRes.ErrorCode)
}
