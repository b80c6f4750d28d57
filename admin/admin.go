// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package admin serves the operator endpoints: the log level, the API request
// logs switch and the node health.
package admin

import (
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/parastaking/co"
	"github.com/vechain/parastaking/health"
	"github.com/vechain/parastaking/log"
)

var logger = log.WithContext("pkg", "admin")

// methodHandler dispatches on the request method, anything else is answered with 405.
func methodHandler(get, post http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && get != nil:
			get.ServeHTTP(w, r)
		case r.Method == http.MethodPost && post != nil:
			post.ServeHTTP(w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	}
}

func HTTPHandler(logLevel *slog.LevelVar, apiLogs *atomic.Bool, h *health.Health) http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/admin/loglevel", methodHandler(getLogLevelHandler(logLevel), postLogLevelHandler(logLevel)))
	router.HandleFunc("/admin/apilogs", methodHandler(getAPILogsHandler(apiLogs), postAPILogsHandler(apiLogs)))
	router.HandleFunc("/admin/health", methodHandler(healthHandler(h), nil))

	return handlers.CompressHandler(router)
}

func StartServer(addr string, logLevel *slog.LevelVar, apiLogs *atomic.Bool, h *health.Health) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen admin API addr [%v]", addr)
	}

	srv := &http.Server{Handler: HTTPHandler(logLevel, apiLogs, h), ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/admin", func() {
		srv.Close()
		goes.Wait()
	}, nil
}
